// Package field models the types of table columns as the generator sees
// them.
//
// Column types reported by MySQL, Postgres and SQLite are mapped to a small
// set of Go types:
//
//	field.ParseSQLType(dialect.MySQL, "tinyint(1)")  // TypeBool
//	field.ParseSQLType(dialect.Postgres, "int4")     // TypeInt32
//	field.ParseSQLType(dialect.SQLite, "varchar(45)") // TypeString
//	field.ParseSQLType(dialect.Postgres, "jsonb")    // TypeJSONObject
//
// MySQL enums carry their values in the type itself:
//
//	field.ParseEnumValues("enum('a','b')") // ["a" "b"]
//
// Types without a Go mapping, such as decimals, are TypeOther. The
// generator leaves such columns out of the JSON helpers.
package field
