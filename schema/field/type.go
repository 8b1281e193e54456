package field

import (
	"strings"

	"github.com/syssam/asyncdao/dialect"
)

// Type is the Go-side type of a column.
type Type uint8

// List of column types.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeString
	TypeBytes
	TypeTime
	TypeUUID
	TypeEnum
	TypeJSONObject
	TypeJSONArray
	TypeOther
	endTypes
)

var typeNames = [...]string{
	TypeInvalid:    "invalid",
	TypeBool:       "bool",
	TypeInt8:       "int8",
	TypeInt16:      "int16",
	TypeInt32:      "int32",
	TypeInt64:      "int64",
	TypeFloat32:    "float32",
	TypeFloat64:    "float64",
	TypeString:     "string",
	TypeBytes:      "[]byte",
	TypeTime:       "time.Time",
	TypeUUID:       "uuid.UUID",
	TypeEnum:       "enum",
	TypeJSONObject: "jsonx.Object",
	TypeJSONArray:  "jsonx.Array",
	TypeOther:      "other",
}

var constNames = [...]string{
	TypeInvalid:    "TypeInvalid",
	TypeBool:       "TypeBool",
	TypeInt8:       "TypeInt8",
	TypeInt16:      "TypeInt16",
	TypeInt32:      "TypeInt32",
	TypeInt64:      "TypeInt64",
	TypeFloat32:    "TypeFloat32",
	TypeFloat64:    "TypeFloat64",
	TypeString:     "TypeString",
	TypeBytes:      "TypeBytes",
	TypeTime:       "TypeTime",
	TypeUUID:       "TypeUUID",
	TypeEnum:       "TypeEnum",
	TypeJSONObject: "TypeJSONObject",
	TypeJSONArray:  "TypeJSONArray",
	TypeOther:      "TypeOther",
}

// String returns the string representation of a type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// ConstName returns the constant name of a type.
func (t Type) ConstName() string {
	if t < endTypes {
		return constNames[t]
	}
	return constNames[TypeInvalid]
}

// Valid reports if the given type if known type.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// Integer reports if the given type is an integer type.
func (t Type) Integer() bool {
	return t >= TypeInt8 && t <= TypeInt64
}

// Numeric reports if the given type is a numeric type.
func (t Type) Numeric() bool {
	return t >= TypeInt8 && t <= TypeFloat64
}

// JSON reports if values of the type are JSON documents.
func (t Type) JSON() bool {
	return t == TypeJSONObject || t == TypeJSONArray
}

// GoType returns the import path and name of the Go type used for t.
// The path is empty for predeclared types. Enums are reported as string;
// the generator names their dedicated types.
func (t Type) GoType() (path, name string) {
	switch t {
	case TypeTime:
		return "time", "Time"
	case TypeUUID:
		return "github.com/google/uuid", "UUID"
	case TypeJSONObject:
		return "github.com/syssam/asyncdao/jsonx", "Object"
	case TypeJSONArray:
		return "github.com/syssam/asyncdao/jsonx", "Array"
	case TypeEnum:
		return "", "string"
	case TypeInvalid, TypeOther:
		return "", "any"
	default:
		return "", t.String()
	}
}

// TypeFromString returns the type named s, as printed by String or ConstName.
func TypeFromString(s string) (Type, bool) {
	for t := TypeInvalid + 1; t < endTypes; t++ {
		if typeNames[t] == s || constNames[t] == s || strings.EqualFold(strings.TrimPrefix(constNames[t], "Type"), s) {
			return t, true
		}
	}
	return TypeInvalid, false
}

// ParseSQLType maps the column type reported by the database to a Type.
// Unknown types, such as decimals or geometry, map to TypeOther.
// Unsigned integers widen to the next signed type; bigint unsigned has
// none and maps to TypeOther.
func ParseSQLType(d, sqlType string) Type {
	raw := strings.ToLower(strings.TrimSpace(sqlType))
	if raw == "" {
		return TypeOther
	}
	base, args := splitType(raw)
	d = dialect.Normalize(d)
	if d == dialect.MySQL && base == "tinyint" && args == "1" {
		return TypeBool
	}
	t := parseBase(d, base, args)
	if t.Integer() && strings.Contains(raw, " unsigned") {
		if t == TypeInt64 {
			return TypeOther
		}
		return t + 1
	}
	return t
}

func parseBase(d, base, args string) Type {
	switch base {
	case "bool", "boolean", "bit":
		if base == "bit" && args != "" && args != "1" {
			return TypeBytes
		}
		return TypeBool
	case "tinyint", "int1":
		return TypeInt8
	case "smallint", "int2", "smallserial", "year":
		return TypeInt16
	case "mediumint", "int", "integer", "int4", "serial", "int3":
		return TypeInt32
	case "bigint", "int8", "bigserial", "serial8":
		return TypeInt64
	case "float", "float4":
		if d == dialect.Postgres && base == "float" {
			return TypeFloat64
		}
		return TypeFloat32
	case "real":
		if d == dialect.Postgres {
			return TypeFloat32
		}
		return TypeFloat64
	case "double", "double precision", "float8":
		return TypeFloat64
	case "char", "varchar", "character", "character varying", "nchar", "nvarchar",
		"text", "tinytext", "mediumtext", "longtext", "clob", "citext", "bpchar", "name":
		return TypeString
	case "blob", "tinyblob", "mediumblob", "longblob", "binary", "varbinary", "bytea":
		return TypeBytes
	case "date", "datetime", "timestamp", "timestamptz", "timestamp with time zone",
		"timestamp without time zone":
		return TypeTime
	case "uuid":
		return TypeUUID
	case "enum":
		return TypeEnum
	case "json", "jsonb":
		return TypeJSONObject
	}
	return TypeOther
}

// ParseEnumValues returns the values of a MySQL style enum('a','b') type.
// It returns nil for other types.
func ParseEnumValues(sqlType string) []string {
	base, args := splitType(strings.TrimSpace(sqlType))
	if !strings.EqualFold(base, "enum") || args == "" {
		return nil
	}
	var (
		values []string
		cur    strings.Builder
		quoted bool
	)
	for i := 0; i < len(args); i++ {
		c := args[i]
		switch {
		case c == '\'' && quoted && i+1 < len(args) && args[i+1] == '\'':
			cur.WriteByte('\'')
			i++
		case c == '\'':
			if quoted {
				values = append(values, cur.String())
				cur.Reset()
			}
			quoted = !quoted
		case quoted:
			cur.WriteByte(c)
		}
	}
	return values
}

// splitType splits "varchar(45) unsigned" into "varchar" and "45".
func splitType(s string) (base, args string) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, " zerofill")
	s = strings.TrimSuffix(s, " unsigned")
	if i := strings.IndexByte(s, '('); i >= 0 {
		base = strings.TrimSpace(s[:i])
		if j := strings.LastIndexByte(s, ')'); j > i {
			args = s[i+1 : j]
			if rest := strings.TrimSpace(s[j+1:]); rest != "" && !strings.HasPrefix(rest, "unsigned") {
				base += " " + rest
			}
		}
		return base, args
	}
	return s, ""
}
