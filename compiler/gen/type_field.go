package gen

import (
	"slices"
	"strings"

	"github.com/syssam/asyncdao/compiler/load"
	"github.com/syssam/asyncdao/schema/field"
)

type (
	// Field holds the information of a column used by the generator.
	Field struct {
		typ *Type
		// Column is the loaded column.
		Column *load.Column
		// Name is the column name.
		Name string
		// StructField is the Go name of the POJO field.
		StructField string
		// Type of the column on the Go side.
		Type field.Type
		// JSONName is the key used in JSON documents.
		JSONName string
		// PK is set on primary key columns.
		PK bool
		// Enums holds the values of enum columns.
		Enums []Enum
		// Handler is the type handler that claimed the column, if any.
		Handler TypeHandler
	}

	// Enum holds the enum information for schema enums in codegen.
	Enum struct {
		// Name is the Go name of the enum.
		Name string
		// Value in the schema.
		Value string
	}
)

func newField(t *Type, col *load.Column) *Field {
	f := &Field{
		typ:         t,
		Column:      col,
		Name:        col.Name,
		StructField: pascal(col.Name),
		Type:        col.FieldType(t.Dialect),
		JSONName:    col.Name,
	}
	if _, ok := pojoMethods[f.StructField]; ok {
		f.StructField += "Field"
	}
	switch {
	case t.Config != nil && t.Config.JSONNamer != nil:
		f.JSONName = t.Config.JSONNamer(t.Table, col)
	case col.JSONName != "":
		f.JSONName = col.JSONName
	}
	if f.Type == field.TypeEnum {
		for _, v := range col.EnumValues() {
			f.Enums = append(f.Enums, Enum{Name: f.EnumTypeName() + pascal(v), Value: v})
		}
		if len(f.Enums) == 0 {
			f.Type = field.TypeString
		}
	}
	if t.Config != nil {
		for _, h := range t.Config.TypeHandlers {
			if h.Handles(f) {
				f.Handler = h
				break
			}
		}
	}
	return f
}

// Constant returns the constant name of the column in the table package.
func (f Field) Constant() string { return "Field" + f.StructField }

// Var returns a local variable name for the field.
func (f Field) Var() string { return camel(f.StructField) }

// IsEnum reports whether the field has a generated enum type.
func (f Field) IsEnum() bool { return f.Type == field.TypeEnum && f.Handler == nil }

// EnumTypeName returns the Go name of the enum type.
func (f Field) EnumTypeName() string { return f.typ.Name + f.StructField }

// EnumValuesName returns the name of the variable listing all enum values.
func (f Field) EnumValuesName() string { return f.EnumTypeName() + "Values" }

// EnumValues returns the enum literals.
func (f Field) EnumValues() []string {
	values := make([]string, len(f.Enums))
	for i, e := range f.Enums {
		values[i] = e.Value
	}
	return values
}

// Nullable reports whether the column accepts NULL.
func (f Field) Nullable() bool { return f.Column.Nullable }

// Pointer reports whether the POJO field is a pointer. Columns that may be
// NULL or that the database fills in are pointers so that an unset field
// is skipped on insert.
func (f Field) Pointer() bool {
	if f.Handler != nil {
		return false
	}
	switch f.Type {
	case field.TypeBytes, field.TypeJSONObject, field.TypeJSONArray, field.TypeOther:
		return false
	}
	return f.Column.Nullable || f.Column.AutoIncrement || f.Column.Default != nil
}

// Supported reports whether the generator knows how to render the field
// in JSON helpers and mappers.
func (f Field) Supported() bool {
	return f.Handler != nil || (f.Type.Valid() && f.Type != field.TypeOther)
}

// SingleUnique reports whether the column alone is unique: a single
// column primary key or a single column unique key.
func (f Field) SingleUnique() bool {
	t := f.typ.Table
	if len(t.PrimaryKey) == 1 && t.PrimaryKey[0] == f.Name {
		return true
	}
	return slices.ContainsFunc(t.UniqueKeys, func(k []string) bool {
		return len(k) == 1 && k[0] == f.Name
	})
}

// ReaderMethod returns the jsonx.Reader method reading the field.
func (f Field) ReaderMethod() string {
	switch f.Type {
	case field.TypeBool:
		return "Bool"
	case field.TypeInt8, field.TypeInt16, field.TypeInt32, field.TypeInt64,
		field.TypeFloat32, field.TypeFloat64:
		return strings.ToUpper(f.Type.String()[:1]) + f.Type.String()[1:]
	case field.TypeString, field.TypeEnum:
		return "String"
	case field.TypeBytes:
		return "Bytes"
	case field.TypeTime:
		return "Time"
	case field.TypeUUID:
		return "UUID"
	case field.TypeJSONObject:
		return "Object"
	case field.TypeJSONArray:
		return "Array"
	}
	return "Raw"
}

// Comment returns the column comment.
func (f Field) Comment() string { return f.Column.Comment }
