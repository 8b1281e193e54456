package gen

import (
	"fmt"
	"go/token"
	"path"
	"slices"

	"github.com/syssam/asyncdao"
	"github.com/syssam/asyncdao/compiler/load"
	"github.com/syssam/asyncdao/dialect"
)

// The following types and their exported methods used by the codegen
// to generate the assets.
type (
	// Graph holds the types of one generation run.
	Graph struct {
		*Config
		// Schema the graph was built from.
		Schema *load.Schema
		// Dialect of the schema, normalized.
		Dialect string
		// Nodes are the types, one per table, in schema order.
		Nodes []*Type
	}

	// Type represents one table and the POJO generated for it.
	Type struct {
		*Config
		// Table holds the loaded table.
		Table *load.Table
		// Name is the Go name of the POJO.
		Name string
		// Dialect of the schema the table belongs to.
		Dialect string
		// Fields holds the columns in table order.
		Fields []*Field
		// PrimaryKey holds the key fields in key order.
		PrimaryKey []*Field
		fields     map[string]*Field
	}
)

// NewGraph creates a graph for the tables of s.
func NewGraph(c *Config, s *load.Schema) (*Graph, error) {
	if s == nil {
		return nil, NewSchemaError("", "", "schema cannot be nil", nil)
	}
	if err := s.Validate(); err != nil {
		return nil, NewSchemaError("", "", "invalid schema", err)
	}
	g := &Graph{Config: c, Schema: s, Dialect: dialect.Normalize(s.Dialect)}
	names := make(map[string]string, len(s.Tables))
	pkgs := make(map[string]string, len(s.Tables))
	for _, tbl := range s.Tables {
		t, err := NewType(c, g.Dialect, tbl)
		if err != nil {
			return nil, err
		}
		if other, ok := names[t.Name]; ok {
			return nil, NewSchemaError(tbl.Name, "", fmt.Sprintf("type name %s collides with table %s", t.Name, other), nil)
		}
		names[t.Name] = tbl.Name
		if other, ok := pkgs[t.PackageDir()]; ok {
			return nil, NewSchemaError(tbl.Name, "", fmt.Sprintf("package %s collides with table %s", t.PackageDir(), other), nil)
		}
		pkgs[t.PackageDir()] = tbl.Name
		g.Nodes = append(g.Nodes, t)
	}
	return g, nil
}

// NewType creates a new type and its fields from the given table.
func NewType(c *Config, d string, tbl *load.Table) (*Type, error) {
	t := &Type{
		Config:  c,
		Table:   tbl,
		Name:    singular(pascal(tbl.Name)),
		Dialect: d,
		fields:  make(map[string]*Field, len(tbl.Columns)),
	}
	if pkg := t.PackageDir(); pkg == "" || token.IsKeyword(pkg) {
		return nil, NewSchemaError(tbl.Name, "", fmt.Sprintf("table name cannot be used as package name %q", pkg), nil)
	}
	structFields := make(map[string]string, len(tbl.Columns))
	for _, col := range tbl.Columns {
		f := newField(t, col)
		if other, ok := structFields[f.StructField]; ok {
			return nil, NewSchemaError(tbl.Name, col.Name, fmt.Sprintf("struct field %s collides with column %s", f.StructField, other), nil)
		}
		structFields[f.StructField] = col.Name
		t.Fields = append(t.Fields, f)
		t.fields[col.Name] = f
	}
	for _, name := range tbl.PrimaryKey {
		f, ok := t.fields[name]
		if !ok {
			return nil, NewSchemaError(tbl.Name, name, "primary key column does not exist", nil)
		}
		f.PK = true
		t.PrimaryKey = append(t.PrimaryKey, f)
	}
	return t, nil
}

// Field returns the field of the named column.
func (t Type) Field(column string) (*Field, bool) {
	f, ok := t.fields[column]
	return f, ok
}

// TableName returns the table name.
func (t Type) TableName() string { return t.Table.Name }

// PackageDir returns the directory and package name of the table package.
func (t Type) PackageDir() string { return packageName(t.Table.Name) }

// Package returns the import path of the table package.
func (t Type) Package() string { return path.Join(t.Config.Package, t.PackageDir()) }

// Receiver returns the receiver name of this type.
func (t Type) Receiver() string { return receiver(t.Name) }

// DAOName returns the name of the generated DAO struct.
func (t Type) DAOName() string { return t.Name + "DAO" }

// DAOConstructor returns the name of the generated DAO constructor.
func (t Type) DAOConstructor() string { return "New" + t.DAOName() }

// MapperName returns the name of the generated row mapper.
func (t Type) MapperName() string { return "Map" + t.Name }

// KeyName returns the name of the generated composite key struct.
func (t Type) KeyName() string { return t.Name + "Key" }

// FileName returns the base name of the POJO file.
func (t Type) FileName() string { return t.PackageDir() + ".go" }

// HasPrimaryKey reports whether the table has a primary key. DAOs are only
// generated for such tables.
func (t Type) HasPrimaryKey() bool { return len(t.PrimaryKey) > 0 }

// HasCompositeKey reports whether the primary key spans several columns.
func (t Type) HasCompositeKey() bool { return len(t.PrimaryKey) > 1 }

// EnumFields returns the enum fields of the type.
func (t Type) EnumFields() []*Field {
	var fs []*Field
	for _, f := range t.Fields {
		if f.IsEnum() {
			fs = append(fs, f)
		}
	}
	return fs
}

// NonKeyFields returns the fields outside the primary key.
func (t Type) NonKeyFields() []*Field {
	return slices.DeleteFunc(slices.Clone(t.Fields), func(f *Field) bool { return f.PK })
}

// InsertReturningUnsupported returns why InsertReturningPrimary cannot
// work for the table, or "" when it can.
func (t Type) InsertReturningUnsupported() string {
	switch {
	case !t.HasPrimaryKey():
		return ""
	case t.HasCompositeKey():
		return asyncdao.ReasonCompositeKey
	case !t.PrimaryKey[0].Type.Integer() || t.PrimaryKey[0].Handler != nil:
		return asyncdao.ReasonNonIntegerKey
	}
	return ""
}

// UniqueFields returns the fields forming single column unique keys,
// the primary key included.
func (t Type) UniqueFields() []*Field {
	var fs []*Field
	for _, f := range t.Fields {
		if f.SingleUnique() {
			fs = append(fs, f)
		}
	}
	return fs
}
