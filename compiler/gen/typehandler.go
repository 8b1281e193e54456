package gen

import "github.com/dave/jennifer/jen"

// TypeHandler renders columns of a custom type. A handler claims a field
// in Handles and then renders every use of it.
type TypeHandler interface {
	// Handles reports whether the handler renders the field.
	Handles(f *Field) bool
	// GoType returns the type of the POJO field.
	GoType(f *Field) jen.Code
	// Read returns an expression of the field's type, reading key from
	// the jsonx.Reader expression r. It is used for rows and JSON
	// documents alike; r.Mode() tells them apart.
	Read(f *Field, r, key jen.Code) jen.Code
	// Write returns an expression converting the field value v into the
	// value stored in rows and JSON documents.
	Write(f *Field, v jen.Code) jen.Code
}

// TypeHandlerFunc bundles plain functions into a TypeHandler.
type TypeHandlerFunc struct {
	HandlesFunc func(f *Field) bool
	GoTypeFunc  func(f *Field) jen.Code
	ReadFunc    func(f *Field, r, key jen.Code) jen.Code
	WriteFunc   func(f *Field, v jen.Code) jen.Code
}

// Handles implements TypeHandler.
func (h TypeHandlerFunc) Handles(f *Field) bool { return h.HandlesFunc != nil && h.HandlesFunc(f) }

// GoType implements TypeHandler.
func (h TypeHandlerFunc) GoType(f *Field) jen.Code { return h.GoTypeFunc(f) }

// Read implements TypeHandler.
func (h TypeHandlerFunc) Read(f *Field, r, key jen.Code) jen.Code { return h.ReadFunc(f, r, key) }

// Write implements TypeHandler.
func (h TypeHandlerFunc) Write(f *Field, v jen.Code) jen.Code { return h.WriteFunc(f, v) }
