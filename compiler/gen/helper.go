package gen

import (
	"log/slog"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/asyncdao"
	"github.com/syssam/asyncdao/schema/field"
)

// Import paths of the runtime packages generated code depends on.
const (
	AsyncdaoPkg = "github.com/syssam/asyncdao"
	ClientPkg   = "github.com/syssam/asyncdao/client"
	DAOPkg      = "github.com/syssam/asyncdao/dao"
	JSONPkg     = "github.com/syssam/asyncdao/jsonx"
	WirePkg     = "github.com/google/wire"
)

// Helper exposes the naming and typing helpers of a generation run to
// flavors.
type Helper struct {
	graph *Graph
}

// NewHelper returns a helper bound to g.
func NewHelper(g *Graph) *Helper { return &Helper{graph: g} }

// Graph returns the graph being generated.
func (h *Helper) Graph() *Graph { return h.graph }

// Logger returns the logger of the run.
func (h *Helper) Logger() *slog.Logger {
	if h.graph.Config == nil || h.graph.Logger == nil {
		return slog.Default()
	}
	return h.graph.Logger
}

// GoType returns the type of the POJO field.
func (h *Helper) GoType(f *Field) jen.Code {
	if f.Pointer() {
		return jen.Op("*").Add(h.BaseType(f))
	}
	return h.BaseType(f)
}

// BaseType returns the type of the field without the pointer.
func (h *Helper) BaseType(f *Field) jen.Code {
	if f.Handler != nil {
		return f.Handler.GoType(f)
	}
	if f.IsEnum() {
		return jen.Id(f.EnumTypeName())
	}
	switch f.Type {
	case field.TypeBytes:
		return jen.Index().Byte()
	case field.TypeOther:
		return jen.Any()
	}
	pkg, name := f.Type.GoType()
	if pkg != "" {
		return jen.Qual(pkg, name)
	}
	return jen.Id(name)
}

// KeyType returns the type of the primary key of t: the composite key
// struct, or the base type of its single key column.
func (h *Helper) KeyType(t *Type) jen.Code {
	if t.HasCompositeKey() {
		return jen.Id(t.KeyName())
	}
	return h.BaseType(t.PrimaryKey[0])
}

// POJO returns the pointer type the DAO of t works with.
func (h *Helper) POJO(t *Type) jen.Code {
	return jen.Op("*").Id(t.Name)
}

// Column returns the column constant of f in the table package.
func (h *Helper) Column(t *Type, f *Field) jen.Code {
	return jen.Qual(t.Package(), f.Constant())
}

// TableName returns the table name constant of t.
func (h *Helper) TableName(t *Type) jen.Code {
	return jen.Qual(t.Package(), "TableName")
}

// Runtime returns name qualified with the flavor runtime package.
func (h *Helper) Runtime(name string) *jen.Statement {
	return jen.Qual(h.graph.Flavor.RuntimePkg(), name)
}

// Reason renders an unsupported reason, preferring the exported constant.
func (h *Helper) Reason(reason string) jen.Code {
	switch reason {
	case asyncdao.ReasonCompositeKey:
		return jen.Qual(AsyncdaoPkg, "ReasonCompositeKey")
	case asyncdao.ReasonNonIntegerKey:
		return jen.Qual(AsyncdaoPkg, "ReasonNonIntegerKey")
	case asyncdao.ReasonDialect:
		return jen.Qual(AsyncdaoPkg, "ReasonDialect")
	}
	return jen.Lit(reason)
}

// Unsupported renders the error an overridden InsertReturningPrimary
// fails with.
func (h *Helper) Unsupported(t *Type, reason string) jen.Code {
	return jen.Qual(AsyncdaoPkg, "NewUnsupportedError").Call(
		jen.Lit("insertReturningPrimary"),
		h.TableName(t),
		h.Reason(reason),
	)
}

// Comparable reports whether FetchBy methods can be rendered for f.
// JSON documents, binary and unrecognized columns cannot be compared in
// a WHERE clause, and handler columns need a conversion first.
func (h *Helper) Comparable(f *Field) bool {
	if f.Handler != nil {
		return false
	}
	switch f.Type {
	case field.TypeBytes, field.TypeJSONObject, field.TypeJSONArray, field.TypeOther:
		return false
	}
	return true
}
