package gen

import (
	"fmt"

	"github.com/dave/jennifer/jen"
)

// genDAO renders the DAO of t. The struct embeds the generic DAO of the
// flavor; the flavor adds the per-column methods.
func (g *JenniferGenerator) genDAO(t *Type) *jen.File {
	h, flavor := g.helper, g.graph.Flavor
	f := g.newFile()

	embedded := h.Runtime("DAO").Types(h.POJO(t), h.KeyType(t))
	f.Commentf("%s runs queries on the %s table.", t.DAOName(), t.TableName())
	f.Type().Id(t.DAOName()).Struct(jen.Op("*").Add(embedded))

	f.Commentf("%s returns a %s running on c. c may be nil and set later", t.DAOConstructor(), t.DAOName())
	f.Comment("with SetClient.")
	f.Func().Id(t.DAOConstructor()).Params(jen.Id("c").Qual(ClientPkg, "Client")).Op("*").Id(t.DAOName()).Block(
		jen.Return(jen.Op("&").Id(t.DAOName()).Values(jen.Dict{
			jen.Id("DAO"): h.Runtime("NewDAO").Types(h.POJO(t), h.KeyType(t)).Call(
				jen.Qual(t.Package(), "Table"),
				jen.Id(t.MapperName()),
				jen.Id("c"),
			),
		})),
	)

	observable, _ := flavor.(ObservableFlavor)
	for _, fld := range t.Fields {
		if !h.Comparable(fld) {
			continue
		}
		f.Add(flavor.FetchBy(h, t, fld))
		if observable != nil {
			f.Add(observable.FetchByObservable(h, t, fld))
		}
	}
	for _, fld := range t.UniqueFields() {
		if !h.Comparable(fld) {
			continue
		}
		f.Add(flavor.FetchOneBy(h, t, fld))
	}

	if reason := t.InsertReturningUnsupported(); reason != "" {
		if o, ok := flavor.(InsertReturningOverrider); ok {
			h.Logger().Info(fmt.Sprintf("insertReturningPrimary is not supported for %s because '%s'!", t.TableName(), reason))
			f.Add(o.InsertReturningOverride(h, t, reason))
		}
	}
	return f
}
