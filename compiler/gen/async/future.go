package async

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/asyncdao/compiler/gen"
)

// futureFlavor returns futures.
type futureFlavor struct{}

func (futureFlavor) Name() string       { return "future" }
func (futureFlavor) RuntimePkg() string { return runtimePkg + "future" }

func (futureFlavor) FetchBy(h *gen.Helper, t *gen.Type, f *gen.Field) jen.Code {
	name := fetchByName(f)
	return method(t, name, fetchByDoc(f, name)).
		Params(ctxParam(), valuesParam(h, f)).
		Op("*").Add(h.Runtime("Future").Types(jen.Index().Add(h.POJO(t)))).
		Block(
			jen.Return(jen.Id("d").Dot("FetchBy").Call(jen.Id("ctx"), h.Column(t, f), jen.Id("values"))),
		)
}

func (futureFlavor) FetchOneBy(h *gen.Helper, t *gen.Type, f *gen.Field) jen.Code {
	name := fetchOneByName(f)
	return method(t, name, fetchOneByDoc(f, name)).
		Params(ctxParam(), valueParam(h, f)).
		Op("*").Add(h.Runtime("Future").Types(h.POJO(t))).
		Block(
			jen.Return(jen.Id("d").Dot("FetchOneBy").Call(jen.Id("ctx"), h.Column(t, f), jen.Id("value"))),
		)
}

// InsertReturningOverride returns an already failed future.
func (futureFlavor) InsertReturningOverride(h *gen.Helper, t *gen.Type, reason string) jen.Code {
	key := h.KeyType(t)
	return method(t, "InsertReturningPrimary", "InsertReturningPrimary is not supported by this table: "+reason).
		Params(ctxParam(), jen.Id("obj").Add(h.POJO(t))).
		Op("*").Add(h.Runtime("Future").Types(key)).
		Block(
			jen.Return(h.Runtime("Failed").Types(key).Call(h.Unsupported(t, reason))),
		)
}

var (
	_ gen.Flavor                   = futureFlavor{}
	_ gen.InsertReturningOverrider = futureFlavor{}
)
