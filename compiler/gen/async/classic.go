package async

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/asyncdao/compiler/gen"
)

// classicFlavor delivers results to handlers.
type classicFlavor struct{}

func (classicFlavor) Name() string       { return "classic" }
func (classicFlavor) RuntimePkg() string { return runtimePkg + "classic" }

func (c classicFlavor) handler(h *gen.Helper, result jen.Code) jen.Code {
	return jen.Id("h").Add(h.Runtime("Handler").Types(result))
}

func (c classicFlavor) FetchBy(h *gen.Helper, t *gen.Type, f *gen.Field) jen.Code {
	name := fetchByName(f)
	return method(t, name, fetchByDoc(f, name)).
		Params(ctxParam(), valuesParam(h, f), c.handler(h, jen.Index().Add(h.POJO(t)))).
		Block(
			jen.Id("d").Dot("FetchBy").Call(jen.Id("ctx"), h.Column(t, f), jen.Id("values"), jen.Id("h")),
		)
}

func (c classicFlavor) FetchOneBy(h *gen.Helper, t *gen.Type, f *gen.Field) jen.Code {
	name := fetchOneByName(f)
	return method(t, name, fetchOneByDoc(f, name)).
		Params(ctxParam(), valueParam(h, f), c.handler(h, h.POJO(t))).
		Block(
			jen.Id("d").Dot("FetchOneBy").Call(jen.Id("ctx"), h.Column(t, f), jen.Id("value"), jen.Id("h")),
		)
}

// InsertReturningOverride fails the handler right away.
func (c classicFlavor) InsertReturningOverride(h *gen.Helper, t *gen.Type, reason string) jen.Code {
	key := h.KeyType(t)
	return method(t, "InsertReturningPrimary", "InsertReturningPrimary is not supported by this table: "+reason).
		Params(ctxParam(), jen.Id("obj").Add(h.POJO(t)), c.handler(h, key)).
		Block(
			jen.If(jen.Id("h").Op("!=").Nil()).Block(
				jen.Id("h").Call(h.Runtime("Failed").Types(key).Call(h.Unsupported(t, reason))),
			),
		)
}

var (
	_ gen.Flavor                   = classicFlavor{}
	_ gen.InsertReturningOverrider = classicFlavor{}
)
