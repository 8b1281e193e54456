package async

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/asyncdao/compiler/gen"
)

// rxFlavor returns singles and observables. It keeps the runtime
// InsertReturningPrimary, whose Single fails on subscription for keys
// that cannot be generated.
type rxFlavor struct{}

func (rxFlavor) Name() string       { return "rx" }
func (rxFlavor) RuntimePkg() string { return runtimePkg + "rx" }

func (rxFlavor) FetchBy(h *gen.Helper, t *gen.Type, f *gen.Field) jen.Code {
	name := fetchByName(f)
	return method(t, name, fetchByDoc(f, name)).
		Params(valuesParam(h, f)).
		Op("*").Add(h.Runtime("Single").Types(jen.Index().Add(h.POJO(t)))).
		Block(
			jen.Return(jen.Id("d").Dot("FetchBy").Call(h.Column(t, f), jen.Id("values"))),
		)
}

func (rxFlavor) FetchByObservable(h *gen.Helper, t *gen.Type, f *gen.Field) jen.Code {
	name := fetchByName(f) + "Observable"
	return method(t, name, name+" emits the rows whose "+f.Name+" is one of values.").
		Params(valuesParam(h, f)).
		Op("*").Add(h.Runtime("Observable").Types(h.POJO(t))).
		Block(
			jen.Return(jen.Id("d").Dot("FetchByObservable").Call(h.Column(t, f), jen.Id("values"))),
		)
}

func (rxFlavor) FetchOneBy(h *gen.Helper, t *gen.Type, f *gen.Field) jen.Code {
	name := fetchOneByName(f)
	return method(t, name, fetchOneByDoc(f, name)).
		Params(valueParam(h, f)).
		Op("*").Add(h.Runtime("Single").Types(h.POJO(t))).
		Block(
			jen.Return(jen.Id("d").Dot("FetchOneBy").Call(h.Column(t, f), jen.Id("value"))),
		)
}

var (
	_ gen.Flavor           = rxFlavor{}
	_ gen.ObservableFlavor = rxFlavor{}
)
