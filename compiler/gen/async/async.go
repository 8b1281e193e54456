// Package async provides the completion styles generated DAOs can use.
//
// Each flavor embeds the generic DAO of its runtime package and renders
// the per-column methods in that package's style:
//
//	classic  callbacks:  d.FetchBySomeString(ctx, values, func(res classic.AsyncResult[[]*Something]) {...})
//	future   futures:    d.FetchBySomeString(ctx, values).Get(ctx)
//	rx       reactive:   d.FetchBySomeStringObservable(values).Subscribe(ctx, observer)
//
// Usage:
//
//	import (
//	    "github.com/syssam/asyncdao/compiler/gen"
//	    "github.com/syssam/asyncdao/compiler/gen/async"
//	)
//
//	cfg, err := gen.NewConfig(gen.WithFlavor(async.Classic), ...)
package async

import (
	"fmt"
	"sort"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/asyncdao/compiler/gen"
)

const (
	contextPkg = "context"
	runtimePkg = "github.com/syssam/asyncdao/"
)

// The available flavors.
var (
	Classic gen.Flavor = classicFlavor{}
	Future  gen.Flavor = futureFlavor{}
	Rx      gen.Flavor = rxFlavor{}
)

var flavors = map[string]gen.Flavor{
	Classic.Name(): Classic,
	Future.Name():  Future,
	Rx.Name():      Rx,
}

// ByName returns the flavor with the given name.
func ByName(name string) (gen.Flavor, error) {
	f, ok := flavors[name]
	if !ok {
		return nil, gen.NewConfigError("Flavor", name, fmt.Sprintf("unknown flavor, expected one of %v", Names()))
	}
	return f, nil
}

// Names returns the flavor names in sorted order.
func Names() []string {
	names := make([]string, 0, len(flavors))
	for name := range flavors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// method starts the declaration of a DAO method with its doc comment.
func method(t *gen.Type, name, doc string) *jen.Statement {
	return jen.Comment(doc).Line().
		Func().Params(jen.Id("d").Op("*").Id(t.DAOName())).Id(name)
}

func fetchByName(f *gen.Field) string    { return "FetchBy" + f.StructField }
func fetchOneByName(f *gen.Field) string { return "FetchOneBy" + f.StructField }

func fetchByDoc(f *gen.Field, name string) string {
	return fmt.Sprintf("%s fetches the rows whose %s is one of values.", name, f.Name)
}

func fetchOneByDoc(f *gen.Field, name string) string {
	return fmt.Sprintf("%s fetches the row whose %s equals value.", name, f.Name)
}

func ctxParam() jen.Code {
	return jen.Id("ctx").Qual(contextPkg, "Context")
}

func valuesParam(h *gen.Helper, f *gen.Field) jen.Code {
	return jen.Id("values").Index().Add(h.BaseType(f))
}

func valueParam(h *gen.Helper, f *gen.Field) jen.Code {
	return jen.Id("value").Add(h.BaseType(f))
}
