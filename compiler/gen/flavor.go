package gen

import "github.com/dave/jennifer/jen"

// Flavor renders the completion style specific parts of generated DAOs.
// The generator emits the struct, its constructor and the table wiring;
// the flavor contributes the embedded runtime DAO and the per-column
// methods.
type Flavor interface {
	// Name returns the flavor name (e.g., "classic", "future", "rx").
	Name() string
	// RuntimePkg returns the import path of the package holding the
	// generic DAO the generated DAOs embed.
	RuntimePkg() string
	// FetchBy renders FetchBy<Column>, fetching the rows whose column is
	// one of the given values.
	FetchBy(h *Helper, t *Type, f *Field) jen.Code
	// FetchOneBy renders FetchOneBy<Column> for single column unique keys.
	FetchOneBy(h *Helper, t *Type, f *Field) jen.Code
}

// InsertReturningOverrider is implemented by flavors that replace
// InsertReturningPrimary on tables whose key cannot return a generated
// value. The override fails right away with the given reason.
type InsertReturningOverrider interface {
	InsertReturningOverride(h *Helper, t *Type, reason string) jen.Code
}

// ObservableFlavor is implemented by flavors that stream rows. They get
// FetchBy<Column>Observable alongside FetchBy<Column>.
type ObservableFlavor interface {
	FetchByObservable(h *Helper, t *Type, f *Field) jen.Code
}
