package gen

import (
	"context"
	"fmt"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
)

// JenniferGenerator renders the graph with jennifer. Files of different
// tables are rendered in parallel.
type JenniferGenerator struct {
	graph   *Graph
	helper  *Helper
	writer  *Writer
	workers int
}

// NewJenniferGenerator creates a generator for g writing into the
// configured target directory and filesystem.
func NewJenniferGenerator(g *Graph) *JenniferGenerator {
	workers := g.Workers
	if workers <= 0 {
		workers = 1
	}
	return &JenniferGenerator{
		graph:   g,
		helper:  NewHelper(g),
		writer:  NewWriter(g.Fs, g.Target),
		workers: workers,
	}
}

// WithWorkers sets the number of parallel workers.
func (g *JenniferGenerator) WithWorkers(n int) *JenniferGenerator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Helper returns the helper passed to the flavor.
func (g *JenniferGenerator) Helper() *Helper { return g.helper }

// Metrics returns what the generator wrote so far.
func (g *JenniferGenerator) Metrics() WriterMetrics { return g.writer.Metrics() }

// Generate writes, for every table, the table package and the POJO, plus
// the DAO of tables with a primary key. Graph level files of enabled
// features follow, and the output of disabled ones is removed.
func (g *JenniferGenerator) Generate(ctx context.Context) error {
	if err := g.graph.Config.Validate(); err != nil {
		return err
	}
	if err := g.graph.Fs.MkdirAll(g.graph.Target, 0o755); err != nil {
		return NewGenerationError("write", g.graph.Target, "create target directory", err)
	}

	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(g.workers)
	submit := func(render func() *jen.File, subdir, filename string) {
		errg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return g.writer.Write(render(), subdir, filename)
		})
	}

	for _, t := range g.graph.Nodes {
		submit(func() *jen.File { return g.genPackage(t) }, t.PackageDir(), t.PackageDir()+".go")
		submit(func() *jen.File { return g.genPOJO(t) }, "", t.FileName())
		if !t.HasPrimaryKey() {
			g.helper.Logger().Info(fmt.Sprintf("skipping DAO for %s: table has no primary key", t.TableName()))
			continue
		}
		submit(func() *jen.File { return g.genDAO(t) }, "", t.PackageDir()+"_dao.go")
	}
	if g.graph.FeatureEnabled(FeatureProviders.Name) {
		submit(g.genProviders, "", "providers.go")
	}
	if g.graph.FeatureEnabled(FeatureTableRegistry.Name) {
		submit(g.genTables, "", "tables.go")
	}
	if err := errg.Wait(); err != nil {
		return err
	}
	return g.graph.cleanupFeatures()
}

// newFile creates a file of the generated package with the header comment.
func (g *JenniferGenerator) newFile() *jen.File {
	return g.newFilePath(g.graph.Package, g.graph.PackageName())
}

func (g *JenniferGenerator) newFilePath(path, name string) *jen.File {
	f := jen.NewFilePathName(path, name)
	if g.graph.Header != "" {
		f.HeaderComment(g.graph.Header)
	}
	return f
}

// genProviders renders a wire provider set of every DAO constructor.
func (g *JenniferGenerator) genProviders() *jen.File {
	f := g.newFile()
	f.Comment("ProviderSet provides the DAOs of all tables with a primary key.")
	f.Var().Id("ProviderSet").Op("=").Qual(WirePkg, "NewSet").CallFunc(func(grp *jen.Group) {
		for _, t := range g.graph.Nodes {
			if t.HasPrimaryKey() {
				grp.Line().Id(t.DAOConstructor())
			}
		}
		grp.Line()
	})
	return f
}

// genTables renders the registry of table descriptions.
func (g *JenniferGenerator) genTables() *jen.File {
	f := g.newFile()
	f.Comment("Tables lists the descriptions of all tables of the package.")
	f.Var().Id("Tables").Op("=").Index().Op("*").Qual(DAOPkg, "Table").ValuesFunc(func(grp *jen.Group) {
		for _, t := range g.graph.Nodes {
			grp.Line().Qual(t.Package(), "Table")
		}
		grp.Line()
	})
	return f
}

// Generate is the default entry point: it renders g with a
// JenniferGenerator.
func Generate(ctx context.Context, g *Graph) error {
	if g == nil || g.Config == nil {
		return NewConfigError("Config", nil, "missing config")
	}
	return NewJenniferGenerator(g).Generate(ctx)
}
