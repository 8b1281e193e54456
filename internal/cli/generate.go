package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/syssam/asyncdao/compiler"
	"github.com/syssam/asyncdao/compiler/gen"
	"github.com/syssam/asyncdao/compiler/gen/async"
	"github.com/syssam/asyncdao/internal/config"
)

type generateFlags struct {
	sourceFlags
	schema   string
	pkg      string
	target   string
	flavor   string
	noJSON   bool
	features []string
	workers  int
	watch    bool
}

// newGenerateCommand returns the generate command.
func newGenerateCommand(fs afero.Fs, root *rootOptions, logger *log.Logger) *cobra.Command {
	f := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate POJOs and DAOs",
		Example: `  asyncdao generate --schema schema.yaml --package github.com/acme/app/vertx --flavor future
  asyncdao generate --dsn "root@tcp(localhost)/vertx" --dialect mysql --package github.com/acme/app/vertx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if f.watch && cfg.Schema == "" {
				return errors.New("--watch requires a schema file")
			}
			sl := slog.New(logger)
			opts, err := genOptions(cfg, fs, sl)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			switch {
			case f.watch:
				logger.Info("watching schema", "schema", cfg.Schema)
				return compiler.Watch(ctx, cfg.Schema, opts...)
			case cfg.Schema != "":
				err = compiler.GenerateFile(ctx, cfg.Schema, opts...)
			default:
				s, ierr := introspect(ctx, cfg, sl)
				if ierr != nil {
					return ierr
				}
				err = compiler.Generate(ctx, s, opts...)
			}
			if err != nil {
				return err
			}
			logger.Info("generated", "package", cfg.Package, "target", targetDir(cfg), "flavor", cfg.FlavorName())
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&f.schema, "schema", "s", "", "YAML schema file")
	cmd.Flags().StringVarP(&f.pkg, "package", "p", "", "import path of the generated package")
	cmd.Flags().StringVarP(&f.target, "target", "t", "", "output directory (default last element of --package)")
	cmd.Flags().StringVarP(&f.flavor, "flavor", "f", "", fmt.Sprintf("completion style, one of %v (default classic)", async.Names()))
	cmd.Flags().BoolVar(&f.noJSON, "no-json", false, "skip FromJSON and ToJSON on POJOs")
	cmd.Flags().StringSliceVar(&f.features, "feature", nil, "enable a generator feature (providers, tables)")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "files rendered in parallel (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "regenerate whenever the schema file changes")
	return cmd
}

func (f *generateFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	f.sourceFlags.apply(cmd, cfg)
	changed := cmd.Flags().Changed
	if changed("schema") {
		cfg.Schema = f.schema
	}
	if changed("package") {
		cfg.Package = f.pkg
	}
	if changed("target") {
		cfg.Target = f.target
	}
	if changed("flavor") {
		cfg.Flavor = f.flavor
	}
	if changed("no-json") {
		enabled := !f.noJSON
		cfg.JSON = &enabled
	}
	if changed("feature") {
		cfg.Features = f.features
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
}

// genOptions translates cfg into generator options.
func genOptions(cfg *config.Config, fs afero.Fs, logger *slog.Logger) ([]gen.Option, error) {
	flavor, err := async.ByName(cfg.FlavorName())
	if err != nil {
		return nil, err
	}
	opts := []gen.Option{
		gen.WithPackage(cfg.Package),
		gen.WithTarget(targetDir(cfg)),
		gen.WithFlavor(flavor),
		gen.WithJSON(cfg.JSONEnabled()),
		gen.WithFs(fs),
		gen.WithLogger(logger),
	}
	if cfg.Workers > 0 {
		opts = append(opts, gen.WithWorkers(cfg.Workers))
	}
	features := make([]gen.Feature, 0, len(cfg.Features))
	for _, name := range cfg.Features {
		ft, ok := gen.FeatureByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown feature %q", name)
		}
		features = append(features, ft)
	}
	if len(features) > 0 {
		opts = append(opts, gen.WithFeatures(features...))
	}
	return opts, nil
}

func targetDir(cfg *config.Config) string {
	if cfg.Target != "" {
		return cfg.Target
	}
	return path.Base(cfg.Package)
}
