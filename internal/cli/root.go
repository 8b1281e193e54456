// Package cli implements the asyncdao command.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	// Drivers opened by --dsn.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/asyncdao/compiler/load"
	"github.com/syssam/asyncdao/internal/config"
)

// rootOptions holds the persistent flags.
type rootOptions struct {
	configFile string
	envFile    string
	verbose    bool
}

// NewRootCommand returns the root command with all subcommands attached.
// Generated files are written to fs.
func NewRootCommand(fs afero.Fs, logger *log.Logger) *cobra.Command {
	cobra.EnableCommandSorting = false
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "asyncdao",
		Short: "Generate asynchronous DAOs from SQL schemas.",
		Long: `asyncdao reads table metadata from a YAML schema or a live database and
generates a Go package with one POJO and one DAO per table. DAOs complete
through callbacks, futures or reactive singles depending on the flavor.`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if opts.verbose {
				logger.SetLevel(log.DebugLevel)
			}
			slog.SetDefault(slog.New(logger))
		},
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default "+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", config.EnvFile, "dotenv file loaded before reading ASYNCDAO_* variables")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newGenerateCommand(fs, opts, logger))
	rootCmd.AddCommand(newInspectCommand(fs, opts, logger))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// loadConfig merges the config file, the dotenv file and the environment.
// Flags are applied by the caller.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	if err := config.LoadEnv(opts.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// introspect reads the schema of the database cfg points at.
func introspect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*load.Schema, error) {
	driver, err := cfg.DriverName()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	opts := []load.IntrospectOption{load.WithIntrospectLogger(logger)}
	if len(cfg.Tables) > 0 {
		opts = append(opts, load.WithTables(cfg.Tables...))
	}
	for col, kind := range cfg.Converters {
		opts = append(opts, load.WithConverter(col, kind))
	}
	logger.Debug("introspecting database", "dialect", cfg.Dialect, "schema", cfg.DBSchema)
	return load.Introspect(ctx, db, cfg.Dialect, cfg.DBSchema, opts...)
}

// sourceFlags are the flags shared by generate and inspect.
type sourceFlags struct {
	dsn        string
	dialect    string
	dbSchema   string
	tables     []string
	converters map[string]string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dsn, "dsn", "", "database to introspect")
	cmd.Flags().StringVar(&f.dialect, "dialect", "", "dialect of --dsn: mysql, postgres or sqlite")
	cmd.Flags().StringVar(&f.dbSchema, "db-schema", "", "MySQL database or Postgres schema to introspect")
	cmd.Flags().StringSliceVar(&f.tables, "tables", nil, "tables to introspect (default all)")
	cmd.Flags().StringToStringVar(&f.converters, "converter", nil, "table.column=json_object|json_array")
}

func (f *sourceFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("dsn") {
		cfg.DSN = f.dsn
	}
	if changed("dialect") {
		cfg.Dialect = f.dialect
	}
	if changed("db-schema") {
		cfg.DBSchema = f.dbSchema
	}
	if changed("tables") {
		cfg.Tables = f.tables
	}
	if changed("converter") {
		if cfg.Converters == nil {
			cfg.Converters = make(map[string]string, len(f.converters))
		}
		for k, v := range f.converters {
			cfg.Converters[k] = v
		}
	}
}
