package cli

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/syssam/asyncdao/internal/config"
)

// newInspectCommand returns the inspect command, which writes the schema
// of a live database as YAML. The output can be edited and fed back to
// generate --schema.
func newInspectCommand(fs afero.Fs, root *rootOptions, logger *log.Logger) *cobra.Command {
	f := &sourceFlags{}
	var output string
	cmd := &cobra.Command{
		Use:     "inspect",
		Short:   "Print the schema of a database as YAML",
		Example: `  asyncdao inspect --dsn "postgres://localhost/vertx?sslmode=disable" --dialect postgres -o schema.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			if cfg.DSN == "" {
				return fmt.Errorf("inspect requires --dsn or %sDSN", config.EnvPrefix)
			}
			s, err := introspect(cmd.Context(), cfg, slog.New(logger))
			if err != nil {
				return err
			}
			data, err := s.Marshal()
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := afero.WriteFile(fs, output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			logger.Info("schema written", "file", output, "tables", len(s.Tables))
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}
