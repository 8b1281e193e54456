package client

import (
	"context"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
)

// LogQuery writes the statement with its arguments inlined at debug level.
// Rendering is skipped unless the logger has debug enabled.
func LogQuery(ctx context.Context, logger *slog.Logger, op string, q sq.Sqlizer) {
	if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	logger.DebugContext(ctx, op, slog.String("sql", sq.DebugSqlizer(q)))
}
