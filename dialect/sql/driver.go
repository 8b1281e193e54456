package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/asyncdao"
	"github.com/syssam/asyncdao/client"
	"github.com/syssam/asyncdao/dialect"
	"github.com/syssam/asyncdao/jsonx"
)

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores, dots for schema.name)
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// isValidIdentifier checks if the string is a valid SQL identifier.
func isValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// escapeStringValue escapes a string value for safe use in SQL.
// It escapes both single quotes (by doubling) and backslashes (for MySQL compatibility).
func escapeStringValue(s string) string {
	if !strings.ContainsAny(s, `'\`) {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", "''")
	return s
}

// Driver is a client.Client over a database/sql pool. Every operation
// takes its own connection from the pool and returns it when the
// statement is done.
type Driver struct {
	db        *sql.DB
	dialect   string
	logger    *slog.Logger
	translate func(error) error
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger used for debug statement logging.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

// WithErrorTranslator replaces TranslateError as the driver error mapper.
func WithErrorTranslator(fn func(error) error) Option {
	return func(d *Driver) {
		d.translate = fn
	}
}

// Open wraps the database/sql.Open method and returns a Driver for the given driver name.
func Open(driverName, source string, opts ...Option) (*Driver, error) {
	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, err
	}
	return OpenDB(driverName, db, opts...), nil
}

// OpenDB wraps the given database/sql.DB with a Driver.
func OpenDB(name string, db *sql.DB, opts ...Option) *Driver {
	d := &Driver{
		db:        db,
		dialect:   dialect.Normalize(name),
		logger:    slog.Default(),
		translate: TranslateError,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DB returns the underlying *sql.DB instance.
func (d *Driver) DB() *sql.DB {
	return d.db
}

// Dialect implements client.Client.
func (d *Driver) Dialect() string {
	return d.dialect
}

// Close closes the underlying pool.
func (d *Driver) Close() error { return d.db.Close() }

// Query implements client.Client.
func (d *Driver) Query(ctx context.Context, q sq.Sqlizer) (_ []jsonx.Object, rerr error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: query: build: %w", err)
	}
	client.LogQuery(ctx, d.logger, "query", q)
	conn, release, err := d.acquire(ctx)
	if err != nil {
		return nil, asyncdao.NewQueryError("", "query", err)
	}
	defer func() { rerr = asyncdao.NewAggregateError(rerr, release()) }()
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, asyncdao.NewQueryError("", "query", d.translate(err))
	}
	defer rows.Close()
	return ScanRows(rows)
}

// Exec implements client.Client.
func (d *Driver) Exec(ctx context.Context, q sq.Sqlizer) (_ int64, rerr error) {
	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("dialect/sql: exec: build: %w", err)
	}
	client.LogQuery(ctx, d.logger, "execute", q)
	conn, release, err := d.acquire(ctx)
	if err != nil {
		return 0, asyncdao.NewQueryError("", "execute", err)
	}
	defer func() { rerr = asyncdao.NewAggregateError(rerr, release()) }()
	res, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, asyncdao.NewQueryError("", "execute", d.translate(err))
	}
	return res.RowsAffected()
}

// InsertReturning implements client.Client. MySQL and SQLite report the
// key through LastInsertId; Postgres statements must carry a RETURNING
// clause whose first column is scanned.
func (d *Driver) InsertReturning(ctx context.Context, q sq.Sqlizer) (_ int64, rerr error) {
	strategy := dialect.InsertReturning(d.dialect)
	if strategy == dialect.KeyUnsupported {
		return 0, asyncdao.NewUnsupportedError("insertReturning", "", asyncdao.ReasonDialect)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("dialect/sql: insert returning: build: %w", err)
	}
	client.LogQuery(ctx, d.logger, "insertReturning", q)
	conn, release, err := d.acquire(ctx)
	if err != nil {
		return 0, asyncdao.NewQueryError("", "insertReturning", err)
	}
	defer func() { rerr = asyncdao.NewAggregateError(rerr, release()) }()
	var id int64
	switch strategy {
	case dialect.KeyReturning:
		err = conn.QueryRowContext(ctx, query, args...).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, asyncdao.NewUnsupportedError("insertReturning", "", asyncdao.ReasonNoGeneratedKey)
		}
	default:
		var res sql.Result
		if res, err = conn.ExecContext(ctx, query, args...); err == nil {
			id, err = res.LastInsertId()
		}
	}
	if err != nil {
		return 0, asyncdao.NewQueryError("", "insertReturning", d.translate(err))
	}
	return id, nil
}

// ctxVarsKey is the key used for attaching and reading the context variables.
type ctxVarsKey struct{}

// sessionVars holds session variables to set on a connection before its statement runs.
type sessionVars struct {
	vars []struct{ k, v string }
}

// WithVar returns a new context that holds the session variable to be set
// on every connection acquired with it.
func WithVar(ctx context.Context, name, value string) context.Context {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	sv.vars = append(sv.vars, struct {
		k, v string
	}{
		k: name,
		v: value,
	})
	return context.WithValue(ctx, ctxVarsKey{}, sv)
}

// VarFromContext returns the session variable value from the context.
func VarFromContext(ctx context.Context, name string) (string, bool) {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	for _, s := range sv.vars {
		if s.k == name {
			return s.v, true
		}
	}
	return "", false
}

// WithIntVar calls WithVar with the string representation of the value.
func WithIntVar(ctx context.Context, name string, value int) context.Context {
	return WithVar(ctx, name, strconv.Itoa(value))
}

// acquire takes a connection from the pool and applies the session
// variables found in ctx. The returned release func resets those variables
// and hands the connection back; it must be called exactly once.
func (d *Driver) acquire(ctx context.Context) (*sql.Conn, func() error, error) {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return nil, nil, err
	}
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	if len(sv.vars) == 0 {
		return conn, conn.Close, nil
	}
	var (
		reset []string
		seen  = make(map[string]struct{}, len(sv.vars))
	)
	// The cleanup gets its own context so it still runs when ctx was cancelled.
	release := func() error {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, q := range reset {
			if _, err := conn.ExecContext(cleanupCtx, q); err != nil {
				return errors.Join(err, conn.Close())
			}
		}
		return conn.Close()
	}
	for _, s := range sv.vars {
		if !isValidIdentifier(s.k) {
			return nil, nil, asyncdao.NewAggregateError(fmt.Errorf("invalid session variable name: %q", s.k), release())
		}
		if _, err := conn.ExecContext(ctx, fmt.Sprintf("SET %s = '%s'", s.k, escapeStringValue(s.v))); err != nil {
			// Variables applied so far are reset before the conn goes back to the pool.
			return nil, nil, asyncdao.NewAggregateError(err, release())
		}
		if _, ok := seen[s.k]; ok {
			continue
		}
		seen[s.k] = struct{}{}
		switch d.dialect {
		case dialect.Postgres:
			reset = append(reset, fmt.Sprintf("RESET %s", s.k))
		case dialect.MySQL:
			reset = append(reset, fmt.Sprintf("SET %s = NULL", s.k))
		}
	}
	return conn, release, nil
}

var _ client.Client = (*Driver)(nil)
