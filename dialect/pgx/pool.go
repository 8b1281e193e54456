// Package pgx implements client.Client on a pgx connection pool.
package pgx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/syssam/asyncdao"
	"github.com/syssam/asyncdao/client"
	"github.com/syssam/asyncdao/dialect"
	dsql "github.com/syssam/asyncdao/dialect/sql"
	"github.com/syssam/asyncdao/jsonx"
)

// Conn is the subset of *pgxpool.Conn the client uses.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Acquirer hands out pooled connections. *pgxpool.Pool satisfies it
// through PoolAcquirer.
type Acquirer interface {
	Acquire(ctx context.Context) (Conn, func(), error)
}

// PoolAcquirer adapts a *pgxpool.Pool to Acquirer.
type PoolAcquirer struct {
	Pool *pgxpool.Pool
}

// Acquire takes a connection and returns its release func.
func (a PoolAcquirer) Acquire(ctx context.Context) (Conn, func(), error) {
	conn, err := a.Pool.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}
	return conn, conn.Release, nil
}

// Client runs statements on connections acquired from a pgx pool, one
// connection per statement. Queries use $n placeholders.
type Client struct {
	pool   Acquirer
	closer func()
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug statement logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// Open parses the DSN, creates the pool and verifies it with a ping.
func Open(ctx context.Context, dsn string, opts ...Option) (*Client, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("dialect/pgx: parse config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("dialect/pgx: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("dialect/pgx: ping: %w", err)
	}
	return NewPool(pool, opts...), nil
}

// NewPool wraps an existing pool.
func NewPool(pool *pgxpool.Pool, opts ...Option) *Client {
	c := New(PoolAcquirer{Pool: pool}, opts...)
	c.closer = pool.Close
	return c
}

// New returns a Client over any Acquirer.
func New(a Acquirer, opts ...Option) *Client {
	c := &Client{pool: a, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close closes the pool when the client owns one.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// Dialect implements client.Client.
func (c *Client) Dialect() string { return dialect.Postgres }

func (c *Client) prepare(ctx context.Context, op string, q sq.Sqlizer) (string, []any, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("dialect/pgx: %s: build: %w", op, err)
	}
	client.LogQuery(ctx, c.logger, op, q)
	return query, args, nil
}

// Query implements client.Client.
func (c *Client) Query(ctx context.Context, q sq.Sqlizer) ([]jsonx.Object, error) {
	query, args, err := c.prepare(ctx, "query", q)
	if err != nil {
		return nil, err
	}
	conn, release, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, asyncdao.NewQueryError("", "query", err)
	}
	defer release()
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, asyncdao.NewQueryError("", "query", dsql.TranslateError(err))
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, asyncdao.NewQueryError("", "query", dsql.TranslateError(err))
	}
	out := make([]jsonx.Object, len(maps))
	for i, m := range maps {
		out[i] = jsonx.Object(m)
	}
	return out, nil
}

// Exec implements client.Client.
func (c *Client) Exec(ctx context.Context, q sq.Sqlizer) (int64, error) {
	query, args, err := c.prepare(ctx, "execute", q)
	if err != nil {
		return 0, err
	}
	conn, release, err := c.pool.Acquire(ctx)
	if err != nil {
		return 0, asyncdao.NewQueryError("", "execute", err)
	}
	defer release()
	tag, err := conn.Exec(ctx, query, args...)
	if err != nil {
		return 0, asyncdao.NewQueryError("", "execute", dsql.TranslateError(err))
	}
	return tag.RowsAffected(), nil
}

// InsertReturning implements client.Client. The statement must carry a
// RETURNING clause; its first column is the key.
func (c *Client) InsertReturning(ctx context.Context, q sq.Sqlizer) (int64, error) {
	query, args, err := c.prepare(ctx, "insertReturning", q)
	if err != nil {
		return 0, err
	}
	conn, release, err := c.pool.Acquire(ctx)
	if err != nil {
		return 0, asyncdao.NewQueryError("", "insertReturning", err)
	}
	defer release()
	var id int64
	if err := conn.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, asyncdao.NewUnsupportedError("insertReturning", "", asyncdao.ReasonNoGeneratedKey)
		}
		return 0, asyncdao.NewQueryError("", "insertReturning", dsql.TranslateError(err))
	}
	return id, nil
}

var _ client.Client = (*Client)(nil)
