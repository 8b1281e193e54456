// Package client defines the execution contract every completion style is
// built on: a built query goes in, rows, an affected count or a generated
// key come out.
//
// Implementations acquire one connection per operation and release it when
// the statement finishes, whatever the outcome. See dialect/sql for the
// database/sql implementation and dialect/pgx for pgxpool.
package client

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/asyncdao"
	"github.com/syssam/asyncdao/jsonx"
)

// Client runs built queries against a database.
type Client interface {
	// Dialect returns the dialect name, one of the dialect package constants.
	Dialect() string
	// Query runs a SELECT and returns each row keyed by column name.
	Query(ctx context.Context, q sq.Sqlizer) ([]jsonx.Object, error)
	// Exec runs a statement and returns the number of affected rows.
	Exec(ctx context.Context, q sq.Sqlizer) (int64, error)
	// InsertReturning runs an INSERT and returns the generated key.
	InsertReturning(ctx context.Context, q sq.Sqlizer) (int64, error)
}

// Mapper turns one row into a POJO.
type Mapper[P any] func(row jsonx.Object) (P, error)

// Fetch runs the query and maps every row.
func Fetch[P any](ctx context.Context, c Client, q sq.Sqlizer, mapper Mapper[P]) ([]P, error) {
	rows, err := c.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return MapRows(rows, mapper)
}

// FetchOne runs the query and maps its only row. A query without rows
// yields the zero value of P; more than one row is an error.
func FetchOne[P any](ctx context.Context, c Client, q sq.Sqlizer, mapper Mapper[P]) (P, error) {
	var zero P
	rows, err := c.Query(ctx, q)
	if err != nil {
		return zero, err
	}
	switch len(rows) {
	case 0:
		return zero, nil
	case 1:
		return mapper(rows[0])
	default:
		return zero, asyncdao.NewTooManyRowsError(len(rows))
	}
}

// Execute runs the statement and returns the affected row count.
func Execute(ctx context.Context, c Client, q sq.Sqlizer) (int64, error) {
	return c.Exec(ctx, q)
}

// InsertReturning runs the INSERT and returns the generated key.
func InsertReturning(ctx context.Context, c Client, q sq.Sqlizer) (int64, error) {
	return c.InsertReturning(ctx, q)
}

// MapRows applies the mapper to every row, stopping at the first error.
func MapRows[P any](rows []jsonx.Object, mapper Mapper[P]) ([]P, error) {
	out := make([]P, 0, len(rows))
	for _, row := range rows {
		p, err := mapper(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
