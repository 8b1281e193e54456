package future

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/asyncdao/client"
)

// Client wraps a client.Client with future style operations.
type Client struct {
	delegate client.Client
}

// NewClient returns a Client running statements on delegate.
func NewClient(delegate client.Client) *Client {
	return &Client{delegate: delegate}
}

// Delegate returns the wrapped client.
func (c *Client) Delegate() client.Client { return c.delegate }

// Execute runs the statement; the future holds the affected row count.
func (c *Client) Execute(ctx context.Context, q sq.Sqlizer) *Future[int64] {
	return Go(ctx, func(ctx context.Context) (int64, error) {
		return client.Execute(ctx, c.delegate, q)
	})
}

// InsertReturning runs the insert; the future holds the generated key.
func (c *Client) InsertReturning(ctx context.Context, q sq.Sqlizer) *Future[int64] {
	return Go(ctx, func(ctx context.Context) (int64, error) {
		return client.InsertReturning(ctx, c.delegate, q)
	})
}

// Fetch runs the query; the future holds every mapped row.
func Fetch[P any](ctx context.Context, c *Client, q sq.Sqlizer, mapper client.Mapper[P]) *Future[[]P] {
	return Go(ctx, func(ctx context.Context) ([]P, error) {
		return client.Fetch(ctx, c.delegate, q, mapper)
	})
}

// FetchOne runs the query; the future holds its only row or the zero P.
func FetchOne[P any](ctx context.Context, c *Client, q sq.Sqlizer, mapper client.Mapper[P]) *Future[P] {
	return Go(ctx, func(ctx context.Context) (P, error) {
		return client.FetchOne(ctx, c.delegate, q, mapper)
	})
}
