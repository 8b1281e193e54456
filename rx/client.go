package rx

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/asyncdao/client"
)

// Client wraps a client.Client with reactive operations. Nothing runs until
// the returned source is subscribed.
type Client struct {
	delegate client.Client
}

// NewClient returns a Client running statements on delegate.
func NewClient(delegate client.Client) *Client {
	return &Client{delegate: delegate}
}

// Delegate returns the wrapped client.
func (c *Client) Delegate() client.Client { return c.delegate }

// Execute emits the affected row count.
func (c *Client) Execute(q sq.Sqlizer) *Single[int64] {
	return FromFunc(func(ctx context.Context) (int64, error) {
		return client.Execute(ctx, c.delegate, q)
	})
}

// InsertReturning emits the generated key.
func (c *Client) InsertReturning(q sq.Sqlizer) *Single[int64] {
	return FromFunc(func(ctx context.Context) (int64, error) {
		return client.InsertReturning(ctx, c.delegate, q)
	})
}

// Fetch emits every mapped row as one list.
func Fetch[P any](c *Client, q sq.Sqlizer, mapper client.Mapper[P]) *Single[[]P] {
	return FromFunc(func(ctx context.Context) ([]P, error) {
		return client.Fetch(ctx, c.delegate, q, mapper)
	})
}

// FetchOne emits the only row, or the zero P when there is none.
func FetchOne[P any](c *Client, q sq.Sqlizer, mapper client.Mapper[P]) *Single[P] {
	return FromFunc(func(ctx context.Context) (P, error) {
		return client.FetchOne(ctx, c.delegate, q, mapper)
	})
}

// FetchObservable emits the mapped rows one by one. The connection is
// released before the first item is emitted.
func FetchObservable[P any](c *Client, q sq.Sqlizer, mapper client.Mapper[P]) *Observable[P] {
	return Create(func(ctx context.Context, emit Emit[P]) error {
		rows, err := c.delegate.Query(ctx, q)
		if err != nil {
			return err
		}
		for _, row := range rows {
			p, err := mapper(row)
			if err != nil {
				return err
			}
			if !emit(p) {
				return nil
			}
		}
		return nil
	})
}
