// Package classic exposes the runtime in callback style: every operation
// returns immediately and later delivers an AsyncResult to a Handler.
package classic

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/asyncdao/client"
)

// AsyncResult is the outcome of an asynchronous operation.
type AsyncResult[T any] struct {
	result T
	cause  error
}

// Succeeded returns a successful result.
func Succeeded[T any](v T) AsyncResult[T] {
	return AsyncResult[T]{result: v}
}

// Failed returns a failed result.
func Failed[T any](err error) AsyncResult[T] {
	return AsyncResult[T]{cause: err}
}

// Result returns the value of a successful operation.
func (r AsyncResult[T]) Result() T { return r.result }

// Cause returns the failure of a failed operation.
func (r AsyncResult[T]) Cause() error { return r.cause }

// Succeeded reports whether the operation succeeded.
func (r AsyncResult[T]) Succeeded() bool { return r.cause == nil }

// Failed reports whether the operation failed.
func (r AsyncResult[T]) Failed() bool { return r.cause != nil }

// Handler receives the outcome of an operation.
type Handler[T any] func(AsyncResult[T])

// Go runs fn on its own goroutine and hands the outcome to h exactly once.
// A panic in fn is delivered as a failure. h may be nil.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error), h Handler[T]) {
	go func() {
		var res AsyncResult[T]
		func() {
			defer func() {
				if r := recover(); r != nil {
					res = Failed[T](fmt.Errorf("classic: panic: %v", r))
				}
			}()
			v, err := fn(ctx)
			if err != nil {
				res = Failed[T](err)
				return
			}
			res = Succeeded(v)
		}()
		if h != nil {
			h(res)
		}
	}()
}

// Client wraps a client.Client with callback style operations.
type Client struct {
	delegate client.Client
}

// NewClient returns a Client running statements on delegate.
func NewClient(delegate client.Client) *Client {
	return &Client{delegate: delegate}
}

// Delegate returns the wrapped client.
func (c *Client) Delegate() client.Client { return c.delegate }

// Execute runs the statement and delivers the affected row count.
func (c *Client) Execute(ctx context.Context, q sq.Sqlizer, h Handler[int64]) {
	Go(ctx, func(ctx context.Context) (int64, error) {
		return client.Execute(ctx, c.delegate, q)
	}, h)
}

// InsertReturning runs the insert and delivers the generated key.
func (c *Client) InsertReturning(ctx context.Context, q sq.Sqlizer, h Handler[int64]) {
	Go(ctx, func(ctx context.Context) (int64, error) {
		return client.InsertReturning(ctx, c.delegate, q)
	}, h)
}

// Fetch runs the query and delivers every mapped row.
func Fetch[P any](ctx context.Context, c *Client, q sq.Sqlizer, mapper client.Mapper[P], h Handler[[]P]) {
	Go(ctx, func(ctx context.Context) ([]P, error) {
		return client.Fetch(ctx, c.delegate, q, mapper)
	}, h)
}

// FetchOne runs the query and delivers its only row, or the zero P when
// there is none. More than one row fails with asyncdao.TooManyRowsError.
func FetchOne[P any](ctx context.Context, c *Client, q sq.Sqlizer, mapper client.Mapper[P], h Handler[P]) {
	Go(ctx, func(ctx context.Context) (P, error) {
		return client.FetchOne(ctx, c.delegate, q, mapper)
	}, h)
}
