// Package future exposes the runtime in future style: every operation
// returns a Future that completes once the statement finished.
package future

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Future is the pending result of an asynchronous operation. It completes
// exactly once.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error

	mu        sync.Mutex
	callbacks []func(T, error)
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.value, f.err = v, err
		close(f.done)
		f.mu.Lock()
		cbs := f.callbacks
		f.callbacks = nil
		f.mu.Unlock()
		for _, cb := range cbs {
			run(cb, v, err)
		}
	})
}

// run calls cb, recovering a panic so the remaining callbacks still run.
func run[T any](cb func(T, error), v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("future: callback panicked", "panic", r)
		}
	}()
	cb(v, err)
}

func panicError(r any) error {
	return fmt.Errorf("future: panic: %v", r)
}

// Go runs fn on its own goroutine and returns a Future of its outcome.
// A panic in fn fails the future.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.complete(zero, panicError(r))
			}
		}()
		v, err := fn(ctx)
		f.complete(v, err)
	}()
	return f
}

// Completed returns a future that already succeeded with v.
func Completed[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.complete(v, nil)
	return f
}

// Failed returns a future that already failed with err.
func Failed[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.complete(zero, err)
	return f
}

// Done is closed when the future completed.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Get waits for the outcome. It returns ctx.Err() if ctx ends first; the
// operation itself keeps running.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the outcome without waiting. ok is false while the
// future is pending.
func (f *Future[T]) Result() (v T, err error, ok bool) {
	select {
	case <-f.done:
		return f.value, f.err, true
	default:
		return v, nil, false
	}
}

// OnComplete registers cb to run with the outcome. It runs right away when
// the future already completed.
func (f *Future[T]) OnComplete(cb func(T, error)) {
	f.mu.Lock()
	select {
	case <-f.done:
		f.mu.Unlock()
		run(cb, f.value, f.err)
		return
	default:
	}
	f.callbacks = append(f.callbacks, cb)
	f.mu.Unlock()
}

// Then returns a future of fn applied to f's value. Failures skip fn.
// A panic in fn fails the returned future.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out := newFuture[U]()
	f.OnComplete(func(v T, err error) {
		var zero U
		if err != nil {
			out.complete(zero, err)
			return
		}
		defer func() {
			if r := recover(); r != nil {
				out.complete(zero, panicError(r))
			}
		}()
		out.complete(fn(v))
	})
	return out
}

// All completes with every value in order once all futures succeeded, or
// with the first failure.
func All[T any](fs ...*Future[T]) *Future[[]T] {
	out := newFuture[[]T]()
	if len(fs) == 0 {
		out.complete([]T{}, nil)
		return out
	}
	var (
		mu      sync.Mutex
		values  = make([]T, len(fs))
		pending = len(fs)
	)
	for i, f := range fs {
		f.OnComplete(func(v T, err error) {
			if err != nil {
				out.complete(nil, err)
				return
			}
			mu.Lock()
			values[i] = v
			pending--
			last := pending == 0
			mu.Unlock()
			if last {
				out.complete(values, nil)
			}
		})
	}
	return out
}
