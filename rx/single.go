package rx

import (
	"context"
	"fmt"
)

// Single is a cold source of exactly one value or an error. The function
// runs once per subscription.
type Single[T any] struct {
	fn func(ctx context.Context) (T, error)
}

// FromFunc returns a Single evaluating fn on subscription.
func FromFunc[T any](fn func(ctx context.Context) (T, error)) *Single[T] {
	return &Single[T]{fn: fn}
}

// Just returns a Single of v.
func Just[T any](v T) *Single[T] {
	return FromFunc(func(context.Context) (T, error) { return v, nil })
}

// Error returns a Single failing with err.
func Error[T any](err error) *Single[T] {
	return FromFunc(func(context.Context) (T, error) {
		var zero T
		return zero, err
	})
}

func (s *Single[T]) call(ctx context.Context) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rx: panic: %v", r)
		}
	}()
	return s.fn(ctx)
}

// Subscribe evaluates the Single on its own goroutine. onSuccess or onError
// runs once unless the subscription was cancelled first.
func (s *Single[T]) Subscribe(ctx context.Context, onSuccess func(T), onError func(error)) Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &subscription{cancel: cancel, subscribed: true}
	go func() {
		defer sub.finish()
		v, err := s.call(ctx)
		if !sub.IsSubscribed() {
			return
		}
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(v)
		}
	}()
	return sub
}

// Get subscribes and blocks for the outcome.
func (s *Single[T]) Get(ctx context.Context) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	sub := s.Subscribe(ctx,
		func(v T) { ch <- result{v: v} },
		func(err error) { ch <- result{err: err} },
	)
	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		sub.Unsubscribe()
		var zero T
		return zero, ctx.Err()
	}
}

// Map returns a Single of fn applied to the value.
func Map[T, U any](s *Single[T], fn func(T) (U, error)) *Single[U] {
	return FromFunc(func(ctx context.Context) (U, error) {
		v, err := s.call(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(v)
	})
}

// FlattenObservable turns a Single of a slice into an Observable of its items.
func FlattenObservable[T any](s *Single[[]T]) *Observable[T] {
	return Create(func(ctx context.Context, emit Emit[T]) error {
		items, err := s.call(ctx)
		if err != nil {
			return err
		}
		for _, it := range items {
			if !emit(it) {
				return nil
			}
		}
		return nil
	})
}
