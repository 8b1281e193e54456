// Package rx exposes the runtime as reactive streams. Queries returning a
// single value are Singles; row streams are cold Observables that run their
// query once per subscription.
package rx

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Observer receives the events of an Observable: any number of OnNext
// calls followed by at most one OnError or OnComplete.
type Observer[T any] interface {
	OnNext(value T)
	OnError(err error)
	OnComplete()
}

// ObserverFunc adapts plain functions to Observer. Nil functions are skipped.
type ObserverFunc[T any] struct {
	NextFunc     func(T)
	ErrorFunc    func(error)
	CompleteFunc func()
}

// OnNext implements Observer.
func (o ObserverFunc[T]) OnNext(value T) {
	if o.NextFunc != nil {
		o.NextFunc(value)
	}
}

// OnError implements Observer.
func (o ObserverFunc[T]) OnError(err error) {
	if o.ErrorFunc != nil {
		o.ErrorFunc(err)
	}
}

// OnComplete implements Observer.
func (o ObserverFunc[T]) OnComplete() {
	if o.CompleteFunc != nil {
		o.CompleteFunc()
	}
}

// Subscription represents an active subscription.
type Subscription interface {
	// Unsubscribe stops delivery. No terminal event follows.
	Unsubscribe()
	// IsSubscribed reports whether events may still be delivered.
	IsSubscribed() bool
}

type subscription struct {
	cancel     context.CancelFunc
	subscribed bool
	mu         sync.RWMutex
}

func (s *subscription) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscribed {
		s.cancel()
		s.subscribed = false
	}
}

func (s *subscription) IsSubscribed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subscribed
}

// finish marks the subscription terminated and releases its context.
func (s *subscription) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribed = false
	s.cancel()
}

// Emit pushes one item downstream. It returns false once the subscriber
// went away; producers should stop then.
type Emit[T any] func(T) bool

// Observable is a cold stream: every subscription runs the producer anew.
type Observable[T any] struct {
	produce func(ctx context.Context, emit Emit[T]) error
}

// Create returns an Observable whose producer emits items and returns nil
// to complete or an error to fail.
func Create[T any](produce func(ctx context.Context, emit Emit[T]) error) *Observable[T] {
	return &Observable[T]{produce: produce}
}

// FromSlice returns an Observable emitting the items in order.
func FromSlice[T any](items []T) *Observable[T] {
	return Create(func(_ context.Context, emit Emit[T]) error {
		for _, it := range items {
			if !emit(it) {
				return nil
			}
		}
		return nil
	})
}

// Subscribe starts the producer on its own goroutine and delivers its
// events to observer, in order and from that goroutine.
func (o *Observable[T]) Subscribe(ctx context.Context, observer Observer[T]) Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &subscription{cancel: cancel, subscribed: true}
	go func() {
		defer sub.finish()
		emit := func(v T) bool {
			if ctx.Err() != nil {
				return false
			}
			observer.OnNext(v)
			return true
		}
		err := run(ctx, o.produce, emit)
		if !sub.IsSubscribed() {
			return
		}
		if err != nil {
			observer.OnError(err)
			return
		}
		if ctx.Err() != nil {
			observer.OnError(ctx.Err())
			return
		}
		observer.OnComplete()
	}()
	return sub
}

// SubscribeFunc subscribes with plain functions.
func (o *Observable[T]) SubscribeFunc(ctx context.Context, onNext func(T), onError func(error), onComplete func()) Subscription {
	return o.Subscribe(ctx, ObserverFunc[T]{NextFunc: onNext, ErrorFunc: onError, CompleteFunc: onComplete})
}

// ToSlice subscribes and blocks until the stream terminates.
func (o *Observable[T]) ToSlice(ctx context.Context) ([]T, error) {
	var (
		items []T
		done  = make(chan error, 1)
	)
	sub := o.SubscribeFunc(ctx,
		func(v T) { items = append(items, v) },
		func(err error) { done <- err },
		func() { done <- nil },
	)
	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
		return items, nil
	case <-ctx.Done():
		sub.Unsubscribe()
		return nil, ctx.Err()
	}
}

// MapObservable returns an Observable of fn applied to every item. An fn
// error fails the stream.
func MapObservable[T, U any](o *Observable[T], fn func(T) (U, error)) *Observable[U] {
	return Create(func(ctx context.Context, emit Emit[U]) error {
		var failed error
		err := run(ctx, o.produce, func(v T) bool {
			u, err := fn(v)
			if err != nil {
				failed = err
				return false
			}
			return emit(u)
		})
		return errors.Join(failed, err)
	})
}

// run calls produce, turning a panic into an error.
func run[T any](ctx context.Context, produce func(context.Context, Emit[T]) error, emit Emit[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rx: panic: %v", r)
		}
	}()
	return produce(ctx, emit)
}
