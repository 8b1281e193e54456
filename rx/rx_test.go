package rx_test

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/asyncdao"
	"github.com/syssam/asyncdao/internal/daotest"
	"github.com/syssam/asyncdao/rx"
)

func TestObservable(t *testing.T) {
	ctx := context.Background()

	t.Run("ToSlice", func(t *testing.T) {
		items, err := rx.FromSlice([]int{1, 2, 3}).ToSlice(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, items)
	})

	t.Run("error terminates", func(t *testing.T) {
		boom := errors.New("boom")
		o := rx.Create(func(_ context.Context, emit rx.Emit[int]) error {
			emit(1)
			return boom
		})
		var (
			next      []int
			completed atomic.Bool
			done      = make(chan error, 1)
		)
		o.SubscribeFunc(ctx,
			func(v int) { next = append(next, v) },
			func(err error) { done <- err },
			func() { completed.Store(true) },
		)
		require.ErrorIs(t, <-done, boom)
		assert.Equal(t, []int{1}, next)
		assert.False(t, completed.Load())
	})

	t.Run("cold", func(t *testing.T) {
		var runs atomic.Int32
		o := rx.Create(func(_ context.Context, emit rx.Emit[int]) error {
			emit(int(runs.Add(1)))
			return nil
		})
		first, err := o.ToSlice(ctx)
		require.NoError(t, err)
		second, err := o.ToSlice(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, first)
		assert.Equal(t, []int{2}, second)
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		emitted := make(chan struct{})
		stopped := make(chan struct{})
		o := rx.Create(func(ctx context.Context, emit rx.Emit[int]) error {
			defer close(stopped)
			emit(1)
			close(emitted)
			<-ctx.Done()
			return ctx.Err()
		})
		var terminal atomic.Bool
		sub := o.Subscribe(ctx, rx.ObserverFunc[int]{
			ErrorFunc:    func(error) { terminal.Store(true) },
			CompleteFunc: func() { terminal.Store(true) },
		})
		<-emitted
		assert.True(t, sub.IsSubscribed())
		sub.Unsubscribe()
		assert.False(t, sub.IsSubscribed())
		<-stopped
		time.Sleep(10 * time.Millisecond)
		assert.False(t, terminal.Load())
	})

	t.Run("MapObservable", func(t *testing.T) {
		items, err := rx.MapObservable(rx.FromSlice([]int{1, 2}), func(v int) (string, error) {
			return strconv.Itoa(v * 10), nil
		}).ToSlice(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"10", "20"}, items)

		boom := errors.New("boom")
		_, err = rx.MapObservable(rx.FromSlice([]int{1, 2}), func(int) (int, error) {
			return 0, boom
		}).ToSlice(ctx)
		require.ErrorIs(t, err, boom)
	})

	t.Run("panic", func(t *testing.T) {
		_, err := rx.Create(func(context.Context, rx.Emit[int]) error { panic("oops") }).ToSlice(ctx)
		require.Error(t, err)
	})
}

func TestSingle(t *testing.T) {
	ctx := context.Background()

	v, err := rx.Just(3).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	boom := errors.New("boom")
	_, err = rx.Error[int](boom).Get(ctx)
	require.ErrorIs(t, err, boom)

	s, err := rx.Map(rx.Just(4), func(v int) (string, error) { return strconv.Itoa(v), nil }).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "4", s)

	_, err = rx.FromFunc(func(context.Context) (int, error) { panic("oops") }).Get(ctx)
	require.Error(t, err)

	got := make(chan int, 1)
	rx.Just(5).Subscribe(ctx, func(v int) { got <- v }, nil)
	assert.Equal(t, 5, <-got)

	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = rx.FromFunc(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}).Get(short)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	items, err := rx.FlattenObservable(rx.Just([]int{1, 2})).ToSlice(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, items)
}

func TestDAO(t *testing.T) {
	ctx := context.Background()
	d := rx.NewDAO[*daotest.Something, int32](daotest.SomethingTable, daotest.MapSomething, daotest.Open(t))

	insert := d.InsertReturningPrimary(daotest.NewSomething())
	id1, err := insert.Get(ctx)
	require.NoError(t, err)
	_, err = insert.Get(ctx)
	assert.True(t, asyncdao.IsConstraintError(err), "each subscription inserts again")
	id2, err := d.InsertReturningPrimary(daotest.NewSomething()).Get(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	found, err := d.FindByID(id1).Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, id1, *found.SomeID)

	all, err := d.FetchObservable(sq.Gt{"someId": 0}).ToSlice(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	some, err := d.FetchByObservable("someId", []int32{id2}).ToSlice(ctx)
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, id2, *some[0].SomeID)

	_, err = d.FetchOne(sq.Gt{"someId": 0}).Get(ctx)
	assert.True(t, asyncdao.IsTooManyRows(err))

	count, err := d.Count().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	n, err := d.DeleteByID(id1).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	exists, err := d.ExistsByID(id1).Get(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCompositeInsertReturningUnsupported(t *testing.T) {
	d := rx.NewDAO[*daotest.Composite, daotest.CompositeKey](daotest.CompositeTable, daotest.MapComposite, daotest.Open(t))
	_, err := d.InsertReturningPrimary(&daotest.Composite{SomeID: 1, SomeSecondID: 2}).Get(context.Background())
	assert.True(t, asyncdao.IsUnsupported(err))
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	c := rx.NewClient(daotest.Open(t))

	_, err := c.InsertReturning(sq.Insert("something").Columns("someString").Values("a")).Get(ctx)
	require.NoError(t, err)
	_, err = c.InsertReturning(sq.Insert("something").Columns("someString").Values("b")).Get(ctx)
	require.NoError(t, err)

	q := sq.Select("*").From("something").OrderBy("someId")
	items, err := rx.FetchObservable(c, q, daotest.MapSomething).ToSlice(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", *items[0].SomeString)

	list, err := rx.Fetch(c, q, daotest.MapSomething).Get(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = rx.FetchOne(c, q, daotest.MapSomething).Get(ctx)
	assert.True(t, asyncdao.IsTooManyRows(err))

	n, err := c.Execute(sq.Delete("something")).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
