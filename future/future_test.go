package future_test

import (
	"context"
	"errors"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/asyncdao"
	"github.com/syssam/asyncdao/future"
	"github.com/syssam/asyncdao/internal/daotest"
)

func TestFuture(t *testing.T) {
	ctx := context.Background()

	t.Run("Go", func(t *testing.T) {
		f := future.Go(ctx, func(context.Context) (int, error) { return 1, nil })
		v, err := f.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, v)
		<-f.Done()
		v, err, ok := f.Result()
		assert.True(t, ok)
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	})

	t.Run("panic", func(t *testing.T) {
		f := future.Go(ctx, func(context.Context) (int, error) { panic("oops") })
		_, err := f.Get(ctx)
		require.Error(t, err)
	})

	t.Run("Get honors ctx", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		f := future.Go(ctx, func(context.Context) (int, error) {
			<-release
			return 0, nil
		})
		_, _, ok := f.Result()
		assert.False(t, ok)
		short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		_, err := f.Get(short)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Then", func(t *testing.T) {
		f := future.Then(future.Completed(2), func(v int) (string, error) {
			return "x" + string(rune('0'+v)), nil
		})
		v, err := f.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "x2", v)

		boom := errors.New("boom")
		called := false
		g := future.Then(future.Failed[int](boom), func(int) (int, error) {
			called = true
			return 0, nil
		})
		_, err = g.Get(ctx)
		require.ErrorIs(t, err, boom)
		assert.False(t, called)
	})

	t.Run("All", func(t *testing.T) {
		vs, err := future.All(future.Completed(1), future.Go(ctx, func(context.Context) (int, error) { return 2, nil })).Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, vs)

		boom := errors.New("boom")
		_, err = future.All(future.Completed(1), future.Failed[int](boom)).Get(ctx)
		require.ErrorIs(t, err, boom)

		vs, err = future.All[int]().Get(ctx)
		require.NoError(t, err)
		assert.Empty(t, vs)
	})

	t.Run("OnComplete after completion", func(t *testing.T) {
		got := make(chan int, 1)
		future.Completed(7).OnComplete(func(v int, _ error) { got <- v })
		assert.Equal(t, 7, <-got)
	})

	t.Run("Then fn panics", func(t *testing.T) {
		tctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		src := future.Go(ctx, func(context.Context) (int, error) { return 1, nil })
		out := future.Then(src, func(int) (int, error) { panic("boom") })
		_, err := out.Get(tctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "future: panic: boom")

		// Already completed source: the panic must not reach the caller.
		assert.NotPanics(t, func() {
			out = future.Then(future.Completed(1), func(int) (int, error) { panic("late") })
		})
		_, err = out.Get(tctx)
		assert.Contains(t, err.Error(), "future: panic: late")
	})

	t.Run("panicking callback does not starve others", func(t *testing.T) {
		release := make(chan struct{})
		f := future.Go(ctx, func(context.Context) (int, error) {
			<-release
			return 3, nil
		})
		got := make(chan int, 1)
		f.OnComplete(func(int, error) { panic("first") })
		f.OnComplete(func(v int, _ error) { got <- v })
		close(release)
		select {
		case v := <-got:
			assert.Equal(t, 3, v)
		case <-time.After(time.Second):
			t.Fatal("second callback did not run")
		}
	})
}

func TestDAO(t *testing.T) {
	ctx := context.Background()
	d := future.NewDAO[*daotest.Something, int32](daotest.SomethingTable, daotest.MapSomething, daotest.Open(t))

	ids, err := future.All(
		d.InsertReturningPrimary(ctx, daotest.NewSomething()),
		d.InsertReturningPrimary(ctx, daotest.NewSomething()),
	).Get(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	found, err := d.FindByID(ctx, ids[0]).Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, found)

	found.SomeString = nil
	n, err := d.Update(ctx, found).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	exists, err := d.ExistsByID(ctx, ids[1]).Get(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	all, err := d.FindAll(ctx).Get(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = d.FetchOne(ctx, sq.Gt{"someId": 0}).Get(ctx)
	assert.True(t, asyncdao.IsTooManyRows(err))

	opt, err := d.FetchOptional(ctx, "someId", ids[1]).Get(ctx)
	require.NoError(t, err)
	assert.True(t, opt.Present)

	n, err = d.DeleteByIDs(ctx, ids...).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	count, err := d.Count(ctx).Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCompositeInsertReturningUnsupported(t *testing.T) {
	ctx := context.Background()
	d := future.NewDAO[*daotest.Composite, daotest.CompositeKey](daotest.CompositeTable, daotest.MapComposite, daotest.Open(t))
	_, err := d.InsertReturningPrimary(ctx, &daotest.Composite{SomeID: 1, SomeSecondID: 2}).Get(ctx)
	require.Error(t, err)
	assert.True(t, asyncdao.IsUnsupported(err))
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	c := future.NewClient(daotest.Open(t))

	id, err := c.InsertReturning(ctx, sq.Insert("something").Columns("someString").Values("future")).Get(ctx)
	require.NoError(t, err)

	s, err := future.FetchOne(ctx, c, sq.Select("*").From("something").Where(sq.Eq{"someId": id}), daotest.MapSomething).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "future", *s.SomeString)

	all, err := future.Fetch(ctx, c, sq.Select("*").From("something"), daotest.MapSomething).Get(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	n, err := c.Execute(ctx, sq.Delete("something")).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Same(t, c.Delegate(), c.Delegate())
}
