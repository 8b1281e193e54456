package classic_test

import (
	"context"
	"errors"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/asyncdao"
	"github.com/syssam/asyncdao/classic"
	"github.com/syssam/asyncdao/internal/daotest"
	"github.com/syssam/asyncdao/jsonx"
)

// await returns a handler and a func blocking until the handler ran.
func await[T any](t *testing.T) (classic.Handler[T], func() classic.AsyncResult[T]) {
	t.Helper()
	ch := make(chan classic.AsyncResult[T], 1)
	return func(r classic.AsyncResult[T]) { ch <- r }, func() classic.AsyncResult[T] {
		select {
		case r := <-ch:
			return r
		case <-time.After(5 * time.Second):
			t.Fatal("handler was not called")
			return classic.AsyncResult[T]{}
		}
	}
}

func TestGo(t *testing.T) {
	ctx := context.Background()

	h, wait := await[int](t)
	classic.Go(ctx, func(context.Context) (int, error) { return 42, nil }, h)
	r := wait()
	assert.True(t, r.Succeeded())
	assert.Equal(t, 42, r.Result())

	boom := errors.New("boom")
	h, wait = await[int](t)
	classic.Go(ctx, func(context.Context) (int, error) { return 0, boom }, h)
	r = wait()
	assert.True(t, r.Failed())
	assert.Equal(t, boom, r.Cause())

	h, wait = await[int](t)
	classic.Go(ctx, func(context.Context) (int, error) { panic("oops") }, h)
	r = wait()
	require.Error(t, r.Cause())
	assert.Contains(t, r.Cause().Error(), "oops")
}

func newDAO(t *testing.T) *classic.DAO[*daotest.Something, int32] {
	return classic.NewDAO[*daotest.Something, int32](daotest.SomethingTable, daotest.MapSomething, daotest.Open(t))
}

func TestInsertFetchUpdateDelete(t *testing.T) {
	ctx := context.Background()
	d := newDAO(t)

	insert, waitInsert := await[int32](t)
	d.InsertReturningPrimary(ctx, daotest.NewSomething(), insert)
	ir := waitInsert()
	require.NoError(t, ir.Cause())
	id := ir.Result()

	find, waitFind := await[*daotest.Something](t)
	d.FindByID(ctx, id, find)
	fr := waitFind()
	require.NoError(t, fr.Cause())
	require.NotNil(t, fr.Result())

	something := fr.Result()
	something.SomeJSONArray = jsonx.Array{1, 2}
	update, waitUpdate := await[int64](t)
	d.Update(ctx, something, update)
	ur := waitUpdate()
	require.NoError(t, ur.Cause())
	assert.Equal(t, int64(1), ur.Result())

	del, waitDelete := await[int64](t)
	d.DeleteByID(ctx, id, del)
	dr := waitDelete()
	require.NoError(t, dr.Cause())
	assert.Equal(t, int64(1), dr.Result())
}

func TestFetchOneTooManyRows(t *testing.T) {
	ctx := context.Background()
	d := newDAO(t)
	s1, s2 := daotest.NewSomething(), daotest.NewSomething()
	s2.SomeHugeNumber = s1.SomeHugeNumber
	for _, s := range []*daotest.Something{s1, s2} {
		_, err := d.Sync().Insert(ctx, s)
		require.NoError(t, err)
	}

	one, waitOne := await[*daotest.Something](t)
	d.FetchOne(ctx, sq.Eq{"someHugeNumber": *s1.SomeHugeNumber}, one)
	r := waitOne()
	require.True(t, r.Failed())
	assert.True(t, asyncdao.IsTooManyRows(r.Cause()))

	all, waitAll := await[[]*daotest.Something](t)
	d.Fetch(ctx, sq.Eq{"someHugeNumber": *s1.SomeHugeNumber}, all)
	ar := waitAll()
	require.NoError(t, ar.Cause())
	assert.Len(t, ar.Result(), 2)

	count, waitCount := await[int64](t)
	d.Count(ctx, count)
	assert.Equal(t, int64(2), waitCount().Result())
}

func TestCompositeInsertReturningUnsupported(t *testing.T) {
	d := classic.NewDAO[*daotest.Composite, daotest.CompositeKey](daotest.CompositeTable, daotest.MapComposite, daotest.Open(t))
	h, wait := await[daotest.CompositeKey](t)
	d.InsertReturningPrimary(context.Background(), &daotest.Composite{SomeID: 1, SomeSecondID: 1}, h)
	r := wait()
	require.True(t, r.Failed())
	assert.True(t, asyncdao.IsUnsupported(r.Cause()))
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	c := classic.NewClient(daotest.Open(t))
	assert.NotNil(t, c.Delegate())

	ins, waitIns := await[int64](t)
	c.InsertReturning(ctx, sq.Insert("something").Columns("someString").Values("classic"), ins)
	ir := waitIns()
	require.NoError(t, ir.Cause())
	assert.Positive(t, ir.Result())

	one, waitOne := await[*daotest.Something](t)
	classic.FetchOne(ctx, c, sq.Select("*").From("something").Where(sq.Eq{"someString": "classic"}), daotest.MapSomething, one)
	or := waitOne()
	require.NoError(t, or.Cause())
	assert.Equal(t, "classic", *or.Result().SomeString)

	many, waitMany := await[[]*daotest.Something](t)
	classic.Fetch(ctx, c, sq.Select("*").From("something"), daotest.MapSomething, many)
	assert.Len(t, waitMany().Result(), 1)

	exec, waitExec := await[int64](t)
	c.Execute(ctx, sq.Delete("something"), exec)
	assert.Equal(t, int64(1), waitExec().Result())
}
