package rx

import (
	"context"
	"log/slog"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/asyncdao/client"
	"github.com/syssam/asyncdao/dao"
)

// DAO offers the operations of dao.DAO as Singles and Observables.
// Generated DAOs embed it.
type DAO[P dao.Pojo, K any] struct {
	d *dao.DAO[P, K]
}

// NewDAO returns a reactive DAO for the table.
func NewDAO[P dao.Pojo, K any](t *dao.Table, mapper client.Mapper[P], c client.Client) *DAO[P, K] {
	return &DAO[P, K]{d: dao.New[P, K](t, mapper, c)}
}

// Sync returns the blocking DAO the operations run on.
func (d *DAO[P, K]) Sync() *dao.DAO[P, K] { return d.d }

// SetClient replaces the client used for subsequent subscriptions.
func (d *DAO[P, K]) SetClient(c client.Client) { d.d.SetClient(c) }

// Client returns the configured client.
func (d *DAO[P, K]) Client() client.Client { return d.d.Client() }

// SetLogger replaces the logger statements and failures are written to.
func (d *DAO[P, K]) SetLogger(l *slog.Logger) { d.d.SetLogger(l) }

// ExistsByID emits whether a row with the given id exists.
func (d *DAO[P, K]) ExistsByID(id K) *Single[bool] {
	return FromFunc(func(ctx context.Context) (bool, error) { return d.d.ExistsByID(ctx, id) })
}

// Count emits the number of rows.
func (d *DAO[P, K]) Count() *Single[int64] {
	return FromFunc(d.d.Count)
}

// FindAll emits every row.
func (d *DAO[P, K]) FindAll() *Single[[]P] {
	return FromFunc(d.d.FindAll)
}

// FindByID emits the row with the given id, or the zero P when absent.
func (d *DAO[P, K]) FindByID(id K) *Single[P] {
	return FromFunc(func(ctx context.Context) (P, error) { return d.d.FindByID(ctx, id) })
}

// FindByIDs emits the rows matching any of the ids.
func (d *DAO[P, K]) FindByIDs(ids ...K) *Single[[]P] {
	return FromFunc(func(ctx context.Context) ([]P, error) { return d.d.FindByIDs(ctx, ids...) })
}

// FetchOne emits the only row matching cond, or the zero P when none does.
func (d *DAO[P, K]) FetchOne(cond sq.Sqlizer) *Single[P] {
	return FromFunc(func(ctx context.Context) (P, error) { return d.d.FetchOne(ctx, cond) })
}

// FetchOneBy emits the only row whose column equals value.
func (d *DAO[P, K]) FetchOneBy(column string, value any) *Single[P] {
	return FromFunc(func(ctx context.Context) (P, error) { return d.d.FetchOneBy(ctx, column, value) })
}

// FetchOptional emits the only row whose column equals value as an Optional.
func (d *DAO[P, K]) FetchOptional(column string, value any) *Single[dao.Optional[P]] {
	return FromFunc(func(ctx context.Context) (dao.Optional[P], error) { return d.d.FetchOptional(ctx, column, value) })
}

// Fetch emits every row matching cond.
func (d *DAO[P, K]) Fetch(cond sq.Sqlizer) *Single[[]P] {
	return FromFunc(func(ctx context.Context) ([]P, error) { return d.d.Fetch(ctx, cond) })
}

// FetchBy emits the rows whose column is in values.
func (d *DAO[P, K]) FetchBy(column string, values any) *Single[[]P] {
	return FromFunc(func(ctx context.Context) ([]P, error) { return d.d.FetchBy(ctx, column, values) })
}

// FetchObservable emits the rows matching cond one by one.
func (d *DAO[P, K]) FetchObservable(cond sq.Sqlizer) *Observable[P] {
	return FlattenObservable(d.Fetch(cond))
}

// FetchByObservable emits the rows whose column is in values one by one.
func (d *DAO[P, K]) FetchByObservable(column string, values any) *Observable[P] {
	return FlattenObservable(d.FetchBy(column, values))
}

// DeleteByID deletes the row with the given id and emits the affected count.
func (d *DAO[P, K]) DeleteByID(id K) *Single[int64] {
	return FromFunc(func(ctx context.Context) (int64, error) { return d.d.DeleteByID(ctx, id) })
}

// DeleteByIDs deletes the rows matching any of the ids and emits the affected count.
func (d *DAO[P, K]) DeleteByIDs(ids ...K) *Single[int64] {
	return FromFunc(func(ctx context.Context) (int64, error) { return d.d.DeleteByIDs(ctx, ids...) })
}

// Delete deletes the rows matching cond and emits the affected count.
func (d *DAO[P, K]) Delete(cond sq.Sqlizer) *Single[int64] {
	return FromFunc(func(ctx context.Context) (int64, error) { return d.d.Delete(ctx, cond) })
}

// DeleteBy deletes the rows whose column equals value and emits the affected count.
func (d *DAO[P, K]) DeleteBy(column string, value any) *Single[int64] {
	return FromFunc(func(ctx context.Context) (int64, error) { return d.d.DeleteBy(ctx, column, value) })
}

// Update writes obj to the row selected by its key and emits the affected count.
func (d *DAO[P, K]) Update(obj P) *Single[int64] {
	return FromFunc(func(ctx context.Context) (int64, error) { return d.d.Update(ctx, obj) })
}

// Insert inserts obj and emits the affected count.
func (d *DAO[P, K]) Insert(obj P) *Single[int64] {
	return FromFunc(func(ctx context.Context) (int64, error) { return d.d.Insert(ctx, obj) })
}

// InsertReturningPrimary inserts obj and emits its generated key.
func (d *DAO[P, K]) InsertReturningPrimary(obj P) *Single[K] {
	return FromFunc(func(ctx context.Context) (K, error) { return d.d.InsertReturningPrimary(ctx, obj) })
}
