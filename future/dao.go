package future

import (
	"context"
	"log/slog"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/asyncdao/client"
	"github.com/syssam/asyncdao/dao"
)

// DAO offers the operations of dao.DAO returning futures. Generated DAOs
// embed it.
type DAO[P dao.Pojo, K any] struct {
	d *dao.DAO[P, K]
}

// NewDAO returns a future style DAO for the table.
func NewDAO[P dao.Pojo, K any](t *dao.Table, mapper client.Mapper[P], c client.Client) *DAO[P, K] {
	return &DAO[P, K]{d: dao.New[P, K](t, mapper, c)}
}

// Sync returns the blocking DAO the operations run on.
func (d *DAO[P, K]) Sync() *dao.DAO[P, K] { return d.d }

// SetClient replaces the client used for subsequent operations.
func (d *DAO[P, K]) SetClient(c client.Client) { d.d.SetClient(c) }

// Client returns the configured client.
func (d *DAO[P, K]) Client() client.Client { return d.d.Client() }

// SetLogger replaces the logger statements and failures are written to.
func (d *DAO[P, K]) SetLogger(l *slog.Logger) { d.d.SetLogger(l) }

// ExistsByID resolves to whether a row with the given id exists.
func (d *DAO[P, K]) ExistsByID(ctx context.Context, id K) *Future[bool] {
	return Go(ctx, func(ctx context.Context) (bool, error) { return d.d.ExistsByID(ctx, id) })
}

// Count resolves to the number of rows.
func (d *DAO[P, K]) Count(ctx context.Context) *Future[int64] {
	return Go(ctx, d.d.Count)
}

// FindAll resolves to every row.
func (d *DAO[P, K]) FindAll(ctx context.Context) *Future[[]P] {
	return Go(ctx, d.d.FindAll)
}

// FindByID resolves to the row with the given id, or the zero P when absent.
func (d *DAO[P, K]) FindByID(ctx context.Context, id K) *Future[P] {
	return Go(ctx, func(ctx context.Context) (P, error) { return d.d.FindByID(ctx, id) })
}

// FindByIDs resolves to the rows matching any of the ids.
func (d *DAO[P, K]) FindByIDs(ctx context.Context, ids ...K) *Future[[]P] {
	return Go(ctx, func(ctx context.Context) ([]P, error) { return d.d.FindByIDs(ctx, ids...) })
}

// FetchOne resolves to the only row matching cond, or the zero P when none does.
func (d *DAO[P, K]) FetchOne(ctx context.Context, cond sq.Sqlizer) *Future[P] {
	return Go(ctx, func(ctx context.Context) (P, error) { return d.d.FetchOne(ctx, cond) })
}

// FetchOneBy resolves to the only row whose column equals value.
func (d *DAO[P, K]) FetchOneBy(ctx context.Context, column string, value any) *Future[P] {
	return Go(ctx, func(ctx context.Context) (P, error) { return d.d.FetchOneBy(ctx, column, value) })
}

// FetchOptional resolves to the only row whose column equals value as an Optional.
func (d *DAO[P, K]) FetchOptional(ctx context.Context, column string, value any) *Future[dao.Optional[P]] {
	return Go(ctx, func(ctx context.Context) (dao.Optional[P], error) { return d.d.FetchOptional(ctx, column, value) })
}

// Fetch resolves to every row matching cond.
func (d *DAO[P, K]) Fetch(ctx context.Context, cond sq.Sqlizer) *Future[[]P] {
	return Go(ctx, func(ctx context.Context) ([]P, error) { return d.d.Fetch(ctx, cond) })
}

// FetchBy resolves to the rows whose column is in values.
func (d *DAO[P, K]) FetchBy(ctx context.Context, column string, values any) *Future[[]P] {
	return Go(ctx, func(ctx context.Context) ([]P, error) { return d.d.FetchBy(ctx, column, values) })
}

// DeleteByID deletes the row with the given id and resolves to the affected count.
func (d *DAO[P, K]) DeleteByID(ctx context.Context, id K) *Future[int64] {
	return Go(ctx, func(ctx context.Context) (int64, error) { return d.d.DeleteByID(ctx, id) })
}

// DeleteByIDs deletes the rows matching any of the ids.
func (d *DAO[P, K]) DeleteByIDs(ctx context.Context, ids ...K) *Future[int64] {
	return Go(ctx, func(ctx context.Context) (int64, error) { return d.d.DeleteByIDs(ctx, ids...) })
}

// Delete deletes the rows matching cond.
func (d *DAO[P, K]) Delete(ctx context.Context, cond sq.Sqlizer) *Future[int64] {
	return Go(ctx, func(ctx context.Context) (int64, error) { return d.d.Delete(ctx, cond) })
}

// DeleteBy deletes the rows whose column equals value.
func (d *DAO[P, K]) DeleteBy(ctx context.Context, column string, value any) *Future[int64] {
	return Go(ctx, func(ctx context.Context) (int64, error) { return d.d.DeleteBy(ctx, column, value) })
}

// Update writes obj to the row selected by its key.
func (d *DAO[P, K]) Update(ctx context.Context, obj P) *Future[int64] {
	return Go(ctx, func(ctx context.Context) (int64, error) { return d.d.Update(ctx, obj) })
}

// Insert inserts obj and resolves to the affected count.
func (d *DAO[P, K]) Insert(ctx context.Context, obj P) *Future[int64] {
	return Go(ctx, func(ctx context.Context) (int64, error) { return d.d.Insert(ctx, obj) })
}

// InsertReturningPrimary inserts obj; the future holds its generated key.
func (d *DAO[P, K]) InsertReturningPrimary(ctx context.Context, obj P) *Future[K] {
	return Go(ctx, func(ctx context.Context) (K, error) { return d.d.InsertReturningPrimary(ctx, obj) })
}
