package classic

import (
	"context"
	"log/slog"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/asyncdao/client"
	"github.com/syssam/asyncdao/dao"
)

// DAO offers the operations of dao.DAO in callback style. Generated DAOs
// embed it.
type DAO[P dao.Pojo, K any] struct {
	d *dao.DAO[P, K]
}

// NewDAO returns a callback style DAO for the table.
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

// ExistsByID delivers whether a row with the given id exists.
func (d *DAO[P, K]) ExistsByID(ctx context.Context, id K, h Handler[bool]) {
	Go(ctx, func(ctx context.Context) (bool, error) { return d.d.ExistsByID(ctx, id) }, h)
}

// Count delivers the number of rows.
func (d *DAO[P, K]) Count(ctx context.Context, h Handler[int64]) {
	Go(ctx, d.d.Count, h)
}

// FindAll delivers every row.
func (d *DAO[P, K]) FindAll(ctx context.Context, h Handler[[]P]) {
	Go(ctx, d.d.FindAll, h)
}

// FindByID delivers the row with the given id, or the zero P.
func (d *DAO[P, K]) FindByID(ctx context.Context, id K, h Handler[P]) {
	Go(ctx, func(ctx context.Context) (P, error) { return d.d.FindByID(ctx, id) }, h)
}

// FindByIDs delivers the rows matching any of the ids.
func (d *DAO[P, K]) FindByIDs(ctx context.Context, ids []K, h Handler[[]P]) {
	Go(ctx, func(ctx context.Context) ([]P, error) { return d.d.FindByIDs(ctx, ids...) }, h)
}

// FetchOne delivers the only row matching cond.
func (d *DAO[P, K]) FetchOne(ctx context.Context, cond sq.Sqlizer, h Handler[P]) {
	Go(ctx, func(ctx context.Context) (P, error) { return d.d.FetchOne(ctx, cond) }, h)
}

// FetchOneBy delivers the only row whose column equals value.
func (d *DAO[P, K]) FetchOneBy(ctx context.Context, column string, value any, h Handler[P]) {
	Go(ctx, func(ctx context.Context) (P, error) { return d.d.FetchOneBy(ctx, column, value) }, h)
}

// FetchOptional delivers the only row whose column equals value, if any.
func (d *DAO[P, K]) FetchOptional(ctx context.Context, column string, value any, h Handler[dao.Optional[P]]) {
	Go(ctx, func(ctx context.Context) (dao.Optional[P], error) { return d.d.FetchOptional(ctx, column, value) }, h)
}

// Fetch delivers every row matching cond.
func (d *DAO[P, K]) Fetch(ctx context.Context, cond sq.Sqlizer, h Handler[[]P]) {
	Go(ctx, func(ctx context.Context) ([]P, error) { return d.d.Fetch(ctx, cond) }, h)
}

// FetchBy delivers the rows whose column matches values.
func (d *DAO[P, K]) FetchBy(ctx context.Context, column string, values any, h Handler[[]P]) {
	Go(ctx, func(ctx context.Context) ([]P, error) { return d.d.FetchBy(ctx, column, values) }, h)
}

// DeleteByID deletes the row with the given id.
func (d *DAO[P, K]) DeleteByID(ctx context.Context, id K, h Handler[int64]) {
	Go(ctx, func(ctx context.Context) (int64, error) { return d.d.DeleteByID(ctx, id) }, h)
}

// DeleteByIDs deletes the rows matching any of the ids.
func (d *DAO[P, K]) DeleteByIDs(ctx context.Context, ids []K, h Handler[int64]) {
	Go(ctx, func(ctx context.Context) (int64, error) { return d.d.DeleteByIDs(ctx, ids...) }, h)
}

// Delete deletes the rows matching cond.
func (d *DAO[P, K]) Delete(ctx context.Context, cond sq.Sqlizer, h Handler[int64]) {
	Go(ctx, func(ctx context.Context) (int64, error) { return d.d.Delete(ctx, cond) }, h)
}

// DeleteBy deletes the rows whose column equals value.
func (d *DAO[P, K]) DeleteBy(ctx context.Context, column string, value any, h Handler[int64]) {
	Go(ctx, func(ctx context.Context) (int64, error) { return d.d.DeleteBy(ctx, column, value) }, h)
}

// Update writes obj to the row selected by its primary key.
func (d *DAO[P, K]) Update(ctx context.Context, obj P, h Handler[int64]) {
	Go(ctx, func(ctx context.Context) (int64, error) { return d.d.Update(ctx, obj) }, h)
}

// Insert inserts obj.
func (d *DAO[P, K]) Insert(ctx context.Context, obj P, h Handler[int64]) {
	Go(ctx, func(ctx context.Context) (int64, error) { return d.d.Insert(ctx, obj) }, h)
}

// InsertReturningPrimary inserts obj and delivers its generated key.
func (d *DAO[P, K]) InsertReturningPrimary(ctx context.Context, obj P, h Handler[K]) {
	Go(ctx, func(ctx context.Context) (K, error) { return d.d.InsertReturningPrimary(ctx, obj) }, h)
}
