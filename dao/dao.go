// Package dao provides the generic data access object generated DAOs are
// built on. Every method blocks until its statement finished; the classic,
// future and rx packages wrap a DAO in their completion style.
package dao

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/asyncdao"
	"github.com/syssam/asyncdao/client"
	"github.com/syssam/asyncdao/dialect"
	"github.com/syssam/asyncdao/jsonx"
)

// TrueCondition matches every row.
var TrueCondition sq.Sqlizer = sq.Expr("1=1")

// DAO runs CRUD statements for one table. P is the POJO type and K the
// primary key type: the column type for single column keys, a generated
// Key struct for composite ones.
type DAO[P Pojo, K any] struct {
	table  *Table
	mapper client.Mapper[P]

	mu     sync.RWMutex
	client client.Client
	logger *slog.Logger
}

// New returns a DAO for the table. The client may be set later with SetClient.
func New[P Pojo, K any](t *Table, mapper client.Mapper[P], c client.Client) *DAO[P, K] {
	return &DAO[P, K]{table: t, mapper: mapper, client: c}
}

// WithLogger sets the logger and returns d. See SetLogger.
func (d *DAO[P, K]) WithLogger(l *slog.Logger) *DAO[P, K] {
	d.SetLogger(l)
	return d
}

// SetLogger replaces the logger. Statements are logged at debug level and
// failed statements at warn level. A nil logger restores slog.Default.
func (d *DAO[P, K]) SetLogger(l *slog.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = l
}

// Logger returns the configured logger, slog.Default when none was set.
func (d *DAO[P, K]) Logger() *slog.Logger {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.logger == nil {
		return slog.Default()
	}
	return d.logger
}

// Table returns the table the DAO works on.
func (d *DAO[P, K]) Table() *Table { return d.table }

// Mapper returns the row mapper.
func (d *DAO[P, K]) Mapper() client.Mapper[P] { return d.mapper }

// SetClient replaces the client used for subsequent operations.
func (d *DAO[P, K]) SetClient(c client.Client) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.client = c
}

// Client returns the configured client.
func (d *DAO[P, K]) Client() client.Client {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.client
}

func (d *DAO[P, K]) prepare() (client.Client, sq.StatementBuilderType, error) {
	c := d.Client()
	if c == nil {
		return nil, sq.StatementBuilderType{}, fmt.Errorf("%s: %w", d.table.Name, asyncdao.ErrNoClient)
	}
	lc := loggedClient{Client: c, logger: d.Logger(), table: d.table.Name}
	return lc, dialect.Builder(c.Dialect()), nil
}

// loggedClient logs the statements of one DAO with the table name attached.
type loggedClient struct {
	client.Client
	logger *slog.Logger
	table  string
}

func (c loggedClient) Query(ctx context.Context, q sq.Sqlizer) ([]jsonx.Object, error) {
	client.LogQuery(ctx, c.logger, c.table+": query", q)
	rows, err := c.Client.Query(ctx, q)
	c.failed(ctx, "query", err)
	return rows, err
}

func (c loggedClient) Exec(ctx context.Context, q sq.Sqlizer) (int64, error) {
	client.LogQuery(ctx, c.logger, c.table+": execute", q)
	n, err := c.Client.Exec(ctx, q)
	c.failed(ctx, "execute", err)
	return n, err
}

func (c loggedClient) InsertReturning(ctx context.Context, q sq.Sqlizer) (int64, error) {
	client.LogQuery(ctx, c.logger, c.table+": insertReturning", q)
	id, err := c.Client.InsertReturning(ctx, q)
	c.failed(ctx, "insertReturning", err)
	return id, err
}

func (c loggedClient) failed(ctx context.Context, op string, err error) {
	if err != nil {
		c.logger.WarnContext(ctx, "statement failed", "table", c.table, "op", op, "err", err)
	}
}

// selectWhere builds SELECT <columns> FROM <table> WHERE <cond>.
func (d *DAO[P, K]) selectWhere(b sq.StatementBuilderType, cond sq.Sqlizer) sq.SelectBuilder {
	return b.Select(d.table.selectColumns()...).From(d.table.Name).Where(cond)
}

// IDCondition returns the condition selecting the row with the given id.
func (d *DAO[P, K]) IDCondition(id K) (sq.Sqlizer, error) {
	return idCondition(d.table, id)
}

// ExistsByID reports whether a row with the given id exists.
func (d *DAO[P, K]) ExistsByID(ctx context.Context, id K) (bool, error) {
	c, b, err := d.prepare()
	if err != nil {
		return false, err
	}
	cond, err := idCondition(d.table, id)
	if err != nil {
		return false, err
	}
	rows, err := c.Query(ctx, b.Select(d.table.PrimaryKey...).From(d.table.Name).Where(cond).Limit(1))
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// Count returns the number of rows in the table.
func (d *DAO[P, K]) Count(ctx context.Context) (int64, error) {
	c, b, err := d.prepare()
	if err != nil {
		return 0, err
	}
	rows, err := c.Query(ctx, b.Select("COUNT(*)").From(d.table.Name))
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	// The single column's name differs between drivers; take whatever it is.
	for col := range rows[0] {
		r := jsonx.NewRowReader(rows[0])
		n := r.Int64(col)
		if err := r.Err(); err != nil {
			return 0, fmt.Errorf("asyncdao: count %s: %w", d.table.Name, err)
		}
		return jsonx.Value(n), nil
	}
	return 0, nil
}

// FindAll returns every row of the table.
func (d *DAO[P, K]) FindAll(ctx context.Context) ([]P, error) {
	return d.Fetch(ctx, TrueCondition)
}

// FindByID returns the row with the given id, or the zero P when absent.
func (d *DAO[P, K]) FindByID(ctx context.Context, id K) (P, error) {
	cond, err := idCondition(d.table, id)
	if err != nil {
		var zero P
		return zero, err
	}
	return d.FetchOne(ctx, cond)
}

// FindByIDs returns the rows matching any of the given ids.
func (d *DAO[P, K]) FindByIDs(ctx context.Context, ids ...K) ([]P, error) {
	if !d.table.HasPrimaryKey() {
		return nil, fmt.Errorf("%s: %w", d.table.Name, asyncdao.ErrNoPrimaryKey)
	}
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	cond, err := idsCondition(d.table, values)
	if err != nil {
		return nil, err
	}
	return d.Fetch(ctx, cond)
}

// FetchOne returns the only row matching cond, the zero P when no row
// matches, or an asyncdao.TooManyRowsError when several do.
func (d *DAO[P, K]) FetchOne(ctx context.Context, cond sq.Sqlizer) (P, error) {
	c, b, err := d.prepare()
	if err != nil {
		var zero P
		return zero, err
	}
	return client.FetchOne(ctx, c, d.selectWhere(b, cond), d.mapper)
}

// FetchOneBy returns the only row whose column equals value.
func (d *DAO[P, K]) FetchOneBy(ctx context.Context, column string, value any) (P, error) {
	return d.FetchOne(ctx, sq.Eq{column: scalar(value)})
}

// FetchOptional is FetchOneBy reporting absence through Optional.
func (d *DAO[P, K]) FetchOptional(ctx context.Context, column string, value any) (Optional[P], error) {
	c, b, err := d.prepare()
	if err != nil {
		return None[P](), err
	}
	rows, err := c.Query(ctx, d.selectWhere(b, sq.Eq{column: scalar(value)}))
	if err != nil {
		return None[P](), err
	}
	switch len(rows) {
	case 0:
		return None[P](), nil
	case 1:
		p, err := d.mapper(rows[0])
		if err != nil {
			return None[P](), err
		}
		return Some(p), nil
	default:
		return None[P](), asyncdao.NewTooManyRowsError(len(rows))
	}
}

// Fetch returns every row matching cond.
func (d *DAO[P, K]) Fetch(ctx context.Context, cond sq.Sqlizer) ([]P, error) {
	c, b, err := d.prepare()
	if err != nil {
		return nil, err
	}
	return client.Fetch(ctx, c, d.selectWhere(b, cond), d.mapper)
}

// FetchBy returns the rows whose column matches values. A slice renders
// an IN list; an empty slice matches nothing.
func (d *DAO[P, K]) FetchBy(ctx context.Context, column string, values any) ([]P, error) {
	return d.Fetch(ctx, sq.Eq{column: values})
}

// DeleteByID deletes the row with the given id and returns the affected count.
func (d *DAO[P, K]) DeleteByID(ctx context.Context, id K) (int64, error) {
	cond, err := idCondition(d.table, id)
	if err != nil {
		return 0, err
	}
	return d.Delete(ctx, cond)
}

// DeleteByIDs deletes every row matching one of the ids.
func (d *DAO[P, K]) DeleteByIDs(ctx context.Context, ids ...K) (int64, error) {
	if !d.table.HasPrimaryKey() {
		return 0, fmt.Errorf("%s: %w", d.table.Name, asyncdao.ErrNoPrimaryKey)
	}
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	cond, err := idsCondition(d.table, values)
	if err != nil {
		return 0, err
	}
	return d.Delete(ctx, cond)
}

// Delete deletes the rows matching cond.
func (d *DAO[P, K]) Delete(ctx context.Context, cond sq.Sqlizer) (int64, error) {
	c, b, err := d.prepare()
	if err != nil {
		return 0, err
	}
	return client.Execute(ctx, c, b.Delete(d.table.Name).Where(cond))
}

// DeleteBy deletes the rows whose column equals value.
func (d *DAO[P, K]) DeleteBy(ctx context.Context, column string, value any) (int64, error) {
	return d.Delete(ctx, sq.Eq{column: scalar(value)})
}

// Update writes every non primary key column of obj to the row selected
// by obj's primary key values.
func (d *DAO[P, K]) Update(ctx context.Context, obj P) (int64, error) {
	c, b, err := d.prepare()
	if err != nil {
		return 0, err
	}
	if !d.table.HasPrimaryKey() {
		return 0, fmt.Errorf("%s: %w", d.table.Name, asyncdao.ErrNoPrimaryKey)
	}
	rec, err := obj.Record()
	if err != nil {
		return 0, err
	}
	where := make(sq.Eq, len(d.table.PrimaryKey))
	for _, pk := range d.table.PrimaryKey {
		where[pk] = scalar(rec[pk])
	}
	set := make(map[string]any, len(rec))
	for _, col := range d.table.Columns {
		if v, ok := rec[col]; ok && !d.table.IsPrimaryKey(col) {
			set[col] = v
		}
	}
	if len(set) == 0 {
		return 0, nil
	}
	return client.Execute(ctx, c, b.Update(d.table.Name).SetMap(set).Where(where))
}

// Insert inserts obj. Nil values are left out so column defaults apply.
func (d *DAO[P, K]) Insert(ctx context.Context, obj P) (int64, error) {
	c, b, err := d.prepare()
	if err != nil {
		return 0, err
	}
	q, err := d.insert(c, b, obj, false)
	if err != nil {
		return 0, err
	}
	return client.Execute(ctx, c, q)
}

// InsertReturningPrimary inserts obj and returns its generated primary key.
// Only tables with a single integer key column support it, and only on
// dialects that hand back generated keys.
func (d *DAO[P, K]) InsertReturningPrimary(ctx context.Context, obj P) (K, error) {
	var zero K
	if err := d.InsertReturningSupported(); err != nil {
		return zero, err
	}
	c, b, err := d.prepare()
	if err != nil {
		return zero, err
	}
	if dialect.InsertReturning(c.Dialect()) == dialect.KeyUnsupported {
		return zero, asyncdao.NewUnsupportedError("insertReturningPrimary", d.table.Name, asyncdao.ReasonDialect)
	}
	q, err := d.insert(c, b, obj, true)
	if err != nil {
		return zero, err
	}
	id, err := client.InsertReturning(ctx, c, q)
	if err != nil {
		return zero, err
	}
	return convertKey[K](id)
}

// InsertReturningSupported reports, through an asyncdao.UnsupportedError,
// whether the key shape allows InsertReturningPrimary.
func (d *DAO[P, K]) InsertReturningSupported() error {
	switch {
	case !d.table.HasPrimaryKey():
		return fmt.Errorf("%s: %w", d.table.Name, asyncdao.ErrNoPrimaryKey)
	case d.table.CompositeKey():
		return asyncdao.NewUnsupportedError("insertReturningPrimary", d.table.Name, asyncdao.ReasonCompositeKey)
	case !integerKey[K]():
		return asyncdao.NewUnsupportedError("insertReturningPrimary", d.table.Name, asyncdao.ReasonNonIntegerKey)
	}
	return nil
}

func (d *DAO[P, K]) insert(c client.Client, b sq.StatementBuilderType, obj P, returnKey bool) (sq.Sqlizer, error) {
	rec, err := obj.Record()
	if err != nil {
		return nil, err
	}
	var (
		cols []string
		vals []any
	)
	for _, col := range d.table.Columns {
		if v, ok := rec[col]; ok && v != nil {
			cols = append(cols, col)
			vals = append(vals, v)
		}
	}
	returning := ""
	if returnKey && len(d.table.PrimaryKey) == 1 && dialect.InsertReturning(c.Dialect()) == dialect.KeyReturning {
		returning = "RETURNING " + d.table.PrimaryKey[0]
	}
	if len(cols) == 0 {
		return defaultValues(c.Dialect(), d.table.Name, returning), nil
	}
	q := b.Insert(d.table.Name).Columns(cols...).Values(vals...)
	if returning != "" {
		q = q.Suffix(returning)
	}
	return q, nil
}

// defaultValues renders an INSERT without explicit values.
func defaultValues(name, table, returning string) sq.Sqlizer {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	if dialect.Normalize(name) == dialect.MySQL {
		sb.WriteString(" () VALUES ()")
	} else {
		sb.WriteString(" DEFAULT VALUES")
	}
	if returning != "" {
		sb.WriteString(" ")
		sb.WriteString(returning)
	}
	return sq.Expr(sb.String())
}
