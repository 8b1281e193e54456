package load

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/syssam/asyncdao/dialect"
)

// IntrospectOption configures Introspect.
type IntrospectOption func(*introspectConfig) error

type introspectConfig struct {
	tables     []string
	converters map[string]string
	logger     *slog.Logger
}

// WithTables limits introspection to the named tables.
func WithTables(names ...string) IntrospectOption {
	return func(c *introspectConfig) error {
		c.tables = append(c.tables, names...)
		return nil
	}
}

// WithConverter marks a text column, given as "table.column", as holding
// JSON of the given kind (ConverterJSONObject or ConverterJSONArray).
func WithConverter(column, kind string) IntrospectOption {
	return func(c *introspectConfig) error {
		if kind != ConverterJSONObject && kind != ConverterJSONArray {
			return fmt.Errorf("%w: unknown converter %q", ErrInvalidSchema, kind)
		}
		if !strings.Contains(column, ".") {
			return fmt.Errorf("%w: converter column %q is not of the form table.column", ErrInvalidSchema, column)
		}
		c.converters[column] = kind
		return nil
	}
}

// WithIntrospectLogger sets the logger reporting skipped tables.
func WithIntrospectLogger(l *slog.Logger) IntrospectOption {
	return func(c *introspectConfig) error {
		if l != nil {
			c.logger = l
		}
		return nil
	}
}

// inspector reads metadata of one dialect.
type inspector interface {
	tables(ctx context.Context) ([]string, error)
	columns(ctx context.Context, table string) ([]*Column, error)
	keys(ctx context.Context, table string) (pk []string, unique [][]string, err error)
}

// Introspect reads the tables of a live database. schemaName selects the
// MySQL database or the Postgres schema; empty means the current one.
func Introspect(ctx context.Context, db *sql.DB, d, schemaName string, opts ...IntrospectOption) (*Schema, error) {
	cfg := &introspectConfig{converters: make(map[string]string), logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	d = dialect.Normalize(d)
	x := sqlx.NewDb(db, d)
	var in inspector
	switch d {
	case dialect.MySQL:
		in = &mysqlInspector{db: x, schema: schemaName}
	case dialect.Postgres:
		if schemaName == "" {
			schemaName = "public"
		}
		in = &postgresInspector{db: x, schema: schemaName}
	case dialect.SQLite:
		in = &sqliteInspector{db: x}
	default:
		return nil, fmt.Errorf("load: introspect: unsupported dialect %q", d)
	}
	names, err := in.tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("load: list tables: %w", err)
	}
	all := slices.Clone(names)
	if len(cfg.tables) > 0 {
		for _, want := range cfg.tables {
			if !slices.Contains(names, want) {
				return nil, fmt.Errorf("load: table %q not found", want)
			}
		}
		names = slices.DeleteFunc(names, func(n string) bool { return !slices.Contains(cfg.tables, n) })
	}
	s := &Schema{Name: schemaName, Dialect: d}
	applied := make(map[string]bool, len(cfg.converters))
	for _, name := range names {
		t := &Table{Name: name}
		if t.Columns, err = in.columns(ctx, name); err != nil {
			return nil, fmt.Errorf("load: columns of %s: %w", name, err)
		}
		if len(t.Columns) == 0 {
			cfg.logger.Warn("skipping table without columns", slog.String("table", name))
			continue
		}
		if t.PrimaryKey, t.UniqueKeys, err = in.keys(ctx, name); err != nil {
			return nil, fmt.Errorf("load: keys of %s: %w", name, err)
		}
		for _, c := range t.Columns {
			if kind, ok := cfg.converters[name+"."+c.Name]; ok {
				c.Converter = kind
				applied[name+"."+c.Name] = true
			}
		}
		s.Tables = append(s.Tables, t)
	}
	// Converters of existing tables left out by WithTables are ignored.
	var unmatched []string
	for col := range cfg.converters {
		table, _, _ := strings.Cut(col, ".")
		if !applied[col] && (slices.Contains(names, table) || !slices.Contains(all, table)) {
			unmatched = append(unmatched, col)
		}
	}
	if len(unmatched) > 0 {
		sort.Strings(unmatched)
		return nil, fmt.Errorf("%w: converter for %s matches no introspected column", ErrInvalidSchema, strings.Join(unmatched, ", "))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

type mysqlInspector struct {
	db     *sqlx.DB
	schema string
}

// schemaExpr returns the condition argument selecting the inspected database.
func (i *mysqlInspector) schemaExpr() (string, []any) {
	if i.schema == "" {
		return "DATABASE()", nil
	}
	return "?", []any{i.schema}
}

func (i *mysqlInspector) tables(ctx context.Context) ([]string, error) {
	expr, args := i.schemaExpr()
	var names []string
	err := i.db.SelectContext(ctx, &names,
		"SELECT table_name AS name FROM information_schema.tables WHERE table_schema = "+expr+
			" AND table_type = 'BASE TABLE' ORDER BY table_name", args...)
	return names, err
}

type mysqlColumn struct {
	Name     string         `db:"name"`
	Type     string         `db:"type"`
	Nullable string         `db:"nullable"`
	Default  sql.NullString `db:"dflt"`
	Extra    string         `db:"extra"`
	Comment  string         `db:"comment"`
}

func (i *mysqlInspector) columns(ctx context.Context, table string) ([]*Column, error) {
	expr, args := i.schemaExpr()
	var rows []mysqlColumn
	err := i.db.SelectContext(ctx, &rows,
		"SELECT column_name AS name, column_type AS type, is_nullable AS nullable, column_default AS dflt, "+
			"extra AS extra, column_comment AS comment FROM information_schema.columns "+
			"WHERE table_schema = "+expr+" AND table_name = ? ORDER BY ordinal_position",
		append(args, table)...)
	if err != nil {
		return nil, err
	}
	columns := make([]*Column, 0, len(rows))
	for _, r := range rows {
		c := &Column{
			Name:          r.Name,
			Type:          r.Type,
			Nullable:      r.Nullable == "YES",
			AutoIncrement: strings.Contains(strings.ToLower(r.Extra), "auto_increment"),
			Comment:       r.Comment,
		}
		if r.Default.Valid {
			c.Default = &r.Default.String
		}
		columns = append(columns, c)
	}
	return columns, nil
}

type indexColumn struct {
	Index  string `db:"idx"`
	Unique bool   `db:"uniq"`
	Column string `db:"col"`
}

func (i *mysqlInspector) keys(ctx context.Context, table string) ([]string, [][]string, error) {
	expr, args := i.schemaExpr()
	var rows []indexColumn
	err := i.db.SelectContext(ctx, &rows,
		"SELECT index_name AS idx, non_unique = 0 AS uniq, column_name AS col FROM information_schema.statistics "+
			"WHERE table_schema = "+expr+" AND table_name = ? ORDER BY index_name, seq_in_index",
		append(args, table)...)
	if err != nil {
		return nil, nil, err
	}
	return groupKeys(rows, func(name string) bool { return name == "PRIMARY" })
}

type postgresInspector struct {
	db     *sqlx.DB
	schema string
}

func (i *postgresInspector) tables(ctx context.Context) ([]string, error) {
	var names []string
	err := i.db.SelectContext(ctx, &names,
		"SELECT table_name AS name FROM information_schema.tables WHERE table_schema = $1 "+
			"AND table_type = 'BASE TABLE' ORDER BY table_name", i.schema)
	return names, err
}

type postgresColumn struct {
	Name     string         `db:"name"`
	Type     string         `db:"type"`
	UDT      string         `db:"udt"`
	Length   sql.NullInt64  `db:"length"`
	Nullable string         `db:"nullable"`
	Default  sql.NullString `db:"dflt"`
	Identity string         `db:"identity"`
}

func (i *postgresInspector) columns(ctx context.Context, table string) ([]*Column, error) {
	var rows []postgresColumn
	err := i.db.SelectContext(ctx, &rows,
		"SELECT column_name AS name, data_type AS type, udt_name AS udt, character_maximum_length AS length, "+
			"is_nullable AS nullable, column_default AS dflt, is_identity AS identity "+
			"FROM information_schema.columns WHERE table_schema = $1 AND table_name = $2 ORDER BY ordinal_position",
		i.schema, table)
	if err != nil {
		return nil, err
	}
	columns := make([]*Column, 0, len(rows))
	for _, r := range rows {
		c := &Column{
			Name:     r.Name,
			Type:     r.Type,
			Nullable: r.Nullable == "YES",
		}
		if r.Length.Valid {
			c.Type = fmt.Sprintf("%s(%d)", r.Type, r.Length.Int64)
		}
		if r.Default.Valid {
			c.Default = &r.Default.String
			c.AutoIncrement = strings.HasPrefix(r.Default.String, "nextval(")
		}
		if r.Identity == "YES" {
			c.AutoIncrement = true
		}
		if r.Type == "USER-DEFINED" {
			c.Type = r.UDT
			if c.Enum, err = i.enumValues(ctx, r.UDT); err != nil {
				return nil, err
			}
		}
		columns = append(columns, c)
	}
	return columns, nil
}

func (i *postgresInspector) enumValues(ctx context.Context, typ string) ([]string, error) {
	var values []string
	err := i.db.SelectContext(ctx, &values,
		"SELECT e.enumlabel FROM pg_enum e JOIN pg_type t ON t.oid = e.enumtypid "+
			"WHERE t.typname = $1 ORDER BY e.enumsortorder", typ)
	return values, err
}

func (i *postgresInspector) keys(ctx context.Context, table string) ([]string, [][]string, error) {
	var rows []struct {
		indexColumn
		Primary bool `db:"prim"`
	}
	err := i.db.SelectContext(ctx, &rows,
		"SELECT c.relname AS idx, ix.indisunique AS uniq, ix.indisprimary AS prim, a.attname AS col "+
			"FROM pg_index ix JOIN pg_class c ON c.oid = ix.indexrelid "+
			"JOIN pg_class t ON t.oid = ix.indrelid JOIN pg_namespace n ON n.oid = t.relnamespace "+
			"JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord) ON true "+
			"JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum "+
			"WHERE n.nspname = $1 AND t.relname = $2 ORDER BY c.relname, k.ord",
		i.schema, table)
	if err != nil {
		return nil, nil, err
	}
	primary := make(map[string]bool)
	cols := make([]indexColumn, len(rows))
	for j, r := range rows {
		cols[j] = r.indexColumn
		if r.Primary {
			primary[r.Index] = true
		}
	}
	return groupKeys(cols, func(name string) bool { return primary[name] })
}

type sqliteInspector struct {
	db *sqlx.DB
}

func (i *sqliteInspector) tables(ctx context.Context) ([]string, error) {
	var names []string
	err := i.db.SelectContext(ctx, &names,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	return names, err
}

type sqliteColumn struct {
	CID     int            `db:"cid"`
	Name    string         `db:"name"`
	Type    string         `db:"type"`
	NotNull bool           `db:"notnull"`
	Default sql.NullString `db:"dflt_value"`
	PK      int            `db:"pk"`
}

func (i *sqliteInspector) columns(ctx context.Context, table string) ([]*Column, error) {
	rows, err := i.tableInfo(ctx, table)
	if err != nil {
		return nil, err
	}
	pks := 0
	for _, r := range rows {
		if r.PK > 0 {
			pks++
		}
	}
	columns := make([]*Column, 0, len(rows))
	for _, r := range rows {
		c := &Column{
			Name:     r.Name,
			Type:     r.Type,
			Nullable: !r.NotNull && r.PK == 0,
			// A single INTEGER PRIMARY KEY aliases the rowid.
			AutoIncrement: pks == 1 && r.PK == 1 && strings.EqualFold(r.Type, "integer"),
		}
		if r.Default.Valid {
			c.Default = &r.Default.String
		}
		columns = append(columns, c)
	}
	return columns, nil
}

func (i *sqliteInspector) tableInfo(ctx context.Context, table string) ([]sqliteColumn, error) {
	var rows []sqliteColumn
	err := i.db.SelectContext(ctx, &rows, "SELECT cid, name, type, \"notnull\", dflt_value, pk FROM pragma_table_info(?)", table)
	return rows, err
}

func (i *sqliteInspector) keys(ctx context.Context, table string) ([]string, [][]string, error) {
	info, err := i.tableInfo(ctx, table)
	if err != nil {
		return nil, nil, err
	}
	sort.SliceStable(info, func(a, b int) bool { return info[a].PK < info[b].PK })
	var pk []string
	for _, r := range info {
		if r.PK > 0 {
			pk = append(pk, r.Name)
		}
	}
	var rows []indexColumn
	err = i.db.SelectContext(ctx, &rows,
		"SELECT il.name AS idx, il.\"unique\" AS uniq, ii.name AS col "+
			"FROM pragma_index_list(?) AS il, pragma_index_info(il.name) AS ii "+
			"WHERE il.origin <> 'pk' ORDER BY il.name, ii.seqno", table)
	if err != nil {
		return nil, nil, err
	}
	_, unique, err := groupKeys(rows, func(string) bool { return false })
	return pk, unique, err
}

// groupKeys folds index rows ordered by index into the primary key and
// the unique keys. Non-unique indexes are dropped.
func groupKeys(rows []indexColumn, isPrimary func(index string) bool) ([]string, [][]string, error) {
	var (
		pk     []string
		unique [][]string
		last   string
	)
	for _, r := range rows {
		switch {
		case isPrimary(r.Index):
			pk = append(pk, r.Column)
		case !r.Unique:
		case r.Index != last || len(unique) == 0:
			unique = append(unique, []string{r.Column})
		default:
			unique[len(unique)-1] = append(unique[len(unique)-1], r.Column)
		}
		last = r.Index
	}
	return pk, unique, nil
}
