// Package dialect names the SQL dialects asyncdao runs against and
// describes what each one supports.
//
// # Supported Dialects
//
//   - Postgres: PostgreSQL, through database/sql (lib/pq) or pgxpool
//   - MySQL: MySQL/MariaDB
//   - SQLite: SQLite (modernc.org/sqlite)
//
// # Placeholders
//
// Queries are built with squirrel. Builder returns a statement builder with
// the bind format of the dialect:
//
//	b := dialect.Builder(dialect.Postgres)
//	q := b.Select("*").From("something").Where(sq.Eq{"someid": 1})
//	// SELECT * FROM something WHERE someid = $1
//
// # Generated keys
//
// InsertReturning reports how an INSERT hands back its generated key.
// MySQL and SQLite expose the last insert id; Postgres needs a RETURNING
// clause. Every other dialect is unsupported and insert-returning fails
// with asyncdao.ErrUnsupported.
package dialect
