// Package sql implements client.Client on top of database/sql.
//
// A Driver owns a *sql.DB pool. Each operation acquires a dedicated
// connection with DB.Conn, runs exactly one statement and closes the
// connection in a deferred call:
//
//	drv, err := sql.Open("mysql", dsn)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
//	rows, err := drv.Query(ctx, sq.Select("*").From("something"))
//
// Rows come back as jsonx.Object values keyed by column name (scanned with
// sqlx.MapScan). Text columns that a driver reports as []byte are turned
// into strings; binary columns keep their bytes.
//
// # Generated keys
//
// InsertReturning uses LastInsertId on MySQL and SQLite. On Postgres the
// statement must end with a RETURNING clause; its first column is scanned
// as the key.
//
// # Session variables
//
// Variables attached with WithVar are SET on the acquired connection before
// the statement and reset before the connection goes back to the pool:
//
//	ctx = sql.WithVar(ctx, "search_path", "tenant_a")
//
// # Errors
//
// Unique and primary key violations from go-sql-driver/mysql, lib/pq, pgx
// and modernc.org/sqlite are reported as asyncdao.ConstraintError; see
// TranslateError.
//
// # Instrumentation
//
// NewStatsClient and NewDebugClient wrap any client.Client to collect
// statement statistics or log every statement.
package sql
