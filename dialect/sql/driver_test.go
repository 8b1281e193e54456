package sql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/asyncdao"
	"github.com/syssam/asyncdao/dialect"
)

func newMock(t *testing.T, name string) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return OpenDB(name, db), mock
}

func TestWithVars(t *testing.T) {
	drv, mock := newMock(t, dialect.Postgres)
	q := sq.Expr("SELECT 1")

	mock.ExpectExec("SET foo = 'bar'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("RESET foo").WillReturnResult(sqlmock.NewResult(0, 0))
	_, err := drv.Query(WithVar(context.Background(), "foo", "bar"), q)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec("SET foo = 'bar'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SET foo = 'baz'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("RESET foo").WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = drv.Query(WithVar(WithVar(context.Background(), "foo", "bar"), "foo", "baz"), q)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec("SET foo = 'qux'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO users DEFAULT VALUES").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("RESET foo").WillReturnResult(sqlmock.NewResult(0, 0))
	n, err := drv.Exec(WithVar(context.Background(), "foo", "qux"), sq.Expr("INSERT INTO users DEFAULT VALUES"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())

	v, ok := VarFromContext(WithIntVar(context.Background(), "n", 3), "n")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestOpenDB(t *testing.T) {
	tests := []struct {
		name, driver, want string
	}{
		{"Postgres", "postgres", dialect.Postgres},
		{"pgx", "pgx", dialect.Postgres},
		{"MySQL", "mysql", dialect.MySQL},
		{"SQLite", "sqlite", dialect.SQLite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			drv := OpenDB(tt.driver, db)
			assert.Equal(t, tt.want, drv.Dialect())
			assert.Same(t, db, drv.DB())
		})
	}
}

func TestDriverQuery(t *testing.T) {
	drv, mock := newMock(t, dialect.MySQL)
	mock.ExpectQuery("SELECT someId, someString FROM something WHERE someId = ?").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"someId", "someString"}).AddRow(int64(1), "my_string"))

	rows, err := drv.Query(context.Background(),
		sq.Select("someId", "someString").From("something").Where(sq.Eq{"someId": 1}))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0]["someId"])
	assert.Equal(t, "my_string", rows[0]["someString"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverQueryError(t *testing.T) {
	drv, mock := newMock(t, dialect.MySQL)
	boom := errors.New("boom")
	mock.ExpectQuery("SELECT * FROM something").WillReturnError(boom)

	_, err := drv.Query(context.Background(), sq.Select("*").From("something"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, asyncdao.IsQueryError(err))
	require.NoError(t, mock.ExpectationsWereMet())

	// The connection went back to the pool: the next statement can run.
	mock.ExpectExec("DELETE FROM something").WillReturnResult(sqlmock.NewResult(0, 2))
	n, err := drv.Exec(context.Background(), sq.Delete("something"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverInsertReturning(t *testing.T) {
	t.Run("last insert id", func(t *testing.T) {
		drv, mock := newMock(t, dialect.MySQL)
		mock.ExpectExec("INSERT INTO something (someString) VALUES (?)").
			WithArgs("x").
			WillReturnResult(sqlmock.NewResult(42, 1))
		id, err := drv.InsertReturning(context.Background(), sq.Insert("something").Columns("someString").Values("x"))
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returning clause", func(t *testing.T) {
		drv, mock := newMock(t, dialect.Postgres)
		mock.ExpectQuery("INSERT INTO something (somestring) VALUES ($1) RETURNING someid").
			WithArgs("x").
			WillReturnRows(sqlmock.NewRows([]string{"someid"}).AddRow(int64(7)))
		q := dialect.Builder(dialect.Postgres).Insert("something").Columns("somestring").Values("x").Suffix("RETURNING someid")
		id, err := drv.InsertReturning(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returning nothing", func(t *testing.T) {
		drv, mock := newMock(t, dialect.Postgres)
		mock.ExpectQuery("INSERT INTO something DEFAULT VALUES").
			WillReturnRows(sqlmock.NewRows([]string{"someid"}))
		_, err := drv.InsertReturning(context.Background(), sq.Expr("INSERT INTO something DEFAULT VALUES"))
		require.Error(t, err)
		assert.True(t, asyncdao.IsUnsupported(err))
	})

	t.Run("unsupported dialect", func(t *testing.T) {
		drv, mock := newMock(t, "oracle")
		_, err := drv.InsertReturning(context.Background(), sq.Insert("something").Columns("a").Values(1))
		require.Error(t, err)
		assert.True(t, asyncdao.IsUnsupported(err))
		assert.Contains(t, err.Error(), asyncdao.ReasonDialect)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDriverBuildError(t *testing.T) {
	drv, mock := newMock(t, dialect.MySQL)
	// An insert without values does not render.
	_, err := drv.Exec(context.Background(), sq.Insert("something"))
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContextCancellation(t *testing.T) {
	drv, _ := newMock(t, dialect.MySQL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := drv.Query(ctx, sq.Select("1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNullValues(t *testing.T) {
	drv, mock := newMock(t, dialect.SQLite)
	mock.ExpectQuery("SELECT a, b FROM t").
		WillReturnRows(sqlmock.NewRows([]string{"a", "b"}).AddRow(nil, []byte{0x01}))
	rows, err := drv.Query(context.Background(), sq.Select("a", "b").From("t"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0]["a"])
	assert.True(t, rows[0].Has("a"))
	assert.Equal(t, []byte{0x01}, rows[0]["b"])
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"valid_simple", "foo", true},
		{"valid_with_underscore", "foo_bar", true},
		{"valid_with_dot", "schema.table", true},
		{"invalid_empty", "", false},
		{"invalid_starting_number", "123foo", false},
		{"invalid_with_quote", "foo'bar", false},
		{"invalid_with_semicolon", "foo;DROP TABLE", false},
		{"invalid_too_long", string(make([]byte, 129)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isValidIdentifier(tt.input))
		})
	}
}

func TestEscapeStringValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no_escaping_needed", "hello", "hello"},
		{"single_quote", "it's", "it''s"},
		{"backslash", `path\to\file`, `path\\to\\file`},
		{"sql_injection_attempt", "'; DROP TABLE users; --", "''; DROP TABLE users; --"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, escapeStringValue(tt.input))
		})
	}
}

func TestWithVarsInvalidIdentifier(t *testing.T) {
	drv, mock := newMock(t, dialect.Postgres)
	_, err := drv.Query(WithVar(context.Background(), "foo; DROP TABLE users; --", "bar"), sq.Expr("SELECT 1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session variable name")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithVarsResetOnSetFailure(t *testing.T) {
	drv, mock := newMock(t, dialect.MySQL)
	ctx := WithVar(WithVar(context.Background(), "a", "1"), "b", "2")

	mock.ExpectExec("SET a = '1'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SET b = '2'").WillReturnError(errors.New("bad var"))
	mock.ExpectExec("SET a = NULL").WillReturnResult(sqlmock.NewResult(0, 0))
	_, err := drv.Exec(ctx, sq.Expr("UPDATE t SET x = 1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad var")
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec("SET a = '1'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SET a = NULL").WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = drv.Query(WithVar(WithVar(context.Background(), "a", "1"), "bad name", "x"), sq.Expr("SELECT 1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session variable name")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatementAndResetFailure(t *testing.T) {
	drv, mock := newMock(t, dialect.Postgres)

	mock.ExpectExec("SET foo = 'bar'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("query failed"))
	mock.ExpectExec("RESET foo").WillReturnError(errors.New("reset failed"))
	_, err := drv.Query(WithVar(context.Background(), "foo", "bar"), sq.Expr("SELECT 1"))
	require.Error(t, err)
	var agg *asyncdao.AggregateError
	require.ErrorAs(t, err, &agg)
	require.Len(t, agg.Errors, 2)
	assert.True(t, asyncdao.IsQueryError(agg.Errors[0]))
	assert.Contains(t, agg.Errors[0].Error(), "query failed")
	assert.Contains(t, agg.Errors[1].Error(), "reset failed")
	require.NoError(t, mock.ExpectationsWereMet())
}
