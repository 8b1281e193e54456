package sql

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/syssam/asyncdao"
)

// Driver specific codes for unique and primary key violations.
const (
	mysqlDupEntry         = 1062
	mysqlDupEntryWithKey  = 1586
	postgresUniqueViolate = "23505"
)

// TranslateError turns unique and primary key violations reported by the
// supported drivers into asyncdao.ConstraintError. Other errors are
// returned unchanged.
func TranslateError(err error) error {
	if err == nil || asyncdao.IsConstraintError(err) {
		return err
	}
	var (
		myErr   *mysql.MySQLError
		pqErr   *pq.Error
		pgErr   *pgconn.PgError
		liteErr *sqlite.Error
	)
	switch {
	case errors.As(err, &myErr):
		if myErr.Number == mysqlDupEntry || myErr.Number == mysqlDupEntryWithKey {
			return asyncdao.NewConstraintError(myErr.Message, err)
		}
	case errors.As(err, &pqErr):
		if pqErr.Code == postgresUniqueViolate {
			return asyncdao.NewConstraintError(pqErr.Message, err)
		}
	case errors.As(err, &pgErr):
		if pgErr.Code == postgresUniqueViolate {
			return asyncdao.NewConstraintError(pgErr.Message, err)
		}
	case errors.As(err, &liteErr):
		switch code := liteErr.Code(); {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return asyncdao.NewConstraintError(liteErr.Error(), err)
		case code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE constraint failed"):
			// Extended result codes are off for this connection.
			return asyncdao.NewConstraintError(liteErr.Error(), err)
		}
	}
	return err
}
