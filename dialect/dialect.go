package dialect

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Dialect names.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite3"
	Postgres = "postgres"
)

// KeyStrategy tells how a dialect hands back the key generated by an INSERT.
type KeyStrategy uint8

const (
	// KeyUnsupported means the dialect has no generated-key path.
	KeyUnsupported KeyStrategy = iota
	// KeyLastInsertID reads sql.Result.LastInsertId.
	KeyLastInsertID
	// KeyReturning appends a RETURNING clause and scans the returned column.
	KeyReturning
)

// String implements fmt.Stringer.
func (k KeyStrategy) String() string {
	switch k {
	case KeyLastInsertID:
		return "last-insert-id"
	case KeyReturning:
		return "returning"
	default:
		return "unsupported"
	}
}

// Normalize maps driver names and aliases to one of the dialect constants.
// Unknown names are returned lower-cased.
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case n == "pgx" || n == "postgresql" || strings.HasPrefix(n, Postgres):
		return Postgres
	case n == "mariadb" || strings.HasPrefix(n, MySQL):
		return MySQL
	case strings.HasPrefix(n, "sqlite"):
		return SQLite
	}
	return n
}

// Placeholder returns the bind-parameter format for the dialect.
func Placeholder(name string) sq.PlaceholderFormat {
	if Normalize(name) == Postgres {
		return sq.Dollar
	}
	return sq.Question
}

// Builder returns a statement builder that renders placeholders for the dialect.
func Builder(name string) sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(Placeholder(name))
}

// InsertReturning reports how the dialect returns generated keys.
func InsertReturning(name string) KeyStrategy {
	switch Normalize(name) {
	case MySQL, SQLite:
		return KeyLastInsertID
	case Postgres:
		return KeyReturning
	default:
		return KeyUnsupported
	}
}
