package dialect

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"mysql", MySQL},
		{"MariaDB", MySQL},
		{"postgres", Postgres},
		{"pgx", Postgres},
		{"postgresql", Postgres},
		{"sqlite", SQLite},
		{"sqlite3", SQLite},
		{" Oracle ", "oracle"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestBuilder(t *testing.T) {
	t.Run("postgres uses dollar placeholders", func(t *testing.T) {
		query, args, err := Builder(Postgres).Select("*").From("something").Where(sq.Eq{"someid": 1}).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM something WHERE someid = $1", query)
		assert.Equal(t, []any{1}, args)
	})

	t.Run("mysql uses question marks", func(t *testing.T) {
		query, _, err := Builder(MySQL).Delete("something").Where(sq.Eq{"someid": 1}).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "DELETE FROM something WHERE someid = ?", query)
	})
}

func TestInsertReturning(t *testing.T) {
	assert.Equal(t, KeyLastInsertID, InsertReturning(MySQL))
	assert.Equal(t, KeyLastInsertID, InsertReturning(SQLite))
	assert.Equal(t, KeyReturning, InsertReturning("pgx"))
	assert.Equal(t, KeyUnsupported, InsertReturning("oracle"))
	assert.Equal(t, "unsupported", KeyUnsupported.String())
	assert.Equal(t, "returning", KeyReturning.String())
}
