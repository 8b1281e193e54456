package sql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/syssam/asyncdao"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		constraint bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'PRIMARY'"}, true},
		{"mysql other", &mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}, false},
		{"pq unique", &pq.Error{Code: "23505", Message: "duplicate key value"}, true},
		{"pq other", &pq.Error{Code: "42P01"}, false},
		{"pgconn unique", &pgconn.PgError{Code: "23505", Message: "duplicate key value"}, true},
		{"wrapped mysql", fmt.Errorf("exec: %w", &mysql.MySQLError{Number: 1062}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateError(tt.err)
			assert.Equal(t, tt.constraint, asyncdao.IsConstraintError(got))
			if tt.err != nil {
				assert.ErrorIs(t, got, tt.err)
			}
		})
	}
}

func TestTranslateErrorIdempotent(t *testing.T) {
	err := asyncdao.NewConstraintError("dup", nil)
	assert.Equal(t, err, TranslateError(err))
}
