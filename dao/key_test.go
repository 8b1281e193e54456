package dao

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDConditionUUID(t *testing.T) {
	id := uuid.MustParse("6f1c2a4e-7d3b-4b6e-9b2a-0c5d8e1f2a3b")
	cond, err := idCondition(&Table{Name: "t", PrimaryKey: []string{"id"}}, id)
	require.NoError(t, err)

	sql, args, err := cond.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "id = ?", sql)
	assert.Equal(t, []any{id.String()}, args)
}

func TestScalar(t *testing.T) {
	assert.Equal(t, int32(4), scalar(int32(4)))
	assert.Nil(t, scalar(nil))
	assert.Equal(t, "x", scalar("x"))

	sql, args, err := sq.Eq{"c": scalar(uuid.Nil)}.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "c = ?", sql)
	assert.Len(t, args, 1)
}
