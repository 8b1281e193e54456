// Package daotest holds the fixtures shared by the runtime tests: two
// tables, hand-written POJOs shaped like generated ones and an in-memory
// SQLite client.
package daotest

import (
	"database/sql"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/asyncdao/dao"
	"github.com/syssam/asyncdao/dialect"
	dsql "github.com/syssam/asyncdao/dialect/sql"
	"github.com/syssam/asyncdao/jsonx"
)

// Schema creates the fixture tables.
const Schema = `
CREATE TABLE something (
	someId INTEGER PRIMARY KEY AUTOINCREMENT,
	someString VARCHAR(45),
	someHugeNumber BIGINT,
	someSmallNumber SMALLINT,
	someBoolean BOOLEAN,
	someDouble DOUBLE,
	someJsonObject VARCHAR(45),
	someJsonArray VARCHAR(45)
);
CREATE UNIQUE INDEX something_someString ON something (someString);
CREATE TABLE somethingComposite (
	someId INTEGER NOT NULL,
	someSecondId INTEGER NOT NULL,
	someJsonObject VARCHAR(45),
	PRIMARY KEY (someId, someSecondId)
);
`

// SomethingTable describes the something table.
var SomethingTable = &dao.Table{
	Name:       "something",
	Columns:    []string{"someId", "someString", "someHugeNumber", "someSmallNumber", "someBoolean", "someDouble", "someJsonObject", "someJsonArray"},
	PrimaryKey: []string{"someId"},
}

// CompositeTable describes the somethingComposite table.
var CompositeTable = &dao.Table{
	Name:       "somethingComposite",
	Columns:    []string{"someId", "someSecondId", "someJsonObject"},
	PrimaryKey: []string{"someId", "someSecondId"},
}

// Something is a row of the something table.
type Something struct {
	SomeID          *int32
	SomeString      *string
	SomeHugeNumber  *int64
	SomeSmallNumber *int16
	SomeBoolean     *bool
	SomeDouble      *float64
	SomeJSONObject  jsonx.Object
	SomeJSONArray   jsonx.Array
}

// Record implements dao.Pojo.
func (s *Something) Record() (map[string]any, error) {
	obj, err := jsonx.ObjectConverter{}.To(s.SomeJSONObject)
	if err != nil {
		return nil, err
	}
	arr, err := jsonx.ArrayConverter{}.To(s.SomeJSONArray)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"someId":          jsonx.Deref(s.SomeID),
		"someString":      jsonx.Deref(s.SomeString),
		"someHugeNumber":  jsonx.Deref(s.SomeHugeNumber),
		"someSmallNumber": jsonx.Deref(s.SomeSmallNumber),
		"someBoolean":     jsonx.Deref(s.SomeBoolean),
		"someDouble":      jsonx.Deref(s.SomeDouble),
		"someJsonObject":  obj,
		"someJsonArray":   arr,
	}, nil
}

// MapSomething maps a row to Something.
func MapSomething(row jsonx.Object) (*Something, error) {
	r := jsonx.NewRowReader(row)
	s := &Something{
		SomeID:          r.Int32("someId"),
		SomeString:      r.String("someString"),
		SomeHugeNumber:  r.Int64("someHugeNumber"),
		SomeSmallNumber: r.Int16("someSmallNumber"),
		SomeBoolean:     r.Bool("someBoolean"),
		SomeDouble:      r.Float64("someDouble"),
		SomeJSONObject:  r.Object("someJsonObject"),
		SomeJSONArray:   r.Array("someJsonArray"),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// CompositeKey is the primary key of somethingComposite.
type CompositeKey struct {
	SomeID       int32
	SomeSecondID int32
}

// KeyValues implements dao.Key.
func (k CompositeKey) KeyValues() []any {
	return []any{k.SomeID, k.SomeSecondID}
}

// Composite is a row of the somethingComposite table.
type Composite struct {
	SomeID         int32
	SomeSecondID   int32
	SomeJSONObject jsonx.Object
}

// Record implements dao.Pojo.
func (c *Composite) Record() (map[string]any, error) {
	obj, err := jsonx.ObjectConverter{}.To(c.SomeJSONObject)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"someId":         c.SomeID,
		"someSecondId":   c.SomeSecondID,
		"someJsonObject": obj,
	}, nil
}

// MapComposite maps a row to Composite.
func MapComposite(row jsonx.Object) (*Composite, error) {
	r := jsonx.NewRowReader(row)
	c := &Composite{
		SomeID:         jsonx.Value(r.Int32("someId")),
		SomeSecondID:   jsonx.Value(r.Int32("someSecondId")),
		SomeJSONObject: r.Object("someJsonObject"),
	}
	return c, r.Err()
}

var seq atomic.Int64

// NewSomething returns a Something without id and with distinct values.
func NewSomething() *Something {
	n := seq.Add(1)
	return &Something{
		SomeString:      jsonx.Ptr(fmt.Sprintf("my_string_%d", n)),
		SomeHugeNumber:  jsonx.Ptr(rand.Int64()),
		SomeSmallNumber: jsonx.Ptr(int16(rand.IntN(1 << 15))),
		SomeBoolean:     jsonx.Ptr(true),
		SomeDouble:      jsonx.Ptr(rand.Float64()),
		SomeJSONObject:  jsonx.Object{"key": "value"},
		SomeJSONArray:   jsonx.Array{"value"},
	}
}

// Open returns a client over a fresh in-memory database holding the
// fixture schema. The pool keeps a single connection so every statement
// sees the same database.
func Open(t testing.TB) *dsql.Driver {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(Schema)
	require.NoError(t, err)
	return dsql.OpenDB(dialect.SQLite, db)
}
