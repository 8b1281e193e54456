package dao

import (
	"slices"
)

// Table describes the table a DAO works on. Generated code declares one
// per table.
type Table struct {
	// Name is the table name as used in SQL.
	Name string
	// Columns lists every column in declaration order.
	Columns []string
	// PrimaryKey lists the primary key columns in key order.
	PrimaryKey []string
}

// HasPrimaryKey reports whether the table declares a primary key.
func (t *Table) HasPrimaryKey() bool {
	return len(t.PrimaryKey) > 0
}

// CompositeKey reports whether the primary key spans more than one column.
func (t *Table) CompositeKey() bool {
	return len(t.PrimaryKey) > 1
}

// IsPrimaryKey reports whether column is part of the primary key.
func (t *Table) IsPrimaryKey(column string) bool {
	return slices.Contains(t.PrimaryKey, column)
}

// selectColumns returns the projection for SELECT statements.
func (t *Table) selectColumns() []string {
	if len(t.Columns) == 0 {
		return []string{"*"}
	}
	return t.Columns
}

// Pojo is implemented by generated data classes.
type Pojo interface {
	// Record returns the column values to write, keyed by column name. SQL
	// NULL is represented by nil.
	Record() (map[string]any, error)
}

// Key is implemented by generated composite primary key types. KeyValues
// returns the values in primary key column order.
type Key interface {
	KeyValues() []any
}

// Optional holds a value that may be absent.
type Optional[P any] struct {
	Value   P
	Present bool
}

// Some returns a present Optional.
func Some[P any](v P) Optional[P] {
	return Optional[P]{Value: v, Present: true}
}

// None returns an empty Optional.
func None[P any]() Optional[P] {
	return Optional[P]{}
}

// Get returns the value and whether it is present.
func (o Optional[P]) Get() (P, bool) {
	return o.Value, o.Present
}
