package dao

import (
	"database/sql/driver"
	"fmt"
	"reflect"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/asyncdao"
)

// idCondition renders the WHERE condition selecting one row by primary key.
// Single column keys compare the column; composite keys compare every key
// column with the matching KeyValues entry.
func idCondition(t *Table, id any) (sq.Sqlizer, error) {
	switch len(t.PrimaryKey) {
	case 0:
		return nil, fmt.Errorf("%s: %w", t.Name, asyncdao.ErrNoPrimaryKey)
	case 1:
		return sq.Eq{t.PrimaryKey[0]: scalar(id)}, nil
	}
	k, ok := id.(Key)
	if !ok {
		return nil, asyncdao.NewUnsupportedError("idCondition", t.Name, asyncdao.ReasonKeyNotTuple)
	}
	values := k.KeyValues()
	if len(values) != len(t.PrimaryKey) {
		return nil, fmt.Errorf("asyncdao: %s: key has %d values, primary key has %d columns", t.Name, len(values), len(t.PrimaryKey))
	}
	eq := make(sq.Eq, len(values))
	for i, c := range t.PrimaryKey {
		eq[c] = scalar(values[i])
	}
	return eq, nil
}

// scalar unwraps driver.Valuer values. Array backed types such as
// uuid.UUID would otherwise render as a list in sq.Eq.
func scalar(v any) any {
	if vr, ok := v.(driver.Valuer); ok {
		if dv, err := vr.Value(); err == nil {
			return dv
		}
	}
	return v
}

// idsCondition matches any of the given ids.
func idsCondition(t *Table, ids []any) (sq.Sqlizer, error) {
	if len(t.PrimaryKey) == 1 {
		return sq.Eq{t.PrimaryKey[0]: ids}, nil
	}
	or := make(sq.Or, 0, len(ids))
	for _, id := range ids {
		c, err := idCondition(t, id)
		if err != nil {
			return nil, err
		}
		or = append(or, c)
	}
	return or, nil
}

// integerKey reports whether K is an integer type, the only key shape a
// generated key can be converted to.
func integerKey[K any]() bool {
	t := reflect.TypeFor[K]()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// convertKey turns the generated int64 key into K.
func convertKey[K any](id int64) (K, error) {
	var k K
	v := reflect.ValueOf(&k).Elem()
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.OverflowInt(id) {
			return k, fmt.Errorf("asyncdao: generated key %d overflows %s", id, v.Type())
		}
		v.SetInt(id)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if id < 0 || v.OverflowUint(uint64(id)) {
			return k, fmt.Errorf("asyncdao: generated key %d overflows %s", id, v.Type())
		}
		v.SetUint(uint64(id))
	default:
		return k, asyncdao.NewUnsupportedError("insertReturningPrimary", "", asyncdao.ReasonNonIntegerKey)
	}
	return k, nil
}
