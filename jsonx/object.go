// Package jsonx is the JSON document model shared by generated POJOs and
// the query runtime. Database rows are represented as Objects too, keyed by
// column name.
package jsonx

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"
)

// Object is a JSON object.
type Object map[string]any

// Array is a JSON array.
type Array []any

// Get returns the raw value stored under key.
func (o Object) Get(key string) any {
	return o[key]
}

// Has reports whether key is present, even when it holds null.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Put stores the value and returns the object for chaining.
func (o Object) Put(key string, v any) Object {
	o[key] = v
	return o
}

// Copy returns a shallow copy of the object.
func (o Object) Copy() Object {
	if o == nil {
		return nil
	}
	return maps.Clone(o)
}

// Encode returns the JSON encoding of the object.
func (o Object) Encode() (string, error) {
	b, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("jsonx: encode object: %w", err)
	}
	return string(b), nil
}

// String implements fmt.Stringer.
func (o Object) String() string {
	s, err := o.Encode()
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(o))
	}
	return s
}

// Encode returns the JSON encoding of the array.
func (a Array) Encode() (string, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("jsonx: encode array: %w", err)
	}
	return string(b), nil
}

// DecodeObject parses a JSON object.
func DecodeObject(data []byte) (Object, error) {
	var o Object
	if err := decode(data, &o); err != nil {
		return nil, fmt.Errorf("jsonx: decode object: %w", err)
	}
	return o, nil
}

// DecodeArray parses a JSON array.
func DecodeArray(data []byte) (Array, error) {
	var a Array
	if err := decode(data, &a); err != nil {
		return nil, fmt.Errorf("jsonx: decode array: %w", err)
	}
	return a, nil
}

// decode keeps numbers as json.Number so 64-bit ids survive the round trip.
func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytesReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// Deref returns the pointed-to value, or nil for a nil pointer. Generated
// ToJSON methods use it so objects hold plain values instead of pointers.
func Deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// Value dereferences p, falling back to the zero value.
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Time renders a timestamp the way it is stored in JSON documents.
func Time(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// Bytes returns b, or an untyped nil for a nil slice so that unset binary
// fields are left out of inserts.
func Bytes(b []byte) any {
	if b == nil {
		return nil
	}
	return b
}
