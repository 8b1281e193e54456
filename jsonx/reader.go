package jsonx

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Mode selects how a Reader interprets text values.
type Mode uint8

const (
	// ModeJSON reads decoded JSON documents: bytes arrive base64 encoded and
	// timestamps as RFC 3339 text.
	ModeJSON Mode = iota
	// ModeRow reads database rows: bytes are raw and timestamps may already
	// be time.Time.
	ModeRow
)

// FieldError reports a value that could not be read into its Go type.
type FieldError struct {
	Key string
	Err error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("jsonx: field %q: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error { return e.Err }

// Reader reads typed values out of an Object. Missing keys and nulls read
// as nil. The first conversion failure is kept and reported by Err; later
// reads still run so a caller can check once at the end.
//
//	r := jsonx.NewReader(o)
//	p.ID = r.Int32("id")
//	p.Name = r.String("name")
//	if err := r.Err(); err != nil {
//	    return err
//	}
type Reader struct {
	obj  Object
	mode Mode
	err  error
}

// NewReader returns a Reader over a JSON document.
func NewReader(o Object) *Reader {
	return &Reader{obj: o, mode: ModeJSON}
}

// NewRowReader returns a Reader over a database row.
func NewRowReader(row Object) *Reader {
	return &Reader{obj: row, mode: ModeRow}
}

// Err returns the first error encountered.
func (r *Reader) Err() error { return r.err }

// Mode returns the reader mode.
func (r *Reader) Mode() Mode { return r.mode }

// Raw returns the raw value under key.
func (r *Reader) Raw(key string) any { return r.obj[key] }

func (r *Reader) fail(key string, err error) {
	if r.err == nil {
		r.err = &FieldError{Key: key, Err: err}
	}
}

func read[T any](r *Reader, key string, conv func(any) (T, error)) *T {
	v, ok := r.obj[key]
	if !ok || v == nil {
		return nil
	}
	out, err := conv(v)
	if err != nil {
		r.fail(key, err)
		return nil
	}
	return &out
}

func readInt[T ~int8 | ~int16 | ~int32 | ~int64](r *Reader, key string, bits int) *T {
	return read(r, key, func(v any) (T, error) {
		n, err := toInt64(v, bits)
		return T(n), err
	})
}

// Int8 reads a tinyint value.
func (r *Reader) Int8(key string) *int8 { return readInt[int8](r, key, 8) }

// Int16 reads a smallint value.
func (r *Reader) Int16(key string) *int16 { return readInt[int16](r, key, 16) }

// Int32 reads an int value.
func (r *Reader) Int32(key string) *int32 { return readInt[int32](r, key, 32) }

// Int64 reads a bigint value.
func (r *Reader) Int64(key string) *int64 { return readInt[int64](r, key, 64) }

// Float32 reads a float value.
func (r *Reader) Float32(key string) *float32 {
	return read(r, key, func(v any) (float32, error) {
		f, err := toFloat64(v)
		return float32(f), err
	})
}

// Float64 reads a double value.
func (r *Reader) Float64(key string) *float64 { return read(r, key, toFloat64) }

// Bool reads a boolean. Integers are true when non-zero.
func (r *Reader) Bool(key string) *bool { return read(r, key, toBool) }

// String reads a text value.
func (r *Reader) String(key string) *string { return read(r, key, toString) }

// Bytes reads a binary value. In ModeJSON text is base64 decoded.
func (r *Reader) Bytes(key string) []byte {
	b := read(r, key, func(v any) ([]byte, error) {
		return toBytes(v, r.mode == ModeJSON)
	})
	if b == nil {
		return nil
	}
	return *b
}

// Time reads a timestamp.
func (r *Reader) Time(key string) *time.Time { return read(r, key, toTime) }

// UUID reads a uuid value.
func (r *Reader) UUID(key string) *uuid.UUID { return read(r, key, toUUID) }

// Object reads a nested object, decoding JSON text when needed.
func (r *Reader) Object(key string) Object {
	o := read(r, key, ObjectConverter{}.From)
	if o == nil {
		return nil
	}
	return *o
}

// Array reads a nested array, decoding JSON text when needed.
func (r *Reader) Array(key string) Array {
	a := read(r, key, ArrayConverter{}.From)
	if a == nil {
		return nil
	}
	return *a
}

// ReadEnum reads an enum literal. Literals outside values read as nil.
func ReadEnum[E ~string](r *Reader, key string, values []E) *E {
	s := r.String(key)
	if s == nil {
		return nil
	}
	if i := slices.Index(values, E(*s)); i >= 0 {
		e := values[i]
		return &e
	}
	return nil
}
