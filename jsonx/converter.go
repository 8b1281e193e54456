package jsonx

import (
	"fmt"
)

// Converter maps between the value a database column stores and the
// value a POJO exposes.
type Converter[T any] interface {
	// From converts a database value. A nil input yields the zero T.
	From(v any) (T, error)
	// To converts back into a database value. The zero T yields nil.
	To(v T) (any, error)
}

// ObjectConverter stores an Object as JSON text.
type ObjectConverter struct{}

// From accepts JSON text, raw bytes, or an already decoded map (pgx
// decodes json and jsonb columns itself).
func (ObjectConverter) From(v any) (Object, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case Object:
		return v, nil
	case map[string]any:
		return Object(v), nil
	case string:
		return DecodeObject([]byte(v))
	case []byte:
		return DecodeObject(v)
	}
	return nil, fmt.Errorf("jsonx: cannot convert %T to object", v)
}

// To encodes the object, or returns nil for a nil object.
func (ObjectConverter) To(o Object) (any, error) {
	if o == nil {
		return nil, nil
	}
	return o.Encode()
}

// ArrayConverter stores an Array as JSON text.
type ArrayConverter struct{}

// From accepts JSON text, raw bytes, or an already decoded slice.
func (ArrayConverter) From(v any) (Array, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case Array:
		return v, nil
	case []any:
		return Array(v), nil
	case string:
		return DecodeArray([]byte(v))
	case []byte:
		return DecodeArray(v)
	}
	return nil, fmt.Errorf("jsonx: cannot convert %T to array", v)
}

// To encodes the array, or returns nil for a nil array.
func (ArrayConverter) To(a Array) (any, error) {
	if a == nil {
		return nil, nil
	}
	return a.Encode()
}

var (
	_ Converter[Object] = ObjectConverter{}
	_ Converter[Array]  = ArrayConverter{}
)
