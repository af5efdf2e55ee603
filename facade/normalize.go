package facade

import (
	"fmt"
	"reflect"
	"time"
)

// maxNormalizeDepth bounds recursion. Upstream records are flat in practice;
// past the bound values are stringified instead of descending further.
const maxNormalizeDepth = 64

// ISO8601er is a timestamp-like value that can render itself as an
// ISO-8601 string.
type ISO8601er interface {
	ISO8601() string
}

// EnumNamer is an enumeration-like value exposing its symbolic name.
type EnumNamer interface {
	EnumName() string
}

// RawValuer is a wrapper-like value exposing the value it carries.
type RawValuer interface {
	RawValue() any
}

// Normalize recursively converts an arbitrary value into a JSON-safe tree of
// nil, bool, string, numbers, []any, and map[string]any. Dispatch order,
// first match wins:
//
//  1. nil (including typed nil pointers)
//  2. primitives, returned unchanged
//  3. time.Time, as RFC 3339 (zero time becomes nil)
//  4. sequences, element-wise, order preserved
//  5. string-keyed maps, value-wise
//  6. ISO8601er, EnumNamer, RawValuer capabilities
//  7. fmt.Stringer
//  8. fmt.Sprintf fallback
//
// Normalize is idempotent on its own output.
func Normalize(v any) any {
	return normalize(v, 0)
}

func normalize(v any, depth int) any {
	if v == nil {
		return nil
	}
	if depth >= maxNormalizeDepth {
		return fmt.Sprintf("%v", v)
	}

	switch val := v.(type) {
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return val
	case time.Time:
		if val.IsZero() {
			return nil
		}
		return val.UTC().Format(time.RFC3339)
	case *time.Time:
		if val == nil || val.IsZero() {
			return nil
		}
		return val.UTC().Format(time.RFC3339)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item, depth+1)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item, depth+1)
		}
		return out
	}

	rv := reflect.ValueOf(v)

	// Containers outrank the capability checks: a named slice or map type is
	// still a sequence or map first.
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Array, reflect.Map:
		return normalizeReflect(rv, depth)
	}

	// Capability checks, in priority order
	if iso, ok := v.(ISO8601er); ok {
		return iso.ISO8601()
	}
	if named, ok := v.(EnumNamer); ok {
		return named.EnumName()
	}
	if wrapper, ok := v.(RawValuer); ok {
		return normalize(wrapper.RawValue(), depth+1)
	}

	return normalizeReflect(rv, depth)
}

// normalizeReflect handles named types and containers that the concrete type
// switch cannot see: []Competition, map[string]int, type aliases, pointers.
func normalizeReflect(rv reflect.Value, depth int) any {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface(), depth)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = normalize(rv.Index(i).Interface(), depth+1)
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalize(iter.Value().Interface(), depth+1)
		}
		return out
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	}

	if s, ok := rv.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", rv.Interface())
}
