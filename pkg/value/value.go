// Package value implements the schemaless dynamic value both wire codecs
// (pkg/dogstatsd, pkg/warehouse) consume and produce: typed accessors over
// an untyped payload, with no mutation of the underlying data by any
// accessor.
package value

// Value wraps an untyped payload (the result of decoding JSON, a
// DogStatsD datagram, or any other self-describing wire format) with typed
// accessors. A zero Value holds nil and every accessor reports !ok for it.
type Value struct {
	raw any
}

// Of wraps v as a Value.
func Of(v any) Value {
	return Value{raw: v}
}

// Raw returns the untyped payload.
func (v Value) Raw() any {
	return v.raw
}

// IsNil reports whether this value holds nothing.
func (v Value) IsNil() bool {
	return v.raw == nil
}

// String returns the value as a string.
func (v Value) String() (string, bool) {
	s, ok := v.raw.(string)
	return s, ok
}

// Float returns the value as a 64-bit float. Integer Go types are widened.
func (v Value) Float() (float64, bool) {
	switch n := v.raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Int returns the value as a signed 64-bit integer, truncating floats.
func (v Value) Int() (int64, bool) {
	switch n := v.raw.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// Uint32 returns the value as an unsigned 32-bit integer.
func (v Value) Uint32() (uint32, bool) {
	switch n := v.raw.(type) {
	case uint32:
		return n, true
	case int64:
		return uint32(n), true
	case int:
		return uint32(n), true
	case float64:
		return uint32(n), true
	default:
		return 0, false
	}
}

// Bool returns the value as a boolean.
func (v Value) Bool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, ok
}

// Bytes returns the value as a byte slice.
func (v Value) Bytes() ([]byte, bool) {
	b, ok := v.raw.([]byte)
	return b, ok
}

// Array returns the value as a slice of Values.
func (v Value) Array() ([]Value, bool) {
	switch a := v.raw.(type) {
	case []Value:
		return a, true
	case []any:
		out := make([]Value, len(a))
		for i, e := range a {
			out[i] = Of(e)
		}
		return out, true
	case []string:
		out := make([]Value, len(a))
		for i, e := range a {
			out[i] = Of(e)
		}
		return out, true
	default:
		return nil, false
	}
}

// Object returns the value as a record (map of field name to Value).
func (v Value) Object() (Record, bool) {
	switch m := v.raw.(type) {
	case Record:
		return m, true
	case map[string]any:
		out := make(Record, len(m))
		for k, e := range m {
			out[k] = Of(e)
		}
		return out, true
	default:
		return nil, false
	}
}

// Record is a schemaless field-name-keyed record, the shape both codecs
// build while decoding and walk while encoding.
type Record map[string]Value

// GetString looks up key and returns it as a string.
func (r Record) GetString(key string) (string, bool) {
	v, ok := r[key]
	if !ok {
		return "", false
	}
	return v.String()
}

// GetFloat looks up key and returns it as a float64.
func (r Record) GetFloat(key string) (float64, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	return v.Float()
}

// GetInt looks up key and returns it as an int64.
func (r Record) GetInt(key string) (int64, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	return v.Int()
}

// GetUint32 looks up key and returns it as a uint32.
func (r Record) GetUint32(key string) (uint32, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	return v.Uint32()
}

// GetArray looks up key and returns it as a slice of Values.
func (r Record) GetArray(key string) ([]Value, bool) {
	v, ok := r[key]
	if !ok {
		return nil, false
	}
	return v.Array()
}

// GetBool looks up key and returns it as a bool.
func (r Record) GetBool(key string) (bool, bool) {
	v, ok := r[key]
	if !ok {
		return false, false
	}
	return v.Bool()
}

// GetBytes looks up key and returns it as a byte slice.
func (r Record) GetBytes(key string) ([]byte, bool) {
	v, ok := r[key]
	if !ok {
		return nil, false
	}
	return v.Bytes()
}

// GetObject looks up key and returns it as a nested Record.
func (r Record) GetObject(key string) (Record, bool) {
	v, ok := r[key]
	if !ok {
		return nil, false
	}
	return v.Object()
}

// Set stores v under key, wrapping it as a Value.
func (r Record) Set(key string, v any) {
	r[key] = Of(v)
}
