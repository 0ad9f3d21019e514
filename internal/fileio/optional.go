package fileio

import (
	"bytes"
	"encoding/json"
)

// Optional is a field that may be absent from a payload. JSON null counts
// as absent. A value of the wrong JSON type is also treated as absent so
// that one malformed field does not reject the rest of a file.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a present Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	*o = Optional[T]{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	*o = Some(v)
	return nil
}

// Or returns the value, or def when absent.
func (o Optional[T]) Or(def T) T {
	if o.Set {
		return o.Value
	}
	return def
}

// Overlay returns patch when it is present and base otherwise.
func Overlay[T any](base, patch Optional[T]) Optional[T] {
	if patch.Set {
		return patch
	}
	return base
}

// apply calls fn with the value when present.
func apply[T any](o Optional[T], fn func(T)) {
	if o.Set {
		fn(o.Value)
	}
}
