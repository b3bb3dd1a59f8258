package patch

import (
	"bytes"
	"encoding/json"
)

// Field is a tri-state optional used in partial-update payloads. It keeps
// the distinction between "key not present" (leave the field untouched),
// "key present with null" (explicitly clear the field) and "key present
// with a value" (overwrite).
type Field[T any] struct {
	set   bool
	null  bool
	value T
}

// Set returns a Field carrying a value.
func Set[T any](v T) Field[T] {
	return Field[T]{set: true, value: v}
}

// Null returns a Field that explicitly clears its target.
func Null[T any]() Field[T] {
	return Field[T]{set: true, null: true}
}

// Present reports whether the key appeared in the payload at all.
func (f Field[T]) Present() bool { return f.set }

// IsNull reports whether the key was an explicit null.
func (f Field[T]) IsNull() bool { return f.set && f.null }

// Value returns the carried value and whether one was provided
// (present and not null).
func (f Field[T]) Value() (T, bool) {
	if !f.set || f.null {
		var zero T
		return zero, false
	}
	return f.value, true
}

// UnmarshalJSON is only invoked by encoding/json when the key exists, so a
// decoded Field is always Present.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.set = true
	if bytes.Equal(data, []byte("null")) {
		f.null = true
		return nil
	}
	return json.Unmarshal(data, &f.value)
}

// MarshalJSON round-trips the tri-state as value-or-null; an absent field
// should be omitted by the caller instead.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.set || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
