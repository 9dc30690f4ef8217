package domain

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes an absent JSON field (Set == false) from an explicit
// null (Set && Null) and from a concrete value.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns a present Optional carrying the clear marker.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// OrZero returns the value, or the zero value when absent or null.
func (o Optional[T]) OrZero() T {
	if !o.Set || o.Null {
		var zero T
		return zero
	}
	return o.Value
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
