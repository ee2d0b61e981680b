// Package optional provides a presence-aware value for patch style updates, so
// "not provided" stays distinguishable from "explicitly set to the zero value".
package optional

import (
	"bytes"
	"encoding/json"
)

type Value[T any] struct {
	v   T
	set bool
}

func Some[T any](v T) Value[T] {
	return Value[T]{v: v, set: true}
}

func (o Value[T]) IsSet() bool { return o.set }

// Get returns the value and whether it was provided.
func (o Value[T]) Get() (T, bool) { return o.v, o.set }

// Or returns the value when provided, otherwise fallback.
func (o Value[T]) Or(fallback T) T {
	if o.set {
		return o.v
	}
	return fallback
}

// UnmarshalJSON marks the field as present. A JSON null is treated as absent,
// matching how the API has always ignored null patch fields.
func (o *Value[T]) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*o = Value[T]{}
		return nil
	}

	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	*o = Some(v)
	return nil
}

func (o Value[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}
