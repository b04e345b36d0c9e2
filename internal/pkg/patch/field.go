// Package patch provides a three-state field for partial updates.
//
// A Field decodes from JSON as:
//
//	absent      -> Keep
//	null        -> Unset
//	any value   -> Set(value)
package patch

import (
	"bytes"
	"encoding/json"
)

type State uint8

const (
	Keep State = iota
	Unset
	Set
)

type Field[T any] struct {
	state State
	value T
}

func KeepField[T any]() Field[T]    { return Field[T]{} }
func UnsetField[T any]() Field[T]   { return Field[T]{state: Unset} }
func SetField[T any](v T) Field[T]  { return Field[T]{state: Set, value: v} }
func (f Field[T]) State() State     { return f.state }
func (f Field[T]) IsKeep() bool     { return f.state == Keep }
func (f Field[T]) IsUnset() bool    { return f.state == Unset }
func (f Field[T]) IsSet() bool      { return f.state == Set }
func (f Field[T]) Value() (T, bool) { return f.value, f.state == Set }

// Apply returns the patched value. Unset yields the zero value.
func (f Field[T]) Apply(old T) T {
	switch f.state {
	case Set:
		return f.value
	case Unset:
		var zero T
		return zero
	default:
		return old
	}
}

// ApplyPtr is Apply for optional values held by pointer.
func ApplyPtr[T any](f Field[T], old *T) *T {
	switch f.state {
	case Set:
		v := f.value
		return &v
	case Unset:
		return nil
	default:
		return old
	}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.state, f.value = Unset, zero
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.state, f.value = Set, v
	return nil
}

// MarshalJSON writes null for Keep and Unset; pair with omitempty-aware callers.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.state != Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
