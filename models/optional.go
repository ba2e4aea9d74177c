package models

import "encoding/json"

// Field is a tri-state JSON value: absent from the payload, explicitly
// null, or set to a value. Plain pointers cannot distinguish "absent"
// from "null", which matters for nullable references like a note's
// folder assignment.
type Field[T any] struct {
	Present bool
	Null    bool
	Value   T
}

// SetField returns a Field holding v.
func SetField[T any](v T) Field[T] {
	return Field[T]{Present: true, Value: v}
}

// NullField returns a Field carrying an explicit null.
func NullField[T any]() Field[T] {
	return Field[T]{Present: true, Null: true}
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Present = true
	if string(b) == "null" {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Present || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
