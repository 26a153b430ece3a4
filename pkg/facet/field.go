// Package facet describes the typed pieces of data ("facets") a game
// attaches to each player or to the match as a whole.
//
// A Field validates a stored JSON value into its runtime shape, supplies a
// default and encodes the runtime value back into JSON. Validation doubles as
// decoding, so a validator must accept exactly what the encoder produces.
package facet

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Def is the type-erased view of a Field. Groups, the board and the
// serialization layer only deal in Defs; typed access goes through *Field[T].
type Def interface {
	Name() string
	DefaultValue() any
	// Decode validates a stored JSON value.
	Decode(raw json.RawMessage) (any, error)
	// EncodeValue converts a runtime value into a JSON-safe value.
	EncodeValue(v any) (any, error)
	// CloneValue returns a copy the caller may mutate freely.
	CloneValue(v any) any
	// Accepts reports whether v has the field's runtime type.
	Accepts(v any) bool
}

// Options configures a Field. Every member is optional.
type Options[T any] struct {
	// Default returns a fresh default value. The zero value of T is used when nil.
	Default func() T
	// Validate decodes a stored value. When nil the raw JSON is unmarshalled into T
	// and JSON null is rejected.
	Validate func(raw json.RawMessage) (T, error)
	// Check runs after decoding and rejects values outside the field's domain.
	Check func(v T) error
	// Encode converts the runtime value into its JSON form. Identity when nil.
	Encode func(v T) any
	// Clone copies values handed out to callers and mutators. Plain assignment when nil.
	Clone func(v T) T
}

// Field is one named, typed piece of data.
type Field[T any] struct {
	name string
	opts Options[T]
}

// New creates a Field. It panics if name is empty since fields are declared
// once at game-definition time.
func New[T any](name string, opts Options[T]) *Field[T] {
	if name == "" {
		panic("facet: field name must not be empty")
	}
	return &Field[T]{
		name: name,
		opts: opts,
	}
}

func (f *Field[T]) Name() string {
	return f.name
}

func (f *Field[T]) String() string {
	return f.name
}

// Default returns a fresh default value.
func (f *Field[T]) Default() T {
	if f.opts.Default == nil {
		var zero T
		return zero
	}
	return f.opts.Default()
}

// Validate decodes raw into the field's runtime shape.
func (f *Field[T]) Validate(raw json.RawMessage) (T, error) {
	var v T
	var err error
	if f.opts.Validate != nil {
		v, err = f.opts.Validate(raw)
	} else {
		v, err = decodeJSON[T](raw)
	}
	if err != nil {
		var zero T
		return zero, &ValidationError{Field: f.name, Err: err}
	}
	if f.opts.Check != nil {
		if err := f.opts.Check(v); err != nil {
			var zero T
			return zero, &ValidationError{Field: f.name, Err: err}
		}
	}
	return v, nil
}

// Encode converts v into its JSON-safe form.
func (f *Field[T]) Encode(v T) any {
	if f.opts.Encode == nil {
		return v
	}
	return f.opts.Encode(v)
}

// Clone returns a copy of v that does not share mutable state with it.
func (f *Field[T]) Clone(v T) T {
	if f.opts.Clone == nil {
		return v
	}
	return f.opts.Clone(v)
}

// Of binds a value to the field, for use with board.Add.
func (f *Field[T]) Of(v T) Assignment {
	return Assignment{Def: f, Value: v}
}

// Cast asserts that v holds the field's runtime type.
func (f *Field[T]) Cast(v any) (T, error) {
	tv, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("facet %s: value of type %T does not match field type %T", f.name, v, zero)
	}
	return tv, nil
}

func (f *Field[T]) DefaultValue() any {
	return f.Default()
}

func (f *Field[T]) Decode(raw json.RawMessage) (any, error) {
	v, err := f.Validate(raw)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (f *Field[T]) EncodeValue(v any) (any, error) {
	tv, err := f.Cast(v)
	if err != nil {
		return nil, err
	}
	return f.Encode(tv), nil
}

func (f *Field[T]) Accepts(v any) bool {
	_, ok := v.(T)
	return ok
}

func (f *Field[T]) CloneValue(v any) any {
	tv, ok := v.(T)
	if !ok {
		return v
	}
	return f.Clone(tv)
}

// Assignment pairs a field with a value of its runtime type.
type Assignment struct {
	Def   Def
	Value any
}

var jsonNull = []byte("null")

func decodeJSON[T any](raw json.RawMessage) (T, error) {
	var v T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) {
		return v, fmt.Errorf("missing value")
	}
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return v, err
	}
	return v, nil
}

// CheckRoundTrip verifies the encode/decode law for v: encoding v, validating
// the result and encoding again must produce the same JSON.
func CheckRoundTrip(def Def, v any) error {
	encoded, err := def.EncodeValue(v)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(encoded)
	if err != nil {
		return fmt.Errorf("facet %s: failed to marshal encoded value: %w", def.Name(), err)
	}
	decoded, err := def.Decode(raw)
	if err != nil {
		return fmt.Errorf("facet %s: encoded value does not validate: %w", def.Name(), err)
	}
	reencoded, err := def.EncodeValue(decoded)
	if err != nil {
		return err
	}
	again, err := json.Marshal(reencoded)
	if err != nil {
		return fmt.Errorf("facet %s: failed to marshal re-encoded value: %w", def.Name(), err)
	}
	if !bytes.Equal(raw, again) {
		return fmt.Errorf("facet %s: round trip changed value from %s to %s", def.Name(), raw, again)
	}
	return nil
}
