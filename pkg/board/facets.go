package board

import (
	"fmt"

	"github.com/cbodonnell/scoreboard/pkg/facet"
)

// Set replaces the value of a player field.
func Set[T any](b *Board, id PlayerID, f *facet.Field[T], v T) error {
	if err := b.checkPlayerField(f); err != nil {
		return err
	}
	return b.store(id, f, f.Clone(v))
}

// Update passes a draft of the current value (or the default when unset) to
// mutate and stores the result. The draft is a clone, so mutate may change
// sets, maps and slices in place.
func Update[T any](b *Board, id PlayerID, f *facet.Field[T], mutate func(v *T)) error {
	if err := b.checkPlayerField(f); err != nil {
		return err
	}
	current, err := b.draft(id, f)
	if err != nil {
		return err
	}
	draft, err := f.Cast(current)
	if err != nil {
		return err
	}
	mutate(&draft)
	return b.store(id, f, draft)
}

// Get returns the stored value of a player field and whether it was set.
func Get[T any](b *Board, id PlayerID, f *facet.Field[T]) (T, bool) {
	v := b.Get(id, f)[0]
	if v == nil {
		var zero T
		return zero, false
	}
	tv, err := f.Cast(v)
	if err != nil {
		var zero T
		return zero, false
	}
	return tv, true
}

// Value returns the stored value of a player field, or its default.
func Value[T any](b *Board, id PlayerID, f *facet.Field[T]) T {
	if v, ok := Get(b, id, f); ok {
		return v
	}
	return f.Default()
}

// MustGet returns the stored value of a player field. Reading an unset field
// or an unknown player through MustGet is a programming error and panics.
func MustGet[T any](b *Board, id PlayerID, f *facet.Field[T]) T {
	v, ok := Get(b, id, f)
	if !ok {
		panic(fmt.Sprintf("board: field %s of player %d is not set", f.Name(), id))
	}
	return v
}

// Collect maps every player that has f stored, in order.
func Collect[T, R any](b *Board, f *facet.Field[T], fn func(id PlayerID, v T) R) []R {
	var out []R
	b.Map(func(id PlayerID, values []any) {
		v, err := f.Cast(values[0])
		if err != nil {
			return
		}
		out = append(out, fn(id, v))
	}, f)
	return out
}
