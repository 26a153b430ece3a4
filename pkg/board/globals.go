package board

import (
	"fmt"

	"github.com/cbodonnell/scoreboard/pkg/facet"
	"github.com/cbodonnell/scoreboard/pkg/log"
)

// SetGlobalValue replaces the value of a global field.
func (b *Board) SetGlobalValue(def facet.Def, v any) error {
	if err := b.checkGlobalField(def); err != nil {
		return err
	}
	if !def.Accepts(v) {
		return fmt.Errorf("failed to set global %s: value of type %T does not match field", def.Name(), v)
	}
	b.storeGlobal(def, def.CloneValue(v))
	return nil
}

// UnsetGlobal deletes the stored value of a global field.
func (b *Board) UnsetGlobal(def facet.Def) error {
	if err := b.checkGlobalField(def); err != nil {
		return err
	}
	b.lock.Lock()
	delete(b.global, def.Name())
	b.lock.Unlock()

	b.events.GlobalUpdated.Emit(GlobalUpdated{Field: def})
	return nil
}

// Globals returns one slot per def, nil for unset fields and for defs that
// are not global fields of the board.
func (b *Board) Globals(defs ...facet.Def) []any {
	out := make([]any, len(defs))
	b.lock.RLock()
	defer b.lock.RUnlock()
	for i, def := range defs {
		if !b.globals.Contains(def) {
			continue
		}
		if v, ok := b.global[def.Name()]; ok {
			out[i] = def.CloneValue(v)
		}
	}
	return out
}

// FillGlobals stores the default of every global field that is unset.
func (b *Board) FillGlobals() {
	for _, def := range b.globals.Fields() {
		b.lock.RLock()
		_, ok := b.global[def.Name()]
		b.lock.RUnlock()
		if ok {
			continue
		}
		b.storeGlobal(def, def.DefaultValue())
	}
}

func (b *Board) checkGlobalField(def facet.Def) error {
	if !b.globals.Contains(def) {
		name := "<nil>"
		if def != nil {
			name = def.Name()
		}
		log.Warn("Ignoring global field %s not declared by this board", name)
		return &ErrUnknownField{Field: name, Scope: "global"}
	}
	return nil
}

func (b *Board) storeGlobal(def facet.Def, v any) {
	b.lock.Lock()
	b.global[def.Name()] = v
	b.lock.Unlock()

	b.events.GlobalUpdated.Emit(GlobalUpdated{Field: def})
}

func (b *Board) globalDraft(def facet.Def) any {
	b.lock.RLock()
	defer b.lock.RUnlock()
	if v, ok := b.global[def.Name()]; ok {
		return def.CloneValue(v)
	}
	return def.DefaultValue()
}

func SetGlobal[T any](b *Board, f *facet.Field[T], v T) error {
	if err := b.checkGlobalField(f); err != nil {
		return err
	}
	b.storeGlobal(f, f.Clone(v))
	return nil
}

// UpdateGlobal mutates a draft of a global field, like Update does for players.
func UpdateGlobal[T any](b *Board, f *facet.Field[T], mutate func(v *T)) error {
	if err := b.checkGlobalField(f); err != nil {
		return err
	}
	draft, err := f.Cast(b.globalDraft(f))
	if err != nil {
		return err
	}
	mutate(&draft)
	b.storeGlobal(f, draft)
	return nil
}

func GetGlobal[T any](b *Board, f *facet.Field[T]) (T, bool) {
	v := b.Globals(f)[0]
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

func GlobalValue[T any](b *Board, f *facet.Field[T]) T {
	if v, ok := GetGlobal(b, f); ok {
		return v
	}
	return f.Default()
}
