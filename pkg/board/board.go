// Package board is the runtime store for one match: the players, the facets
// stored for each of them and the match-wide globals.
//
// A board has one owner that mutates it. Every mutation completes before its
// notification is emitted, and handlers run synchronously on the mutating
// goroutine. The internal lock only exists so that a background reader such
// as the autosave worker can Dump while the owner keeps working; handlers are
// always invoked with the lock released and may call back into the board.
package board

import (
	"fmt"
	"math"
	"sync"

	"github.com/cbodonnell/scoreboard/pkg/facet"
	"github.com/cbodonnell/scoreboard/pkg/log"
)

// PlayerID identifies a player for the lifetime of a board. IDs are assigned
// in increasing order and never reused.
type PlayerID uint32

// MaxPlayerID is the largest ID a board hands out or accepts from a document.
// The last uint32 value is kept free so the ID counter can never wrap.
const MaxPlayerID = PlayerID(math.MaxUint32 - 1)

// reservedIDField is the key that carries the player ID in persisted documents.
const reservedIDField = "id"

type Board struct {
	lock     sync.RWMutex
	players  *facet.Group
	globals  *facet.Group
	order    []PlayerID
	records  map[PlayerID]map[string]any
	global   map[string]any
	removing map[PlayerID]bool
	nextID   PlayerID
	outOfIDs bool
	events   *Events
}

// New creates an empty board for the given schema. Nil groups are treated as
// empty. It panics if the player group declares the reserved "id" field.
func New(players, globals *facet.Group) *Board {
	if players == nil {
		players = facet.NewGroup()
	}
	if globals == nil {
		globals = facet.NewGroup()
	}
	if _, ok := players.Lookup(reservedIDField); ok {
		panic(fmt.Sprintf("board: player field name %q is reserved", reservedIDField))
	}
	return &Board{
		players:  players,
		globals:  globals,
		records:  make(map[PlayerID]map[string]any),
		global:   make(map[string]any),
		removing: make(map[PlayerID]bool),
		events:   newEvents(),
	}
}

func (b *Board) Events() *Events {
	return b.events
}

func (b *Board) PlayerFields() *facet.Group {
	return b.players
}

func (b *Board) GlobalFields() *facet.Group {
	return b.globals
}

// Create adds a player with no stored facets and returns its ID. It panics
// once MaxPlayerID has been handed out.
func (b *Board) Create() PlayerID {
	b.lock.Lock()
	if b.outOfIDs {
		b.lock.Unlock()
		panic("board: player IDs exhausted")
	}
	id := b.nextID
	if id == MaxPlayerID {
		b.outOfIDs = true
	} else {
		b.nextID++
	}
	b.records[id] = make(map[string]any)
	b.order = append(b.order, id)
	b.lock.Unlock()

	b.events.PlayerAdded.Emit(PlayerAdded{ID: id})
	return id
}

// Add creates a player and stores each value in argument order. Each stored
// value emits its own FacetUpdated after the PlayerAdded event.
func (b *Board) Add(values ...facet.Assignment) PlayerID {
	id := b.Create()
	for _, v := range values {
		if err := b.SetValue(id, v.Def, v.Value); err != nil {
			log.Warn("Failed to set initial value of player %d: %v", id, err)
		}
	}
	return id
}

// Remove deletes a player. PlayerRemoved is emitted before the data is
// deleted. The ID is never handed out again.
func (b *Board) Remove(id PlayerID) error {
	b.lock.Lock()
	_, ok := b.records[id]
	if !ok {
		b.lock.Unlock()
		log.Warn("Ignoring removal of unknown player %d", id)
		return &ErrUnknownPlayer{ID: id}
	}
	if b.removing[id] {
		// a PlayerRemoved handler is removing the player it is being told about
		b.lock.Unlock()
		return nil
	}
	b.removing[id] = true
	b.lock.Unlock()

	b.events.PlayerRemoved.Emit(PlayerRemoved{ID: id})

	b.lock.Lock()
	defer b.lock.Unlock()
	delete(b.removing, id)
	delete(b.records, id)
	order := make([]PlayerID, 0, len(b.order))
	for _, other := range b.order {
		if other != id {
			order = append(order, other)
		}
	}
	b.order = order
	return nil
}

// Players returns the IDs of all players in insertion order.
func (b *Board) Players() []PlayerID {
	b.lock.RLock()
	defer b.lock.RUnlock()
	out := make([]PlayerID, len(b.order))
	copy(out, b.order)
	return out
}

func (b *Board) Has(id PlayerID) bool {
	b.lock.RLock()
	defer b.lock.RUnlock()
	_, ok := b.records[id]
	return ok
}

func (b *Board) Len() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return len(b.order)
}

// SetValue replaces the stored value of a player field.
func (b *Board) SetValue(id PlayerID, def facet.Def, v any) error {
	if err := b.checkPlayerField(def); err != nil {
		return err
	}
	if !def.Accepts(v) {
		return fmt.Errorf("failed to set %s of player %d: value of type %T does not match field", def.Name(), id, v)
	}
	return b.store(id, def, def.CloneValue(v))
}

// Unset deletes the stored value of a player field. Subsequent reads see it as unset.
func (b *Board) Unset(id PlayerID, def facet.Def) error {
	if err := b.checkPlayerField(def); err != nil {
		return err
	}
	b.lock.Lock()
	record, ok := b.records[id]
	if !ok {
		b.lock.Unlock()
		log.Warn("Ignoring unset of %s on unknown player %d", def.Name(), id)
		return &ErrUnknownPlayer{ID: id}
	}
	delete(record, def.Name())
	b.lock.Unlock()

	b.events.FacetUpdated.Emit(FacetUpdated{ID: id, Field: def})
	return nil
}

// Get returns one slot per def. A slot is nil when the player is unknown, the
// field has never been stored or def is not one of the board's player fields.
func (b *Board) Get(id PlayerID, defs ...facet.Def) []any {
	out := make([]any, len(defs))
	b.lock.RLock()
	defer b.lock.RUnlock()
	record, ok := b.records[id]
	if !ok {
		return out
	}
	for i, def := range defs {
		if !b.players.Contains(def) {
			continue
		}
		if v, ok := record[def.Name()]; ok {
			out[i] = def.CloneValue(v)
		}
	}
	return out
}

// GetDefaulted is Get with the field default substituted for every unset slot.
func (b *Board) GetDefaulted(id PlayerID, defs ...facet.Def) []any {
	out := b.Get(id, defs...)
	for i, def := range defs {
		if out[i] == nil {
			out[i] = def.DefaultValue()
		}
	}
	return out
}

// Map calls fn for each player, in order, that has every requested field
// stored. Players missing any of them are skipped.
func (b *Board) Map(fn func(id PlayerID, values []any), defs ...facet.Def) {
	type row struct {
		id     PlayerID
		values []any
	}

	b.lock.RLock()
	rows := make([]row, 0, len(b.order))
	for _, id := range b.order {
		record := b.records[id]
		values := make([]any, len(defs))
		complete := true
		for i, def := range defs {
			v, ok := record[def.Name()]
			if !ok || !b.players.Contains(def) {
				complete = false
				break
			}
			values[i] = def.CloneValue(v)
		}
		if complete {
			rows = append(rows, row{id: id, values: values})
		}
	}
	b.lock.RUnlock()

	for _, r := range rows {
		fn(r.id, r.values)
	}
}

func (b *Board) checkPlayerField(def facet.Def) error {
	if !b.players.Contains(def) {
		name := "<nil>"
		if def != nil {
			name = def.Name()
		}
		log.Warn("Ignoring player field %s not declared by this board", name)
		return &ErrUnknownField{Field: name, Scope: "player"}
	}
	return nil
}

// store writes an already-cloned value and emits FacetUpdated.
func (b *Board) store(id PlayerID, def facet.Def, v any) error {
	b.lock.Lock()
	record, ok := b.records[id]
	if !ok {
		b.lock.Unlock()
		log.Warn("Ignoring update of %s on unknown player %d", def.Name(), id)
		return &ErrUnknownPlayer{ID: id}
	}
	record[def.Name()] = v
	b.lock.Unlock()

	b.events.FacetUpdated.Emit(FacetUpdated{ID: id, Field: def})
	return nil
}

// draft returns a private copy of the stored value, or the default when unset.
func (b *Board) draft(id PlayerID, def facet.Def) (any, error) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	record, ok := b.records[id]
	if !ok {
		log.Warn("Ignoring update of %s on unknown player %d", def.Name(), id)
		return nil, &ErrUnknownPlayer{ID: id}
	}
	if v, ok := record[def.Name()]; ok {
		return def.CloneValue(v), nil
	}
	return def.DefaultValue(), nil
}
