package facet

import (
	"encoding/json"
	"fmt"

	"github.com/cbodonnell/scoreboard/pkg/log"
)

// Group is the fixed, ordered schema of player-scoped or global data for one game.
// Groups are built at definition time and never change afterwards.
type Group struct {
	defs  []Def
	index map[string]int
}

// NewGroup builds a group from defs in order. It panics on a nil def or a
// duplicate name.
func NewGroup(defs ...Def) *Group {
	g := &Group{
		defs:  make([]Def, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for _, def := range defs {
		if def == nil {
			panic("facet: nil field in group")
		}
		if _, exists := g.index[def.Name()]; exists {
			panic(fmt.Sprintf("facet: field %q declared twice", def.Name()))
		}
		g.index[def.Name()] = len(g.defs)
		g.defs = append(g.defs, def)
	}
	return g
}

// Fields returns the group's definitions in declaration order.
func (g *Group) Fields() []Def {
	if g == nil {
		return nil
	}
	out := make([]Def, len(g.defs))
	copy(out, g.defs)
	return out
}

func (g *Group) Len() int {
	if g == nil {
		return 0
	}
	return len(g.defs)
}

func (g *Group) Lookup(name string) (Def, bool) {
	if g == nil {
		return nil, false
	}
	i, ok := g.index[name]
	if !ok {
		return nil, false
	}
	return g.defs[i], true
}

// Contains reports whether def itself (not merely a field with the same name) belongs to the group.
func (g *Group) Contains(def Def) bool {
	if def == nil {
		return false
	}
	registered, ok := g.Lookup(def.Name())
	return ok && registered == def
}

// CheckDefaults verifies the round-trip law for every field's default.
func (g *Group) CheckDefaults() error {
	for _, def := range g.Fields() {
		if err := CheckRoundTrip(def, def.DefaultValue()); err != nil {
			return err
		}
	}
	return nil
}

// EncodeRecord encodes the stored values of a record. Only keys present in
// record are written; defaults are never filled in.
func (g *Group) EncodeRecord(record map[string]any) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(record))
	for _, def := range g.Fields() {
		v, ok := record[def.Name()]
		if !ok {
			continue
		}
		encoded, err := def.EncodeValue(v)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal field %s: %w", def.Name(), err)
		}
		out[def.Name()] = raw
	}
	return out, nil
}

// DecodeRecord validates every known key of raw. Invalid values are replaced
// by the field default and unknown keys are ignored, so a partially corrupt
// record still loads.
func (g *Group) DecodeRecord(raw map[string]json.RawMessage) map[string]any {
	out := make(map[string]any, len(raw))
	for _, def := range g.Fields() {
		value, ok := raw[def.Name()]
		if !ok {
			continue
		}
		decoded, err := def.Decode(value)
		if err != nil {
			log.Warn("Resetting field %s to default: %v", def.Name(), err)
			decoded = def.DefaultValue()
		}
		out[def.Name()] = decoded
	}
	return out
}
