package facet

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGroup(t *testing.T) {
	name := String("name", "")
	money := Int("money", 1500)
	g := NewGroup(name, money)

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []Def{name, money}, g.Fields())
	assert.True(t, g.Contains(money))
	assert.False(t, g.Contains(Int("money", 1500)), "same name from another declaration")

	def, ok := g.Lookup("money")
	require.True(t, ok)
	assert.Equal(t, Def(money), def)

	assert.Panics(t, func() { NewGroup(name, String("name", "x")) })
	assert.Panics(t, func() { NewGroup(nil) })
}

func TestGroup_EncodeRecordIsSparse(t *testing.T) {
	name := String("name", "")
	props := IntSet("properties")
	g := NewGroup(name, props)

	out, err := g.EncodeRecord(map[string]any{
		"properties": NewSet(7, 3),
	})
	require.NoError(t, err)

	assert.Len(t, out, 1)
	assert.JSONEq(t, `[3,7]`, string(out["properties"]))
}

func TestGroup_DecodeRecord(t *testing.T) {
	name := String("name", "")
	money := Int("money", 1500)
	props := IntSet("properties")
	g := NewGroup(name, money, props)

	out := g.DecodeRecord(map[string]json.RawMessage{
		"name":       json.RawMessage(`"Alice"`),
		"money":      json.RawMessage(`"a lot"`),
		"properties": json.RawMessage(`[3,7]`),
		"retired":    json.RawMessage(`true`),
	})

	assert.Equal(t, map[string]any{
		"name":       "Alice",
		"money":      1500,
		"properties": NewSet(3, 7),
	}, out)
}

func TestGroup_CheckDefaults(t *testing.T) {
	assert.NoError(t, NewGroup(Int("money", 1500), IntSet("properties")).CheckDefaults())

	broken := New("broken", Options[int]{
		Default: func() int { return -1 },
		Check: func(v int) error {
			if v < 0 {
				return assert.AnError
			}
			return nil
		},
	})
	assert.Error(t, NewGroup(broken).CheckDefaults())
}
