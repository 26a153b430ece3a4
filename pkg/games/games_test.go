package games

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/cbodonnell/scoreboard/pkg/board"
	"github.com/cbodonnell/scoreboard/pkg/facet"
	"github.com/cbodonnell/scoreboard/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	r := registry.New()
	require.NoError(t, Register(r))

	var keys []string
	for _, g := range r.List() {
		keys = append(keys, g.Key)
	}
	assert.Equal(t, []string{"money", "tally", "bingo", "teams"}, keys)

	assert.Error(t, Register(r), "registering twice must fail")
}

func TestGames_FieldsRoundTrip(t *testing.T) {
	values := map[facet.Def][]any{
		Color:      {"#ff0000", "#00AA00"},
		Money:      {0, -250, 1 << 40},
		Properties: {facet.NewSet(), facet.NewSet(39, 1, 5)},
		Rounds:     {[]int{}, []int{10, -5, 0}},
		Round:      {1, 12},
		Team:       {"blue", "green"},
		Scores:     {map[string]int{}, map[string]int{"red": 3, "blue": -1}},
	}
	for def, vs := range values {
		for _, v := range vs {
			t.Run(fmt.Sprintf("%s/%v", def.Name(), v), func(t *testing.T) {
				assert.NoError(t, facet.CheckRoundTrip(def, v))
			})
		}
	}
}

func TestGames_RejectInvalidValues(t *testing.T) {
	tests := []struct {
		def facet.Def
		raw string
	}{
		{def: Color, raw: `"red"`},
		{def: Color, raw: `"#12345"`},
		{def: Round, raw: `0`},
		{def: Team, raw: `"purple"`},
		{def: Properties, raw: `[1, "two"]`},
		{def: Scores, raw: `{"red": "many"}`},
	}
	for _, tt := range tests {
		t.Run(tt.def.Name()+" "+tt.raw, func(t *testing.T) {
			_, err := tt.def.Decode(json.RawMessage(tt.raw))
			assert.True(t, facet.IsValidationError(err))
		})
	}
}

func TestTransfer(t *testing.T) {
	b := MoneyGame.NewBoard()
	a := b.Add(Name.Of("A"), Money.Of(1500))
	c := b.Add(Name.Of("B"), Money.Of(1500))

	var updates []board.PlayerID
	b.WatchField(Money, func(id board.PlayerID) { updates = append(updates, id) })

	require.NoError(t, Transfer(b, a, c, 200))
	assert.Equal(t, 1300, board.MustGet(b, a, Money))
	assert.Equal(t, 1700, board.MustGet(b, c, Money))
	assert.Equal(t, []board.PlayerID{a, c}, updates)

	err := Transfer(b, a, 99, 100)
	assert.True(t, board.IsUnknownPlayer(err))
	assert.Equal(t, 1300, board.MustGet(b, a, Money))
}

func TestBank(t *testing.T) {
	b := MoneyGame.NewBoard()
	_, ok := Bank(b)
	assert.False(t, ok)

	b.Add(Name.Of("A"))
	bank := b.Add(Name.Of("Bank"), IsBank.Of(true))
	b.Add(Name.Of("Second bank"), IsBank.Of(true))

	got, ok := Bank(b)
	assert.True(t, ok)
	assert.Equal(t, bank, got)
}

func TestRecordRound(t *testing.T) {
	b := TallyGame.NewBoard()
	id := b.Add(Name.Of("A"))

	require.NoError(t, RecordRound(b, id, 30))
	require.NoError(t, RecordRound(b, id, -10))

	assert.Equal(t, []int{30, -10}, board.MustGet(b, id, Rounds))
	assert.Equal(t, 20, board.MustGet(b, id, Score))
	assert.Equal(t, 1, board.GlobalValue(b, Round))
}

func TestCall(t *testing.T) {
	b := BingoGame.NewBoard()

	fresh, err := Call(b, 12)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = Call(b, 12)
	require.NoError(t, err)
	assert.False(t, fresh)

	_, err = Call(b, 7)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 12}, board.GlobalValue(b, Called).Sorted())
}

func TestAward(t *testing.T) {
	b := TeamsGame.NewBoard()
	red := b.Add(Name.Of("A"))
	blue := b.Add(Name.Of("B"), Team.Of("blue"))

	require.NoError(t, Award(b, red, 2))
	require.NoError(t, Award(b, blue, 5))
	require.NoError(t, Award(b, red, 1))

	assert.Equal(t, map[string]int{"red": 3, "blue": 5}, board.GlobalValue(b, Scores))
	assert.True(t, board.IsUnknownPlayer(Award(b, 42, 1)))
}

func TestMoneyGame_LoadRepairsInvalidValues(t *testing.T) {
	raw := json.RawMessage(`{
		"globals": {"freeParking": 40},
		"players": [{"id": 0, "name": "A", "color": "blue", "money": 900}]
	}`)
	b, err := board.Load(MoneyGame.Players, MoneyGame.Globals, raw)
	require.NoError(t, err)

	assert.Equal(t, "#808080", board.MustGet(b, 0, Color))
	assert.Equal(t, 900, board.MustGet(b, 0, Money))
	assert.Equal(t, 40, board.GlobalValue(b, FreeParking))
}
