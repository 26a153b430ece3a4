package games

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/cbodonnell/scoreboard/pkg/board"
	"github.com/cbodonnell/scoreboard/pkg/facet"
	"github.com/cbodonnell/scoreboard/pkg/registry"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

var (
	Color = facet.New("color", facet.Options[string]{
		Default: func() string { return "#808080" },
		Check: func(v string) error {
			if !hexColor.MatchString(v) {
				return fmt.Errorf("%q is not a #rrggbb color", v)
			}
			return nil
		},
	})
	Money       = facet.Int("money", 1500)
	Properties  = facet.IntSet("properties")
	IsBank      = facet.Bool("isBank", false)
	FreeParking = facet.Int("freeParking", 0)
)

// MoneyGame tracks balances and owned properties of a property trading game.
var MoneyGame = &registry.Game{
	Key:             "money",
	Title:           "Money",
	Players:         facet.NewGroup(Name, Color, Money, Properties, IsBank),
	Globals:         facet.NewGroup(FreeParking),
	DefaultSettings: json.RawMessage(`{"startingMoney":1500}`),
}

// Transfer moves amount from one player to another. Nothing changes unless
// both players exist.
func Transfer(b *board.Board, from, to board.PlayerID, amount int) error {
	for _, id := range []board.PlayerID{from, to} {
		if !b.Has(id) {
			return &board.ErrUnknownPlayer{ID: id}
		}
	}
	if err := board.Update(b, from, Money, func(m *int) { *m -= amount }); err != nil {
		return err
	}
	return board.Update(b, to, Money, func(m *int) { *m += amount })
}

// Bank returns the first player flagged as the bank.
func Bank(b *board.Board) (board.PlayerID, bool) {
	for _, id := range b.Players() {
		if board.Value(b, id, IsBank) {
			return id, true
		}
	}
	return 0, false
}
