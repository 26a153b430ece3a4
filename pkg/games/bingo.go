package games

import (
	"encoding/json"

	"github.com/cbodonnell/scoreboard/pkg/board"
	"github.com/cbodonnell/scoreboard/pkg/facet"
	"github.com/cbodonnell/scoreboard/pkg/registry"
)

var (
	Marked = facet.IntSet("marked")
	Called = facet.IntSet("called")
)

var BingoGame = &registry.Game{
	Key:             "bingo",
	Title:           "Bingo",
	Players:         facet.NewGroup(Name, Marked),
	Globals:         facet.NewGroup(Called),
	DefaultSettings: json.RawMessage(`{"maxNumber":75}`),
}

// Call records a called number. It reports false if it had been called before.
func Call(b *board.Board, number int) (bool, error) {
	fresh := false
	err := board.UpdateGlobal(b, Called, func(s *facet.Set) {
		if *s == nil {
			*s = facet.NewSet()
		}
		if !s.Has(number) {
			s.Add(number)
			fresh = true
		}
	})
	return fresh, err
}
