package games

import (
	"encoding/json"
	"fmt"

	"github.com/cbodonnell/scoreboard/pkg/board"
	"github.com/cbodonnell/scoreboard/pkg/facet"
	"github.com/cbodonnell/scoreboard/pkg/registry"
)

var (
	Score  = facet.Int("score", 0)
	Rounds = facet.IntList("rounds")
	Round  = facet.New("round", facet.Options[int]{
		Default: func() int { return 1 },
		Check: func(v int) error {
			if v < 1 {
				return fmt.Errorf("round %d is before the first round", v)
			}
			return nil
		},
	})
)

// TallyGame keeps a running score per player with the points of every round.
var TallyGame = &registry.Game{
	Key:             "tally",
	Title:           "Tally",
	Players:         facet.NewGroup(Name, Score, Rounds),
	Globals:         facet.NewGroup(Round),
	DefaultSettings: json.RawMessage(`{"target":500}`),
}

// RecordRound appends points to a player's rounds and adds them to the score.
func RecordRound(b *board.Board, id board.PlayerID, points int) error {
	if err := board.Update(b, id, Rounds, func(r *[]int) { *r = append(*r, points) }); err != nil {
		return err
	}
	return board.Update(b, id, Score, func(s *int) { *s += points })
}
