package games

import (
	"encoding/json"

	"github.com/cbodonnell/scoreboard/pkg/board"
	"github.com/cbodonnell/scoreboard/pkg/facet"
	"github.com/cbodonnell/scoreboard/pkg/registry"
)

var (
	Team   = facet.Enum("team", "red", "red", "blue", "green", "yellow")
	Scores = facet.Counter("scores")
)

var TeamsGame = &registry.Game{
	Key:             "teams",
	Title:           "Teams",
	Players:         facet.NewGroup(Name, Team),
	Globals:         facet.NewGroup(Scores),
	DefaultSettings: json.RawMessage(`null`),
}

// Award adds points to the team of a player.
func Award(b *board.Board, id board.PlayerID, points int) error {
	if !b.Has(id) {
		return &board.ErrUnknownPlayer{ID: id}
	}
	team := board.Value(b, id, Team)
	return board.UpdateGlobal(b, Scores, func(s *map[string]int) {
		if *s == nil {
			*s = make(map[string]int)
		}
		(*s)[team] += points
	})
}
