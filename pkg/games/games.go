// Package games declares the built-in game types.
package games

import (
	"github.com/cbodonnell/scoreboard/pkg/facet"
	"github.com/cbodonnell/scoreboard/pkg/registry"
)

// Name is the display name of a player. Every built-in game uses it.
var Name = facet.String("name", "")

// All returns the built-in games in the order they are offered.
func All() []*registry.Game {
	return []*registry.Game{MoneyGame, TallyGame, BingoGame, TeamsGame}
}

// Register adds every built-in game to r.
func Register(r *registry.Registry) error {
	for _, g := range All() {
		if err := r.Register(g); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in games.
func NewRegistry() *registry.Registry {
	r := registry.New()
	if err := Register(r); err != nil {
		panic(err)
	}
	return r
}
