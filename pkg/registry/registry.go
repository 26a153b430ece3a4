// Package registry maps game keys to their field schemas and runs the match
// lifecycle (create, load, save, delete) on top of a repository.
package registry

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cbodonnell/scoreboard/pkg/board"
	"github.com/cbodonnell/scoreboard/pkg/facet"
	"github.com/gosimple/slug"
)

// Game is the static definition of a game type.
type Game struct {
	// Key identifies the game in the match index. It must be a slug and
	// must never change once matches exist.
	Key             string
	Title           string
	Players         *facet.Group
	Globals         *facet.Group
	DefaultSettings json.RawMessage
}

// NewBoard returns an empty board with every global set to its default.
func (g *Game) NewBoard() *board.Board {
	b := board.New(g.Players, g.Globals)
	b.FillGlobals()
	return b
}

type Registry struct {
	lock  sync.RWMutex
	games map[string]*Game
	order []string
}

func New() *Registry {
	return &Registry{
		games: make(map[string]*Game),
	}
}

// Register adds a game. It rejects keys that are not slugs, duplicate keys,
// invalid default settings and schemas whose defaults do not survive an
// encode/validate round trip.
func (r *Registry) Register(g *Game) error {
	if g == nil {
		return fmt.Errorf("game is nil")
	}
	if !slug.IsSlug(g.Key) {
		return fmt.Errorf("game key %q is not a slug", g.Key)
	}
	if g.Players == nil {
		g.Players = facet.NewGroup()
	}
	if g.Globals == nil {
		g.Globals = facet.NewGroup()
	}
	if _, ok := g.Players.Lookup("id"); ok {
		return fmt.Errorf("game %s declares the reserved player field \"id\"", g.Key)
	}
	if err := g.Players.CheckDefaults(); err != nil {
		return fmt.Errorf("game %s has an invalid player field: %w", g.Key, err)
	}
	if err := g.Globals.CheckDefaults(); err != nil {
		return fmt.Errorf("game %s has an invalid global field: %w", g.Key, err)
	}
	if len(g.DefaultSettings) == 0 {
		g.DefaultSettings = json.RawMessage("null")
	}
	if !json.Valid(g.DefaultSettings) {
		return fmt.Errorf("game %s has invalid default settings", g.Key)
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.games[g.Key]; ok {
		return fmt.Errorf("game %s is already registered", g.Key)
	}
	r.games[g.Key] = g
	r.order = append(r.order, g.Key)
	return nil
}

// MustRegister is Register for package-level game definitions.
func (r *Registry) MustRegister(g *Game) {
	if err := r.Register(g); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(key string) (*Game, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	g, ok := r.games[key]
	return g, ok
}

// List returns the games in registration order.
func (r *Registry) List() []*Game {
	r.lock.RLock()
	defer r.lock.RUnlock()
	games := make([]*Game, 0, len(r.order))
	for _, key := range r.order {
		games = append(games, r.games[key])
	}
	return games
}
