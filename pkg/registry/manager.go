package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cbodonnell/scoreboard/pkg/board"
	"github.com/cbodonnell/scoreboard/pkg/log"
	"github.com/cbodonnell/scoreboard/pkg/match"
	"github.com/cbodonnell/scoreboard/pkg/repositories"
	"github.com/google/uuid"
)

// Match is a loaded match: its metadata, its game and the live board.
type Match struct {
	ID       string
	Name     string
	Settings json.RawMessage
	Game     *Game
	Board    *board.Board
}

// Document returns the persisted form of the match.
func (m *Match) Document() (*match.Document, error) {
	game, err := m.Board.DumpJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to dump match %s: %w", m.ID, err)
	}
	return &match.Document{
		ID:       m.ID,
		Settings: m.Settings,
		Name:     m.Name,
		Game:     game,
	}, nil
}

func (m *Match) Summary() match.Summary {
	return match.Summary{ID: m.ID, Mode: m.Game.Key, Name: m.Name}
}

// Manager creates, loads and persists matches of registered games.
type Manager struct {
	registry   *Registry
	repository repositories.Repository
}

type NewManagerOptions struct {
	Registry   *Registry
	Repository repositories.Repository
}

func NewManager(opts NewManagerOptions) *Manager {
	return &Manager{
		registry:   opts.Registry,
		repository: opts.Repository,
	}
}

func (m *Manager) Registry() *Registry {
	return m.registry
}

// CreateMatch stores a new match with no players and default globals and
// returns its ID. Nil settings are replaced by the game's defaults.
func (m *Manager) CreateMatch(ctx context.Context, gameKey, name string, settings json.RawMessage) (string, error) {
	g, ok := m.registry.Get(gameKey)
	if !ok {
		return "", fmt.Errorf("unknown game %s", gameKey)
	}
	created, err := m.saveNew(ctx, g, name, settings, g.NewBoard())
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// ImportMatch stores a board that was built outside the registry, such as a
// converted legacy save. The board must use the game's field groups.
func (m *Manager) ImportMatch(ctx context.Context, gameKey, name string, settings json.RawMessage, b *board.Board) (*Match, error) {
	g, ok := m.registry.Get(gameKey)
	if !ok {
		return nil, fmt.Errorf("unknown game %s", gameKey)
	}
	if b.PlayerFields() != g.Players || b.GlobalFields() != g.Globals {
		return nil, fmt.Errorf("board does not use the fields of game %s", gameKey)
	}
	return m.saveNew(ctx, g, name, settings, b)
}

func (m *Manager) saveNew(ctx context.Context, g *Game, name string, settings json.RawMessage, b *board.Board) (*Match, error) {
	if len(settings) == 0 {
		settings = g.DefaultSettings
	}
	if !json.Valid(settings) {
		return nil, fmt.Errorf("invalid settings for game %s", g.Key)
	}

	created := &Match{
		ID:       uuid.NewString(),
		Name:     name,
		Settings: settings,
		Game:     g,
		Board:    b,
	}
	if err := m.SaveMatch(ctx, created); err != nil {
		return nil, err
	}
	log.Info("Created %s match %s", g.Key, created.ID)
	return created, nil
}

// LoadMatch restores a stored match. A match that is missing or whose game is
// not registered satisfies IsNotFound. Globals added to the game since the
// match was saved are filled with their defaults.
func (m *Manager) LoadMatch(ctx context.Context, id string) (*Match, error) {
	doc, err := m.repository.LoadMatch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load match %s: %w", id, err)
	}

	summary, err := m.summary(ctx, id)
	if err != nil {
		return nil, err
	}
	g, ok := m.registry.Get(summary.Mode)
	if !ok {
		log.Warn("Match %s uses unknown game %q", id, summary.Mode)
		return nil, &ErrSchemaMismatch{ID: id, Mode: summary.Mode}
	}

	b, err := board.Load(g.Players, g.Globals, doc.Game)
	if err != nil {
		return nil, fmt.Errorf("failed to load board of match %s: %w", id, err)
	}
	b.FillGlobals()

	return &Match{
		ID:       doc.ID,
		Name:     doc.Name,
		Settings: doc.Settings,
		Game:     g,
		Board:    b,
	}, nil
}

// SaveMatch writes the match record and refreshes its index entry.
func (m *Manager) SaveMatch(ctx context.Context, mt *Match) error {
	doc, err := mt.Document()
	if err != nil {
		return err
	}
	if err := m.repository.SaveMatch(ctx, doc); err != nil {
		return fmt.Errorf("failed to save match %s: %w", mt.ID, err)
	}
	if err := m.repository.PutSummary(ctx, mt.Summary()); err != nil {
		return fmt.Errorf("failed to index match %s: %w", mt.ID, err)
	}
	return nil
}

func (m *Manager) DeleteMatch(ctx context.Context, id string) error {
	if err := m.repository.DeleteMatch(ctx, id); err != nil {
		return fmt.Errorf("failed to delete match %s: %w", id, err)
	}
	return nil
}

func (m *Manager) ListMatches(ctx context.Context) ([]match.Summary, error) {
	summaries, err := m.repository.ListSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return summaries, nil
}

// Rename changes the stored name of a match. A caller holding the match
// loaded should set Match.Name and call SaveMatch instead, or the next save
// writes the old name back.
func (m *Manager) Rename(ctx context.Context, id, name string) error {
	summary, err := m.summary(ctx, id)
	if err != nil {
		return err
	}
	doc, err := m.repository.LoadMatch(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load match %s: %w", id, err)
	}

	doc.Name = name
	summary.Name = name
	if err := m.repository.SaveMatch(ctx, doc); err != nil {
		return fmt.Errorf("failed to save match %s: %w", id, err)
	}
	if err := m.repository.PutSummary(ctx, summary); err != nil {
		return fmt.Errorf("failed to index match %s: %w", id, err)
	}
	return nil
}

// summary finds the index entry of id. A record without an entry has no
// known game, which is a schema mismatch.
func (m *Manager) summary(ctx context.Context, id string) (match.Summary, error) {
	summaries, err := m.ListMatches(ctx)
	if err != nil {
		return match.Summary{}, err
	}
	for _, s := range summaries {
		if s.ID == id {
			return s, nil
		}
	}
	return match.Summary{}, &ErrSchemaMismatch{ID: id}
}
