// Package legacy converts saves of the old money game format into boards.
//
// A legacy save is a single JSON object keyed by player display name:
//
//	{"Alice": {"isBank": false, "name": "Alice", "money": 1500, "properties": [1, 3]}}
//
// Keys keep their file order, which becomes the player order. A repeated key
// replaces the earlier entry in place.
package legacy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cbodonnell/scoreboard/pkg/board"
	"github.com/cbodonnell/scoreboard/pkg/games"
	"github.com/cbodonnell/scoreboard/pkg/log"
)

type entry struct {
	key string
	raw json.RawMessage
}

// Import reads a legacy save into a board of games.MoneyGame. Missing and
// unknown keys are tolerated and invalid values fall back to their defaults.
// The result always has exactly one bank when it has players: the first
// player flagged as bank, or the first player if none is.
func Import(r io.Reader) (*board.Board, error) {
	entries, err := readEntries(r)
	if err != nil {
		return nil, err
	}

	b := games.MoneyGame.NewBoard()
	fields := games.MoneyGame.Players
	bank, hasBank := board.PlayerID(0), false

	for _, e := range entries {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(e.raw, &raw); err != nil || raw == nil {
			log.Warn("Skipping legacy player %q: not an object", e.key)
			continue
		}

		record := fields.DecodeRecord(raw)
		id := b.Create()
		for _, def := range fields.Fields() {
			v, ok := record[def.Name()]
			if !ok {
				continue
			}
			if err := b.SetValue(id, def, v); err != nil {
				return nil, fmt.Errorf("failed to import %q: %w", e.key, err)
			}
		}
		if board.Value(b, id, games.Name) == "" {
			if err := board.Set(b, id, games.Name, e.key); err != nil {
				return nil, fmt.Errorf("failed to import %q: %w", e.key, err)
			}
		}

		if board.Value(b, id, games.IsBank) {
			if hasBank {
				log.Warn("Legacy player %q is a second bank, keeping %d", e.key, bank)
				if err := board.Set(b, id, games.IsBank, false); err != nil {
					return nil, err
				}
				continue
			}
			bank, hasBank = id, true
		}
	}

	if !hasBank && b.Len() > 0 {
		first := b.Players()[0]
		if err := board.Set(b, first, games.IsBank, true); err != nil {
			return nil, err
		}
	}

	return b, nil
}

func ImportBytes(data []byte) (*board.Board, error) {
	return Import(bytes.NewReader(data))
}

// readEntries streams the top-level object so that key order survives.
func readEntries(r io.Reader) ([]entry, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, &board.ErrMalformedDocument{Reason: "expected a JSON object", Err: err}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &board.ErrMalformedDocument{Reason: "expected a JSON object"}
	}

	var entries []entry
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, &board.ErrMalformedDocument{Reason: "unreadable player key", Err: err}
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, &board.ErrMalformedDocument{Reason: fmt.Sprintf("unreadable player %q", key), Err: err}
		}
		if i, ok := seen[key]; ok {
			log.Warn("Legacy player %q appears twice, keeping the last entry", key)
			entries[i].raw = raw
			continue
		}
		seen[key] = len(entries)
		entries = append(entries, entry{key: key, raw: raw})
	}

	if _, err := dec.Token(); err != nil {
		return nil, &board.ErrMalformedDocument{Reason: "unterminated object", Err: err}
	}

	return entries, nil
}
