package board

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/cbodonnell/scoreboard/pkg/facet"
	"github.com/cbodonnell/scoreboard/pkg/log"
)

// Document is the JSON-safe form of a board. Documents are sparse: a field is
// only present when the board stores a value for it.
type Document struct {
	Globals map[string]json.RawMessage `json:"globals"`
	Players []PlayerDocument           `json:"players"`
}

// PlayerDocument is one player: its ID plus one key per stored field.
type PlayerDocument struct {
	ID     PlayerID
	Fields map[string]json.RawMessage
}

func (p PlayerDocument) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(p.Fields)+1)
	for k, v := range p.Fields {
		out[k] = v
	}
	id, err := json.Marshal(p.ID)
	if err != nil {
		return nil, err
	}
	out[reservedIDField] = id
	return json.Marshal(out)
}

func (p *PlayerDocument) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("player document is null")
	}
	id, err := parsePlayerID(fields[reservedIDField])
	if err != nil {
		return err
	}
	delete(fields, reservedIDField)
	p.ID = id
	p.Fields = fields
	return nil
}

// Dump encodes the board. Players are written in board order.
func (b *Board) Dump() (*Document, error) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	globals, err := b.globals.EncodeRecord(b.global)
	if err != nil {
		return nil, fmt.Errorf("failed to encode globals: %w", err)
	}
	doc := &Document{
		Globals: globals,
		Players: make([]PlayerDocument, 0, len(b.order)),
	}
	for _, id := range b.order {
		fields, err := b.players.EncodeRecord(b.records[id])
		if err != nil {
			return nil, fmt.Errorf("failed to encode player %d: %w", id, err)
		}
		doc.Players = append(doc.Players, PlayerDocument{ID: id, Fields: fields})
	}
	return doc, nil
}

// DumpJSON is Dump followed by json.Marshal.
func (b *Board) DumpJSON() (json.RawMessage, error) {
	doc, err := b.Dump()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board: %w", err)
	}
	return data, nil
}

// Load builds a board from a document produced by Dump, or by an older or
// newer version of the schema. Only a document that is not a JSON object
// fails; everything below that level is repaired: invalid fields fall back to
// their default, unknown fields are dropped and unreadable players are
// skipped. "players" may be an array of objects carrying an "id" or an object
// keyed by decimal IDs. Load emits no events.
func Load(players, globals *facet.Group, raw json.RawMessage) (*Board, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, &ErrMalformedDocument{Reason: "expected a JSON object", Err: err}
	}
	if top == nil {
		return nil, &ErrMalformedDocument{Reason: "document is null"}
	}

	b := New(players, globals)

	if rawGlobals, ok := top["globals"]; ok {
		var record map[string]json.RawMessage
		if err := json.Unmarshal(rawGlobals, &record); err != nil {
			log.Warn("Ignoring malformed globals: %v", err)
		} else {
			b.global = b.globals.DecodeRecord(record)
		}
	}

	entries := decodePlayerEntries(top["players"])
	maxID := int64(-1)
	for _, entry := range entries {
		if _, exists := b.records[entry.id]; exists {
			log.Warn("Skipping duplicate player %d", entry.id)
			continue
		}
		b.records[entry.id] = b.players.DecodeRecord(entry.fields)
		b.order = append(b.order, entry.id)
		if int64(entry.id) > maxID {
			maxID = int64(entry.id)
		}
	}
	if maxID == int64(MaxPlayerID) {
		b.outOfIDs = true
		b.nextID = MaxPlayerID
	} else {
		b.nextID = PlayerID(maxID + 1)
	}

	return b, nil
}

type playerEntry struct {
	id     PlayerID
	fields map[string]json.RawMessage
}

func decodePlayerEntries(raw json.RawMessage) []playerEntry {
	if len(raw) == 0 {
		return nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		entries := make([]playerEntry, 0, len(list))
		for i, item := range list {
			var fields map[string]json.RawMessage
			if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
				log.Warn("Skipping player entry %d: not an object", i)
				continue
			}
			id, err := parsePlayerID(fields[reservedIDField])
			if err != nil {
				log.Warn("Skipping player entry %d: %v", i, err)
				continue
			}
			entries = append(entries, playerEntry{id: id, fields: fields})
		}
		return entries
	}

	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keyed); err != nil || keyed == nil {
		log.Warn("Ignoring players: expected an array or an object")
		return nil
	}
	entries := make([]playerEntry, 0, len(keyed))
	for key, item := range keyed {
		id, err := strconv.ParseUint(key, 10, 32)
		if err == nil && id > uint64(MaxPlayerID) {
			err = fmt.Errorf("player id %d out of range", id)
		}
		if err != nil {
			log.Warn("Skipping player key %q: not a player ID", key)
			continue
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			log.Warn("Skipping player %d: not an object", id)
			continue
		}
		entries = append(entries, playerEntry{id: PlayerID(id), fields: fields})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })
	return entries
}

func parsePlayerID(raw json.RawMessage) (PlayerID, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("missing player id")
	}
	var id uint64
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, fmt.Errorf("invalid player id %s: %w", raw, err)
	}
	if id > uint64(MaxPlayerID) {
		return 0, fmt.Errorf("player id %d out of range", id)
	}
	return PlayerID(id), nil
}
