package match

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Document is a persisted match. Game holds the board document produced by
// board.Dump and is kept raw so records can be read without knowing the
// game's fields.
type Document struct {
	ID       string          `json:"id"`
	Settings json.RawMessage `json:"settings"`
	Name     string          `json:"name"`
	Game     json.RawMessage `json:"game"`
}

// ErrMalformedDocument is returned when a stored record cannot be a match.
type ErrMalformedDocument struct {
	Reason string
}

func (e *ErrMalformedDocument) Error() string {
	return fmt.Sprintf("malformed match document: %s", e.Reason)
}

func IsMalformedDocument(err error) bool {
	var target *ErrMalformedDocument
	return errors.As(err, &target)
}

// Parse decodes a match record. The record must be an object with a string
// "id" and an object "game". A missing name reads as "" and missing settings
// as null.
func Parse(data []byte) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return nil, &ErrMalformedDocument{Reason: "expected a JSON object"}
	}

	doc := &Document{}
	if err := json.Unmarshal(top["id"], &doc.ID); err != nil || !isString(top["id"]) {
		return nil, &ErrMalformedDocument{Reason: "missing or non-string id"}
	}

	var game map[string]json.RawMessage
	if err := json.Unmarshal(top["game"], &game); err != nil || game == nil {
		return nil, &ErrMalformedDocument{Reason: "missing or non-object game"}
	}
	doc.Game = top["game"]

	if raw, ok := top["name"]; ok {
		if err := json.Unmarshal(raw, &doc.Name); err != nil {
			return nil, &ErrMalformedDocument{Reason: "non-string name"}
		}
	}

	doc.Settings = top["settings"]
	if len(doc.Settings) == 0 {
		doc.Settings = json.RawMessage("null")
	}

	return doc, nil
}

// Marshal encodes the document. Empty Settings or Game are written as null
// and an empty object so the output always parses.
func (d *Document) Marshal() ([]byte, error) {
	out := *d
	if len(out.Settings) == 0 {
		out.Settings = json.RawMessage("null")
	}
	if len(out.Game) == 0 {
		out.Game = json.RawMessage("{}")
	}
	data, err := json.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal match %s: %v", d.ID, err)
	}
	return data, nil
}

func isString(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '"':
			return true
		default:
			return false
		}
	}
	return false
}
