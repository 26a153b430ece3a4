package match

import (
	"encoding/json"
	"fmt"

	"github.com/cbodonnell/scoreboard/pkg/log"
)

// Summary is one entry of the match index. Mode is the key of the game the
// match was created with.
type Summary struct {
	ID   string `json:"id"`
	Mode string `json:"mode"`
	Name string `json:"name"`
}

// ParseIndex decodes the match index. Anything that is not an array yields an
// empty index, and entries without a string id are skipped.
func ParseIndex(data []byte) []Summary {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		if len(data) > 0 {
			log.Warn("Ignoring malformed match index: %v", err)
		}
		return []Summary{}
	}

	index := make([]Summary, 0, len(entries))
	for i, raw := range entries {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			log.Warn("Skipping match index entry %d: not an object", i)
			continue
		}
		var s Summary
		if !isString(fields["id"]) || json.Unmarshal(fields["id"], &s.ID) != nil {
			log.Warn("Skipping match index entry %d: missing id", i)
			continue
		}
		// mode and name are best effort
		_ = json.Unmarshal(fields["mode"], &s.Mode)
		_ = json.Unmarshal(fields["name"], &s.Name)
		index = append(index, s)
	}
	return index
}

func MarshalIndex(index []Summary) ([]byte, error) {
	if index == nil {
		index = []Summary{}
	}
	data, err := json.Marshal(index)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal match index: %v", err)
	}
	return data, nil
}
