package executor

import (
	"encoding/json"
	"fmt"
)

// DecodeItems returns the "j" array of every item in a service payload, one
// entry per item. Items without a "j" member yield a nil entry so that row
// positions match the payload.
func DecodeItems(p Payload) ([][]json.RawMessage, error) {
	var items []struct {
		J []json.RawMessage `json:"j"`
	}
	if err := json.Unmarshal(p.Body, &items); err != nil {
		return nil, fmt.Errorf("response content is not a valid JSON list: %w", err)
	}
	out := make([][]json.RawMessage, 0, len(items))
	for _, it := range items {
		out = append(out, it.J)
	}
	return out, nil
}
