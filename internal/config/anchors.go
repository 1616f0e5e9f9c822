package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"k4solve/internal/wheel"
)

// anchorEntry is the JSON wire form of one anchor: the map key carries the
// name.
type anchorEntry struct {
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Plaintext string `json:"plaintext"`
}

// LoadAnchors reads the anchors JSON map and returns anchors sorted by
// start index, so downstream processing is deterministic regardless of map
// iteration order.
func LoadAnchors(path string) ([]wheel.Anchor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read anchors %s: %w", path, err)
	}
	var raw map[string]anchorEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse anchors %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("anchors %s: no entries", path)
	}

	anchors := make([]wheel.Anchor, 0, len(raw))
	for name, e := range raw {
		if got, want := len(e.Plaintext), e.End-e.Start+1; got != want {
			return nil, fmt.Errorf("anchors %s: %s plaintext length %d does not match range [%d,%d]", path, name, got, e.Start, e.End)
		}
		anchors = append(anchors, wheel.Anchor{
			Name:      name,
			Start:     e.Start,
			End:       e.End,
			Plaintext: e.Plaintext,
		})
	}
	sort.Slice(anchors, func(i, j int) bool { return anchors[i].Start < anchors[j].Start })
	return anchors, nil
}
