// Package spots loads surf spots and their trigger windows from a JSON
// file.
package spots

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/ngmaloney/swellwatch/internal/circular"
	"github.com/ngmaloney/swellwatch/internal/engine"
	"github.com/ngmaloney/swellwatch/internal/models"
	"github.com/ngmaloney/swellwatch/internal/trigger"
)

// Definition is a spot with the drafts watching it, as written in a
// spots file.
type Definition struct {
	Spot     engine.Spot     `json:"spot"`
	Triggers []trigger.Draft `json:"triggers"`
}

// LoadFile reads a JSON array of definitions.
func LoadFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spots file: %w", err)
	}
	var defs []Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parsing spots file %s: %w", path, err)
	}
	return defs, nil
}

// Normalize validates a definition in place: the spot needs an id and a
// valid location, drafts get the spot id and a generated id when missing.
// A draft naming a different spot is rejected.
func (d *Definition) Normalize() error {
	if d.Spot.ID == "" {
		return models.InvalidRangef("spot id is required")
	}
	if _, err := d.Spot.Point(); err != nil {
		return fmt.Errorf("spot %s: %w", d.Spot.ID, err)
	}
	if d.Spot.Exposure != nil {
		arc, err := circular.New(d.Spot.Exposure.Start, d.Spot.Exposure.End)
		if err != nil {
			return fmt.Errorf("spot %s exposure: %w", d.Spot.ID, err)
		}
		d.Spot.Exposure = &arc
	}

	for i := range d.Triggers {
		t := &d.Triggers[i]
		switch t.SpotID {
		case "":
			t.SpotID = d.Spot.ID
		case d.Spot.ID:
		default:
			return models.InvalidRangef("trigger %s belongs to spot %s, listed under %s", t.ID, t.SpotID, d.Spot.ID)
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
	}
	return nil
}

// Resolve normalizes every definition and resolves its drafts into
// windows. Spot ids must be unique.
func Resolve(defs []Definition) ([]engine.SpotTriggers, error) {
	seen := make(map[string]bool, len(defs))
	out := make([]engine.SpotTriggers, 0, len(defs))
	for i := range defs {
		d := &defs[i]
		if err := d.Normalize(); err != nil {
			return nil, err
		}
		if seen[d.Spot.ID] {
			return nil, models.InvalidRangef("duplicate spot id %s", d.Spot.ID)
		}
		seen[d.Spot.ID] = true

		st := engine.SpotTriggers{Spot: d.Spot, Windows: make([]trigger.Window, 0, len(d.Triggers))}
		for _, draft := range d.Triggers {
			w, err := draft.Resolve()
			if err != nil {
				return nil, fmt.Errorf("trigger %s: %w", draft.ID, err)
			}
			st.Windows = append(st.Windows, w)
		}
		out = append(out, st)
	}
	return out, nil
}
