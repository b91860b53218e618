package engine

import (
	"github.com/ngmaloney/swellwatch/internal/circular"
	"github.com/ngmaloney/swellwatch/internal/models"
	"github.com/ngmaloney/swellwatch/internal/trigger"
)

// Spot is a surf break. Station ids are optional; when empty the nearest
// station of the kind within the search radius is used.
type Spot struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Lat           float64         `json:"lat"`
	Lon           float64         `json:"lon"`
	BuoyID        string          `json:"buoy_id,omitempty"`
	TideStationID string          `json:"tide_station_id,omitempty"`
	Exposure      *circular.Range `json:"exposure,omitempty"`
}

// Point returns the validated spot location.
func (s Spot) Point() (models.GeoPoint, error) {
	return models.NewGeoPoint(s.Lat, s.Lon)
}

// SpotTriggers pairs a spot with the resolved windows watching it.
type SpotTriggers struct {
	Spot    Spot             `json:"spot"`
	Windows []trigger.Window `json:"windows"`
}

// Outcome is the result of evaluating one window. Unknown means the
// conditions could not be determined and is not a failed match.
type Outcome string

const (
	OutcomeMatched Outcome = "matched"
	OutcomeNoMatch Outcome = "no_match"
	OutcomeUnknown Outcome = "unknown"
)

// MatchResult is the evaluation of one window at one spot.
type MatchResult struct {
	SpotID    string                   `json:"spot_id"`
	TriggerID string                   `json:"trigger_id"`
	UserID    string                   `json:"user_id,omitempty"`
	Outcome   Outcome                  `json:"outcome"`
	Failed    trigger.Dimension        `json:"failed,omitempty"`
	Reason    string                   `json:"reason,omitempty"`
	Snapshot  models.ConditionSnapshot `json:"snapshot"`
	Stale     bool                     `json:"stale,omitempty"`
	Err       error                    `json:"-"`
}
