package models

import "time"

// Observation is the wave and wind reading taken from a buoy.
type Observation struct {
	StationID         string    `json:"station_id"`
	HeightFt          float64   `json:"height_ft"`
	PeriodSec         float64   `json:"period_sec"`
	SwellDirectionDeg float64   `json:"swell_direction_deg"` // direction waves arrive FROM
	WindSpeedMph      float64   `json:"wind_speed_mph"`
	WindDirectionDeg  float64   `json:"wind_direction_deg"`
	// WindMissing is set when no row carried both wind speed and direction.
	// The wind fields are zero and mean nothing.
	WindMissing bool      `json:"wind_missing,omitempty"`
	ObservedAt  time.Time `json:"observed_at"`
}

// ConditionSnapshot is the normalized input to trigger evaluation.
type ConditionSnapshot struct {
	HeightFt          float64       `json:"height_ft"`
	PeriodSec         float64       `json:"period_sec"`
	SwellDirectionDeg float64       `json:"swell_direction_deg"`
	WindSpeedMph      float64       `json:"wind_speed_mph"`
	WindDirectionDeg  float64       `json:"wind_direction_deg"`
	WindMissing       bool          `json:"wind_missing,omitempty"`
	TideHeightFt      float64       `json:"tide_height_ft"`
	TideDirection     TideDirection `json:"tide_direction"`
}

// NewSnapshot merges a buoy observation with a tide state.
func NewSnapshot(obs Observation, tide TideState) ConditionSnapshot {
	return ConditionSnapshot{
		HeightFt:          obs.HeightFt,
		PeriodSec:         obs.PeriodSec,
		SwellDirectionDeg: obs.SwellDirectionDeg,
		WindSpeedMph:      obs.WindSpeedMph,
		WindDirectionDeg:  obs.WindDirectionDeg,
		WindMissing:       obs.WindMissing,
		TideHeightFt:      tide.HeightFt,
		TideDirection:     tide.Direction,
	}
}

// Unit conversions used by upstream parsers.
const (
	FeetPerMeter      = 3.28084
	MphPerMeterPerSec = 2.23694
)
