package models

import "time"

// TideDirection classifies vertical water movement.
type TideDirection string

const (
	TideAny     TideDirection = "any"
	TideRising  TideDirection = "rising"
	TideFalling TideDirection = "falling"
	TideSlack   TideDirection = "slack"
)

// ParseTideDirection maps user input to a trigger tide direction.
// Empty input means any.
func ParseTideDirection(s string) (TideDirection, bool) {
	switch TideDirection(s) {
	case "", TideAny:
		return TideAny, true
	case TideRising, "incoming":
		return TideRising, true
	case TideFalling, "outgoing":
		return TideFalling, true
	}
	return TideAny, false
}

// TidePrediction is a single high or low tide occurrence.
type TidePrediction struct {
	Time     time.Time `json:"time"`
	HeightFt float64   `json:"height_ft"` // feet relative to MLLW (Mean Lower Low Water)
	IsHigh   bool      `json:"is_high"`
}

// TideState is the interpolated water level at a point in time.
type TideState struct {
	HeightFt  float64       `json:"height_ft"`
	Direction TideDirection `json:"direction"`
	AsOf      time.Time     `json:"as_of"`
}

// TideLevel is one point of an hourly tide curve.
type TideLevel struct {
	Time     time.Time `json:"time"`
	HeightFt float64   `json:"height_ft"`
}

// EventsForDay returns the predictions falling on the calendar day of date.
func EventsForDay(predictions []TidePrediction, date time.Time) []TidePrediction {
	var events []TidePrediction
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	for _, p := range predictions {
		if !p.Time.Before(startOfDay) && p.Time.Before(endOfDay) {
			events = append(events, p)
		}
	}
	return events
}
