package trigger

import (
	"github.com/ngmaloney/swellwatch/internal/circular"
	"github.com/ngmaloney/swellwatch/internal/models"
)

// Limits are the absolute floor and ceiling of a scalar dimension. A
// missing bound takes the matching limit.
type Limits struct {
	Floor   float64
	Ceiling float64
}

var (
	HeightLimits     = Limits{Floor: 0, Ceiling: 50}
	PeriodLimits     = Limits{Floor: 0, Ceiling: 30}
	WindSpeedLimits  = Limits{Floor: 0, Ceiling: 100}
	TideHeightLimits = Limits{Floor: -3, Ceiling: 8}
)

// Bounds is an optional numeric window as entered by a user.
type Bounds struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Arc is an optional compass window in degrees, clockwise from Start.
type Arc struct {
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
}

// Draft is a trigger with optional bounds, as submitted by a client.
type Draft struct {
	ID     string `json:"id"`
	SpotID string `json:"spot_id"`
	UserID string `json:"user_id,omitempty"`

	HeightFt       Bounds `json:"height_ft"`
	PeriodSec      Bounds `json:"period_sec"`
	SwellDirection Arc    `json:"swell_direction"`
	WindSpeedMph   Bounds `json:"wind_speed_mph"`
	WindDirection  Arc    `json:"wind_direction"`
	TideHeightFt   Bounds `json:"tide_height_ft"`
	TideDirection  string `json:"tide_direction,omitempty"`
}

// Float returns a pointer to v, for building drafts in code.
func Float(v float64) *float64 { return &v }

// Resolve fills defaults and validates, producing an immutable Window.
func (d Draft) Resolve() (Window, error) {
	w := Window{ID: d.ID, SpotID: d.SpotID, UserID: d.UserID}
	var err error

	if w.HeightFt, err = resolveRange(DimHeight, d.HeightFt, HeightLimits); err != nil {
		return Window{}, err
	}
	if w.PeriodSec, err = resolveRange(DimPeriod, d.PeriodSec, PeriodLimits); err != nil {
		return Window{}, err
	}
	if w.SwellDirection, err = resolveHeading(DimSwellDirection, d.SwellDirection); err != nil {
		return Window{}, err
	}
	if w.WindSpeedMph, err = resolveRange(DimWindSpeed, d.WindSpeedMph, WindSpeedLimits); err != nil {
		return Window{}, err
	}
	if w.WindDirection, err = resolveHeading(DimWindDirection, d.WindDirection); err != nil {
		return Window{}, err
	}
	if w.TideHeightFt, err = resolveRange(DimTideHeight, d.TideHeightFt, TideHeightLimits); err != nil {
		return Window{}, err
	}

	dir, ok := models.ParseTideDirection(d.TideDirection)
	if !ok {
		return Window{}, models.InvalidRangef("unsupported tide direction %q", d.TideDirection)
	}
	w.TideDirection = dir

	return w, nil
}

func resolveRange(dim Dimension, b Bounds, limits Limits) (Range, error) {
	r := Range{Min: limits.Floor, Max: limits.Ceiling}
	if b.Min != nil {
		r.Min = *b.Min
	}
	if b.Max != nil {
		r.Max = *b.Max
	}
	if !finite(r.Min) || !finite(r.Max) {
		return Range{}, models.InvalidRangef("%s bounds must be finite", dim)
	}
	if r.Min > r.Max {
		return Range{}, models.InvalidRangef("%s min %.2f exceeds max %.2f", dim, r.Min, r.Max)
	}
	r.Unconstrained = r.Min == limits.Floor && r.Max == limits.Ceiling
	return r, nil
}

func resolveHeading(dim Dimension, a Arc) (Heading, error) {
	start, end := 0.0, 360.0
	if a.Start != nil {
		start = *a.Start
	}
	if a.End != nil {
		end = *a.End
	}
	if start == 0 && end == 360 {
		return Heading{Arc: circular.Range{Start: 0, End: 0}, Unconstrained: true}, nil
	}
	arc, err := circular.New(start, end)
	if err != nil {
		return Heading{}, models.InvalidRangef("%s: %v", dim, err)
	}
	return Heading{Arc: arc}, nil
}
