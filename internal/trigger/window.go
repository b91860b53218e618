// Package trigger holds user preference windows and decides whether a
// condition snapshot satisfies one.
package trigger

import (
	"math"

	"github.com/ngmaloney/swellwatch/internal/circular"
	"github.com/ngmaloney/swellwatch/internal/models"
)

// Range is an inclusive numeric window. An unconstrained range matches
// every value and its bounds are ignored.
type Range struct {
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Unconstrained bool    `json:"unconstrained,omitempty"`
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	if r.Unconstrained {
		return true
	}
	return v >= r.Min && v <= r.Max
}

// Heading is a compass window. The full circle is represented by
// Unconstrained, never by the arc itself.
type Heading struct {
	Arc           circular.Range `json:"arc"`
	Unconstrained bool           `json:"unconstrained,omitempty"`
}

// Contains reports whether deg lies within the heading window.
func (h Heading) Contains(deg float64) bool {
	if h.Unconstrained {
		return true
	}
	return h.Arc.Contains(deg)
}

// Window is a fully resolved trigger. Build one with Draft.Resolve.
type Window struct {
	ID     string `json:"id"`
	SpotID string `json:"spot_id"`
	UserID string `json:"user_id,omitempty"`

	HeightFt       Range                `json:"height_ft"`
	PeriodSec      Range                `json:"period_sec"`
	SwellDirection Heading              `json:"swell_direction"`
	WindSpeedMph   Range                `json:"wind_speed_mph"`
	WindDirection  Heading              `json:"wind_direction"`
	TideHeightFt   Range                `json:"tide_height_ft"`
	TideDirection  models.TideDirection `json:"tide_direction"`
}

// UsesWind reports whether the window constrains wind speed or direction.
func (w Window) UsesWind() bool {
	return !w.WindSpeedMph.Unconstrained || !w.WindDirection.Unconstrained
}

// Validate checks a window that did not come from Resolve, for example
// one decoded from storage.
func (w Window) Validate() error {
	ranges := []struct {
		dim Dimension
		r   Range
	}{
		{DimHeight, w.HeightFt},
		{DimPeriod, w.PeriodSec},
		{DimWindSpeed, w.WindSpeedMph},
		{DimTideHeight, w.TideHeightFt},
	}
	for _, rr := range ranges {
		if rr.r.Unconstrained {
			continue
		}
		if !finite(rr.r.Min) || !finite(rr.r.Max) {
			return models.InvalidRangef("%s bounds must be finite", rr.dim)
		}
		if rr.r.Min > rr.r.Max {
			return models.InvalidRangef("%s min %.2f exceeds max %.2f", rr.dim, rr.r.Min, rr.r.Max)
		}
	}

	headings := []struct {
		dim Dimension
		h   Heading
	}{
		{DimSwellDirection, w.SwellDirection},
		{DimWindDirection, w.WindDirection},
	}
	for _, hh := range headings {
		if hh.h.Unconstrained {
			continue
		}
		if err := hh.h.Arc.Validate(); err != nil {
			return models.InvalidRangef("%s: %v", hh.dim, err)
		}
	}

	switch w.TideDirection {
	case models.TideAny, models.TideRising, models.TideFalling:
	default:
		return models.InvalidRangef("unsupported tide direction %q", w.TideDirection)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
