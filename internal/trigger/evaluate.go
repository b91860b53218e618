package trigger

import (
	"fmt"

	"github.com/ngmaloney/swellwatch/internal/models"
)

// Dimension names one axis of a trigger window.
type Dimension string

const (
	DimNone           Dimension = ""
	DimHeight         Dimension = "height"
	DimPeriod         Dimension = "period"
	DimSwellDirection Dimension = "swell_direction"
	DimWindSpeed      Dimension = "wind_speed"
	DimWindDirection  Dimension = "wind_direction"
	DimTideHeight     Dimension = "tide_height"
	DimTideDirection  Dimension = "tide_direction"
)

// Result is the outcome of evaluating one window.
type Result struct {
	Matched bool      `json:"matched"`
	Failed  Dimension `json:"failed,omitempty"`
	Reason  string    `json:"reason,omitempty"`
	// Missing means every other dimension passed but the failing one had
	// no reading. The window neither matched nor failed on the conditions.
	Missing bool `json:"missing,omitempty"`
}

// Matches reports whether every dimension of w accepts s.
func Matches(w Window, s models.ConditionSnapshot) bool {
	return Evaluate(w, s).Matched
}

// Evaluate checks s against w and stops at the first failing dimension.
//
// Wind speed is checked against the maximum only; the minimum is kept for
// display. A snapshot without wind never matches a window that constrains
// wind.
func Evaluate(w Window, s models.ConditionSnapshot) Result {
	if !w.HeightFt.Contains(s.HeightFt) {
		return failed(DimHeight, "height %.1f ft outside [%.1f, %.1f]", s.HeightFt, w.HeightFt.Min, w.HeightFt.Max)
	}
	if !w.PeriodSec.Contains(s.PeriodSec) {
		return failed(DimPeriod, "period %.1f s outside [%.1f, %.1f]", s.PeriodSec, w.PeriodSec.Min, w.PeriodSec.Max)
	}
	if !w.SwellDirection.Contains(s.SwellDirectionDeg) {
		return failed(DimSwellDirection, "swell %.0f° outside %.0f°-%.0f°", s.SwellDirectionDeg,
			w.SwellDirection.Arc.Start, w.SwellDirection.Arc.End)
	}
	windUnknown := s.WindMissing && w.UsesWind()
	if !windUnknown {
		if !w.WindSpeedMph.Unconstrained && s.WindSpeedMph > w.WindSpeedMph.Max {
			return failed(DimWindSpeed, "wind %.1f mph above %.1f", s.WindSpeedMph, w.WindSpeedMph.Max)
		}
		if !w.WindDirection.Contains(s.WindDirectionDeg) {
			return failed(DimWindDirection, "wind %.0f° outside %.0f°-%.0f°", s.WindDirectionDeg,
				w.WindDirection.Arc.Start, w.WindDirection.Arc.End)
		}
	}
	if !w.TideHeightFt.Contains(s.TideHeightFt) {
		return failed(DimTideHeight, "tide %.1f ft outside [%.1f, %.1f]", s.TideHeightFt, w.TideHeightFt.Min, w.TideHeightFt.Max)
	}
	if w.TideDirection != models.TideAny && s.TideDirection != w.TideDirection {
		return failed(DimTideDirection, "tide %s, want %s", s.TideDirection, w.TideDirection)
	}
	if windUnknown {
		dim := DimWindSpeed
		if w.WindSpeedMph.Unconstrained {
			dim = DimWindDirection
		}
		r := failed(dim, "no wind reading")
		r.Missing = true
		return r
	}
	return Result{Matched: true}
}

func failed(dim Dimension, format string, args ...any) Result {
	return Result{Failed: dim, Reason: fmt.Sprintf(format, args...)}
}
