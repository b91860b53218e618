// Package circular implements compass-direction arithmetic: normalization
// into [0, 360) and clockwise arcs that may wrap through north.
package circular

import (
	"math"

	"github.com/ngmaloney/swellwatch/internal/models"
)

// Range is the arc swept clockwise from Start to End, both in [0, 360).
// Start > End means the arc crosses 0°.
type Range struct {
	Start float64 `json:"start_deg"`
	End   float64 `json:"end_deg"`
}

// Normalize maps any finite angle into [0, 360).
func Normalize(deg float64) float64 {
	n := math.Mod(math.Mod(deg, 360)+360, 360)
	// math.Mod of a tiny negative value can round back up to exactly 360.
	if n >= 360 {
		n = 0
	}
	return n
}

// New builds a Range from arbitrary degree values. NaN and infinities
// are rejected; everything else is normalized.
func New(start, end float64) (Range, error) {
	if !finite(start) || !finite(end) {
		return Range{}, models.InvalidRangef("direction bounds must be finite, got %v..%v", start, end)
	}
	return Range{Start: Normalize(start), End: Normalize(end)}, nil
}

// Validate checks a Range built without New, for example one decoded
// from JSON: both ends must be finite and already in [0, 360).
func (r Range) Validate() error {
	if !finite(r.Start) || !finite(r.End) {
		return models.InvalidRangef("direction bounds must be finite, got %v..%v", r.Start, r.End)
	}
	if Normalize(r.Start) != r.Start || Normalize(r.End) != r.End {
		return models.InvalidRangef("direction bounds must be in [0, 360), got %v..%v", r.Start, r.End)
	}
	return nil
}

// Contains reports whether angle lies on the arc, bounds inclusive.
// A degenerate arc (Start == End) contains only that exact angle; any
// "whole compass" convention belongs to the caller.
func (r Range) Contains(angle float64) bool {
	if !finite(angle) {
		return false
	}
	a := Normalize(angle)
	if r.Start <= r.End {
		return a >= r.Start && a <= r.End
	}
	return a >= r.Start || a <= r.End
}

// ArcSpan returns the clockwise width of the arc in degrees. For a
// degenerate arc the caller decides: 360 when fullCircle, else 0.
func (r Range) ArcSpan(fullCircle bool) float64 {
	if r.Start == r.End {
		if fullCircle {
			return 360
		}
		return 0
	}
	return math.Mod(r.End-r.Start+360, 360)
}

// Midpoint returns the bisector of the clockwise arc.
func (r Range) Midpoint() float64 {
	return Normalize(r.Start + r.ArcSpan(false)/2)
}

// Separation returns the smallest angle between two bearings, in [0, 180].
func Separation(a, b float64) float64 {
	d := math.Abs(Normalize(a) - Normalize(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
