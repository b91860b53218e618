// Package tides turns discrete high/low tide predictions into a current
// water level and direction, and caches prediction series per station.
package tides

import (
	"math"
	"sort"
	"time"

	"github.com/ngmaloney/swellwatch/internal/models"
)

// SlackWindow is how close to a high or low the water is considered slack.
const SlackWindow = 15 * time.Minute

// Interpolate estimates the tide state at query by linear interpolation
// between the two predictions that bracket it.
//
// Outside the covered range the first (or last) two predictions are used
// with progress clamped, so the height holds at the nearest extremum. That
// is an approximation; callers fetch enough padding that it rarely applies.
func Interpolate(predictions []models.TidePrediction, query time.Time) (models.TideState, error) {
	sorted := sortedPredictions(predictions)
	if len(sorted) < 2 {
		return models.TideState{}, models.NewAppError(models.ErrCodeDataUnavailable,
			"at least two tide predictions are required", nil)
	}
	return interpolateSorted(sorted, query), nil
}

// HourlySeries samples the interpolated curve every hour from the top of
// the hour at or before from through to. Nil when fewer than two predictions.
func HourlySeries(predictions []models.TidePrediction, from, to time.Time) []models.TideLevel {
	sorted := sortedPredictions(predictions)
	if len(sorted) < 2 || to.Before(from) {
		return nil
	}

	var levels []models.TideLevel
	for t := from.Truncate(time.Hour); !t.After(to); t = t.Add(time.Hour) {
		state := interpolateSorted(sorted, t)
		levels = append(levels, models.TideLevel{Time: t, HeightFt: state.HeightFt})
	}
	return levels
}

func interpolateSorted(sorted []models.TidePrediction, query time.Time) models.TideState {
	n := len(sorted)

	// First prediction strictly after query.
	i := sort.Search(n, func(i int) bool { return sorted[i].Time.After(query) })
	switch {
	case i == 0:
		i = 1
	case i == n:
		i = n - 1
	}
	before, after := sorted[i-1], sorted[i]

	span := after.Time.Sub(before.Time)
	progress := 0.0
	if span > 0 {
		progress = float64(query.Sub(before.Time)) / float64(span)
	}
	progress = math.Max(0, math.Min(1, progress))

	height := before.HeightFt + (after.HeightFt-before.HeightFt)*progress

	var direction models.TideDirection
	switch {
	case absDuration(query.Sub(before.Time)) <= SlackWindow,
		absDuration(after.Time.Sub(query)) <= SlackWindow:
		direction = models.TideSlack
	case after.HeightFt > before.HeightFt:
		direction = models.TideRising
	default:
		direction = models.TideFalling
	}

	return models.TideState{HeightFt: height, Direction: direction, AsOf: query}
}

// sortedPredictions returns a time-ordered copy without non-finite heights.
func sortedPredictions(predictions []models.TidePrediction) []models.TidePrediction {
	sorted := make([]models.TidePrediction, 0, len(predictions))
	for _, p := range predictions {
		if math.IsNaN(p.HeightFt) || math.IsInf(p.HeightFt, 0) {
			continue
		}
		sorted = append(sorted, p)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})
	return sorted
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
