// Package engine ties station lookup, tide interpolation and trigger
// evaluation together for callers such as the scheduler and the CLI.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ngmaloney/swellwatch/internal/circular"
	"github.com/ngmaloney/swellwatch/internal/geo"
	"github.com/ngmaloney/swellwatch/internal/models"
	"github.com/ngmaloney/swellwatch/internal/ranking"
	"github.com/ngmaloney/swellwatch/internal/trigger"
)

// Defaults for New.
const (
	DefaultSearchRadiusMiles = 50.0
	DefaultConcurrency       = 8
)

// ObservationFetcher returns the latest wave and wind observation of a buoy.
type ObservationFetcher interface {
	Observe(ctx context.Context, stationID string) (models.Observation, error)
}

// TideSource answers tide state queries. *tides.Interpolator implements it.
type TideSource interface {
	GetTideState(ctx context.Context, stationID string, at time.Time) (models.TideState, bool, error)
}

// Engine is safe for concurrent use.
type Engine struct {
	index    *geo.Index
	tides    TideSource
	observer ObservationFetcher
	ranker   *ranking.Ranker
	logger   zerolog.Logger

	searchRadiusMiles float64
	concurrency       int
}

// Option configures an Engine.
type Option func(*Engine)

// WithSearchRadius bounds automatic station assignment.
func WithSearchRadius(miles float64) Option {
	return func(e *Engine) {
		if miles > 0 {
			e.searchRadiusMiles = miles
		}
	}
}

// WithConcurrency limits how many spots EvaluateAll works on at once.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// New creates an Engine.
func New(index *geo.Index, tides TideSource, observer ObservationFetcher, ranker *ranking.Ranker, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		index:             index,
		tides:             tides,
		observer:          observer,
		ranker:            ranker,
		logger:            logger.With().Str("component", "engine").Logger(),
		searchRadiusMiles: DefaultSearchRadiusMiles,
		concurrency:       DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FindNearestStations returns stations of kind within maxMiles, nearest first.
func (e *Engine) FindNearestStations(point models.GeoPoint, kind models.StationKind, limit int, maxMiles float64) []geo.Neighbor {
	return e.index.Nearest(point, kind, limit, maxMiles)
}

// GetTideState returns the tide at a station; stale marks a cached value
// served after a failed refresh.
func (e *Engine) GetTideState(ctx context.Context, stationID string, at time.Time) (models.TideState, bool, error) {
	return e.tides.GetTideState(ctx, stationID, at)
}

// Matches reports whether the snapshot satisfies the window.
func (e *Engine) Matches(w trigger.Window, s models.ConditionSnapshot) bool {
	return trigger.Matches(w, s)
}

// RankStations orders candidate stations of any kind for a spot.
func (e *Engine) RankStations(point models.GeoPoint, exposure *circular.Range, limit int) []geo.Neighbor {
	return e.ranker.Rank(point, exposure, models.KindAny, limit)
}

// Snapshot gathers current conditions for a spot. The buoy observation and
// the tide state are fetched concurrently. stale is true when the tide
// came from an expired cache entry.
func (e *Engine) Snapshot(ctx context.Context, spot Spot, at time.Time) (models.ConditionSnapshot, bool, error) {
	point, err := spot.Point()
	if err != nil {
		return models.ConditionSnapshot{}, false, err
	}

	buoyID, err := e.resolveStation(point, models.KindBuoy, spot.BuoyID)
	if err != nil {
		return models.ConditionSnapshot{}, false, unavailable(spot, err)
	}
	tideID, err := e.resolveStation(point, models.KindTideStation, spot.TideStationID)
	if err != nil {
		return models.ConditionSnapshot{}, false, unavailable(spot, err)
	}

	var (
		obs   models.Observation
		tide  models.TideState
		stale bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		obs, err = e.observer.Observe(gctx, buoyID)
		if err != nil {
			return fmt.Errorf("buoy %s: %w", buoyID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		tide, stale, err = e.tides.GetTideState(gctx, tideID, at)
		if err != nil {
			return fmt.Errorf("tide station %s: %w", tideID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.ConditionSnapshot{}, false, unavailable(spot, err)
	}

	return models.NewSnapshot(obs, tide), stale, nil
}

// EvaluateSpot evaluates every window of a spot against one snapshot.
// When conditions are unavailable every result is OutcomeUnknown. A window
// that fails validation, or that needs a reading the snapshot lacks, is
// also unknown.
func (e *Engine) EvaluateSpot(ctx context.Context, spot Spot, windows []trigger.Window, at time.Time) []MatchResult {
	results := make([]MatchResult, 0, len(windows))
	if len(windows) == 0 {
		return results
	}

	snapshot, stale, err := e.Snapshot(ctx, spot, at)
	if err != nil {
		event := e.logger.Warn()
		if !errors.Is(err, models.ErrDataUnavailable) {
			event = e.logger.Error()
		}
		event.Err(err).Str("spot", spot.ID).Msg("conditions unknown, skipping spot")

		for _, w := range windows {
			results = append(results, MatchResult{
				SpotID:    spot.ID,
				TriggerID: w.ID,
				UserID:    w.UserID,
				Outcome:   OutcomeUnknown,
				Err:       err,
			})
		}
		return results
	}

	for _, w := range windows {
		if err := w.Validate(); err != nil {
			e.logger.Warn().Err(err).Str("spot", spot.ID).Str("trigger", w.ID).Msg("invalid trigger window")
			results = append(results, MatchResult{
				SpotID:    spot.ID,
				TriggerID: w.ID,
				UserID:    w.UserID,
				Outcome:   OutcomeUnknown,
				Err:       err,
			})
			continue
		}

		res := trigger.Evaluate(w, snapshot)
		outcome := OutcomeNoMatch
		var resErr error
		switch {
		case res.Matched:
			outcome = OutcomeMatched
		case res.Missing:
			outcome = OutcomeUnknown
			resErr = models.NewAppError(models.ErrCodeDataUnavailable,
				fmt.Sprintf("%s: %s", res.Failed, res.Reason), nil)
		}
		results = append(results, MatchResult{
			SpotID:    spot.ID,
			TriggerID: w.ID,
			UserID:    w.UserID,
			Outcome:   outcome,
			Failed:    res.Failed,
			Reason:    res.Reason,
			Snapshot:  snapshot,
			Stale:     stale,
			Err:       resErr,
		})

		e.logger.Debug().
			Str("spot", spot.ID).
			Str("trigger", w.ID).
			Str("outcome", string(outcome)).
			Str("failed", string(res.Failed)).
			Bool("stale", stale).
			Msg("trigger evaluated")
	}
	return results
}

// EvaluateAll evaluates many spots with bounded concurrency. A spot whose
// conditions are unavailable yields unknown results and does not stop the
// others. Results keep the order of spots. The only error is the context's.
func (e *Engine) EvaluateAll(ctx context.Context, spots []SpotTriggers, at time.Time) ([]MatchResult, error) {
	perSpot := make([][]MatchResult, len(spots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, st := range spots {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			perSpot[i] = e.EvaluateSpot(gctx, st.Spot, st.Windows, at)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var results []MatchResult
	for _, r := range perSpot {
		results = append(results, r...)
	}
	return results, nil
}

// resolveStation returns the assigned id, or the nearest station of kind.
func (e *Engine) resolveStation(point models.GeoPoint, kind models.StationKind, assigned string) (string, error) {
	if assigned != "" {
		return assigned, nil
	}
	nearest := e.index.Nearest(point, kind, 1, e.searchRadiusMiles)
	if len(nearest) == 0 {
		return "", models.NewAppError(models.ErrCodeStationNotFound,
			fmt.Sprintf("no %s station within %.0f miles", kind, e.searchRadiusMiles), nil)
	}
	return nearest[0].Station.ID, nil
}

func unavailable(spot Spot, err error) error {
	if errors.Is(err, models.ErrDataUnavailable) {
		return err
	}
	return models.NewAppError(models.ErrCodeDataUnavailable,
		fmt.Sprintf("conditions unavailable for spot %s", spot.ID), err)
}
