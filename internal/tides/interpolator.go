package tides

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ngmaloney/swellwatch/internal/models"
)

// Defaults for NewInterpolator.
const (
	DefaultTTL          = time.Hour
	DefaultWindowHours  = 24
	DefaultFetchTimeout = 10 * time.Second

	// lookbackHours of predictions before now are always requested, and the
	// same again past the window, so interpolation near either edge still
	// has a bracketing pair.
	lookbackHours = 24
	paddingHours  = 48
)

// Fetcher retrieves high/low tide predictions for a station.
type Fetcher interface {
	Fetch(ctx context.Context, stationID string, begin time.Time, rangeHours int) ([]models.TidePrediction, error)
}

// Series is a cached set of predictions for one station. It is never
// modified after it is stored.
type Series struct {
	StationID   string                  `json:"station_id"`
	Predictions []models.TidePrediction `json:"predictions"`
	Hourly      []models.TideLevel      `json:"hourly"`
	FetchedAt   time.Time               `json:"fetched_at"`
}

// Interpolator answers tide state queries from a per-station cache,
// refreshing from the Fetcher when entries expire.
type Interpolator struct {
	fetcher      Fetcher
	clock        models.Clock
	ttl          time.Duration
	windowHours  int
	fetchTimeout time.Duration
	logger       zerolog.Logger

	cache sync.Map // station id -> *Series
	group singleflight.Group
}

// Option configures an Interpolator.
type Option func(*Interpolator)

// WithClock sets the time source.
func WithClock(c models.Clock) Option {
	return func(i *Interpolator) {
		if c != nil {
			i.clock = c
		}
	}
}

// WithTTL sets how long a fetched series is considered fresh.
func WithTTL(ttl time.Duration) Option {
	return func(i *Interpolator) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithWindowHours sets the forward horizon requested on each refresh.
func WithWindowHours(hours int) Option {
	return func(i *Interpolator) {
		if hours > 0 {
			i.windowHours = hours
		}
	}
}

// WithFetchTimeout bounds each upstream fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(i *Interpolator) {
		if d > 0 {
			i.fetchTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(i *Interpolator) {
		i.logger = logger.With().Str("component", "tides").Logger()
	}
}

// NewInterpolator creates an Interpolator backed by fetcher.
func NewInterpolator(fetcher Fetcher, opts ...Option) *Interpolator {
	i := &Interpolator{
		fetcher:      fetcher,
		clock:        models.RealClock{},
		ttl:          DefaultTTL,
		windowHours:  DefaultWindowHours,
		fetchTimeout: DefaultFetchTimeout,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// GetPredictions fetches predictions covering windowHours ahead of now,
// padded with a day of history and two days of lookahead. It bypasses the
// cache.
func (i *Interpolator) GetPredictions(ctx context.Context, stationID string, windowHours int) ([]models.TidePrediction, error) {
	if windowHours <= 0 {
		windowHours = i.windowHours
	}
	begin := i.clock.Now().Add(-lookbackHours * time.Hour)
	rangeHours := windowHours + paddingHours

	ctx, cancel := context.WithTimeout(ctx, i.fetchTimeout)
	defer cancel()

	predictions, err := i.fetcher.Fetch(ctx, stationID, begin, rangeHours)
	if err != nil {
		var appErr *models.AppError
		if !errors.As(err, &appErr) && errors.Is(err, context.DeadlineExceeded) {
			return nil, models.NewAppError(models.ErrCodeUpstreamTimeout, "tide fetch timed out", err)
		}
		return nil, fmt.Errorf("fetching tide predictions for %s: %w", stationID, err)
	}
	return predictions, nil
}

// GetTideState returns the tide state for stationID at the given time.
// stale is true when a refresh failed and an expired series was used.
func (i *Interpolator) GetTideState(ctx context.Context, stationID string, at time.Time) (state models.TideState, stale bool, err error) {
	cached, ok := i.Series(stationID)
	if ok && i.clock.Now().Sub(cached.FetchedAt) < i.ttl {
		state, err = Interpolate(cached.Predictions, at)
		return state, false, err
	}

	fresh, err := i.refresh(ctx, stationID)
	if err != nil {
		if ok {
			i.logger.Warn().Err(err).
				Str("station", stationID).
				Time("fetched_at", cached.FetchedAt).
				Msg("tide refresh failed, serving stale series")
			state, err = Interpolate(cached.Predictions, at)
			return state, err == nil, err
		}
		return models.TideState{}, false, models.NewAppError(models.ErrCodeDataUnavailable,
			fmt.Sprintf("no tide predictions for station %s", stationID), err)
	}

	state, err = Interpolate(fresh.Predictions, at)
	return state, false, err
}

// Series returns the cached series for stationID, fresh or not.
func (i *Interpolator) Series(stationID string) (*Series, bool) {
	v, ok := i.cache.Load(stationID)
	if !ok {
		return nil, false
	}
	return v.(*Series), true
}

// refresh fetches and stores a new series. Concurrent refreshes of the
// same station share one upstream call, which is bounded by the fetch
// timeout rather than by whichever caller started it.
func (i *Interpolator) refresh(ctx context.Context, stationID string) (*Series, error) {
	ch := i.group.DoChan(stationID, func() (interface{}, error) {
		predictions, err := i.GetPredictions(context.WithoutCancel(ctx), stationID, i.windowHours)
		if err != nil {
			return nil, err
		}
		sorted := sortedPredictions(predictions)
		if len(sorted) < 2 {
			return nil, models.NewAppError(models.ErrCodeDataUnavailable,
				fmt.Sprintf("upstream returned %d usable tide predictions", len(sorted)), nil)
		}

		now := i.clock.Now()
		series := &Series{
			StationID:   stationID,
			Predictions: sorted,
			Hourly:      HourlySeries(sorted, now, now.Add(time.Duration(i.windowHours)*time.Hour)),
			FetchedAt:   now,
		}
		i.cache.Store(stationID, series)

		i.logger.Debug().
			Str("station", stationID).
			Int("predictions", len(sorted)).
			Msg("tide series refreshed")
		return series, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Series), nil
	}
}
