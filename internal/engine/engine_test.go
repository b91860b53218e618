package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/swellwatch/internal/circular"
	"github.com/ngmaloney/swellwatch/internal/geo"
	"github.com/ngmaloney/swellwatch/internal/models"
	"github.com/ngmaloney/swellwatch/internal/ranking"
	"github.com/ngmaloney/swellwatch/internal/tides"
	"github.com/ngmaloney/swellwatch/internal/trigger"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return now }

type fakeObserver struct {
	mu    sync.Mutex
	obs   map[string]models.Observation
	err   error
	calls atomic.Int32
}

func (f *fakeObserver) Observe(_ context.Context, stationID string) (models.Observation, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Observation{}, f.err
	}
	o, ok := f.obs[stationID]
	if !ok {
		return models.Observation{}, models.NewAppError(models.ErrCodeStationNotFound, "unknown buoy "+stationID, nil)
	}
	return o, nil
}

type fakeFetcher struct {
	calls atomic.Int32
	err   error
}

// Rising from 1 ft at 09:00 to 4 ft at 15:00.
func (f *fakeFetcher) Fetch(_ context.Context, _ string, _ time.Time, _ int) ([]models.TidePrediction, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return []models.TidePrediction{
		{Time: now.Add(-3 * time.Hour), HeightFt: 1},
		{Time: now.Add(3 * time.Hour), HeightFt: 4, IsHigh: true},
	}, nil
}

var (
	spotPoint = models.GeoPoint{Lat: 37.75, Lon: -122.5}
	catalog   = []models.ReferenceStation{
		{ID: "46026", Location: models.GeoPoint{Lat: 37.75, Lon: -122.838}, Kind: models.KindBuoy, Exposure: models.ExposureWest},
		{ID: "46237", Location: models.GeoPoint{Lat: 37.786, Lon: -122.634}, Kind: models.KindBuoy, Exposure: models.ExposureSheltered},
		{ID: "9414290", Location: models.GeoPoint{Lat: 37.8063, Lon: -122.4659}, Kind: models.KindTideStation},
	}
)

func newTestEngine(t *testing.T) (*Engine, *fakeObserver, *fakeFetcher) {
	t.Helper()
	obs := &fakeObserver{obs: map[string]models.Observation{
		"46237": {StationID: "46237", HeightFt: 4.5, PeriodSec: 11, SwellDirectionDeg: 160, WindSpeedMph: 8, WindDirectionDeg: 270, ObservedAt: now},
		"46026": {StationID: "46026", HeightFt: 8, PeriodSec: 14, SwellDirectionDeg: 290, WindSpeedMph: 20, WindDirectionDeg: 300, ObservedAt: now},
	}}
	fetcher := &fakeFetcher{}
	index := geo.NewIndex(catalog)
	interp := tides.NewInterpolator(fetcher, tides.WithClock(fixedClock{}))
	ranker := ranking.New(index, ranking.Weights{BandMiles: 25, ExposureWeight: 1}, 50)
	return New(index, interp, obs, ranker, zerolog.Nop(), WithSearchRadius(30), WithConcurrency(2)), obs, fetcher
}

func scenarioWindow(t *testing.T, id string) trigger.Window {
	t.Helper()
	w, err := trigger.Draft{
		ID:             id,
		SpotID:         "ob",
		UserID:         "u1",
		HeightFt:       trigger.Bounds{Min: trigger.Float(3), Max: trigger.Float(6)},
		PeriodSec:      trigger.Bounds{Min: trigger.Float(8), Max: trigger.Float(20)},
		SwellDirection: trigger.Arc{Start: trigger.Float(112), End: trigger.Float(202)},
		WindSpeedMph:   trigger.Bounds{Max: trigger.Float(12)},
		TideDirection:  "rising",
	}.Resolve()
	require.NoError(t, err)
	return w
}

func TestSnapshot_NearestStations(t *testing.T) {
	e, obs, fetcher := newTestEngine(t)

	snap, stale, err := e.Snapshot(context.Background(), Spot{ID: "ob", Lat: spotPoint.Lat, Lon: spotPoint.Lon}, now)
	require.NoError(t, err)
	assert.False(t, stale)

	// 46237 is closer than 46026.
	assert.Equal(t, 4.5, snap.HeightFt)
	assert.InDelta(t, 2.5, snap.TideHeightFt, 1e-9)
	assert.Equal(t, models.TideRising, snap.TideDirection)
	assert.Equal(t, int32(1), obs.calls.Load())
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestSnapshot_AssignedStations(t *testing.T) {
	e, _, _ := newTestEngine(t)

	snap, _, err := e.Snapshot(context.Background(), Spot{ID: "ob", Lat: spotPoint.Lat, Lon: spotPoint.Lon, BuoyID: "46026"}, now)
	require.NoError(t, err)
	assert.Equal(t, 8.0, snap.HeightFt)
}

func TestSnapshot_Unavailable(t *testing.T) {
	tests := []struct {
		name  string
		spot  Spot
		setup func(*fakeObserver, *fakeFetcher)
		want  error
	}{
		{"no station in range", Spot{ID: "far", Lat: 0, Lon: 0}, nil, models.ErrDataUnavailable},
		{"buoy down", Spot{ID: "ob", Lat: spotPoint.Lat, Lon: spotPoint.Lon}, func(o *fakeObserver, _ *fakeFetcher) {
			o.err = models.NewAppError(models.ErrCodeUpstreamError, "503", nil)
		}, models.ErrDataUnavailable},
		{"tides down, nothing cached", Spot{ID: "ob", Lat: spotPoint.Lat, Lon: spotPoint.Lon}, func(_ *fakeObserver, f *fakeFetcher) {
			f.err = errors.New("connection refused")
		}, models.ErrDataUnavailable},
		{"invalid location", Spot{ID: "bad", Lat: 95, Lon: 0}, nil, models.ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, obs, fetcher := newTestEngine(t)
			if tt.setup != nil {
				tt.setup(obs, fetcher)
			}
			_, _, err := e.Snapshot(context.Background(), tt.spot, now)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEvaluateSpot(t *testing.T) {
	e, _, _ := newTestEngine(t)
	spot := Spot{ID: "ob", Lat: spotPoint.Lat, Lon: spotPoint.Lon}

	matching := scenarioWindow(t, "t-match")
	falling := scenarioWindow(t, "t-falling")
	falling.TideDirection = models.TideFalling

	results := e.EvaluateSpot(context.Background(), spot, []trigger.Window{matching, falling}, now)
	require.Len(t, results, 2)

	assert.Equal(t, OutcomeMatched, results[0].Outcome)
	assert.Equal(t, "t-match", results[0].TriggerID)
	assert.Equal(t, "u1", results[0].UserID)
	assert.Equal(t, 4.5, results[0].Snapshot.HeightFt)

	assert.Equal(t, OutcomeNoMatch, results[1].Outcome)
	assert.Equal(t, trigger.DimTideDirection, results[1].Failed)

	assert.Empty(t, e.EvaluateSpot(context.Background(), spot, nil, now))
}

func TestEvaluateSpot_UnknownIsNotNoMatch(t *testing.T) {
	e, obs, _ := newTestEngine(t)
	obs.err = models.NewAppError(models.ErrCodeUpstreamTimeout, "slow", nil)

	results := e.EvaluateSpot(context.Background(), Spot{ID: "ob", Lat: spotPoint.Lat, Lon: spotPoint.Lon},
		[]trigger.Window{scenarioWindow(t, "t1")}, now)
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeUnknown, results[0].Outcome)
	assert.ErrorIs(t, results[0].Err, models.ErrDataUnavailable)
	assert.ErrorIs(t, results[0].Err, models.ErrUpstreamTimeout)
}

func TestEvaluateSpot_InvalidWindowAndMissingWind(t *testing.T) {
	e, obs, _ := newTestEngine(t)
	obs.mu.Lock()
	o := obs.obs["46237"]
	o.WindSpeedMph, o.WindDirectionDeg, o.WindMissing = 0, 0, true
	obs.obs["46237"] = o
	obs.mu.Unlock()

	needsWind := scenarioWindow(t, "needs-wind")
	unnormalized := scenarioWindow(t, "bad-arc")
	unnormalized.SwellDirection.Arc.Start = 400
	open, err := trigger.Draft{ID: "open", UserID: "u2"}.Resolve()
	require.NoError(t, err)

	results := e.EvaluateSpot(context.Background(), Spot{ID: "ob", Lat: spotPoint.Lat, Lon: spotPoint.Lon},
		[]trigger.Window{needsWind, unnormalized, open}, now)
	require.Len(t, results, 3)

	assert.Equal(t, OutcomeUnknown, results[0].Outcome)
	assert.Equal(t, trigger.DimWindSpeed, results[0].Failed)
	assert.ErrorIs(t, results[0].Err, models.ErrDataUnavailable)
	assert.True(t, results[0].Snapshot.WindMissing)

	assert.Equal(t, OutcomeUnknown, results[1].Outcome)
	assert.ErrorIs(t, results[1].Err, models.ErrInvalidRange)

	assert.Equal(t, OutcomeMatched, results[2].Outcome)
	assert.NoError(t, results[2].Err)
}

func TestEvaluateAll(t *testing.T) {
	e, _, fetcher := newTestEngine(t)

	spots := []SpotTriggers{
		{Spot: Spot{ID: "ob", Lat: spotPoint.Lat, Lon: spotPoint.Lon}, Windows: []trigger.Window{scenarioWindow(t, "a")}},
		{Spot: Spot{ID: "nowhere", Lat: 10, Lon: 10}, Windows: []trigger.Window{scenarioWindow(t, "b")}},
		{Spot: Spot{ID: "ob-west", Lat: spotPoint.Lat, Lon: spotPoint.Lon, BuoyID: "46026"}, Windows: []trigger.Window{scenarioWindow(t, "c")}},
	}

	results, err := e.EvaluateAll(context.Background(), spots, now)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, OutcomeMatched, results[0].Outcome)
	assert.Equal(t, OutcomeUnknown, results[1].Outcome)
	assert.Equal(t, OutcomeNoMatch, results[2].Outcome)
	assert.Equal(t, trigger.DimHeight, results[2].Failed)

	// Both valid spots share one tide station, cached after the first fetch.
	assert.LessOrEqual(t, fetcher.calls.Load(), int32(2))
}

func TestEvaluateAll_Canceled(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.EvaluateAll(ctx, []SpotTriggers{{Spot: Spot{ID: "ob", Lat: spotPoint.Lat, Lon: spotPoint.Lon}}}, now)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFacade(t *testing.T) {
	e, _, _ := newTestEngine(t)

	near := e.FindNearestStations(spotPoint, models.KindBuoy, 1, 30)
	require.Len(t, near, 1)
	assert.Equal(t, "46237", near[0].Station.ID)

	state, stale, err := e.GetTideState(context.Background(), "9414290", now)
	require.NoError(t, err)
	assert.False(t, stale)
	assert.InDelta(t, 2.5, state.HeightFt, 1e-9)

	snap := models.ConditionSnapshot{HeightFt: 4.5, PeriodSec: 11, SwellDirectionDeg: 160, WindSpeedMph: 8, TideDirection: models.TideRising}
	assert.True(t, e.Matches(scenarioWindow(t, "x"), snap))

	westFacing := circular.Range{Start: 250, End: 290}
	ranked := e.RankStations(spotPoint, &westFacing, 0)
	require.Len(t, ranked, 3)
	ids := []string{ranked[0].Station.ID, ranked[1].Station.ID, ranked[2].Station.ID}
	assert.Equal(t, []string{"46026", "9414290", "46237"}, ids, "west-facing buoy ranks first in the nearest band")
}
