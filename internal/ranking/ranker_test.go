package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/swellwatch/internal/circular"
	"github.com/ngmaloney/swellwatch/internal/geo"
	"github.com/ngmaloney/swellwatch/internal/models"
)

var spot = models.GeoPoint{Lat: 36.0, Lon: -122.0}

// north returns a point the given number of miles due north of spot.
func north(miles float64) models.GeoPoint {
	return models.GeoPoint{Lat: spot.Lat + miles/69.09, Lon: spot.Lon}
}

func testIndex() *geo.Index {
	return geo.NewIndex([]models.ReferenceStation{
		{ID: "east-3", Location: north(3), Kind: models.KindBuoy, Exposure: models.ExposureEast},
		{ID: "west-6", Location: north(6), Kind: models.KindBuoy, Exposure: models.ExposureWest},
		{ID: "unknown-8", Location: north(8), Kind: models.KindBuoy},
		{ID: "west-14", Location: north(14), Kind: models.KindBuoy, Exposure: models.ExposureWest},
		{ID: "tide-1", Location: north(1), Kind: models.KindTideStation, Exposure: models.ExposureEast},
		{ID: "far", Location: north(80), Kind: models.KindBuoy, Exposure: models.ExposureWest},
	})
}

func ids(neighbors []geo.Neighbor) []string {
	out := make([]string, 0, len(neighbors))
	for _, n := range neighbors {
		out = append(out, n.Station.ID)
	}
	return out
}

func TestRank_BaselineIsDistance(t *testing.T) {
	westFacing := circular.Range{Start: 240, End: 300}

	tests := []struct {
		name     string
		weights  Weights
		exposure *circular.Range
	}{
		{"no exposure", Weights{BandMiles: 10, ExposureWeight: 1}, nil},
		{"zero weight", Weights{BandMiles: 10, ExposureWeight: 0}, &westFacing},
		{"no bands", Weights{BandMiles: 0, ExposureWeight: 1}, &westFacing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(testIndex(), tt.weights, 50)
			got := r.Rank(spot, tt.exposure, models.KindBuoy, 0)
			assert.Equal(t, []string{"east-3", "west-6", "unknown-8", "west-14"}, ids(got))
		})
	}
}

func TestRank_ExposureReordersWithinBand(t *testing.T) {
	westFacing := circular.Range{Start: 240, End: 300}
	r := New(testIndex(), Weights{BandMiles: 10, ExposureWeight: 1}, 50)

	got := r.Rank(spot, &westFacing, models.KindBuoy, 0)
	// Band 0: west-6 (1.0), unknown-8 (0.5), east-3 (0.0). Band 1: west-14.
	assert.Equal(t, []string{"west-6", "unknown-8", "east-3", "west-14"}, ids(got))
}

func TestRank_PartialWeightBlendsDistance(t *testing.T) {
	westFacing := circular.Range{Start: 240, End: 300}
	r := New(testIndex(), Weights{BandMiles: 10, ExposureWeight: 0.2}, 50)

	got := r.Rank(spot, &westFacing, models.KindBuoy, 0)
	// east-3: 0.2*0 + 0.8*0.7 = 0.56; west-6: 0.2*1 + 0.8*0.4 = 0.52; unknown-8: 0.1 + 0.16 = 0.26
	assert.Equal(t, []string{"east-3", "west-6", "unknown-8", "west-14"}, ids(got))
}

func TestRank_KindAndLimit(t *testing.T) {
	r := New(testIndex(), Weights{BandMiles: 10, ExposureWeight: 1}, 50)

	got := r.Rank(spot, nil, models.KindAny, 2)
	assert.Equal(t, []string{"tide-1", "east-3"}, ids(got))

	got = r.Rank(spot, nil, models.KindTideStation, 5)
	assert.Equal(t, []string{"tide-1"}, ids(got))

	got = r.Rank(models.GeoPoint{Lat: -40, Lon: 100}, nil, models.KindAny, 5)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCompatibility(t *testing.T) {
	assert.InDelta(t, 1.0, Compatibility(models.ExposureWest, 270), 1e-9)
	assert.InDelta(t, 0.0, Compatibility(models.ExposureEast, 270), 1e-9)
	assert.InDelta(t, 0.5, Compatibility(models.ExposureNorth, 270), 1e-9)
	assert.InDelta(t, 0.5, Compatibility(models.ExposureSheltered, 270), 1e-9)
	assert.InDelta(t, 0.5, Compatibility(models.ExposureUnknown, 90), 1e-9)
	assert.InDelta(t, 1.0, Compatibility(models.ExposureNorth, 360), 1e-9)
}

func TestNew_ClampsWeight(t *testing.T) {
	r := New(testIndex(), Weights{BandMiles: 10, ExposureWeight: 3}, 50)
	assert.Equal(t, 1.0, r.weights.ExposureWeight)
}
