// Package ranking orders candidate reference stations for assignment to a
// surf spot.
package ranking

import (
	"math"
	"sort"

	"github.com/ngmaloney/swellwatch/internal/circular"
	"github.com/ngmaloney/swellwatch/internal/geo"
	"github.com/ngmaloney/swellwatch/internal/models"
)

// neutralScore is the compatibility of a station whose exposure is
// unknown or sheltered.
const neutralScore = 0.5

// Weights tune exposure-aware ranking. They come from configuration.
type Weights struct {
	// BandMiles groups candidates into distance bands; exposure only
	// reorders stations inside the same band.
	BandMiles float64
	// ExposureWeight in [0, 1] blends exposure compatibility with distance
	// inside a band. Zero gives pure distance ordering.
	ExposureWeight float64
}

// Ranker ranks stations near a point.
type Ranker struct {
	index       *geo.Index
	weights     Weights
	radiusMiles float64
}

// New creates a Ranker searching radiusMiles around each point.
func New(index *geo.Index, weights Weights, radiusMiles float64) *Ranker {
	weights.ExposureWeight = math.Max(0, math.Min(1, weights.ExposureWeight))
	return &Ranker{index: index, weights: weights, radiusMiles: radiusMiles}
}

type scored struct {
	geo.Neighbor
	band  int
	score float64
}

// Rank returns up to limit stations of kind (limit <= 0 means all within
// the radius). Without an exposure arc, or with a zero weight, the order
// is pure distance.
func (r *Ranker) Rank(point models.GeoPoint, exposure *circular.Range, kind models.StationKind, limit int) []geo.Neighbor {
	candidates := r.index.Nearest(point, kind, 0, r.radiusMiles)
	if exposure == nil || r.weights.ExposureWeight == 0 || r.weights.BandMiles <= 0 {
		return truncate(candidates, limit)
	}

	facing := exposure.Midpoint()
	ranked := make([]scored, len(candidates))
	for i, n := range candidates {
		band := int(n.DistanceMiles / r.weights.BandMiles)
		// Position inside the band, 1 at its near edge.
		nearness := 1 - (n.DistanceMiles-float64(band)*r.weights.BandMiles)/r.weights.BandMiles
		w := r.weights.ExposureWeight
		ranked[i] = scored{
			Neighbor: n,
			band:     band,
			score:    w*Compatibility(n.Station.Exposure, facing) + (1-w)*nearness,
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].band != ranked[j].band {
			return ranked[i].band < ranked[j].band
		}
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].DistanceMiles < ranked[j].DistanceMiles
	})

	out := make([]geo.Neighbor, len(ranked))
	for i, s := range ranked {
		out[i] = s.Neighbor
	}
	return truncate(out, limit)
}

// Compatibility scores how well a station's exposure class matches a spot
// facing the given bearing: 1 for the same direction, 0 for opposite.
func Compatibility(class models.Exposure, facing float64) float64 {
	bearing, ok := class.Bearing()
	if !ok {
		return neutralScore
	}
	return 1 - circular.Separation(bearing, facing)/180
}

func truncate(neighbors []geo.Neighbor, limit int) []geo.Neighbor {
	if limit > 0 && len(neighbors) > limit {
		return neighbors[:limit]
	}
	return neighbors
}
