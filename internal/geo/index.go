package geo

import (
	"math"
	"sort"

	"github.com/ngmaloney/swellwatch/internal/models"
)

// Neighbor is a station with its distance from a query point.
type Neighbor struct {
	Station       models.ReferenceStation `json:"station"`
	DistanceMiles float64                 `json:"distance_miles"`
}

// Index is an immutable catalog of reference stations. It is safe for
// concurrent use without locking.
type Index struct {
	stations []models.ReferenceStation
	byKey    map[stationKey]int
}

type stationKey struct {
	kind models.StationKind
	id   string
}

// NewIndex copies the catalog into a new Index. Stations with invalid
// coordinates are dropped; the first of duplicate (kind, id) pairs wins.
func NewIndex(stations []models.ReferenceStation) *Index {
	idx := &Index{
		stations: make([]models.ReferenceStation, 0, len(stations)),
		byKey:    make(map[stationKey]int, len(stations)),
	}
	for _, s := range stations {
		if _, err := models.NewGeoPoint(s.Location.Lat, s.Location.Lon); err != nil {
			continue
		}
		key := stationKey{kind: s.Kind, id: s.ID}
		if _, dup := idx.byKey[key]; dup {
			continue
		}
		idx.byKey[key] = len(idx.stations)
		idx.stations = append(idx.stations, s)
	}
	return idx
}

// Len returns the number of stations in the index.
func (idx *Index) Len() int {
	return len(idx.stations)
}

// Station looks up a station by kind and upstream id. KindAny returns the
// first station with that id.
func (idx *Index) Station(kind models.StationKind, id string) (models.ReferenceStation, bool) {
	if kind != models.KindAny {
		i, ok := idx.byKey[stationKey{kind: kind, id: id}]
		if !ok {
			return models.ReferenceStation{}, false
		}
		return idx.stations[i], true
	}
	for _, s := range idx.stations {
		if s.ID == id {
			return s, true
		}
	}
	return models.ReferenceStation{}, false
}

// Nearest returns stations of the given kind within maxDistanceMiles of
// point, closest first, truncated to limit (limit <= 0 means no limit).
// It never fails; no match yields an empty slice.
func (idx *Index) Nearest(point models.GeoPoint, kind models.StationKind, limit int, maxDistanceMiles float64) []Neighbor {
	neighbors := []Neighbor{}
	if math.IsNaN(maxDistanceMiles) || maxDistanceMiles < 0 {
		return neighbors
	}

	// Latitude degrees are a near-constant length, so a latitude band is a
	// safe prefilter. Longitude is left to haversine (it shrinks toward the
	// poles and wraps at the antimeridian).
	latDelta := maxDistanceMiles/milesPerDegreeLat*1.5 + 0.01

	for _, s := range idx.stations {
		if kind != models.KindAny && s.Kind != kind {
			continue
		}
		if math.Abs(s.Location.Lat-point.Lat) > latDelta {
			continue
		}
		d := Distance(point, s.Location)
		if d <= maxDistanceMiles {
			neighbors = append(neighbors, Neighbor{Station: s, DistanceMiles: d})
		}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		a, b := neighbors[i], neighbors[j]
		if a.DistanceMiles != b.DistanceMiles {
			return a.DistanceMiles < b.DistanceMiles
		}
		if a.Station.ID != b.Station.ID {
			return a.Station.ID < b.Station.ID
		}
		return a.Station.Kind < b.Station.Kind
	})

	if limit > 0 && len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	return neighbors
}
