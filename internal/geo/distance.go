// Package geo resolves reference stations near a point using great-circle
// distance on a spherical Earth.
package geo

import (
	"math"

	"github.com/ngmaloney/swellwatch/internal/models"
)

// EarthRadiusMiles is the mean spherical radius. Errors of about 0.5%
// against the ellipsoid are acceptable here.
const EarthRadiusMiles = 3959.0

// milesPerDegreeLat is used only for the cheap bounding-box prefilter.
const milesPerDegreeLat = 69.0

// Distance calculates the haversine distance in miles between two points.
func Distance(p1, p2 models.GeoPoint) float64 {
	lat1Rad := p1.Lat * math.Pi / 180
	lat2Rad := p2.Lat * math.Pi / 180
	deltaLat := (p2.Lat - p1.Lat) * math.Pi / 180
	deltaLon := (p2.Lon - p1.Lon) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	// Rounding can push a past 1 at antipodal points.
	a = math.Max(0, math.Min(1, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}
