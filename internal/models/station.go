package models

import (
	"math"
	"strings"
)

// GeoPoint is a WGS84 coordinate in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewGeoPoint validates and builds a GeoPoint.
func NewGeoPoint(lat, lon float64) (GeoPoint, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return GeoPoint{}, InvalidRangef("coordinate is NaN")
	}
	if lat < -90 || lat > 90 {
		return GeoPoint{}, InvalidRangef("latitude %.4f outside [-90, 90]", lat)
	}
	if lon < -180 || lon > 180 {
		return GeoPoint{}, InvalidRangef("longitude %.4f outside [-180, 180]", lon)
	}
	return GeoPoint{Lat: lat, Lon: lon}, nil
}

// StationKind distinguishes buoys from tide stations.
type StationKind string

const (
	KindAny         StationKind = ""
	KindBuoy        StationKind = "buoy"
	KindTideStation StationKind = "tide"
)

// ParseStationKind accepts "buoy", "tide" or "" (any).
func ParseStationKind(s string) (StationKind, bool) {
	switch StationKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindBuoy:
		return KindBuoy, true
	case KindTideStation, "tidestation", "tide_station":
		return KindTideStation, true
	case KindAny, "any":
		return KindAny, true
	}
	return KindAny, false
}

// Exposure is the coarse coastal exposure class of a station.
type Exposure string

const (
	ExposureUnknown   Exposure = ""
	ExposureNorth     Exposure = "north"
	ExposureEast      Exposure = "east"
	ExposureSouth     Exposure = "south"
	ExposureWest      Exposure = "west"
	ExposureSheltered Exposure = "sheltered"
)

// ParseExposure normalizes an exposure class. Unrecognized input is
// reported with ok false and maps to ExposureUnknown.
func ParseExposure(s string) (Exposure, bool) {
	switch e := Exposure(strings.ToLower(strings.TrimSpace(s))); e {
	case ExposureUnknown, ExposureNorth, ExposureEast, ExposureSouth, ExposureWest, ExposureSheltered:
		return e, true
	}
	return ExposureUnknown, false
}

// Bearing returns the compass bearing the class faces. ok is false for
// sheltered and unknown stations.
func (e Exposure) Bearing() (deg float64, ok bool) {
	switch e {
	case ExposureNorth:
		return 0, true
	case ExposureEast:
		return 90, true
	case ExposureSouth:
		return 180, true
	case ExposureWest:
		return 270, true
	}
	return 0, false
}

// ReferenceStation is a buoy or tide gauge publishing ocean data.
type ReferenceStation struct {
	ID       string      `json:"id"` // upstream id (e.g. "9414290", "46026")
	Name     string      `json:"name"`
	Location GeoPoint    `json:"location"`
	Kind     StationKind `json:"kind"`
	Region   string      `json:"region"` // state or NDBC owner region
	Exposure Exposure    `json:"exposure,omitempty"`
}
