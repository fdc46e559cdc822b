package domain

import (
	"fmt"
	"regexp"
	"strconv"

	"delivery-dispatch-service/internal/geo"
)

// Immutable geographic point in degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

var coordPattern = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*$`)

// ParseLocation accepts "lat,lng" text. ok is false when s is not a
// coordinate pair or lies outside valid ranges.
func ParseLocation(s string) (Location, bool) {
	m := coordPattern.FindStringSubmatch(s)
	if m == nil {
		return Location{}, false
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Location{}, false
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Location{}, false
	}

	l := Location{Lat: lat, Lng: lng}
	if !l.Valid() {
		return Location{}, false
	}
	return l, true
}

func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// DistanceKm is the great-circle distance to o.
func (l Location) DistanceKm(o Location) float64 {
	return geo.HaversineKm(l.Lat, l.Lng, o.Lat, o.Lng)
}

// Key is a stable cache key with ~10cm precision.
func (l Location) Key() string {
	return fmt.Sprintf("%.6f,%.6f", l.Lat, l.Lng)
}

// Return coordinates as [lon, lat] for external API compatibility.
func (l Location) CoordsToList() []float64 { return []float64{l.Lng, l.Lat} }

func (l Location) String() string { return l.Key() }
