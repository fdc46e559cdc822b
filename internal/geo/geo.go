// Package geo provides great-circle helpers shared by the engine and the
// geometric distance adapter.
package geo

import "math"

const earthRadiusKm = 6371.0

// FallbackSecondsPerKm converts a great-circle kilometer into travel seconds
// when no road-network distance is available.
const FallbackSecondsPerKm = 120.0

// HaversineKm returns the great-circle distance in kilometers between two
// points given in degrees.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// FallbackMetrics returns the rounded (meters, seconds) pair used in place of
// a failed provider lookup.
func FallbackMetrics(lat1, lng1, lat2, lng2 float64) (meters int, seconds int) {
	km := HaversineKm(lat1, lng1, lat2, lng2)
	return int(math.Round(km * 1000)), int(math.Round(km * FallbackSecondsPerKm))
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
