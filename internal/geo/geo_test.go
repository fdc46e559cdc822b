package geo

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64
		tol                    float64
	}{
		{"same point", 12.97, 77.59, 12.97, 77.59, 0, 1e-9},
		{"one degree latitude", 0, 0, 1, 0, 111.19, 0.01},
		{"bangalore to mysore", 12.9716, 77.5946, 12.2958, 76.6394, 127.6, 1.0},
	}

	for _, tc := range tests {
		got := HaversineKm(tc.lat1, tc.lng1, tc.lat2, tc.lng2)
		if math.Abs(got-tc.want) > tc.tol {
			t.Errorf("%s: HaversineKm = %.4f, want %.4f±%.4f", tc.name, got, tc.want, tc.tol)
		}
	}
}

func TestFallbackMetrics(t *testing.T) {
	meters, seconds := FallbackMetrics(0, 0, 1, 0)
	km := HaversineKm(0, 0, 1, 0)

	if meters != int(math.Round(km*1000)) {
		t.Fatalf("meters = %d, want %d", meters, int(math.Round(km*1000)))
	}
	if seconds != int(math.Round(km*120)) {
		t.Fatalf("seconds = %d, want %d", seconds, int(math.Round(km*120)))
	}
}
