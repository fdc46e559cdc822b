package distance

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/geo"
	"delivery-dispatch-service/internal/ports"
	"fmt"
)

// GeometricDistanceProvider answers every lookup with the great-circle
// estimate. It is used when no routing API key is configured.
type GeometricDistanceProvider struct{}

func NewGeometricDistanceProvider() *GeometricDistanceProvider {
	return &GeometricDistanceProvider{}
}

func (GeometricDistanceProvider) GetDistance(ctx context.Context, from, to domain.Location) (ports.DistanceResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.DistanceResult{}, err
	}
	meters, seconds := geo.FallbackMetrics(from.Lat, from.Lng, to.Lat, to.Lng)
	return ports.DistanceResult{DistanceMeters: meters, DurationSeconds: seconds}, nil
}

func (p GeometricDistanceProvider) GetDistances(
	ctx context.Context,
	origin domain.Location,
	destinations []domain.Location,
) (map[string]ports.DistanceResult, error) {
	out := make(map[string]ports.DistanceResult, len(destinations))
	for _, d := range destinations {
		r, err := p.GetDistance(ctx, origin, d)
		if err != nil {
			return nil, err
		}
		out[d.Key()] = r
	}
	return out, nil
}

// CoordinateGeocoder accepts only "lat,lng" addresses.
type CoordinateGeocoder struct{}

func (CoordinateGeocoder) Geocode(ctx context.Context, address string) (domain.Location, error) {
	loc, ok := domain.ParseLocation(address)
	if !ok {
		return domain.Location{}, fmt.Errorf(
			"geocode %q: %w: expected \"lat,lng\" when no geocoding service is configured",
			address, ports.ErrInvalidInput,
		)
	}
	return loc, nil
}
