package ports

import (
	"context"
	"delivery-dispatch-service/internal/domain"
)

// Resolves free-text addresses to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Location, error)
}
