package ports

import (
	"context"
	"delivery-dispatch-service/internal/domain"
)

// Optional extension of DistanceProvider that supports batched lookups.
type DistanceMatrixProvider interface {
	DistanceProvider
	// Return distances from one origin to many destinations, keyed by Location.Key().
	GetDistances(ctx context.Context, origin domain.Location, destinations []domain.Location) (map[string]DistanceResult, error)
}
