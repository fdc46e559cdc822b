package ports

import (
	"context"
	"delivery-dispatch-service/internal/domain"
)

// Distance and travel duration between two locations.
type DistanceResult struct {
	DistanceMeters  int
	DurationSeconds int
}

// Contract for retrieving travel distance and duration between locations.
// Failures are expected to be transient; callers substitute a great-circle estimate.
type DistanceProvider interface {
	// Return travel distance and estimated duration between two locations.
	GetDistance(ctx context.Context, from, to domain.Location) (DistanceResult, error)
}
