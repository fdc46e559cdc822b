package distance

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/ports"
	"errors"
	"fmt"
	"sync/atomic"
)

type MockPair struct {
	From, To domain.Location
	Meters   int
	Seconds  int
}

// MockDistanceProvider serves a fixed pair table. Unknown pairs are errors,
// which exercises the great-circle fallback.
type MockDistanceProvider struct {
	m     map[string]ports.DistanceResult
	calls atomic.Int64
}

func pairKey(from, to domain.Location) string { return from.Key() + "|" + to.Key() }

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[string]ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		m[pairKey(p.From, p.To)] = ports.DistanceResult{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockDistanceProvider{m: m}
}

func (p *MockDistanceProvider) GetDistance(ctx context.Context, from, to domain.Location) (ports.DistanceResult, error) {
	p.calls.Add(1)
	r, ok := p.m[pairKey(from, to)]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("missing pair %s -> %s", from, to)
	}
	return r, nil
}

// Calls reports how many lookups were made.
func (p *MockDistanceProvider) Calls() int64 { return p.calls.Load() }

var ErrProviderDown = errors.New("distance provider unavailable")

// FailingDistanceProvider fails every lookup.
type FailingDistanceProvider struct{}

func (FailingDistanceProvider) GetDistance(ctx context.Context, from, to domain.Location) (ports.DistanceResult, error) {
	return ports.DistanceResult{}, ErrProviderDown
}
