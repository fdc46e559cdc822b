package services

import (
	"context"
	"delivery-dispatch-service/internal/adapters/distance"
	"delivery-dispatch-service/internal/adapters/repositories"
	"delivery-dispatch-service/internal/domain"
	"testing"
)

var depot = domain.Location{Lat: 12.9716, Lng: 77.5946}

func near(dLat, dLng float64) domain.Location {
	return domain.Location{Lat: depot.Lat + dLat, Lng: depot.Lng + dLng}
}

func testPartner(id int64) *domain.Partner {
	return &domain.Partner{
		ID:              id,
		Name:            "partner",
		CurrentLocation: depot,
		Status:          domain.PartnerAvailable,
		MaxPackages:     5,
		MaxDeliveryTime: 30 * 60,
	}
}

func testOrder(id int64, packages int) *domain.Order {
	return &domain.Order{
		ID:              id,
		PickupAddress:   "pickup",
		PickupLocation:  depot,
		DropoffAddress:  "dropoff",
		DropoffLocation: depot,
		PackageCount:    packages,
		Status:          domain.OrderPending,
	}
}

// newTestDispatcher seeds a memory store with partners and orders and wires a
// dispatcher over the great-circle provider.
func newTestDispatcher(t *testing.T, partners int, packages ...int) (*Dispatcher, *repositories.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	store := repositories.NewMemoryStore()

	for i := 0; i < partners; i++ {
		if _, err := store.CreatePartner(ctx, testPartner(0)); err != nil {
			t.Fatalf("CreatePartner: %v", err)
		}
	}
	for _, n := range packages {
		if _, err := store.CreateOrder(ctx, testOrder(0, n)); err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
	}

	builder := NewGraphBuilder(distance.NewGeometricDistanceProvider(), 4)
	return NewDispatcher(store, store, builder), store
}
