package services

import (
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/geo"
	"math"
	"testing"
)

func TestEstimateDeliveryTime(t *testing.T) {
	p := testPartner(1)
	p.CurrentLocation = domain.Location{Lat: 0, Lng: 0}

	o := testOrder(1, 1)
	o.PickupLocation = domain.Location{Lat: 0, Lng: 0}
	o.DropoffLocation = domain.Location{Lat: 0, Lng: 0.1}

	leg := geo.HaversineKm(0, 0, 0, 0.1)
	// pickup->dropoff and dropoff->home, at 20 km/h, plus 5 minutes of service.
	want := 2*leg/AverageSpeedKmh*3600 + 300

	got := EstimateDeliveryTime(p, []*domain.Order{o})
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("EstimateDeliveryTime = %v, want %v", got, want)
	}

	if again := EstimateDeliveryTime(p, []*domain.Order{o}); again != got {
		t.Fatalf("estimate is not deterministic: %v vs %v", got, again)
	}
}

func TestEstimateDeliveryTimeUsesHomeBase(t *testing.T) {
	p := testPartner(1)
	home := near(0.05, 0)
	p.HomeBase = &home

	o := testOrder(1, 1)
	withHome := EstimateDeliveryTime(p, []*domain.Order{o})

	p.HomeBase = nil
	withoutHome := EstimateDeliveryTime(p, []*domain.Order{o})

	if withHome <= withoutHome {
		t.Fatalf("distant home base should lengthen the estimate: %v <= %v", withHome, withoutHome)
	}
}

func TestEstimateDeliveryTimeEmpty(t *testing.T) {
	if got := EstimateDeliveryTime(testPartner(1), nil); got != 0 {
		t.Fatalf("empty estimate = %v, want 0", got)
	}
}

func TestEstimateDoesNotMutateInputs(t *testing.T) {
	p := testPartner(1)
	orders := []*domain.Order{testOrder(1, 2), testOrder(2, 1)}
	before := *orders[0]

	EstimateDeliveryTime(p, orders)

	if *orders[0] != before || p.Status != domain.PartnerAvailable {
		t.Fatalf("inputs were mutated")
	}
}
