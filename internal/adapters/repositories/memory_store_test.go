package repositories

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/ports"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func newPartner(name string) *domain.Partner {
	return &domain.Partner{
		Name:            name,
		CurrentLocation: domain.Location{Lat: 12.97, Lng: 77.59},
		MaxPackages:     5,
		MaxDeliveryTime: 1800,
	}
}

func newOrder(packages int) *domain.Order {
	return &domain.Order{
		PickupAddress:   "A",
		PickupLocation:  domain.Location{Lat: 12.97, Lng: 77.59},
		DropoffAddress:  "B",
		DropoffLocation: domain.Location{Lat: 12.98, Lng: 77.60},
		PackageCount:    packages,
	}
}

func TestMemoryStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p, err := s.CreatePartner(ctx, newPartner("Ravi"))
	if err != nil {
		t.Fatalf("CreatePartner: %v", err)
	}
	if p.ID != 1 || p.Status != domain.PartnerAvailable {
		t.Fatalf("created partner = %+v, want id 1 AVAILABLE", p)
	}

	o, err := s.CreateOrder(ctx, newOrder(2))
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if o.Status != domain.OrderPending {
		t.Fatalf("order status = %s, want PENDING", o.Status)
	}

	// Returned records are copies.
	p.Name = "mutated"
	got, _ := s.GetPartner(ctx, 1)
	if got.Name != "Ravi" {
		t.Fatalf("store leaked internal pointer: name = %q", got.Name)
	}

	if _, err := s.GetOrder(ctx, 99); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("GetOrder(99) err = %v, want ErrNotFound", err)
	}
	if _, err := s.CreateOrder(ctx, newOrder(6)); !errors.Is(err, ports.ErrInvalidInput) {
		t.Fatalf("CreateOrder(6 packages) err = %v, want ErrInvalidInput", err)
	}
}

func TestMemoryStoreUpdateOrderClearsPartner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	o, _ := s.CreateOrder(ctx, newOrder(1))

	assigned := domain.OrderAssigned
	pid := int64(7)
	got, err := s.UpdateOrder(ctx, o.ID, domain.OrderUpdate{Status: &assigned, AssignedPartnerID: &pid})
	if err != nil {
		t.Fatalf("UpdateOrder: %v", err)
	}
	if got.Status != domain.OrderAssigned || got.AssignedPartnerID == nil || *got.AssignedPartnerID != 7 {
		t.Fatalf("updated order = %+v", got)
	}

	partnerOrders, _ := s.ListPartnerOrders(ctx, 7)
	if len(partnerOrders) != 1 {
		t.Fatalf("ListPartnerOrders = %d, want 1", len(partnerOrders))
	}

	got, _ = s.UpdateOrder(ctx, o.ID, domain.OrderUpdate{ClearAssignedPartner: true})
	if got.AssignedPartnerID != nil {
		t.Fatalf("partner reference should be cleared")
	}
}

func TestMemoryStoreConditionalOrderUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	o, _ := s.CreateOrder(ctx, newOrder(1))

	assigned, pending := domain.OrderAssigned, domain.OrderPending
	first, second := int64(1), int64(2)
	if _, err := s.UpdateOrder(ctx, o.ID, domain.OrderUpdate{Status: &assigned, AssignedPartnerID: &first, IfStatus: &pending}); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	_, err := s.UpdateOrder(ctx, o.ID, domain.OrderUpdate{Status: &assigned, AssignedPartnerID: &second, IfStatus: &pending})
	if !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("second claim err = %v, want ErrConflict", err)
	}

	got, _ := s.GetOrder(ctx, o.ID)
	if got.AssignedPartnerID == nil || *got.AssignedPartnerID != first {
		t.Fatalf("order partner = %v, want first claimant", got.AssignedPartnerID)
	}
}

func TestMemoryStoreOptimizationIsCopied(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if got, err := s.GetOptimization(ctx, 1); got != nil || err != nil {
		t.Fatalf("GetOptimization on empty store = %+v, %v", got, err)
	}

	g := domain.NewGraph(
		[]domain.Node{{ID: domain.StartNodeID}, {ID: domain.EndNodeID}},
		[]domain.Edge{{From: domain.StartNodeID, To: domain.EndNodeID, Weight: 42}},
	)
	res := &domain.OptimizationResult{PartnerID: 1, TotalOrders: 2, Graph: g}
	if err := s.SaveOptimization(ctx, 1, res); err != nil {
		t.Fatalf("SaveOptimization: %v", err)
	}
	res.TotalOrders = 99

	first, err := s.GetOptimization(ctx, 1)
	if err != nil {
		t.Fatalf("GetOptimization: %v", err)
	}
	if first.TotalOrders != 2 {
		t.Fatalf("stored result changed with caller's copy: %d", first.TotalOrders)
	}
	if e, ok := first.Graph.Edge(domain.StartNodeID, domain.EndNodeID); !ok || e.Weight != 42 {
		t.Fatalf("graph lookups lost after reload: %+v, %v", e, ok)
	}

	first.TotalOrders = 7
	second, _ := s.GetOptimization(ctx, 1)
	if second.TotalOrders != 2 {
		t.Fatalf("reads share memory: %d", second.TotalOrders)
	}
}

func TestMemoryStoreReserveIfAvailableIsExclusive(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p, _ := s.CreatePartner(ctx, newPartner("Asha"))

	const callers = 16
	var wg sync.WaitGroup
	wins := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.ReserveIfAvailable(ctx, p.ID)
			if err != nil {
				t.Errorf("ReserveIfAvailable: %v", err)
			}
			wins <- ok
		}()
	}
	wg.Wait()
	close(wins)

	n := 0
	for ok := range wins {
		if ok {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("%d callers reserved the partner, want exactly 1", n)
	}

	available, _ := s.ListAvailablePartners(ctx)
	if len(available) != 0 {
		t.Fatalf("reserved partner still listed as available")
	}

	if _, err := s.ReserveIfAvailable(ctx, 42); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("ReserveIfAvailable(42) err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreStats(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.CreatePartner(ctx, newPartner("A"))
	s.CreatePartner(ctx, newPartner("B"))
	s.CreateOrder(ctx, newOrder(2))
	s.CreateOrder(ctx, newOrder(3))
	s.ReserveIfAvailable(ctx, 1)

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := ports.Stats{
		TotalPartners:     2,
		AvailablePartners: 1,
		AssignedPartners:  1,
		TotalOrders:       2,
		PendingOrders:     2,
		TotalPackages:     5,
	}
	if st != want {
		t.Fatalf("Stats = %+v, want %+v", st, want)
	}
}

func TestLoadAndApplyYAMLSeed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	fixture := `
partners:
  - name: Ravi
    location: {lat: 12.97, lng: 77.59}
orders:
  - pickup_address: Store
    pickup_location: {lat: 12.97, lng: 77.59}
    dropoff_address: Home
    dropoff_location: {lat: 12.98, lng: 77.60}
    package_count: 2
`
	if err := os.WriteFile(path, []byte(fixture), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	seed, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}

	s := NewMemoryStore()
	np, no, err := ApplySeed(context.Background(), s, seed, 5, 1800)
	if err != nil {
		t.Fatalf("ApplySeed: %v", err)
	}
	if np != 1 || no != 1 {
		t.Fatalf("seeded partners=%d orders=%d, want 1 and 1", np, no)
	}

	p, _ := s.GetPartner(context.Background(), 1)
	if p.MaxPackages != 5 || p.MaxDeliveryTime != 1800 {
		t.Fatalf("defaults not applied: %+v", p)
	}
	if p.HomeBase == nil || *p.HomeBase != p.CurrentLocation {
		t.Fatalf("home base should default to start location, got %+v", p.HomeBase)
	}
}
