package services

import (
	"context"
	"delivery-dispatch-service/internal/adapters/distance"
	"delivery-dispatch-service/internal/domain"
	"reflect"
	"testing"
)

func stopTypes(r *domain.Route) []domain.StopType {
	out := make([]domain.StopType, 0, len(r.Stops))
	for _, s := range r.Stops {
		out = append(out, s.Type)
	}
	return out
}

func TestSynthesizeRoutePickupsThenDeliveries(t *testing.T) {
	p := testPartner(1)
	g := NewGraphBuilder(distance.NewGeometricDistanceProvider(), 4).Build(context.Background(), p, twoSpreadOrders())
	dr, err := SolveDijkstra(g)
	if err != nil {
		t.Fatalf("SolveDijkstra: %v", err)
	}

	r := SynthesizeRoute(g, dr, 24*3600)

	want := []domain.StopType{
		domain.StopStart, domain.StopPickup, domain.StopPickup,
		domain.StopDelivery, domain.StopDelivery, domain.StopReturn,
	}
	if got := stopTypes(r); !reflect.DeepEqual(got, want) {
		t.Fatalf("stop types = %v, want %v", got, want)
	}

	wantLoad := []int{0, 1, 3, 2, 0, 0}
	sum := 0
	for i, s := range r.Stops {
		if s.Load != wantLoad[i] {
			t.Fatalf("stop %d (%s) load = %d, want %d", i, s.NodeID, s.Load, wantLoad[i])
		}
		sum += s.TimeFromPrevious
		if s.CumulativeTime != sum {
			t.Fatalf("stop %d cumulative = %d, want %d", i, s.CumulativeTime, sum)
		}
	}
	if r.TotalTime != sum || !r.IsOptimal {
		t.Fatalf("TotalTime=%d sum=%d optimal=%v", r.TotalTime, sum, r.IsOptimal)
	}
	if r.TotalTime == 0 {
		t.Fatalf("spread orders should cost travel time")
	}

	if tight := SynthesizeRoute(g, dr, r.TotalTime-1); tight.IsOptimal {
		t.Fatalf("route over budget reported optimal")
	}
}

func TestSynthesizeRouteSkipsMissingEdges(t *testing.T) {
	id := int64(1)
	nodes := []domain.Node{
		{ID: "START", Type: domain.NodeStart},
		{ID: "P1", Type: domain.NodePickup, OrderID: &id, Packages: 1},
		{ID: "D1", Type: domain.NodeDropoff, OrderID: &id, Packages: 1, RequiresPickup: "P1"},
		{ID: "END", Type: domain.NodeEnd},
	}
	g := domain.NewGraph(nodes, []domain.Edge{
		{From: "START", To: "D1", Weight: 7},
		{From: "START", To: "END", Weight: 4},
	})

	r := SynthesizeRoute(g, nil, 100)

	if got := stopTypes(r); !reflect.DeepEqual(got, []domain.StopType{domain.StopStart, domain.StopReturn}) {
		t.Fatalf("stop types = %v, want START, RETURN", got)
	}
	if !reflect.DeepEqual(r.Skipped, []string{"P1", "D1"}) {
		t.Fatalf("Skipped = %v, want [P1 D1]", r.Skipped)
	}
	if r.TotalTime != 4 {
		t.Fatalf("TotalTime = %d, want 4", r.TotalTime)
	}
}

func TestSynthesizeRouteSkipsUnreachableNodes(t *testing.T) {
	g := domain.NewGraph(
		[]domain.Node{
			{ID: "START", Type: domain.NodeStart},
			{ID: "P1", Type: domain.NodePickup, Packages: 2},
			{ID: "END", Type: domain.NodeEnd},
		},
		[]domain.Edge{
			{From: "START", To: "END", Weight: 1},
			{From: "P1", To: "END", Weight: 1},
		},
	)
	dr, _ := SolveDijkstra(g)

	r := SynthesizeRoute(g, dr, 10)
	if len(r.Stops) != 2 || r.Stops[1].NodeID != "END" {
		t.Fatalf("stops = %+v", r.Stops)
	}
	if !reflect.DeepEqual(r.Skipped, []string{"P1"}) {
		t.Fatalf("Skipped = %v, want [P1]", r.Skipped)
	}
}
