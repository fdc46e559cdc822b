package services

import (
	"delivery-dispatch-service/internal/domain"
	"math"
	"reflect"
	"testing"
)

// diamond: START fans out to A and B at equal cost; B is the cheaper way to END.
func diamond() *domain.Graph {
	nodes := []domain.Node{
		{ID: "START", Type: domain.NodeStart},
		{ID: "A", Type: domain.NodePickup},
		{ID: "B", Type: domain.NodePickup},
		{ID: "END", Type: domain.NodeEnd},
	}
	edges := []domain.Edge{
		{From: "START", To: "A", Weight: 5},
		{From: "START", To: "B", Weight: 5},
		{From: "A", To: "B", Weight: 1},
		{From: "B", To: "A", Weight: 1},
		{From: "A", To: "END", Weight: 10},
		{From: "B", To: "END", Weight: 3},
	}
	return domain.NewGraph(nodes, edges)
}

func TestSolveDijkstraDistances(t *testing.T) {
	dr, err := SolveDijkstra(diamond())
	if err != nil {
		t.Fatalf("SolveDijkstra: %v", err)
	}

	want := map[string]float64{"START": 0, "A": 5, "B": 5, "END": 8}
	if !reflect.DeepEqual(dr.Distances, want) {
		t.Fatalf("Distances = %v, want %v", dr.Distances, want)
	}
	if got := dr.PathTo("END"); !reflect.DeepEqual(got, []string{"START", "B", "END"}) {
		t.Fatalf("PathTo(END) = %v", got)
	}
}

func TestSolveDijkstraTieBreakIsInsertionOrder(t *testing.T) {
	dr, err := SolveDijkstra(diamond())
	if err != nil {
		t.Fatalf("SolveDijkstra: %v", err)
	}
	if want := []string{"START", "A", "B", "END"}; !reflect.DeepEqual(dr.VisitOrder, want) {
		t.Fatalf("VisitOrder = %v, want %v", dr.VisitOrder, want)
	}

	again, _ := SolveDijkstra(diamond())
	if !reflect.DeepEqual(dr.Steps, again.Steps) {
		t.Fatalf("trace is not reproducible")
	}
}

func TestSolveDijkstraTrace(t *testing.T) {
	dr, _ := SolveDijkstra(diamond())

	if dr.Steps[0].Kind != domain.StepDijkstraInit {
		t.Fatalf("first step = %s, want INIT", dr.Steps[0].Kind)
	}
	last := dr.Steps[len(dr.Steps)-1]
	if last.Kind != domain.StepDijkstraDone || last.Done.VisitedNodes != 4 {
		t.Fatalf("last step = %+v, want DONE with 4 visited", last)
	}
	if want := []string{"START", "B", "END"}; !reflect.DeepEqual(last.Done.PathToEnd, want) {
		t.Fatalf("PathToEnd = %v, want %v", last.Done.PathToEnd, want)
	}

	visits, relaxes := 0, 0
	for _, s := range dr.Steps {
		switch s.Kind {
		case domain.StepVisitNode:
			visits++
		case domain.StepRelax:
			relaxes++
			if s.Relax.Neighbor == "A" && s.Relax.OldDistance != nil {
				t.Fatalf("first relaxation of A should report an unreached old distance")
			}
		}
	}
	// START->A, START->B, A->END at 15, then B->END at 8.
	if visits != 4 || relaxes != 4 {
		t.Fatalf("visits=%d relaxes=%d, want 4 and 4", visits, relaxes)
	}
}

func TestSolveDijkstraUnreachable(t *testing.T) {
	g := domain.NewGraph(
		[]domain.Node{
			{ID: "START", Type: domain.NodeStart},
			{ID: "X", Type: domain.NodePickup},
			{ID: "END", Type: domain.NodeEnd},
		},
		[]domain.Edge{{From: "START", To: "END", Weight: 4}},
	)

	dr, err := SolveDijkstra(g)
	if err != nil {
		t.Fatalf("SolveDijkstra: %v", err)
	}
	if !math.IsInf(dr.Distances["X"], 1) || dr.Reachable("X") || dr.PathTo("X") != nil {
		t.Fatalf("X should be unreachable, distance %v", dr.Distances["X"])
	}
	if dr.Predecessors["X"] != "" {
		t.Fatalf("unreachable node should have no predecessor")
	}

	done := dr.Steps[len(dr.Steps)-1].Done
	if done.VisitedNodes != 2 || !reflect.DeepEqual(done.UnreachableNodes, []string{"X"}) {
		t.Fatalf("DONE = %+v", done)
	}
}

func TestSolveDijkstraRequiresStart(t *testing.T) {
	g := domain.NewGraph([]domain.Node{{ID: "END", Type: domain.NodeEnd}}, nil)
	if _, err := SolveDijkstra(g); err == nil {
		t.Fatalf("expected error without START")
	}
}
