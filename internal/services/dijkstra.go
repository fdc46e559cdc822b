package services

import (
	"errors"
	"math"

	"delivery-dispatch-service/internal/domain"
)

// DijkstraResult holds single-source shortest durations from START.
// Unreached nodes keep +Inf and an empty predecessor.
type DijkstraResult struct {
	Distances    map[string]float64
	Predecessors map[string]string
	VisitOrder   []string
	Steps        []domain.Step
}

func (r *DijkstraResult) Reachable(id string) bool {
	d, ok := r.Distances[id]
	return ok && !math.IsInf(d, 1)
}

// PathTo walks predecessors back from id. It returns nil for unreachable nodes.
func (r *DijkstraResult) PathTo(id string) []string {
	if !r.Reachable(id) {
		return nil
	}
	path := []string{id}
	for cur := r.Predecessors[id]; cur != ""; cur = r.Predecessors[cur] {
		path = append([]string{cur}, path...)
	}
	return path
}

// SolveDijkstra runs Dijkstra from START over g. Edge weights must be
// nonnegative.
//
// Minimum selection is a linear scan in node insertion order and only a
// strictly smaller distance replaces the candidate, so ties go to the node
// inserted first and the trace is reproducible.
func SolveDijkstra(g *domain.Graph) (*DijkstraResult, error) {
	if _, ok := g.Node(domain.StartNodeID); !ok {
		return nil, errors.New("solve dijkstra: graph has no START node")
	}

	res := &DijkstraResult{
		Distances:    make(map[string]float64, len(g.Nodes)),
		Predecessors: make(map[string]string, len(g.Nodes)),
		VisitOrder:   make([]string, 0, len(g.Nodes)),
	}
	visited := make(map[string]bool, len(g.Nodes))

	ids := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		res.Distances[n.ID] = math.Inf(1)
		res.Predecessors[n.ID] = ""
		ids = append(ids, n.ID)
	}
	res.Distances[domain.StartNodeID] = 0

	res.Steps = append(res.Steps, domain.NewInitStep(domain.InitDetail{
		StartNode:      domain.StartNodeID,
		Nodes:          ids,
		UnvisitedCount: len(ids),
	}))

	for remaining := len(g.Nodes); remaining > 0; {
		current := ""
		best := math.Inf(1)
		for _, n := range g.Nodes {
			if visited[n.ID] {
				continue
			}
			if d := res.Distances[n.ID]; d < best {
				best = d
				current = n.ID
			}
		}
		// Everything left is unreachable.
		if current == "" {
			break
		}

		visited[current] = true
		remaining--
		res.VisitOrder = append(res.VisitOrder, current)

		node, _ := g.Node(current)
		res.Steps = append(res.Steps, domain.NewVisitStep(domain.VisitDetail{
			NodeID:             current,
			NodeType:           node.Type,
			CurrentDistance:    best,
			RemainingUnvisited: remaining,
		}))

		for _, e := range g.Outgoing(current) {
			if visited[e.To] {
				continue
			}
			old := res.Distances[e.To]
			candidate := best + float64(e.Weight)
			if candidate >= old {
				continue
			}

			res.Distances[e.To] = candidate
			res.Predecessors[e.To] = current

			var oldPtr *float64
			if !math.IsInf(old, 1) {
				oldPtr = &old
			}
			res.Steps = append(res.Steps, domain.NewRelaxStep(domain.RelaxDetail{
				Neighbor:    e.To,
				Via:         current,
				OldDistance: oldPtr,
				NewDistance: candidate,
				EdgeWeight:  e.Weight,
			}))
		}
	}

	unreachable := make([]string, 0)
	for _, id := range ids {
		if !visited[id] {
			unreachable = append(unreachable, id)
		}
	}
	res.Steps = append(res.Steps, domain.NewDoneStep(domain.DoneDetail{
		VisitedNodes:     len(res.VisitOrder),
		UnreachableNodes: unreachable,
		PathToEnd:        res.PathTo(domain.EndNodeID),
	}))

	return res, nil
}
