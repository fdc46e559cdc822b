package services

import "delivery-dispatch-service/internal/domain"

// SynthesizeRoute sequences the partner's stops with a fixed two-phase plan:
// every pickup in supplied order, then every drop-off in supplied order, then
// END. Each hop uses the direct graph edge from the current stop; the Dijkstra
// result only contributes reachability.
//
// A hop with no direct edge, or to a node Dijkstra could not reach, is
// skipped: no stop is emitted, no time is added, and the partner stays at the
// previous stop. A drop-off whose pickup was skipped is skipped as well, so a
// delivery never precedes its pickup.
//
// IsOptimal reports whether the total fits maxDeliveryTime (seconds).
func SynthesizeRoute(g *domain.Graph, dr *DijkstraResult, maxDeliveryTime int) *domain.Route {
	route := &domain.Route{Stops: make([]domain.RouteStop, 0, len(g.Nodes))}

	start, ok := g.Node(domain.StartNodeID)
	if !ok {
		return route
	}
	route.Stops = append(route.Stops, domain.RouteStop{
		NodeID:   start.ID,
		Type:     domain.StopStart,
		Action:   "START_DELIVERY",
		Location: start.Location,
		Address:  start.Address,
	})

	current := start.ID
	load := 0
	pickedUp := make(map[string]bool)

	hop := func(target domain.Node, stopType domain.StopType, action string) bool {
		if dr != nil && !dr.Reachable(target.ID) {
			route.Skipped = append(route.Skipped, target.ID)
			return false
		}
		edge, ok := g.Edge(current, target.ID)
		if !ok {
			route.Skipped = append(route.Skipped, target.ID)
			return false
		}

		route.TotalTime += edge.Weight
		route.TotalDistance += edge.DistanceMeters

		switch stopType {
		case domain.StopPickup:
			load += target.Packages
		case domain.StopDelivery:
			load -= target.Packages
		}

		route.Stops = append(route.Stops, domain.RouteStop{
			NodeID:               target.ID,
			Type:                 stopType,
			Action:               action,
			Location:             target.Location,
			Address:              target.Address,
			OrderID:              target.OrderID,
			Packages:             target.Packages,
			Load:                 load,
			TimeFromPrevious:     edge.Weight,
			DistanceFromPrevious: edge.DistanceMeters,
			CumulativeTime:       route.TotalTime,
		})
		current = target.ID
		return true
	}

	for _, n := range g.NodesOfType(domain.NodePickup) {
		if hop(n, domain.StopPickup, "PICKUP_ORDER") {
			pickedUp[n.ID] = true
		}
	}

	for _, n := range g.NodesOfType(domain.NodeDropoff) {
		if n.RequiresPickup != "" && !pickedUp[n.RequiresPickup] {
			route.Skipped = append(route.Skipped, n.ID)
			continue
		}
		hop(n, domain.StopDelivery, "DELIVER_ORDER")
	}

	if end, ok := g.Node(domain.EndNodeID); ok {
		hop(end, domain.StopReturn, "RETURN_TO_BASE")
	}

	route.IsOptimal = route.TotalTime <= maxDeliveryTime
	return route
}
