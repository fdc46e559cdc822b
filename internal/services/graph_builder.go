package services

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/geo"
	"delivery-dispatch-service/internal/metrics"
	"delivery-dispatch-service/internal/platform/obs"
	"delivery-dispatch-service/internal/ports"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
)

const DefaultDistanceConcurrency = 5

// GraphBuilder turns a partner and an order set into a complete directed
// graph weighted by provider durations.
//
// Lookups run concurrently up to Concurrency. Every edge slot is written by
// exactly one goroutine, so the graph is identical regardless of scheduling.
type GraphBuilder struct {
	Provider    ports.DistanceProvider
	Concurrency int
}

func NewGraphBuilder(provider ports.DistanceProvider, concurrency int) *GraphBuilder {
	if concurrency < 1 {
		concurrency = DefaultDistanceConcurrency
	}
	return &GraphBuilder{Provider: provider, Concurrency: concurrency}
}

// BuildNodes lays out START, a pickup and drop-off node per order, and END.
func BuildNodes(partner *domain.Partner, orders []*domain.Order) []domain.Node {
	nodes := make([]domain.Node, 0, 2*len(orders)+2)

	nodes = append(nodes, domain.Node{
		ID:       domain.StartNodeID,
		Type:     domain.NodeStart,
		Location: partner.CurrentLocation,
		Address:  "Partner Starting Location",
	})

	for _, o := range orders {
		id := o.ID
		pickupID := domain.PickupNodeID(id)

		nodes = append(nodes, domain.Node{
			ID:       pickupID,
			Type:     domain.NodePickup,
			Location: o.PickupLocation,
			Address:  o.PickupAddress,
			OrderID:  &id,
			Packages: o.PackageCount,
		})
		nodes = append(nodes, domain.Node{
			ID:             domain.DropoffNodeID(id),
			Type:           domain.NodeDropoff,
			Location:       o.DropoffLocation,
			Address:        o.DropoffAddress,
			OrderID:        &id,
			Packages:       o.PackageCount,
			RequiresPickup: pickupID,
		})
	}

	nodes = append(nodes, domain.Node{
		ID:       domain.EndNodeID,
		Type:     domain.NodeEnd,
		Location: partner.ReturnLocation(),
		Address:  "Partner Return Location",
	})

	return nodes
}

// Build issues up to n*(n-1) provider lookups. A failed lookup never fails the
// build: the edge gets a great-circle weight instead.
func (b *GraphBuilder) Build(ctx context.Context, partner *domain.Partner, orders []*domain.Order) *domain.Graph {
	defer obs.Time(ctx, "graph.Build")(nil)

	nodes := BuildNodes(partner, orders)
	n := len(nodes)

	// slot(i, j) is the index of edge i->j in edges; self-loops are skipped.
	slot := func(i, j int) int {
		if j > i {
			j--
		}
		return i*(n-1) + j
	}
	edges := make([]domain.Edge, n*(n-1))

	var g errgroup.Group
	g.SetLimit(b.Concurrency)

	if mp, ok := b.Provider.(ports.DistanceMatrixProvider); ok {
		// One matrix row per origin.
		for i := range nodes {
			g.Go(func() error {
				dests := make([]domain.Location, 0, n-1)
				for j := range nodes {
					if j != i {
						dests = append(dests, nodes[j].Location)
					}
				}

				row, err := mp.GetDistances(ctx, nodes[i].Location, dests)
				if err != nil {
					log.Printf("req_id=%s op=graph.row origin=%s fallback=true err=%v", obs.RequestID(ctx), nodes[i].ID, err)
				}

				for j := range nodes {
					if j == i {
						continue
					}
					r, ok := row[nodes[j].Location.Key()]
					if err != nil || !ok || !usable(r) {
						edges[slot(i, j)] = fallbackEdge(nodes[i], nodes[j])
						continue
					}
					edges[slot(i, j)] = providerEdge(nodes[i], nodes[j], r)
				}
				return nil
			})
		}
	} else {
		for i := range nodes {
			for j := range nodes {
				if i == j {
					continue
				}
				g.Go(func() error {
					r, err := b.Provider.GetDistance(ctx, nodes[i].Location, nodes[j].Location)
					if err == nil && !usable(r) {
						err = fmt.Errorf("negative metrics %+v", r)
					}
					if err != nil {
						log.Printf(
							"req_id=%s op=graph.edge from=%s to=%s fallback=true err=%v",
							obs.RequestID(ctx), nodes[i].ID, nodes[j].ID, err,
						)
						edges[slot(i, j)] = fallbackEdge(nodes[i], nodes[j])
						return nil
					}
					edges[slot(i, j)] = providerEdge(nodes[i], nodes[j], r)
					return nil
				})
			}
		}
	}

	// Goroutines never return errors; Wait is only the join point.
	_ = g.Wait()

	return domain.NewGraph(nodes, edges)
}

// Dijkstra requires nonnegative weights.
func usable(r ports.DistanceResult) bool {
	return r.DurationSeconds >= 0 && r.DistanceMeters >= 0
}

func providerEdge(from, to domain.Node, r ports.DistanceResult) domain.Edge {
	metrics.DistanceLookups.WithLabelValues("provider").Inc()
	return domain.Edge{
		From:           from.ID,
		To:             to.ID,
		Weight:         r.DurationSeconds,
		DistanceMeters: r.DistanceMeters,
	}
}

func fallbackEdge(from, to domain.Node) domain.Edge {
	metrics.DistanceLookups.WithLabelValues("fallback").Inc()
	meters, seconds := geo.FallbackMetrics(from.Location.Lat, from.Location.Lng, to.Location.Lat, to.Location.Lng)
	return domain.Edge{
		From:           from.ID,
		To:             to.ID,
		Weight:         seconds,
		DistanceMeters: meters,
		Fallback:       true,
	}
}
