package services

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/metrics"
	"delivery-dispatch-service/internal/platform/obs"
	"delivery-dispatch-service/internal/ports"
	"errors"
	"fmt"
	"log"
	"math"
	"time"
)

// Dispatcher sequences constraint checking, graph construction, Dijkstra and
// route synthesis for one partner, and applies successful assignments through
// the record store. It keeps no state between requests.
type Dispatcher struct {
	Store   ports.RecordStore
	Results ports.OptimizationStore
	Builder *GraphBuilder
}

// NewDispatcher wires the engine. results may be nil when optimizations are
// not persisted.
func NewDispatcher(store ports.RecordStore, results ports.OptimizationStore, builder *GraphBuilder) *Dispatcher {
	return &Dispatcher{Store: store, Results: results, Builder: builder}
}

// Optimize runs the full pipeline for partner and orders without touching the
// store. A failed constraint check is reported on the result with a nil graph
// and route; it is not an error.
func (d *Dispatcher) Optimize(
	ctx context.Context,
	partner *domain.Partner,
	orders []*domain.Order,
	opts CheckOptions,
) (_ *domain.OptimizationResult, err error) {
	defer obs.Time(ctx, "dispatch.Optimize")(&err)
	start := time.Now()
	defer func() { metrics.OptimizationDuration.Observe(time.Since(start).Seconds()) }()

	if partner == nil {
		return nil, errors.New("optimize: partner must be non-nil")
	}

	result := &domain.OptimizationResult{
		PartnerID:   partner.ID,
		PartnerName: partner.Name,
		TotalOrders: len(orders),
		Steps:       make([]domain.Step, 0),
		Constraints: domain.ConstraintSummary{
			MaxPackages: partner.MaxPackages,
			MaxTime:     partner.MaxDeliveryTime,
			Violations:  []string{},
		},
	}

	report := CheckConstraints(partner, orders, opts)
	if !report.Valid {
		result.Constraints.Violations = report.Violations
		result.AddStep(domain.NewCheckFailedStep(report.Violations))
		metrics.Optimizations.WithLabelValues("constraint_failed").Inc()
		log.Printf(
			"req_id=%s op=dispatch.check partner_id=%d orders=%d result=FAILED violations=%q",
			obs.RequestID(ctx), partner.ID, len(orders), report.Violations,
		)
		return result, nil
	}

	result.AddStep(domain.NewCheckPassedStep(domain.CheckPassedDetail{
		TotalPackages:  report.TotalPackages,
		MaxAllowed:     partner.MaxPackages,
		EstimatedMins:  int(math.Round(report.EstimatedTime / 60)),
		MaxTimeMinutes: int(math.Round(float64(partner.MaxDeliveryTime) / 60)),
	}))

	graph := d.Builder.Build(ctx, partner, orders)
	result.Graph = graph
	result.AddStep(domain.NewGraphBuiltStep(graph))

	dr, err := SolveDijkstra(graph)
	if err != nil {
		metrics.Optimizations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("optimize: %w", err)
	}
	for _, s := range dr.Steps {
		result.AddStep(s)
	}

	route := SynthesizeRoute(graph, dr, partner.MaxDeliveryTime)
	result.FinalRoute = route
	result.AddStep(domain.NewRouteStep(route))

	metrics.Optimizations.WithLabelValues("completed").Inc()
	log.Printf(
		"req_id=%s op=dispatch.route partner_id=%d stops=%d total_time=%ds total_distance=%dm optimal=%t",
		obs.RequestID(ctx), partner.ID, len(route.Stops), route.TotalTime, route.TotalDistance, route.IsOptimal,
	)

	return result, nil
}

// Assign resolves ids through the store, optimizes, and on a clean result
// reserves the partner and marks every order ASSIGNED to it.
//
// Unknown ids abort with an error wrapping ports.ErrNotFound before any
// write. Violations, non-pending orders and a lost reservation race produce
// an unsuccessful outcome and no writes. Orders move to ASSIGNED only while
// still PENDING; losing that race rolls back and reports ORDER_NOT_PENDING.
func (d *Dispatcher) Assign(
	ctx context.Context,
	orderIDs []int64,
	partnerID int64,
) (_ *domain.AssignmentOutcome, err error) {
	defer obs.Time(ctx, "dispatch.Assign")(&err)

	if len(orderIDs) == 0 {
		return nil, fmt.Errorf("assign: %w: order ids must not be empty", ports.ErrInvalidInput)
	}

	partner, err := d.Store.GetPartner(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("assign: get partner %d: %w", partnerID, err)
	}

	seen := make(map[int64]struct{}, len(orderIDs))
	orders := make([]*domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		o, err := d.Store.GetOrder(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("assign: get order %d: %w", id, err)
		}
		orders = append(orders, o)
	}

	notPending := make([]string, 0)
	for _, o := range orders {
		if o.Status != domain.OrderPending {
			notPending = append(notPending, fmt.Sprintf("Order %d is not pending: status is %s", o.ID, o.Status))
		}
	}
	if len(notPending) > 0 {
		metrics.Assignments.WithLabelValues(domain.ReasonOrderNotPending).Inc()
		return &domain.AssignmentOutcome{
			Success:    false,
			Reason:     domain.ReasonOrderNotPending,
			Violations: notPending,
			Partner:    partner,
			Orders:     orders,
		}, nil
	}

	result, err := d.Optimize(ctx, partner, orders, CheckOptions{})
	if err != nil {
		return nil, fmt.Errorf("assign: %w", err)
	}

	if result.HasViolations() {
		metrics.Assignments.WithLabelValues(domain.ReasonConstraintsViolated).Inc()
		return &domain.AssignmentOutcome{
			Success:      false,
			Reason:       domain.ReasonConstraintsViolated,
			Violations:   result.Constraints.Violations,
			Partner:      partner,
			Orders:       orders,
			Optimization: result,
		}, nil
	}

	// The status read above may be stale; the reservation is the real guard.
	reserved, err := d.Store.ReserveIfAvailable(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("assign: reserve partner %d: %w", partnerID, err)
	}
	if !reserved {
		metrics.Assignments.WithLabelValues(domain.ReasonPartnerUnavailable).Inc()
		return &domain.AssignmentOutcome{
			Success:      false,
			Reason:       domain.ReasonPartnerUnavailable,
			Violations:   []string{fmt.Sprintf("Partner not available: partner %d was reserved concurrently", partnerID)},
			Partner:      partner,
			Orders:       orders,
			Optimization: result,
		}, nil
	}

	assigned, pending := domain.OrderAssigned, domain.OrderPending
	updated := make([]*domain.Order, 0, len(orders))
	for _, o := range orders {
		pid := partnerID
		u, err := d.Store.UpdateOrder(ctx, o.ID, domain.OrderUpdate{
			Status:            &assigned,
			AssignedPartnerID: &pid,
			IfStatus:          &pending,
		})
		if errors.Is(err, ports.ErrConflict) {
			// Another assign claimed the order after the pending check.
			d.rollback(ctx, partnerID, updated)
			metrics.Assignments.WithLabelValues(domain.ReasonOrderNotPending).Inc()
			return &domain.AssignmentOutcome{
				Success:      false,
				Reason:       domain.ReasonOrderNotPending,
				Violations:   []string{fmt.Sprintf("Order %d is not pending: claimed concurrently", o.ID)},
				Partner:      partner,
				Orders:       orders,
				Optimization: result,
			}, nil
		}
		if err != nil {
			d.rollback(ctx, partnerID, updated)
			return nil, fmt.Errorf("assign: update order %d: %w", o.ID, err)
		}
		updated = append(updated, u)
	}

	partner, err = d.Store.GetPartner(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("assign: reload partner %d: %w", partnerID, err)
	}

	if d.Results != nil {
		if err := d.Results.SaveOptimization(ctx, partnerID, result); err != nil {
			log.Printf("req_id=%s op=dispatch.save partner_id=%d err=%v", obs.RequestID(ctx), partnerID, err)
		}
	}

	metrics.Assignments.WithLabelValues("assigned").Inc()
	log.Printf(
		"req_id=%s op=dispatch.assign partner_id=%d orders=%d result=ASSIGNED",
		obs.RequestID(ctx), partnerID, len(updated),
	)

	return &domain.AssignmentOutcome{
		Success:      true,
		Partner:      partner,
		Orders:       updated,
		Optimization: result,
	}, nil
}

// rollback undoes a half-applied assignment on a best-effort basis.
func (d *Dispatcher) rollback(ctx context.Context, partnerID int64, orders []*domain.Order) {
	pending := domain.OrderPending
	for _, o := range orders {
		if _, err := d.Store.UpdateOrder(ctx, o.ID, domain.OrderUpdate{Status: &pending, ClearAssignedPartner: true}); err != nil {
			log.Printf("req_id=%s op=dispatch.rollback order_id=%d err=%v", obs.RequestID(ctx), o.ID, err)
		}
	}

	available := domain.PartnerAvailable
	if _, err := d.Store.UpdatePartner(ctx, partnerID, domain.PartnerUpdate{Status: &available}); err != nil {
		log.Printf("req_id=%s op=dispatch.rollback partner_id=%d err=%v", obs.RequestID(ctx), partnerID, err)
	}
}
