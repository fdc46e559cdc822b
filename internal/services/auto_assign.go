package services

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/obs"
	"errors"
	"fmt"
	"log"
	"slices"
)

var (
	ErrNoAvailablePartners = errors.New("no available partners")
	ErrNoPendingOrders     = errors.New("no pending orders")
	ErrNoFeasibleOrders    = errors.New("no feasible order combination within partner constraints")
)

// PartnerProposal is the order subset auto-assign picked for one partner.
type PartnerProposal struct {
	PartnerID     int64   `json:"partner_id"`
	PartnerName   string  `json:"partner_name"`
	OrderIDs      []int64 `json:"order_ids"`
	TotalPackages int     `json:"total_packages"`
	EstimatedTime float64 `json:"estimated_time"`
}

type DistributionSummary struct {
	TotalPartners   int `json:"total_partners"`
	PartnersUsed    int `json:"partners_used"`
	TotalOrders     int `json:"total_orders"`
	OrdersAssigned  int `json:"orders_assigned"`
	OrdersRemaining int `json:"orders_remaining"`
}

type AutoAssignOutcome struct {
	Assignment   *domain.AssignmentOutcome `json:"assignment"`
	Executed     PartnerProposal           `json:"executed"`
	Proposals    []PartnerProposal         `json:"proposals"`
	Distribution DistributionSummary       `json:"distribution"`
}

// AutoAssign walks available partners in store order, gives each the best
// combination from the still-unclaimed pending orders, then executes the
// proposal with the most orders through Assign. Other proposals are reported
// but not applied.
func (d *Dispatcher) AutoAssign(ctx context.Context) (_ *AutoAssignOutcome, err error) {
	defer obs.Time(ctx, "dispatch.AutoAssign")(&err)

	partners, err := d.Store.ListAvailablePartners(ctx)
	if err != nil {
		return nil, fmt.Errorf("auto assign: list partners: %w", err)
	}
	if len(partners) == 0 {
		return nil, fmt.Errorf("auto assign: %w", ErrNoAvailablePartners)
	}

	pending, err := d.Store.ListPendingOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("auto assign: list orders: %w", err)
	}
	if len(pending) == 0 {
		return nil, fmt.Errorf("auto assign: %w", ErrNoPendingOrders)
	}

	remaining := slices.Clone(pending)
	proposals := make([]PartnerProposal, 0, len(partners))

	for _, p := range partners {
		if len(remaining) == 0 {
			break
		}

		combo := BestCombination(p, remaining)
		if len(combo.Orders) == 0 {
			log.Printf("req_id=%s op=dispatch.auto partner_id=%d result=no_fit", obs.RequestID(ctx), p.ID)
			continue
		}

		ids := make([]int64, 0, len(combo.Orders))
		claimed := make(map[int64]struct{}, len(combo.Orders))
		for _, o := range combo.Orders {
			ids = append(ids, o.ID)
			claimed[o.ID] = struct{}{}
		}
		proposals = append(proposals, PartnerProposal{
			PartnerID:     p.ID,
			PartnerName:   p.Name,
			OrderIDs:      ids,
			TotalPackages: combo.TotalPackages,
			EstimatedTime: combo.EstimatedTime,
		})

		remaining = slices.DeleteFunc(remaining, func(o *domain.Order) bool {
			_, ok := claimed[o.ID]
			return ok
		})
	}

	if len(proposals) == 0 {
		return nil, fmt.Errorf("auto assign: %w", ErrNoFeasibleOrders)
	}

	// Stable sort keeps store order among proposals of equal size.
	ranked := slices.Clone(proposals)
	slices.SortStableFunc(ranked, func(a, b PartnerProposal) int {
		return len(b.OrderIDs) - len(a.OrderIDs)
	})
	best := ranked[0]

	outcome, err := d.Assign(ctx, best.OrderIDs, best.PartnerID)
	if err != nil {
		return nil, fmt.Errorf("auto assign: %w", err)
	}

	assigned := 0
	if outcome.Success {
		assigned = len(best.OrderIDs)
	}

	return &AutoAssignOutcome{
		Assignment: outcome,
		Executed:   best,
		Proposals:  proposals,
		Distribution: DistributionSummary{
			TotalPartners:   len(partners),
			PartnersUsed:    len(proposals),
			TotalOrders:     len(pending),
			OrdersAssigned:  assigned,
			OrdersRemaining: len(pending) - assigned,
		},
	}, nil
}
