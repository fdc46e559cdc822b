package dto

import (
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/ports"
	"delivery-dispatch-service/internal/services"
)

// Used by optimize-route and preview-route.
type RouteRequest struct {
	PartnerID int64   `json:"partner_id"`
	OrderIDs  []int64 `json:"order_ids"`
}

type AssignmentResponse struct {
	Success      bool                       `json:"success"`
	Message      string                     `json:"message"`
	Reason       string                     `json:"reason,omitempty"`
	Violations   []string                   `json:"violations,omitempty"`
	Partner      *PartnerResponse           `json:"partner,omitempty"`
	Orders       []OrderResponse            `json:"orders"`
	Optimization *domain.OptimizationResult `json:"optimization"`
}

func NewAssignmentResponse(out *domain.AssignmentOutcome) AssignmentResponse {
	res := AssignmentResponse{
		Success:      out.Success,
		Reason:       out.Reason,
		Violations:   out.Violations,
		Orders:       NewOrderResponses(out.Orders),
		Optimization: out.Optimization,
	}
	if out.Partner != nil {
		p := NewPartnerResponse(out.Partner)
		res.Partner = &p
	}
	if out.Success {
		res.Message = "Route optimized and orders assigned"
	} else {
		res.Message = "Route optimization failed"
	}
	return res
}

type AutoAssignResponse struct {
	AssignmentResponse
	Executed     services.PartnerProposal     `json:"executed"`
	Proposals    []services.PartnerProposal   `json:"proposals"`
	Distribution services.DistributionSummary `json:"distribution"`
}

func NewAutoAssignResponse(out *services.AutoAssignOutcome) AutoAssignResponse {
	return AutoAssignResponse{
		AssignmentResponse: NewAssignmentResponse(out.Assignment),
		Executed:           out.Executed,
		Proposals:          out.Proposals,
		Distribution:       out.Distribution,
	}
}

type StatsResponse struct {
	ports.Stats
	AveragePackagesPerOrder float64 `json:"average_packages_per_order"`
}

func NewStatsResponse(s ports.Stats) StatsResponse {
	res := StatsResponse{Stats: s}
	if s.TotalOrders > 0 {
		res.AveragePackagesPerOrder = float64(s.TotalPackages) / float64(s.TotalOrders)
	}
	return res
}
