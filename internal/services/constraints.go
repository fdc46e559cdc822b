package services

import (
	"fmt"
	"math"

	"delivery-dispatch-service/internal/domain"
)

// TimeTolerance widens the time budget during admission to absorb estimation error.
const TimeTolerance = 1.1

type CheckOptions struct {
	// SkipStatusCheck is set when the caller already holds the partner.
	SkipStatusCheck bool
}

// ConstraintReport is a business outcome, never an error.
// EstimatedTime is in seconds.
type ConstraintReport struct {
	Valid         bool
	Violations    []string
	EstimatedTime float64
	TotalPackages int
}

// CheckConstraints validates capacity, availability and time budget for
// partner serving orders. It does not mutate its inputs.
func CheckConstraints(partner *domain.Partner, orders []*domain.Order, opts CheckOptions) ConstraintReport {
	violations := make([]string, 0)

	totalPackages := domain.TotalPackages(orders)
	if totalPackages > partner.MaxPackages {
		violations = append(violations, fmt.Sprintf(
			"Package capacity exceeded: %d > %d", totalPackages, partner.MaxPackages,
		))
	}

	if !opts.SkipStatusCheck && partner.Status != domain.PartnerAvailable {
		violations = append(violations, fmt.Sprintf(
			"Partner not available: status is %s", partner.Status,
		))
	}

	estimated := EstimateDeliveryTime(partner, orders)
	if estimated > float64(partner.MaxDeliveryTime)*TimeTolerance {
		violations = append(violations, fmt.Sprintf(
			"Estimated delivery time exceeded: %d min > %d min (with buffer)",
			roundMinutes(estimated), roundMinutes(float64(partner.MaxDeliveryTime)),
		))
	}

	return ConstraintReport{
		Valid:         len(violations) == 0,
		Violations:    violations,
		EstimatedTime: estimated,
		TotalPackages: totalPackages,
	}
}

func roundMinutes(seconds float64) int {
	return int(math.Round(seconds / 60))
}
