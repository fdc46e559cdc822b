package services

import "delivery-dispatch-service/internal/domain"

// Tuned per deployment, not per call.
const (
	AverageSpeedKmh       = 20.0
	PickupServiceSeconds  = 3 * 60
	DropoffServiceSeconds = 2 * 60
)

// EstimateDeliveryTime returns a deterministic duration in seconds for the
// partner serving orders one after another in the given sequence:
// current -> pickup -> drop-off for each order, then back to the return location.
//
// It uses great-circle distance only and never calls a distance provider, so it
// is cheap enough for admission control. It does not decide visiting order.
func EstimateDeliveryTime(partner *domain.Partner, orders []*domain.Order) float64 {
	if len(orders) == 0 {
		return 0
	}

	totalKm := 0.0
	current := partner.CurrentLocation

	for _, o := range orders {
		totalKm += current.DistanceKm(o.PickupLocation)
		totalKm += o.PickupLocation.DistanceKm(o.DropoffLocation)
		current = o.DropoffLocation
	}
	totalKm += current.DistanceKm(partner.ReturnLocation())

	travelSeconds := totalKm / AverageSpeedKmh * 3600
	serviceSeconds := float64(len(orders)) * (PickupServiceSeconds + DropoffServiceSeconds)

	return travelSeconds + serviceSeconds
}
