package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderAssigned  OrderStatus = "ASSIGNED"
	OrderOptimized OrderStatus = "OPTIMIZED"
)

const (
	MinOrderPackages = 1
	MaxOrderPackages = 5
)

// Delivery job with a pickup and a drop-off endpoint.
type Order struct {
	ID                int64       `json:"id"`
	PickupAddress     string      `json:"pickup_address"`
	PickupLocation    Location    `json:"pickup_location"`
	DropoffAddress    string      `json:"dropoff_address"`
	DropoffLocation   Location    `json:"dropoff_location"`
	PackageCount      int         `json:"package_count"`
	Instructions      string      `json:"instructions"`
	Status            OrderStatus `json:"status"`
	AssignedPartnerID *int64      `json:"assigned_partner_id"`
	CreatedAt         time.Time   `json:"created_at"`
}

func (o *Order) Validate() error {
	if o.PackageCount < MinOrderPackages || o.PackageCount > MaxOrderPackages {
		return fmt.Errorf(
			"order: package count must be between %d and %d, got %d",
			MinOrderPackages, MaxOrderPackages, o.PackageCount,
		)
	}
	if !o.PickupLocation.Valid() {
		return fmt.Errorf("order: invalid pickup location %s", o.PickupLocation)
	}
	if !o.DropoffLocation.Valid() {
		return fmt.Errorf("order: invalid drop-off location %s", o.DropoffLocation)
	}
	return nil
}

// TotalPackages sums package counts across orders.
func TotalPackages(orders []*Order) int {
	total := 0
	for _, o := range orders {
		total += o.PackageCount
	}
	return total
}

// Field changes applied by RecordStore.UpdateOrder. Nil fields are left untouched.
type OrderUpdate struct {
	Status            *OrderStatus
	AssignedPartnerID *int64
	// ClearAssignedPartner resets the partner reference; it wins over AssignedPartnerID.
	ClearAssignedPartner bool
	// IfStatus makes the update conditional on the stored status.
	IfStatus *OrderStatus
}
