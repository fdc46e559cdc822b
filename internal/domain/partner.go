package domain

import (
	"fmt"
	"strings"
	"time"
)

type PartnerStatus string

const (
	PartnerAvailable PartnerStatus = "AVAILABLE"
	PartnerAssigned  PartnerStatus = "ASSIGNED"
)

// Delivery worker with a package capacity and a time budget.
// Status and CurrentLocation are mutated through the record store only.
type Partner struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	Phone           string        `json:"phone"`
	CurrentLocation Location      `json:"current_location"`
	HomeBase        *Location     `json:"home_base,omitempty"`
	Status          PartnerStatus `json:"status"`
	MaxPackages     int           `json:"max_packages"`
	// Seconds.
	MaxDeliveryTime int       `json:"max_delivery_time"`
	CreatedAt       time.Time `json:"created_at"`
}

// ReturnLocation is the home base, or the current location when none is set.
func (p *Partner) ReturnLocation() Location {
	if p.HomeBase != nil {
		return *p.HomeBase
	}
	return p.CurrentLocation
}

func (p *Partner) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("partner: name must not be empty")
	}
	if p.MaxPackages < 1 {
		return fmt.Errorf("partner: max packages must be >= 1, got %d", p.MaxPackages)
	}
	if p.MaxDeliveryTime <= 0 {
		return fmt.Errorf("partner: max delivery time must be positive, got %d", p.MaxDeliveryTime)
	}
	if !p.CurrentLocation.Valid() {
		return fmt.Errorf("partner: invalid current location %s", p.CurrentLocation)
	}
	if p.HomeBase != nil && !p.HomeBase.Valid() {
		return fmt.Errorf("partner: invalid home base %s", *p.HomeBase)
	}
	return nil
}

// Field changes applied by RecordStore.UpdatePartner. Nil fields are left untouched.
type PartnerUpdate struct {
	Status          *PartnerStatus
	CurrentLocation *Location
}
