package repositories

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/ports"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type LocationSeed struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

type PartnerSeed struct {
	Name            string        `json:"name" yaml:"name"`
	Phone           string        `json:"phone" yaml:"phone"`
	Location        LocationSeed  `json:"location" yaml:"location"`
	HomeBase        *LocationSeed `json:"home_base" yaml:"home_base"`
	MaxPackages     int           `json:"max_packages" yaml:"max_packages"`
	MaxDeliveryMins int           `json:"max_delivery_minutes" yaml:"max_delivery_minutes"`
}

type OrderSeed struct {
	PickupAddress   string       `json:"pickup_address" yaml:"pickup_address"`
	PickupLocation  LocationSeed `json:"pickup_location" yaml:"pickup_location"`
	DropoffAddress  string       `json:"dropoff_address" yaml:"dropoff_address"`
	DropoffLocation LocationSeed `json:"dropoff_location" yaml:"dropoff_location"`
	PackageCount    int          `json:"package_count" yaml:"package_count"`
	Instructions    string       `json:"instructions" yaml:"instructions"`
}

// Seed is a fixture of partners and orders.
type Seed struct {
	Partners []PartnerSeed `json:"partners" yaml:"partners"`
	Orders   []OrderSeed   `json:"orders" yaml:"orders"`
}

// LoadSeed reads a fixture; .yaml/.yml files are parsed as YAML, anything else as JSON.
func LoadSeed(path string) (*Seed, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load seed: read %q: %w", path, err)
	}

	var seed Seed
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(bytes, &seed); err != nil {
			return nil, fmt.Errorf("load seed: parse yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(bytes, &seed); err != nil {
			return nil, fmt.Errorf("load seed: parse json: %w", err)
		}
	}

	return &seed, nil
}

// Populate the store with the fixture. Partners without limits get defaults.
func ApplySeed(
	ctx context.Context,
	store ports.Store,
	seed *Seed,
	defaultMaxPackages int,
	defaultMaxDeliverySeconds int,
) (partners int, orders int, err error) {
	for i, ps := range seed.Partners {
		loc := domain.Location{Lat: ps.Location.Lat, Lng: ps.Location.Lng}
		home := loc
		if ps.HomeBase != nil {
			home = domain.Location{Lat: ps.HomeBase.Lat, Lng: ps.HomeBase.Lng}
		}

		p := &domain.Partner{
			Name:            strings.TrimSpace(ps.Name),
			Phone:           ps.Phone,
			CurrentLocation: loc,
			HomeBase:        &home,
			Status:          domain.PartnerAvailable,
			MaxPackages:     ps.MaxPackages,
			MaxDeliveryTime: ps.MaxDeliveryMins * 60,
		}
		if p.MaxPackages == 0 {
			p.MaxPackages = defaultMaxPackages
		}
		if p.MaxDeliveryTime == 0 {
			p.MaxDeliveryTime = defaultMaxDeliverySeconds
		}

		if _, err := store.CreatePartner(ctx, p); err != nil {
			return partners, orders, fmt.Errorf("seed partners: index %d: %w", i+1, err)
		}
		partners++
	}

	for i, item := range seed.Orders {
		o := &domain.Order{
			PickupAddress:   strings.TrimSpace(item.PickupAddress),
			PickupLocation:  domain.Location{Lat: item.PickupLocation.Lat, Lng: item.PickupLocation.Lng},
			DropoffAddress:  strings.TrimSpace(item.DropoffAddress),
			DropoffLocation: domain.Location{Lat: item.DropoffLocation.Lat, Lng: item.DropoffLocation.Lng},
			PackageCount:    item.PackageCount,
			Instructions:    item.Instructions,
			Status:          domain.OrderPending,
		}
		if _, err := store.CreateOrder(ctx, o); err != nil {
			return partners, orders, fmt.Errorf("seed orders: index %d: %w", i+1, err)
		}
		orders++
	}

	return partners, orders, nil
}
