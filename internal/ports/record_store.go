package ports

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict reports a write whose precondition no longer held.
	ErrConflict = errors.New("conflict")
)

// RecordStore is the boundary the dispatch engine reads partners and orders
// through. Single calls are atomic; nothing spans calls.
type RecordStore interface {
	GetPartner(ctx context.Context, id int64) (*domain.Partner, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	UpdatePartner(ctx context.Context, id int64, upd domain.PartnerUpdate) (*domain.Partner, error)
	UpdateOrder(ctx context.Context, id int64, upd domain.OrderUpdate) (*domain.Order, error)
	ListAvailablePartners(ctx context.Context) ([]*domain.Partner, error)
	ListPendingOrders(ctx context.Context) ([]*domain.Order, error)
	// ReserveIfAvailable flips the partner from AVAILABLE to ASSIGNED in one
	// atomic step. It returns false when the partner was not AVAILABLE.
	ReserveIfAvailable(ctx context.Context, id int64) (bool, error)
}

// Keeps the latest optimization result per partner.
type OptimizationStore interface {
	SaveOptimization(ctx context.Context, partnerID int64, res *domain.OptimizationResult) error
	// Returns (nil, nil) when nothing is stored for the partner.
	GetOptimization(ctx context.Context, partnerID int64) (*domain.OptimizationResult, error)
}

// Counts surfaced on the stats endpoint.
type Stats struct {
	TotalPartners     int `json:"total_partners"`
	AvailablePartners int `json:"available_partners"`
	AssignedPartners  int `json:"assigned_partners"`
	TotalOrders       int `json:"total_orders"`
	PendingOrders     int `json:"pending_orders"`
	AssignedOrders    int `json:"assigned_orders"`
	OptimizedOrders   int `json:"optimized_orders"`
	TotalPackages     int `json:"total_packages"`
}

// Store is the full persistence surface used by the HTTP layer.
type Store interface {
	RecordStore
	OptimizationStore
	CreatePartner(ctx context.Context, p *domain.Partner) (*domain.Partner, error)
	CreateOrder(ctx context.Context, o *domain.Order) (*domain.Order, error)
	ListPartners(ctx context.Context) ([]*domain.Partner, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	ListPartnerOrders(ctx context.Context, partnerID int64) ([]*domain.Order, error)
	Stats(ctx context.Context) (Stats, error)
}
