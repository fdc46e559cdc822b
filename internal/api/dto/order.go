package dto

import (
	"delivery-dispatch-service/internal/domain"
	"time"
)

type CreateOrderRequest struct {
	PickupAddress   string           `json:"pickup_address"`
	PickupLocation  *domain.Location `json:"pickup_location"`
	DropoffAddress  string           `json:"dropoff_address"`
	DropoffLocation *domain.Location `json:"dropoff_location"`
	PackageCount    int              `json:"package_count"`
	Instructions    string           `json:"instructions"`
}

type OrderResponse struct {
	ID                int64              `json:"id"`
	PickupAddress     string             `json:"pickup_address"`
	PickupLocation    domain.Location    `json:"pickup_location"`
	DropoffAddress    string             `json:"dropoff_address"`
	DropoffLocation   domain.Location    `json:"dropoff_location"`
	PackageCount      int                `json:"package_count"`
	Instructions      string             `json:"instructions,omitempty"`
	Status            domain.OrderStatus `json:"status"`
	AssignedPartnerID *int64             `json:"assigned_partner_id"`
	CreatedAt         time.Time          `json:"created_at"`
}

type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
	Count  int             `json:"count"`
}

func NewOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:                o.ID,
		PickupAddress:     o.PickupAddress,
		PickupLocation:    o.PickupLocation,
		DropoffAddress:    o.DropoffAddress,
		DropoffLocation:   o.DropoffLocation,
		PackageCount:      o.PackageCount,
		Instructions:      o.Instructions,
		Status:            o.Status,
		AssignedPartnerID: o.AssignedPartnerID,
		CreatedAt:         o.CreatedAt,
	}
}

func NewOrderResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewOrderResponse(o))
	}
	return out
}
