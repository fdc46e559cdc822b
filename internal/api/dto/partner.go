package dto

import (
	"delivery-dispatch-service/internal/domain"
	"time"
)

// Partner location comes either as explicit coordinates or as an address
// ("lat,lng" text or a street address) that is geocoded.
type CreatePartnerRequest struct {
	Name               string           `json:"name"`
	Phone              string           `json:"phone"`
	StartAddress       string           `json:"start_address"`
	Location           *domain.Location `json:"location"`
	HomeBase           *domain.Location `json:"home_base"`
	MaxPackages        int              `json:"max_packages"`
	MaxDeliveryMinutes int              `json:"max_delivery_minutes"`
}

type UpdatePartnerRequest struct {
	Status       *domain.PartnerStatus `json:"status"`
	StartAddress string                `json:"start_address"`
	Location     *domain.Location      `json:"location"`
}

type PartnerResponse struct {
	ID                 int64                `json:"id"`
	Name               string               `json:"name"`
	Phone              string               `json:"phone"`
	CurrentLocation    domain.Location      `json:"current_location"`
	HomeBase           *domain.Location     `json:"home_base,omitempty"`
	Status             domain.PartnerStatus `json:"status"`
	MaxPackages        int                  `json:"max_packages"`
	MaxDeliveryMinutes int                  `json:"max_delivery_minutes"`
	CreatedAt          time.Time            `json:"created_at"`
}

type PartnerDetailResponse struct {
	Partner        PartnerResponse `json:"partner"`
	AssignedOrders []OrderResponse `json:"assigned_orders"`
	TotalPackages  int             `json:"total_packages"`
}

type ListPartnersResponse struct {
	Partners []PartnerResponse `json:"partners"`
	Count    int               `json:"count"`
}

func NewPartnerResponse(p *domain.Partner) PartnerResponse {
	return PartnerResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Phone:              p.Phone,
		CurrentLocation:    p.CurrentLocation,
		HomeBase:           p.HomeBase,
		Status:             p.Status,
		MaxPackages:        p.MaxPackages,
		MaxDeliveryMinutes: p.MaxDeliveryTime / 60,
		CreatedAt:          p.CreatedAt,
	}
}

func NewListPartnersResponse(partners []*domain.Partner) ListPartnersResponse {
	res := ListPartnersResponse{Partners: make([]PartnerResponse, 0, len(partners)), Count: len(partners)}
	for _, p := range partners {
		res.Partners = append(res.Partners, NewPartnerResponse(p))
	}
	return res
}
