package handlers

import (
	"context"
	"delivery-dispatch-service/internal/api/dto"
	"delivery-dispatch-service/internal/config"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/ports"
	"fmt"
	"net/http"
	"strings"
)

type PartnerHandler struct {
	Store    ports.Store
	Geocoder ports.Geocoder
	Defaults config.PartnerDefaults
}

// Collection serves GET (list) and POST (register) on /api/partners.
func (h *PartnerHandler) Collection(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodPost {
		h.create(w, r)
		return
	}

	partners, err := h.Store.ListPartners(r.Context())
	if err != nil {
		writeServiceError(w, r, "list partners", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewListPartnersResponse(partners))
}

func (h *PartnerHandler) create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePartnerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	loc, err := resolveLocation(r.Context(), h.Geocoder, req.Location, req.StartAddress, "start_address")
	if err != nil {
		writeServiceError(w, r, "resolve partner location", err)
		return
	}

	home := loc
	if req.HomeBase != nil {
		if !req.HomeBase.Valid() {
			writeError(w, r, http.StatusBadRequest, "home_base: coordinates out of range")
			return
		}
		home = *req.HomeBase
	}

	p := &domain.Partner{
		Name:            name,
		Phone:           strings.TrimSpace(req.Phone),
		CurrentLocation: loc,
		HomeBase:        &home,
		Status:          domain.PartnerAvailable,
		MaxPackages:     req.MaxPackages,
		MaxDeliveryTime: req.MaxDeliveryMinutes * 60,
	}
	if p.MaxPackages == 0 {
		p.MaxPackages = h.Defaults.MaxPackages
	}
	if p.MaxDeliveryTime == 0 {
		p.MaxDeliveryTime = h.Defaults.MaxDeliveryTimeSeconds
	}

	created, err := h.Store.CreatePartner(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, "create partner", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.NewPartnerResponse(created))
}

// Item serves GET and PUT on /api/partners/{id}.
func (h *PartnerHandler) Item(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPut) {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if r.Method == http.MethodPut {
		h.update(w, r, id)
		return
	}

	p, err := h.Store.GetPartner(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get partner", err)
		return
	}
	orders, err := h.Store.ListPartnerOrders(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "list partner orders", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.PartnerDetailResponse{
		Partner:        dto.NewPartnerResponse(p),
		AssignedOrders: dto.NewOrderResponses(orders),
		TotalPackages:  domain.TotalPackages(orders),
	})
}

func (h *PartnerHandler) update(w http.ResponseWriter, r *http.Request, id int64) {
	var req dto.UpdatePartnerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var upd domain.PartnerUpdate
	if req.Status != nil {
		switch *req.Status {
		case domain.PartnerAvailable, domain.PartnerAssigned:
			upd.Status = req.Status
		default:
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown status %q", *req.Status))
			return
		}
	}
	if req.Location != nil || strings.TrimSpace(req.StartAddress) != "" {
		loc, err := resolveLocation(r.Context(), h.Geocoder, req.Location, req.StartAddress, "start_address")
		if err != nil {
			writeServiceError(w, r, "resolve partner location", err)
			return
		}
		upd.CurrentLocation = &loc
	}

	p, err := h.Store.UpdatePartner(r.Context(), id, upd)
	if err != nil {
		writeServiceError(w, r, "update partner", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewPartnerResponse(p))
}

// resolveLocation prefers explicit coordinates and geocodes address otherwise.
func resolveLocation(
	ctx context.Context,
	geocoder ports.Geocoder,
	explicit *domain.Location,
	address string,
	field string,
) (domain.Location, error) {
	if explicit != nil {
		if !explicit.Valid() {
			return domain.Location{}, fmt.Errorf("%s: %w: coordinates out of range", field, ports.ErrInvalidInput)
		}
		return *explicit, nil
	}

	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Location{}, fmt.Errorf("%s: %w: address or coordinates required", field, ports.ErrInvalidInput)
	}
	loc, err := geocoder.Geocode(ctx, address)
	if err != nil {
		return domain.Location{}, fmt.Errorf("%s: %w", field, err)
	}
	return loc, nil
}
