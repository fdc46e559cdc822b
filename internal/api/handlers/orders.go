package handlers

import (
	"delivery-dispatch-service/internal/api/dto"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/ports"
	"net/http"
	"strings"
)

type OrderHandler struct {
	Store    ports.Store
	Geocoder ports.Geocoder
}

// Collection serves GET (list, optional ?status=) and POST on /api/orders.
func (h *OrderHandler) Collection(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodPost {
		h.create(w, r)
		return
	}

	orders, err := h.Store.ListOrders(r.Context())
	if err != nil {
		writeServiceError(w, r, "list orders", err)
		return
	}

	if status := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))); status != "" {
		filtered := orders[:0]
		for _, o := range orders {
			if string(o.Status) == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	writeJSON(w, r, http.StatusOK, dto.ListOrdersResponse{
		Orders: dto.NewOrderResponses(orders),
		Count:  len(orders),
	})
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.PackageCount < domain.MinOrderPackages || req.PackageCount > domain.MaxOrderPackages {
		writeError(w, r, http.StatusBadRequest, "package_count must be between 1 and 5")
		return
	}

	pickup, err := resolveLocation(r.Context(), h.Geocoder, req.PickupLocation, req.PickupAddress, "pickup_address")
	if err != nil {
		writeServiceError(w, r, "resolve pickup", err)
		return
	}
	dropoff, err := resolveLocation(r.Context(), h.Geocoder, req.DropoffLocation, req.DropoffAddress, "dropoff_address")
	if err != nil {
		writeServiceError(w, r, "resolve dropoff", err)
		return
	}

	pickupAddr := strings.TrimSpace(req.PickupAddress)
	if pickupAddr == "" {
		pickupAddr = pickup.String()
	}
	dropoffAddr := strings.TrimSpace(req.DropoffAddress)
	if dropoffAddr == "" {
		dropoffAddr = dropoff.String()
	}

	created, err := h.Store.CreateOrder(r.Context(), &domain.Order{
		PickupAddress:   pickupAddr,
		PickupLocation:  pickup,
		DropoffAddress:  dropoffAddr,
		DropoffLocation: dropoff,
		PackageCount:    req.PackageCount,
		Instructions:    strings.TrimSpace(req.Instructions),
		Status:          domain.OrderPending,
	})
	if err != nil {
		writeServiceError(w, r, "create order", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.NewOrderResponse(created))
}

func (h *OrderHandler) Item(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	o, err := h.Store.GetOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get order", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewOrderResponse(o))
}
