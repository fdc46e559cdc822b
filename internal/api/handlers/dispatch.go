package handlers

import (
	"delivery-dispatch-service/internal/api/dto"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/ports"
	"delivery-dispatch-service/internal/services"
	"errors"
	"fmt"
	"net/http"
)

// DispatchHandler exposes the optimization engine.
type DispatchHandler struct {
	Store      ports.Store
	Dispatcher *services.Dispatcher
}

func validRouteRequest(w http.ResponseWriter, r *http.Request, req *dto.RouteRequest) bool {
	if req.PartnerID < 1 || len(req.OrderIDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "partner_id and a non-empty order_ids array are required")
		return false
	}
	return true
}

// OptimizeRoute optimizes and, when every constraint holds, assigns the orders.
// Unsuccessful outcomes are returned with 422 and the full trace.
func (h *DispatchHandler) OptimizeRoute(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}

	var req dto.RouteRequest
	if !decodeJSON(w, r, &req) || !validRouteRequest(w, r, &req) {
		return
	}

	out, err := h.Dispatcher.Assign(r.Context(), req.OrderIDs, req.PartnerID)
	if err != nil {
		writeServiceError(w, r, "optimize route", err)
		return
	}

	status := http.StatusOK
	if !out.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, r, status, dto.NewAssignmentResponse(out))
}

// PreviewRoute runs the same pipeline without reserving the partner or
// touching any order. The partner's current status is not checked.
func (h *DispatchHandler) PreviewRoute(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}

	var req dto.RouteRequest
	if !decodeJSON(w, r, &req) || !validRouteRequest(w, r, &req) {
		return
	}

	ctx := r.Context()
	partner, err := h.Store.GetPartner(ctx, req.PartnerID)
	if err != nil {
		writeServiceError(w, r, "preview route", err)
		return
	}

	orders, err := loadOrders(r, h.Store, req.OrderIDs)
	if err != nil {
		writeServiceError(w, r, "preview route", err)
		return
	}

	res, err := h.Dispatcher.Optimize(ctx, partner, orders, services.CheckOptions{SkipStatusCheck: true})
	if err != nil {
		writeServiceError(w, r, "preview route", err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func loadOrders(r *http.Request, store ports.RecordStore, ids []int64) ([]*domain.Order, error) {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]*domain.Order, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		o, err := store.GetOrder(r.Context(), id)
		if err != nil {
			return nil, fmt.Errorf("get order %d: %w", id, err)
		}
		out = append(out, o)
	}
	return out, nil
}

func (h *DispatchHandler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}

	out, err := h.Dispatcher.AutoAssign(r.Context())
	switch {
	case errors.Is(err, services.ErrNoAvailablePartners),
		errors.Is(err, services.ErrNoPendingOrders),
		errors.Is(err, services.ErrNoFeasibleOrders):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		writeServiceError(w, r, "auto assign", err)
		return
	}

	status := http.StatusOK
	if !out.Assignment.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, r, status, dto.NewAutoAssignResponse(out))
}

// Optimization returns the latest stored result for a partner.
func (h *DispatchHandler) Optimization(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	partnerID, ok := pathID(w, r, "partnerId")
	if !ok {
		return
	}

	ctx := r.Context()
	if _, err := h.Store.GetPartner(ctx, partnerID); err != nil {
		writeServiceError(w, r, "get optimization", err)
		return
	}

	res, err := h.Store.GetOptimization(ctx, partnerID)
	if err != nil {
		writeServiceError(w, r, "get optimization", err)
		return
	}
	if res == nil {
		writeError(w, r, http.StatusNotFound, "no optimization recorded for this partner")
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}
