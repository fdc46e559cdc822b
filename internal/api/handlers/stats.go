package handlers

import (
	"delivery-dispatch-service/internal/api/dto"
	"delivery-dispatch-service/internal/ports"
	"net/http"
)

type StatsHandler struct {
	Store ports.Store
}

func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}

	s, err := h.Store.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, "stats", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewStatsResponse(s))
}
