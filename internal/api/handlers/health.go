package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and, when a database is configured, whether
// it answers a ping.
type HealthHandler struct {
	DB Pinger
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}

	res := map[string]string{"status": "ok", "store": "memory"}
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		res["store"] = "postgres"
		if err := h.DB.PingContext(ctx); err != nil {
			res["status"] = "degraded"
			res["error"] = err.Error()
			writeJSON(w, r, http.StatusServiceUnavailable, res)
			return
		}
	}

	writeJSON(w, r, http.StatusOK, res)
}
