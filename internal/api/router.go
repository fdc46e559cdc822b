package api

import (
	"delivery-dispatch-service/internal/api/handlers"
	"delivery-dispatch-service/internal/config"
	"delivery-dispatch-service/internal/metrics"
	"delivery-dispatch-service/internal/ports"
	"delivery-dispatch-service/internal/services"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the HTTP layer needs. DB is optional and only
// used by the health check.
type Deps struct {
	Store      ports.Store
	Dispatcher *services.Dispatcher
	Geocoder   ports.Geocoder
	Defaults   config.PartnerDefaults
	DB         handlers.Pinger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	health := &handlers.HealthHandler{DB: d.DB}
	partners := &handlers.PartnerHandler{Store: d.Store, Geocoder: d.Geocoder, Defaults: d.Defaults}
	orders := &handlers.OrderHandler{Store: d.Store, Geocoder: d.Geocoder}
	dispatch := &handlers.DispatchHandler{Store: d.Store, Dispatcher: d.Dispatcher}
	stats := &handlers.StatsHandler{Store: d.Store}

	mux.HandleFunc("/health", health.Health)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/api/partners", partners.Collection)
	mux.HandleFunc("/api/partners/{id}", partners.Item)

	mux.HandleFunc("/api/orders", orders.Collection)
	mux.HandleFunc("/api/orders/{id}", orders.Item)
	mux.HandleFunc("/api/orders/optimize-route", dispatch.OptimizeRoute)
	mux.HandleFunc("/api/orders/preview-route", dispatch.PreviewRoute)
	mux.HandleFunc("/api/orders/auto-assign", dispatch.AutoAssign)
	mux.HandleFunc("/api/orders/optimization/{partnerId}", dispatch.Optimization)

	mux.HandleFunc("/api/stats", stats.Stats)

	return requestIDMiddleware(loggingMiddleware(mux))
}
