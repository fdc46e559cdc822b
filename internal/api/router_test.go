package api

import (
	"bytes"
	"delivery-dispatch-service/internal/adapters/distance"
	"delivery-dispatch-service/internal/adapters/repositories"
	"delivery-dispatch-service/internal/api/dto"
	"delivery-dispatch-service/internal/config"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/metrics"
	"delivery-dispatch-service/internal/services"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	metrics.RegisterDefault()

	store := repositories.NewMemoryStore()
	builder := services.NewGraphBuilder(distance.NewGeometricDistanceProvider(), 4)

	srv := httptest.NewServer(NewRouter(Deps{
		Store:      store,
		Dispatcher: services.NewDispatcher(store, store, builder),
		Geocoder:   distance.CoordinateGeocoder{},
		Defaults:   config.PartnerDefaults{MaxPackages: 5, MaxDeliveryTimeSeconds: 1800},
	}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestHealthAndRequestID(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("missing X-Request-Id header")
	}

	resp = do(t, http.MethodPost, srv.URL+"/health", "")
	if resp.StatusCode != http.StatusMethodNotAllowed || resp.Header.Get("Allow") != "GET" {
		t.Fatalf("POST /health = %d allow=%q", resp.StatusCode, resp.Header.Get("Allow"))
	}
}

func TestPartnerAndOrderLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/partners", `{"name":"Ravi","phone":"555","start_address":"12.9716,77.5946"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create partner status = %d", resp.StatusCode)
	}
	partner := decode[dto.PartnerResponse](t, resp)
	if partner.ID != 1 || partner.MaxPackages != 5 || partner.MaxDeliveryMinutes != 30 {
		t.Fatalf("partner = %+v, want defaults applied", partner)
	}

	for i := 0; i < 2; i++ {
		resp = do(t, http.MethodPost, srv.URL+"/api/orders",
			`{"pickup_address":"12.9716,77.5946","dropoff_address":"12.9720,77.5950","package_count":2}`)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create order status = %d", resp.StatusCode)
		}
	}

	resp = do(t, http.MethodPost, srv.URL+"/api/orders/preview-route", `{"partner_id":1,"order_ids":[1,2]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("preview status = %d", resp.StatusCode)
	}
	preview := decode[domain.OptimizationResult](t, resp)
	if preview.FinalRoute == nil || len(preview.FinalRoute.Stops) != 6 {
		t.Fatalf("preview route = %+v", preview.FinalRoute)
	}

	resp = do(t, http.MethodGet, srv.URL+"/api/orders/optimization/1", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("optimization before assign = %d, want 404", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, srv.URL+"/api/orders/optimize-route", `{"partner_id":1,"order_ids":[1,2]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("optimize status = %d", resp.StatusCode)
	}
	assigned := decode[dto.AssignmentResponse](t, resp)
	if !assigned.Success || assigned.Partner.Status != domain.PartnerAssigned {
		t.Fatalf("assignment = %+v", assigned)
	}

	resp = do(t, http.MethodGet, srv.URL+"/api/orders/optimization/1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("optimization after assign = %d, want 200", resp.StatusCode)
	}
	stored := decode[domain.OptimizationResult](t, resp)
	if _, ok := stored.Graph.Edge("START", "P1"); !ok {
		t.Fatalf("stored graph lost its edge index")
	}

	resp = do(t, http.MethodGet, srv.URL+"/api/partners/1", "")
	detail := decode[dto.PartnerDetailResponse](t, resp)
	if len(detail.AssignedOrders) != 2 || detail.TotalPackages != 4 {
		t.Fatalf("partner detail = %+v", detail)
	}

	resp = do(t, http.MethodGet, srv.URL+"/api/orders?status=assigned", "")
	list := decode[dto.ListOrdersResponse](t, resp)
	if list.Count != 2 {
		t.Fatalf("assigned orders = %d, want 2", list.Count)
	}

	resp = do(t, http.MethodGet, srv.URL+"/api/stats", "")
	stats := decode[dto.StatsResponse](t, resp)
	if stats.AssignedPartners != 1 || stats.AssignedOrders != 2 || stats.AveragePackagesPerOrder != 2 {
		t.Fatalf("stats = %+v", stats)
	}

	resp = do(t, http.MethodPut, srv.URL+"/api/partners/1", `{"status":"AVAILABLE"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("release partner status = %d", resp.StatusCode)
	}
	if p := decode[dto.PartnerResponse](t, resp); p.Status != domain.PartnerAvailable {
		t.Fatalf("partner status = %s after release", p.Status)
	}
}

func TestOptimizeRouteConstraintFailure(t *testing.T) {
	srv := newTestServer(t)

	do(t, http.MethodPost, srv.URL+"/api/partners", `{"name":"Asha","location":{"lat":12.97,"lng":77.59},"max_packages":2}`)
	do(t, http.MethodPost, srv.URL+"/api/orders", `{"pickup_address":"12.97,77.59","dropoff_address":"12.98,77.60","package_count":3}`)

	resp := do(t, http.MethodPost, srv.URL+"/api/orders/optimize-route", `{"partner_id":1,"order_ids":[1]}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	out := decode[dto.AssignmentResponse](t, resp)
	if out.Success || out.Reason != domain.ReasonConstraintsViolated {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Optimization == nil || out.Optimization.Graph != nil {
		t.Fatalf("failed check should carry a trace without a graph")
	}
}

func TestRequestValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown partner", http.MethodGet, "/api/partners/9", "", http.StatusNotFound},
		{"bad partner id", http.MethodGet, "/api/partners/abc", "", http.StatusBadRequest},
		{"street address without geocoder", http.MethodPost, "/api/partners", `{"name":"X","start_address":"Main Street"}`, http.StatusBadRequest},
		{"missing name", http.MethodPost, "/api/partners", `{"start_address":"1,1"}`, http.StatusBadRequest},
		{"home base out of range", http.MethodPost, "/api/partners", `{"name":"X","start_address":"1,1","home_base":{"lat":500,"lng":-900}}`, http.StatusBadRequest},
		{"too many packages", http.MethodPost, "/api/orders", `{"pickup_address":"1,1","dropoff_address":"2,2","package_count":6}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/orders", `{"pickup":"1,1"}`, http.StatusBadRequest},
		{"empty order ids", http.MethodPost, "/api/orders/optimize-route", `{"partner_id":1,"order_ids":[]}`, http.StatusBadRequest},
		{"unknown ids", http.MethodPost, "/api/orders/optimize-route", `{"partner_id":1,"order_ids":[1]}`, http.StatusNotFound},
		{"auto assign with nothing", http.MethodPost, "/api/orders/auto-assign", "", http.StatusUnprocessableEntity},
		{"wrong method", http.MethodDelete, "/api/orders", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, srv.URL+tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("%s %s = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.want)
			}
		})
	}
}

func TestAutoAssignEndpoint(t *testing.T) {
	srv := newTestServer(t)

	do(t, http.MethodPost, srv.URL+"/api/partners", `{"name":"A","start_address":"12.97,77.59"}`)
	for i := 0; i < 4; i++ {
		do(t, http.MethodPost, srv.URL+"/api/orders", `{"pickup_address":"12.97,77.59","dropoff_address":"12.97,77.59","package_count":1}`)
	}

	resp := do(t, http.MethodPost, srv.URL+"/api/orders/auto-assign", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	out := decode[dto.AutoAssignResponse](t, resp)
	if !out.Success || len(out.Executed.OrderIDs) != 3 || out.Distribution.OrdersRemaining != 1 {
		t.Fatalf("auto assign = %+v", out)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	do(t, http.MethodGet, srv.URL+"/health", "")

	resp := do(t, http.MethodGet, srv.URL+"/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), `http_requests_total{method="GET",path="/health",status="200"}`) {
		t.Fatalf("metrics output missing request counter")
	}
}
