//go:build postgres_integration

package repositories

import (
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/db"
	"delivery-dispatch-service/internal/ports"
	"errors"
	"os"
	"testing"
)

func TestPostgresStoreReserveAndAssign(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}

	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	defer conn.Close()

	ctx := t.Context()
	if err := InitSchema(ctx, conn); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}

	s := NewPostgresStore(conn)
	p, err := s.CreatePartner(ctx, newPartner("integration"))
	if err != nil {
		t.Fatalf("CreatePartner: %v", err)
	}

	ok, err := s.ReserveIfAvailable(ctx, p.ID)
	if err != nil || !ok {
		t.Fatalf("first reserve = %v, %v; want true", ok, err)
	}
	ok, err = s.ReserveIfAvailable(ctx, p.ID)
	if err != nil || ok {
		t.Fatalf("second reserve = %v, %v; want false", ok, err)
	}

	o, err := s.CreateOrder(ctx, newOrder(2))
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	assigned := domain.OrderAssigned
	got, err := s.UpdateOrder(ctx, o.ID, domain.OrderUpdate{Status: &assigned, AssignedPartnerID: &p.ID})
	if err != nil {
		t.Fatalf("UpdateOrder: %v", err)
	}
	if got.AssignedPartnerID == nil || *got.AssignedPartnerID != p.ID {
		t.Fatalf("assigned partner = %v, want %d", got.AssignedPartnerID, p.ID)
	}

	pending := domain.OrderPending
	if _, err := s.UpdateOrder(ctx, o.ID, domain.OrderUpdate{Status: &assigned, IfStatus: &pending}); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("conditional update on assigned order: err = %v, want ErrConflict", err)
	}
	if _, err := s.UpdateOrder(ctx, 1<<40, domain.OrderUpdate{Status: &assigned, IfStatus: &pending}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("conditional update on missing order: err = %v, want ErrNotFound", err)
	}

	res := &domain.OptimizationResult{PartnerID: p.ID, TotalOrders: 1}
	if err := s.SaveOptimization(ctx, p.ID, res); err != nil {
		t.Fatalf("SaveOptimization: %v", err)
	}
	loaded, err := s.GetOptimization(ctx, p.ID)
	if err != nil || loaded == nil || loaded.TotalOrders != 1 {
		t.Fatalf("GetOptimization = %+v, %v", loaded, err)
	}
}
