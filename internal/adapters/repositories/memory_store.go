package repositories

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/ports"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// In-memory implementation of ports.Store, used when DATABASE_URL is unset
// and in tests. Records are copied on the way in and out so callers never
// share memory with the store.
type MemoryStore struct {
	mu            sync.Mutex
	partners      map[int64]*domain.Partner
	orders        map[int64]*domain.Order
	partnerOrder  []int64
	orderOrder    []int64
	// Encoded like the Postgres jsonb column, so reads return a fresh copy.
	optimizations map[int64][]byte
	nextPartnerID int64
	nextOrderID   int64
	now           func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		partners:      map[int64]*domain.Partner{},
		orders:        map[int64]*domain.Order{},
		optimizations: map[int64][]byte{},
		nextPartnerID: 1,
		nextOrderID:   1,
		now:           time.Now,
	}
}

func clonePartner(p *domain.Partner) *domain.Partner {
	c := *p
	if p.HomeBase != nil {
		hb := *p.HomeBase
		c.HomeBase = &hb
	}
	return &c
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	if o.AssignedPartnerID != nil {
		id := *o.AssignedPartnerID
		c.AssignedPartnerID = &id
	}
	return &c
}

func (m *MemoryStore) CreatePartner(ctx context.Context, p *domain.Partner) (*domain.Partner, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("create partner: %w: %v", ports.ErrInvalidInput, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := clonePartner(p)
	c.ID = m.nextPartnerID
	m.nextPartnerID++
	if c.Status == "" {
		c.Status = domain.PartnerAvailable
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.now()
	}

	m.partners[c.ID] = c
	m.partnerOrder = append(m.partnerOrder, c.ID)
	return clonePartner(c), nil
}

func (m *MemoryStore) CreateOrder(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("create order: %w: %v", ports.ErrInvalidInput, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := cloneOrder(o)
	c.ID = m.nextOrderID
	m.nextOrderID++
	if c.Status == "" {
		c.Status = domain.OrderPending
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.now()
	}

	m.orders[c.ID] = c
	m.orderOrder = append(m.orderOrder, c.ID)
	return cloneOrder(c), nil
}

func (m *MemoryStore) GetPartner(ctx context.Context, id int64) (*domain.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.partners[id]
	if !ok {
		return nil, fmt.Errorf("partner %d: %w", id, ports.ErrNotFound)
	}
	return clonePartner(p), nil
}

func (m *MemoryStore) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, ports.ErrNotFound)
	}
	return cloneOrder(o), nil
}

func (m *MemoryStore) UpdatePartner(ctx context.Context, id int64, upd domain.PartnerUpdate) (*domain.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.partners[id]
	if !ok {
		return nil, fmt.Errorf("update partner %d: %w", id, ports.ErrNotFound)
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.CurrentLocation != nil {
		p.CurrentLocation = *upd.CurrentLocation
	}
	return clonePartner(p), nil
}

func (m *MemoryStore) UpdateOrder(ctx context.Context, id int64, upd domain.OrderUpdate) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("update order %d: %w", id, ports.ErrNotFound)
	}
	if upd.IfStatus != nil && o.Status != *upd.IfStatus {
		return nil, fmt.Errorf("update order %d: %w: status is %s, want %s", id, ports.ErrConflict, o.Status, *upd.IfStatus)
	}
	if upd.Status != nil {
		o.Status = *upd.Status
	}
	switch {
	case upd.ClearAssignedPartner:
		o.AssignedPartnerID = nil
	case upd.AssignedPartnerID != nil:
		pid := *upd.AssignedPartnerID
		o.AssignedPartnerID = &pid
	}
	return cloneOrder(o), nil
}

func (m *MemoryStore) ReserveIfAvailable(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.partners[id]
	if !ok {
		return false, fmt.Errorf("reserve partner %d: %w", id, ports.ErrNotFound)
	}
	if p.Status != domain.PartnerAvailable {
		return false, nil
	}
	p.Status = domain.PartnerAssigned
	return true, nil
}

func (m *MemoryStore) listPartners(keep func(*domain.Partner) bool) []*domain.Partner {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.Partner, 0, len(m.partnerOrder))
	for _, id := range m.partnerOrder {
		if p := m.partners[id]; keep(p) {
			out = append(out, clonePartner(p))
		}
	}
	return out
}

func (m *MemoryStore) listOrders(keep func(*domain.Order) bool) []*domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.Order, 0, len(m.orderOrder))
	for _, id := range m.orderOrder {
		if o := m.orders[id]; keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	return out
}

func (m *MemoryStore) ListPartners(ctx context.Context) ([]*domain.Partner, error) {
	return m.listPartners(func(*domain.Partner) bool { return true }), nil
}

func (m *MemoryStore) ListAvailablePartners(ctx context.Context) ([]*domain.Partner, error) {
	return m.listPartners(func(p *domain.Partner) bool { return p.Status == domain.PartnerAvailable }), nil
}

func (m *MemoryStore) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return m.listOrders(func(*domain.Order) bool { return true }), nil
}

func (m *MemoryStore) ListPendingOrders(ctx context.Context) ([]*domain.Order, error) {
	return m.listOrders(func(o *domain.Order) bool { return o.Status == domain.OrderPending }), nil
}

func (m *MemoryStore) ListPartnerOrders(ctx context.Context, partnerID int64) ([]*domain.Order, error) {
	return m.listOrders(func(o *domain.Order) bool {
		return o.AssignedPartnerID != nil && *o.AssignedPartnerID == partnerID
	}), nil
}

func (m *MemoryStore) SaveOptimization(ctx context.Context, partnerID int64, res *domain.OptimizationResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("save optimization: marshal: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.optimizations[partnerID] = payload
	return nil
}

func (m *MemoryStore) GetOptimization(ctx context.Context, partnerID int64) (*domain.OptimizationResult, error) {
	m.mu.Lock()
	payload, ok := m.optimizations[partnerID]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}

	var res domain.OptimizationResult
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("get optimization: unmarshal: %w", err)
	}
	return &res, nil
}

func (m *MemoryStore) Stats(ctx context.Context) (ports.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var s ports.Stats
	s.TotalPartners = len(m.partners)
	for _, p := range m.partners {
		switch p.Status {
		case domain.PartnerAvailable:
			s.AvailablePartners++
		case domain.PartnerAssigned:
			s.AssignedPartners++
		}
	}

	s.TotalOrders = len(m.orders)
	for _, o := range m.orders {
		s.TotalPackages += o.PackageCount
		switch o.Status {
		case domain.OrderPending:
			s.PendingOrders++
		case domain.OrderAssigned:
			s.AssignedOrders++
		case domain.OrderOptimized:
			s.OptimizedOrders++
		}
	}
	return s, nil
}
