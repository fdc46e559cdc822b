package repositories

import (
	"context"
	"database/sql"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/obs"
	"delivery-dispatch-service/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
)

// Postgres-backed implementation of ports.Store (pgx via database/sql).
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

const partnerColumns = `
	id, name, phone, current_lat, current_lng, home_lat, home_lng,
	status, max_packages, max_delivery_time, created_at`

const orderColumns = `
	id, pickup_address, pickup_lat, pickup_lng, dropoff_address, dropoff_lat, dropoff_lng,
	package_count, instructions, status, assigned_partner_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPartner(row rowScanner) (*domain.Partner, error) {
	var p domain.Partner
	var homeLat, homeLng sql.NullFloat64
	var status string

	err := row.Scan(
		&p.ID, &p.Name, &p.Phone,
		&p.CurrentLocation.Lat, &p.CurrentLocation.Lng,
		&homeLat, &homeLng,
		&status, &p.MaxPackages, &p.MaxDeliveryTime, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Status = domain.PartnerStatus(status)
	if homeLat.Valid && homeLng.Valid {
		p.HomeBase = &domain.Location{Lat: homeLat.Float64, Lng: homeLng.Float64}
	}
	return &p, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var status string
	var partnerID sql.NullInt64

	err := row.Scan(
		&o.ID, &o.PickupAddress, &o.PickupLocation.Lat, &o.PickupLocation.Lng,
		&o.DropoffAddress, &o.DropoffLocation.Lat, &o.DropoffLocation.Lng,
		&o.PackageCount, &o.Instructions, &status, &partnerID, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status = domain.OrderStatus(status)
	if partnerID.Valid {
		id := partnerID.Int64
		o.AssignedPartnerID = &id
	}
	return &o, nil
}

func (s *PostgresStore) CreatePartner(ctx context.Context, p *domain.Partner) (*domain.Partner, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("create partner: %w: %v", ports.ErrInvalidInput, err)
	}

	status := p.Status
	if status == "" {
		status = domain.PartnerAvailable
	}

	var homeLat, homeLng any
	if p.HomeBase != nil {
		homeLat, homeLng = p.HomeBase.Lat, p.HomeBase.Lng
	}

	row := s.DB.QueryRowContext(ctx, `
	INSERT INTO partners (name, phone, current_lat, current_lng, home_lat, home_lng, status, max_packages, max_delivery_time)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING `+partnerColumns,
		p.Name, p.Phone, p.CurrentLocation.Lat, p.CurrentLocation.Lng,
		homeLat, homeLng, string(status), p.MaxPackages, p.MaxDeliveryTime,
	)

	created, err := scanPartner(row)
	if err != nil {
		return nil, fmt.Errorf("create partner: insert: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) CreateOrder(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("create order: %w: %v", ports.ErrInvalidInput, err)
	}

	status := o.Status
	if status == "" {
		status = domain.OrderPending
	}

	row := s.DB.QueryRowContext(ctx, `
	INSERT INTO orders (
		pickup_address, pickup_lat, pickup_lng,
		dropoff_address, dropoff_lat, dropoff_lng,
		package_count, instructions, status, assigned_partner_id
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING `+orderColumns,
		o.PickupAddress, o.PickupLocation.Lat, o.PickupLocation.Lng,
		o.DropoffAddress, o.DropoffLocation.Lat, o.DropoffLocation.Lng,
		o.PackageCount, o.Instructions, string(status), o.AssignedPartnerID,
	)

	created, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("create order: insert: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) GetPartner(ctx context.Context, id int64) (_ *domain.Partner, err error) {
	defer obs.Time(ctx, "store.GetPartner")(&err)

	row := s.DB.QueryRowContext(ctx, `SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id)
	p, err := scanPartner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("partner %d: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get partner %d: %w", id, err)
	}
	return p, nil
}

func (s *PostgresStore) GetOrder(ctx context.Context, id int64) (_ *domain.Order, err error) {
	defer obs.Time(ctx, "store.GetOrder")(&err)

	row := s.DB.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

// Nil fields keep their column value via COALESCE.
func (s *PostgresStore) UpdatePartner(ctx context.Context, id int64, upd domain.PartnerUpdate) (*domain.Partner, error) {
	var status, lat, lng any
	if upd.Status != nil {
		status = string(*upd.Status)
	}
	if upd.CurrentLocation != nil {
		lat, lng = upd.CurrentLocation.Lat, upd.CurrentLocation.Lng
	}

	row := s.DB.QueryRowContext(ctx, `
	UPDATE partners
	SET status = COALESCE($2, status),
		current_lat = COALESCE($3, current_lat),
		current_lng = COALESCE($4, current_lng)
	WHERE id = $1
	RETURNING `+partnerColumns,
		id, status, lat, lng,
	)

	p, err := scanPartner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update partner %d: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update partner %d: %w", id, err)
	}
	return p, nil
}

func (s *PostgresStore) UpdateOrder(ctx context.Context, id int64, upd domain.OrderUpdate) (*domain.Order, error) {
	var status, partnerID, ifStatus any
	if upd.Status != nil {
		status = string(*upd.Status)
	}
	if upd.AssignedPartnerID != nil {
		partnerID = *upd.AssignedPartnerID
	}
	if upd.IfStatus != nil {
		ifStatus = string(*upd.IfStatus)
	}

	row := s.DB.QueryRowContext(ctx, `
	UPDATE orders
	SET status = COALESCE($2, status),
		assigned_partner_id = CASE WHEN $4 THEN NULL ELSE COALESCE($3, assigned_partner_id) END
	WHERE id = $1 AND ($5::text IS NULL OR status = $5)
	RETURNING `+orderColumns,
		id, status, partnerID, upd.ClearAssignedPartner, ifStatus,
	)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		if upd.IfStatus == nil {
			return nil, fmt.Errorf("update order %d: %w", id, ports.ErrNotFound)
		}
		return nil, s.missedOrderUpdate(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("update order %d: %w", id, err)
	}
	return o, nil
}

// missedOrderUpdate tells a missing row apart from a failed status precondition.
func (s *PostgresStore) missedOrderUpdate(ctx context.Context, id int64) error {
	var exists bool
	if err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("update order %d: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("update order %d: %w", id, ports.ErrNotFound)
	}
	return fmt.Errorf("update order %d: %w: status changed concurrently", id, ports.ErrConflict)
}

// ReserveIfAvailable relies on the row lock taken by a conditional UPDATE, so
// two concurrent callers cannot both see AVAILABLE.
func (s *PostgresStore) ReserveIfAvailable(ctx context.Context, id int64) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `
	UPDATE partners SET status = $2
	WHERE id = $1 AND status = $3
	`, id, string(domain.PartnerAssigned), string(domain.PartnerAvailable))
	if err != nil {
		return false, fmt.Errorf("reserve partner %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reserve partner %d: rows affected: %w", id, err)
	}
	if n == 1 {
		return true, nil
	}

	// Distinguish "taken" from "missing".
	if _, err := s.GetPartner(ctx, id); err != nil {
		return false, fmt.Errorf("reserve partner: %w", err)
	}
	return false, nil
}

func (s *PostgresStore) queryPartners(ctx context.Context, where string, args ...any) ([]*domain.Partner, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+partnerColumns+` FROM partners `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list partners: query partners table: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Partner, 0, 16)
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("list partners: scan row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list partners: row iteration: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) queryOrders(ctx context.Context, where string, args ...any) ([]*domain.Order, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: query orders table: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Order, 0, 64)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("list orders: scan row: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: row iteration: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListPartners(ctx context.Context) ([]*domain.Partner, error) {
	return s.queryPartners(ctx, "")
}

func (s *PostgresStore) ListAvailablePartners(ctx context.Context) ([]*domain.Partner, error) {
	return s.queryPartners(ctx, "WHERE status = $1", string(domain.PartnerAvailable))
}

func (s *PostgresStore) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.queryOrders(ctx, "")
}

func (s *PostgresStore) ListPendingOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.queryOrders(ctx, "WHERE status = $1", string(domain.OrderPending))
}

func (s *PostgresStore) ListPartnerOrders(ctx context.Context, partnerID int64) ([]*domain.Order, error) {
	return s.queryOrders(ctx, "WHERE assigned_partner_id = $1", partnerID)
}

func (s *PostgresStore) SaveOptimization(ctx context.Context, partnerID int64, res *domain.OptimizationResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("save optimization: marshal: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO optimizations (partner_id, result, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (partner_id) DO UPDATE
	SET result = EXCLUDED.result,
		updated_at = EXCLUDED.updated_at;
	`, partnerID, payload)
	if err != nil {
		return fmt.Errorf("save optimization partner_id=%d: %w", partnerID, err)
	}
	return nil
}

func (s *PostgresStore) GetOptimization(ctx context.Context, partnerID int64) (*domain.OptimizationResult, error) {
	var payload []byte
	err := s.DB.QueryRowContext(ctx, `SELECT result FROM optimizations WHERE partner_id = $1`, partnerID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get optimization partner_id=%d: %w", partnerID, err)
	}

	var res domain.OptimizationResult
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("get optimization partner_id=%d: decode: %w", partnerID, err)
	}
	return &res, nil
}

func (s *PostgresStore) Stats(ctx context.Context) (ports.Stats, error) {
	var st ports.Stats

	err := s.DB.QueryRowContext(ctx, `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'AVAILABLE'),
		COUNT(*) FILTER (WHERE status = 'ASSIGNED')
	FROM partners
	`).Scan(&st.TotalPartners, &st.AvailablePartners, &st.AssignedPartners)
	if err != nil {
		return ports.Stats{}, fmt.Errorf("stats: partners: %w", err)
	}

	err = s.DB.QueryRowContext(ctx, `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'PENDING'),
		COUNT(*) FILTER (WHERE status = 'ASSIGNED'),
		COUNT(*) FILTER (WHERE status = 'OPTIMIZED'),
		COALESCE(SUM(package_count), 0)
	FROM orders
	`).Scan(&st.TotalOrders, &st.PendingOrders, &st.AssignedOrders, &st.OptimizedOrders, &st.TotalPackages)
	if err != nil {
		return ports.Stats{}, fmt.Errorf("stats: orders: %w", err)
	}

	return st, nil
}
