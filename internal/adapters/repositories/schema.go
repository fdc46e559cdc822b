package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres database schema. Statements are idempotent.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createPartnersQuery := `
	CREATE TABLE IF NOT EXISTS partners (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		current_lat DOUBLE PRECISION NOT NULL,
		current_lng DOUBLE PRECISION NOT NULL,
		home_lat DOUBLE PRECISION,
		home_lng DOUBLE PRECISION,
		status TEXT NOT NULL DEFAULT 'AVAILABLE',
		max_packages INTEGER NOT NULL CHECK (max_packages >= 1),
		max_delivery_time INTEGER NOT NULL CHECK (max_delivery_time > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createOrdersQuery := `
	CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		pickup_address TEXT NOT NULL,
		pickup_lat DOUBLE PRECISION NOT NULL,
		pickup_lng DOUBLE PRECISION NOT NULL,
		dropoff_address TEXT NOT NULL,
		dropoff_lat DOUBLE PRECISION NOT NULL,
		dropoff_lng DOUBLE PRECISION NOT NULL,
		package_count INTEGER NOT NULL CHECK (package_count BETWEEN 1 AND 5),
		instructions TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'PENDING',
		assigned_partner_id BIGINT REFERENCES partners(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createOptimizationsQuery := `
	CREATE TABLE IF NOT EXISTS optimizations (
		partner_id BIGINT PRIMARY KEY REFERENCES partners(id) ON DELETE CASCADE,
		result JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        distance_meters INTEGER NOT NULL,
        duration_seconds INTEGER NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon DOUBLE PRECISION NOT NULL,
        lat DOUBLE PRECISION NOT NULL
    );
	`

	createIndexQueries := []string{
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_assigned_partner ON orders(assigned_partner_id);`,
		`CREATE INDEX IF NOT EXISTS idx_partners_status ON partners(status);`,
	}

	statements := []string{
		createPartnersQuery,
		createOrdersQuery,
		createOptimizationsQuery,
		createDistanceCacheQuery,
		createGeocodeCacheQuery,
	}
	statements = append(statements, createIndexQueries...)

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
