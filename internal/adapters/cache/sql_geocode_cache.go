package cache

import (
	"context"
	"database/sql"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/obs"
	"errors"
	"fmt"
	"strings"
)

// SQLGeocodeCache maps normalized addresses to coordinates in geocode_cache.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

func (s *SQLGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Location, err error) {
	defer obs.Time(ctx, "geocode.cache.sql.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	keys := uniqueKeys(addresses)
	if len(keys) == 0 {
		return map[string]domain.Location{}, nil
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT address, lon, lat
	FROM geocode_cache
	WHERE address = ANY($1::text[]);
	`, keys)
	if err != nil {
		return nil, fmt.Errorf("geocode cache get: query: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Location, len(keys))
	for rows.Next() {
		var addr string
		var loc domain.Location
		if err := rows.Scan(&addr, &loc.Lng, &loc.Lat); err != nil {
			return nil, fmt.Errorf("geocode cache get: scan: %w", err)
		}
		out[addr] = loc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("geocode cache get: rows: %w", err)
	}

	return out, nil
}

func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Location) (err error) {
	defer obs.Time(ctx, "geocode.cache.sql.PutMany")(&err)

	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("geocode cache put: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO geocode_cache (address, lon, lat)
	VALUES ($1, $2, $3)
	ON CONFLICT (address) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat;
	`)
	if err != nil {
		return fmt.Errorf("geocode cache put: prepare: %w", err)
	}
	defer stmt.Close()

	for addr, loc := range results {
		if strings.TrimSpace(addr) == "" {
			return errors.New("geocode cache put: empty address key")
		}
		if _, err := stmt.ExecContext(ctx, addr, loc.Lng, loc.Lat); err != nil {
			return fmt.Errorf("geocode cache put address=%q: %w", addr, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("geocode cache put: commit: %w", err)
	}
	return nil
}
