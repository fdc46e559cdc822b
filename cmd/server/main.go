package main

import (
	"context"
	"database/sql"
	"delivery-dispatch-service/internal/adapters/cache"
	"delivery-dispatch-service/internal/adapters/distance"
	"delivery-dispatch-service/internal/adapters/repositories"
	"delivery-dispatch-service/internal/api"
	"delivery-dispatch-service/internal/config"
	"delivery-dispatch-service/internal/metrics"
	"delivery-dispatch-service/internal/platform/db"
	"delivery-dispatch-service/internal/ports"
	"delivery-dispatch-service/internal/services"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

// main is the application composition root.
// It picks adapters from the environment, wires them behind ports and starts
// the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := config.Get("PORT", "8080")
	defaults := config.LoadPartnerDefaults()

	metrics.RegisterDefault()

	var (
		store ports.Store
		sqlDB *sql.DB
	)

	if dsn := config.Get("DATABASE_URL", ""); dsn != "" {
		conn, err := db.Open(dsn)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		if err := repositories.InitSchema(ctx, conn); err != nil {
			log.Fatal(err)
		}
		sqlDB = conn
		store = repositories.NewPostgresStore(conn)
		log.Println("store=postgres")
	} else {
		mem := repositories.NewMemoryStore()
		if err := seedMemory(ctx, mem, defaults); err != nil {
			log.Fatal(err)
		}
		store = mem
		log.Println("store=memory")
	}

	provider, geocoder, closeCaches, err := newDistanceStack(ctx, sqlDB)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCaches()

	builder := services.NewGraphBuilder(provider, config.GetInt("DISTANCE_CONCURRENCY", services.DefaultDistanceConcurrency))
	dispatcher := services.NewDispatcher(store, store, builder)

	deps := api.Deps{
		Store:      store,
		Dispatcher: dispatcher,
		Geocoder:   geocoder,
		Defaults:   defaults,
	}
	if sqlDB != nil {
		deps.DB = sqlDB
	}
	router := api.NewRouter(deps)

	// Timeouts are tuned for cold-cache optimizations (external API latency).
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Server listening addr=:%s", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}

// newDistanceStack returns the ORS provider when ORS_API_KEY is set and the
// great-circle provider otherwise. Distance rows are cached in redis when
// REDIS_URL is set, else in Postgres when a database is configured.
func newDistanceStack(ctx context.Context, sqlDB *sql.DB) (ports.DistanceProvider, ports.Geocoder, func(), error) {
	noop := func() {}

	apiKey := config.Get("ORS_API_KEY", "")
	if apiKey == "" {
		log.Println("distance=geometric (ORS_API_KEY not set)")
		return distance.NewGeometricDistanceProvider(), distance.CoordinateGeocoder{}, noop, nil
	}

	var (
		distanceCache ports.DistanceCache
		geocodeCache  ports.GeocodeCache
		closeFn       = noop
	)

	if redisURL := config.Get("REDIS_URL", ""); redisURL != "" {
		rc, err := cache.NewRedisDistanceCacheFromURL(ctx, redisURL, config.GetDuration("DISTANCE_CACHE_TTL", cache.DefaultDistanceTTL))
		if err != nil {
			return nil, nil, noop, fmt.Errorf("distance stack: %w", err)
		}
		distanceCache = rc
		closeFn = func() { _ = rc.Close() }
		log.Println("distance_cache=redis")
	} else if sqlDB != nil {
		distanceCache = cache.NewSQLDistanceCache(sqlDB)
		log.Println("distance_cache=postgres")
	}
	if sqlDB != nil {
		geocodeCache = cache.NewSQLGeocodeCache(sqlDB)
	}

	provider, err := distance.NewORSDistanceProvider(distance.ORSConfig{
		APIKey:     apiKey,
		BaseURL:    config.Get("ORS_BASE_URL", distance.DefaultORSBaseURL),
		Profile:    config.Get("ORS_PROFILE", distance.DefaultORSProfile),
		Country:    config.Get("ORS_COUNTRY", ""),
		RatePerSec: config.GetFloat("ORS_RATE_PER_SEC", 10),
	}, distanceCache, geocodeCache)
	if err != nil {
		closeFn()
		return nil, nil, noop, fmt.Errorf("distance stack: %w", err)
	}

	log.Println("distance=ors")
	return provider, provider, closeFn, nil
}

// seedMemory loads SEED_PATH into the in-memory store, if set.
func seedMemory(ctx context.Context, store ports.Store, defaults config.PartnerDefaults) error {
	path := config.Get("SEED_PATH", "")
	if path == "" {
		return nil
	}

	seed, err := repositories.LoadSeed(path)
	if err != nil {
		return fmt.Errorf("seed memory store: %w", err)
	}

	partners, orders, err := repositories.ApplySeed(ctx, store, seed, defaults.MaxPackages, defaults.MaxDeliveryTimeSeconds)
	if err != nil {
		return fmt.Errorf("seed memory store: %w", err)
	}
	log.Printf("seeded partners=%d orders=%d path=%s", partners, orders, path)
	return nil
}
