package main

import (
	"context"
	"delivery-dispatch-service/internal/adapters/repositories"
	"delivery-dispatch-service/internal/config"
	"delivery-dispatch-service/internal/platform/db"
	"flag"
	"log"

	"github.com/joho/godotenv"
)

// dbtool prepares a Postgres database: it creates the schema and optionally
// loads a partner/order fixture.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	seedPath := flag.String("seed", config.Get("SEED_PATH", ""), "YAML or JSON fixture to load after the schema")
	schemaOnly := flag.Bool("schema-only", false, "create the schema and skip seeding")
	flag.Parse()

	databaseURL := config.Get("DATABASE_URL", "")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx := context.Background()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if *schemaOnly || *seedPath == "" {
		return
	}

	seed, err := repositories.LoadSeed(*seedPath)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}

	defaults := config.LoadPartnerDefaults()
	store := repositories.NewPostgresStore(conn)

	log.Printf("Seeding database from %s...", *seedPath)
	partners, orders, err := repositories.ApplySeed(ctx, store, seed, defaults.MaxPackages, defaults.MaxDeliveryTimeSeconds)
	if err != nil {
		log.Fatalf("seeding failed after partners=%d orders=%d: %v", partners, orders, err)
	}
	log.Printf("Seeding complete. partners=%d orders=%d", partners, orders)
}
