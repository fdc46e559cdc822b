package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// GetInt parses key as an integer. Malformed values are logged and replaced by fallback.
func GetInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: invalid int key=%s value=%q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

// GetFloat parses key as a float64.
func GetFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config: invalid float key=%s value=%q, using %v", key, raw, fallback)
		return fallback
	}
	return v
}

// GetDuration parses key with time.ParseDuration (e.g. "24h").
func GetDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config: invalid duration key=%s value=%q, using %s", key, raw, fallback)
		return fallback
	}
	return v
}

// PartnerDefaults holds the limits applied to newly registered partners.
type PartnerDefaults struct {
	MaxPackages            int
	MaxDeliveryTimeSeconds int
}

// LoadPartnerDefaults reads MAX_PACKAGES_PER_PARTNER and MAX_DELIVERY_TIME_MINUTES.
func LoadPartnerDefaults() PartnerDefaults {
	return PartnerDefaults{
		MaxPackages:            GetInt("MAX_PACKAGES_PER_PARTNER", 5),
		MaxDeliveryTimeSeconds: GetInt("MAX_DELIVERY_TIME_MINUTES", 30) * 60,
	}
}
