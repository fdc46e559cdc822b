package config

import (
	"testing"
	"time"
)

func TestGetFallbacks(t *testing.T) {
	t.Setenv("DISPATCH_TEST_STR", "  ")
	if got := Get("DISPATCH_TEST_STR", "x"); got != "x" {
		t.Fatalf("Get blank = %q, want x", got)
	}

	t.Setenv("DISPATCH_TEST_INT", "abc")
	if got := GetInt("DISPATCH_TEST_INT", 7); got != 7 {
		t.Fatalf("GetInt malformed = %d, want 7", got)
	}

	t.Setenv("DISPATCH_TEST_INT", "12")
	if got := GetInt("DISPATCH_TEST_INT", 7); got != 12 {
		t.Fatalf("GetInt = %d, want 12", got)
	}

	t.Setenv("DISPATCH_TEST_DUR", "90s")
	if got := GetDuration("DISPATCH_TEST_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("GetDuration = %s, want 1m30s", got)
	}
}

func TestLoadPartnerDefaults(t *testing.T) {
	t.Setenv("MAX_PACKAGES_PER_PARTNER", "")
	t.Setenv("MAX_DELIVERY_TIME_MINUTES", "45")

	d := LoadPartnerDefaults()
	if d.MaxPackages != 5 {
		t.Fatalf("MaxPackages = %d, want 5", d.MaxPackages)
	}
	if d.MaxDeliveryTimeSeconds != 2700 {
		t.Fatalf("MaxDeliveryTimeSeconds = %d, want 2700", d.MaxDeliveryTimeSeconds)
	}
}
