package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Env:                       "development",
		DatabaseURL:               "postgres://x",
		IdentityURL:               "https://abcdproj.identity.example.com",
		IdentityAnonKey:           "anon-key",
		IdentityTimeout:           10 * time.Second,
		CookieSameSite:            "lax",
		LoginPath:                 "/admin/login",
		APIRateLimitPerMin:        120,
		AuthRateLimitPerMin:       30,
		BootstrapAdminRole:        "super_admin",
		StatsCacheTTL:             30 * time.Second,
		OTELTraceSamplingRatio:    1.0,
		OTELMetricsExportInterval: 10 * time.Second,
		OTELLogLevel:              "info",
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing DATABASE_URL")
	}
}

func TestValidateAllowsMissingIdentitySettings(t *testing.T) {
	// Missing identity config fails session resolution closed at
	// runtime; it must not prevent the process from starting.
	cfg := validConfig()
	cfg.IdentityURL = ""
	cfg.IdentityAnonKey = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if cfg.IdentityConfigured() {
		t.Fatal("expected IdentityConfigured to be false")
	}
}

func TestIdentityConfiguredRequiresBothSettings(t *testing.T) {
	cfg := validConfig()
	if !cfg.IdentityConfigured() {
		t.Fatal("expected IdentityConfigured with url and key set")
	}
	cfg.IdentityAnonKey = ""
	if cfg.IdentityConfigured() {
		t.Fatal("expected IdentityConfigured false without anon key")
	}
}

func TestValidateRejectsBadSameSiteAndRole(t *testing.T) {
	cfg := validConfig()
	cfg.CookieSameSite = "sometimes"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bad COOKIE_SAMESITE")
	}

	cfg = validConfig()
	cfg.BootstrapAdminRole = "owner"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bad BOOTSTRAP_ADMIN_ROLE")
	}
}
