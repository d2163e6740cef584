package config

import (
	"os"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/radbridge_test")
	t.Setenv("JWT_SECRET", "test-access-secret-0123456789abcdef")
	t.Setenv("JWT_REFRESH_SECRET", "test-refresh-secret-0123456789abcdef")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %q", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("expected default env development, got %q", cfg.Env)
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 5 {
		t.Errorf("unexpected pool defaults: max=%d min=%d", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if cfg.RateLimitRPS != 100 || cfg.RateLimitBurst != 200 {
		t.Errorf("unexpected rate limit defaults: rps=%v burst=%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestValidate_RequiresSecrets(t *testing.T) {
	cfg := &Config{Env: "development"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}

	cfg.JWTSecret = "a"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when JWT_REFRESH_SECRET is missing")
	}

	cfg.JWTRefreshSecret = "a"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when both secrets are identical")
	}

	cfg.JWTRefreshSecret = "b"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ProductionSecretLength(t *testing.T) {
	cfg := &Config{
		Env:              "production",
		JWTSecret:        "short",
		JWTRefreshSecret: "other",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short production secret")
	}

	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnvHelpers(t *testing.T) {
	if !(&Config{Env: "development"}).IsDev() {
		t.Error("expected IsDev true")
	}
	if !(&Config{Env: "production"}).IsProduction() {
		t.Error("expected IsProduction true")
	}
}
