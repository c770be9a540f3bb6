package config

import (
	"strings"
	"testing"
	"time"
)

func validLocal() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "placement"},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validLocal()
	c.App.Env = "production"
	c.Auth = AuthConfig{
		JWTSecret:   strings.Repeat("k", 32),
		JWTIssuer:   "placement-portal",
		JWTAudience: "placement-portal-clients",
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_ProductionRejectsShortSecret(t *testing.T) {
	c := validLocal()
	c.App.Env = "production"
	c.DB.SSLMode = "require"
	c.Auth = AuthConfig{JWTSecret: "short", JWTIssuer: "i", JWTAudience: "a"}
	err := c.Validate()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET length error, got %v", err)
	}
}

func TestValidate_LocalDefaults(t *testing.T) {
	c := validLocal()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h token ttl, got %s", c.Auth.TokenTTL)
	}
	if c.Auth.BcryptCost != DefaultBcryptCost {
		t.Fatalf("expected default bcrypt cost, got %d", c.Auth.BcryptCost)
	}
	if c.Login.FailureWindow != DefaultFailureWindow {
		t.Fatalf("expected default failure window, got %s", c.Login.FailureWindow)
	}
}

func TestValidate_RejectsBcryptCostOutOfRange(t *testing.T) {
	c := validLocal()
	c.Auth.BcryptCost = 40
	if err := c.Validate(); err == nil {
		t.Fatalf("expected bcrypt cost error")
	}
}

func TestLoad_ReadsEnv(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_NAME", "placement")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("LOGIN_MAX_FAILURES", "0")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.HTTPAddr() != ":9000" {
		t.Fatalf("unexpected addr %q", c.HTTPAddr())
	}
	if c.Auth.TokenTTL != 2*time.Hour {
		t.Fatalf("expected 2h ttl, got %s", c.Auth.TokenTTL)
	}
	if c.Login.MaxFailures != 0 {
		t.Fatalf("expected throttling disabled, got %d", c.Login.MaxFailures)
	}
	if c.RedisAddr() != "cache:6379" {
		t.Fatalf("unexpected redis addr %q", c.RedisAddr())
	}
}

func TestLoad_ReportsBadDuration(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_NAME", "placement")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_TTL", "forever")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "JWT_TTL") {
		t.Fatalf("expected JWT_TTL parse error, got %v", err)
	}
}
