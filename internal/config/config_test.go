package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("JWT_TTL_HOURS", "")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()

	if cfg.Env != "dev" {
		t.Fatalf("env: got %q, want dev", cfg.Env)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port: got %d, want 8080", cfg.Port)
	}
	if cfg.StoreDriver != StorePostgres {
		t.Fatalf("store driver: got %q, want %q", cfg.StoreDriver, StorePostgres)
	}
	if cfg.JWTTTL() != 24*time.Hour {
		t.Fatalf("jwt ttl: got %s, want 24h", cfg.JWTTTL())
	}
	if cfg.MaxUploadBytes() != 5*1024*1024 {
		t.Fatalf("max upload: got %d", cfg.MaxUploadBytes())
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,,")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("DATABASE_URL", "postgres://x:y@db:5432/z")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Fatalf("port: got %d", cfg.Port)
	}
	if cfg.StoreDriver != StoreMemory {
		t.Fatalf("store driver: got %q", cfg.StoreDriver)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("cors origins: got %#v", cfg.CORSOrigins)
	}
	if !cfg.OTelEnabled {
		t.Fatalf("expected otel enabled")
	}
	if cfg.DBURL != "postgres://x:y@db:5432/z" {
		t.Fatalf("db url: got %q", cfg.DBURL)
	}
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_INT", "ten")

	if got := getEnvInt("SOME_INT", 7); got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
}
