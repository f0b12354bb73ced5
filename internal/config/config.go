package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreGorm     = "gorm"
	StoreMemory   = "memory"
)

type Config struct {
	Env         string
	Port        int
	StoreDriver string
	DBURL       string

	JWTSecret   string
	JWTTTLHours int

	UploadDir   string
	MaxUploadMB int

	CORSOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTelEnabled  bool
	OTelEndpoint string

	AuthRateLimitPerMin int

	// optional demo account created at startup
	SeedDoctorUsername string
	SeedDoctorEmail    string
	SeedDoctorPassword string
	SeedDoctorFullName string
}

func Load() Config {
	// a missing .env is fine, real environments inject variables directly
	_ = godotenv.Load()

	return Config{
		Env:                 getEnv("APP_ENV", "dev"),
		Port:                getEnvInt("PORT", 8080),
		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", StorePostgres)),
		DBURL:               buildDBURL(),
		JWTSecret:           getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTTTLHours:         getEnvInt("JWT_TTL_HOURS", 24),
		UploadDir:           getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadMB:         getEnvInt("MAX_UPLOAD_MB", 5),
		CORSOrigins:         splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getEnvInt("REDIS_DB", 0),
		OTelEnabled:         getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint:        getEnv("OTEL_ENDPOINT", "localhost:4317"),
		AuthRateLimitPerMin: getEnvInt("RATE_LIMIT_AUTH_PER_MIN", 20),
		SeedDoctorUsername:  getEnv("SEED_DOCTOR_USERNAME", ""),
		SeedDoctorEmail:     getEnv("SEED_DOCTOR_EMAIL", ""),
		SeedDoctorPassword:  getEnv("SEED_DOCTOR_PASSWORD", ""),
		SeedDoctorFullName:  getEnv("SEED_DOCTOR_FULL_NAME", "Dr. John Smith"),
	}
}

func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "docblog")
	pass := getEnv("DB_PASSWORD", "docblog")
	name := getEnv("DB_NAME", "docblog")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer env value, using fallback", "key", key, "value", v, "fallback", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean env value, using fallback", "key", key, "value", v, "fallback", fallback)
			return fallback
		}
		return b
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
