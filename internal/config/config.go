package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const devJWTSecret = "dev-secret-change-in-production"

type Config struct {
	Port        string
	Env         string
	DatabaseDSN string
	SkipMigrate bool

	JWTSecret string
	JWTExpiry time.Duration

	// HashWorkers bounds concurrent password hashing; zero means one
	// per CPU.
	HashWorkers int64

	LoginAttempts int
	LoginWindow   time.Duration

	// CacheDir is where the badger report cache lives. Empty selects
	// the in-process cache only.
	CacheDir string
	CacheTTL time.Duration

	CORSOrigins []string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
}

func Load() Config {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseDSN: getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/centsible?parseTime=true"),
		SkipMigrate: getEnvBool("SKIP_MIGRATIONS", false),

		JWTSecret: getEnv("JWT_SECRET", devJWTSecret),
		JWTExpiry: getEnvDuration("JWT_EXPIRY", 168*time.Hour),

		HashWorkers: int64(getEnvInt("HASH_WORKERS", 0)),

		LoginAttempts: getEnvInt("LOGIN_ATTEMPTS", 5),
		LoginWindow:   getEnvDuration("LOGIN_WINDOW", 15*time.Minute),

		CacheDir: getEnv("CACHE_DIR", "./data/cache"),
		CacheTTL: getEnvDuration("CACHE_TTL", 15*time.Minute),

		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),

		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}

	if cfg.Env == "production" && cfg.JWTSecret == devJWTSecret {
		slog.Error("JWT_SECRET must be set in production environment")
		os.Exit(1)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment, using fallback", "key", key, "value", v)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid boolean in environment, using fallback", "key", key, "value", v)
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration in environment, using fallback", "key", key, "value", v)
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
