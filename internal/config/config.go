package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	minJWTSecretLen = 32
	devJWTSecret    = "dev-only-insecure-secret-do-not-deploy"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Env   string
	Port  int
	Store string
	DBURL string

	JWTSecret  string
	SessionTTL time.Duration
	BcryptCost int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTLPEndpoint   string
	AllowedOrigins []string
	MaxBodyBytes   int64

	// requests per window per client, for the whole API and for auth endpoints
	RateLimit       int
	AuthRateLimit   int
	RateLimitWindow time.Duration

	EventsCacheTTL time.Duration
}

// Load reads a .env file when one exists, then the process environment.
// Variables already set in the environment win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env file", "err", err)
	}

	env := getEnv("APP_ENV", "dev")

	return Config{
		Env:   env,
		Port:  getEnvInt("PORT", 8080),
		Store: getEnv("STORE", StorePostgres),
		DBURL: getEnv("DATABASE_URL", buildDBURL()),

		JWTSecret:  jwtSecret(env),
		SessionTTL: time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		BcryptCost: getEnvInt("BCRYPT_COST", 12),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),
		MaxBodyBytes:   int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),

		RateLimit:       getEnvInt("RATE_LIMIT", 120),
		AuthRateLimit:   getEnvInt("AUTH_RATE_LIMIT", 10),
		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,

		EventsCacheTTL: time.Duration(getEnvInt("EVENTS_CACHE_TTL_SECONDS", 30)) * time.Second,
	}
}

func (c Config) Validate() error {
	if len(c.JWTSecret) < minJWTSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTSecretLen)
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL_MINUTES must be positive")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.Store != StorePostgres && c.Store != StoreMemory {
		return fmt.Errorf("unknown STORE %q", c.Store)
	}
	if c.Store == StorePostgres && c.DBURL == "" {
		return errors.New("database url is empty")
	}
	if c.RateLimit <= 0 || c.AuthRateLimit <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("rate limits must be positive")
	}
	return nil
}

// SecureCookies is false only for local environments that run over plain http.
func (c Config) SecureCookies() bool {
	return !c.IsLocal()
}

func (c Config) IsLocal() bool {
	return c.Env == "dev" || c.Env == "test"
}

func (c Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// jwtSecret falls back to a fixed value only in local environments; anywhere
// else an unset secret fails Validate.
func jwtSecret(env string) string {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		return v
	}
	if env == "dev" || env == "test" {
		return devJWTSecret
	}
	return ""
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "volunteerhub")
	pass := getEnv("DB_PASSWORD", "volunteerhub")
	name := getEnv("DB_NAME", "volunteerhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// WithTimeout bounds store calls made on behalf of a request. The parent is
// usually the request context so a disconnected client cancels the query.
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, duration)
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
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
