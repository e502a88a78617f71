// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the catalog service configuration.
type Config struct {
	HTTPPort string
	GRPCPort string
	// DatabaseURL selects the Postgres stores; empty means in-memory stores.
	DatabaseURL string
	JWT         JWTConfig
	SeedCatalog bool
	// CatalogGRPCAddr points watchlist title lookups at a remote catalog.
	CatalogGRPCAddr string
	LogLevel        string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// ClientConfig holds the command-line client configuration.
type ClientConfig struct {
	APIURL    string
	Token     string
	RedisAddr string
	LogLevel  string
}

// Load reads the service configuration from the environment, after loading .env if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ttl, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	seed, err := strconv.ParseBool(getEnv("SEED_CATALOG", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_CATALOG: %w", err)
	}

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		GRPCPort:    getEnv("GRPC_PORT", "9090"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			TTL:    ttl,
		},
		SeedCatalog:     seed,
		CatalogGRPCAddr: getEnv("CATALOG_GRPC_ADDR", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	return cfg, nil
}

// LoadClient reads the client configuration from the environment, after loading .env if present.
func LoadClient() *ClientConfig {
	_ = godotenv.Load()
	return &ClientConfig{
		APIURL:    getEnv("CATALOG_API_URL", "http://localhost:8080"),
		Token:     getEnv("CATALOG_TOKEN", ""),
		RedisAddr: getEnv("REDIS_ADDR", ""),
		LogLevel:  getEnv("LOG_LEVEL", "warn"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
