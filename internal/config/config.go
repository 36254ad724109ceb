// Package config reads the service configuration from HEALTHHUB_*
// environment variables.
package config

import (
	"errors"
	"os"
	"strings"
	"time"
)

// Config holds everything the binaries need to start.
type Config struct {
	Addr           string
	DatabaseDSN    string
	JWTSecret      string
	JWTIssuer      string
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	AllowedOrigins []string
	SeedDir        string
}

// Load reads the configuration from the environment. JWT secret is the
// only hard requirement for the API server.
func Load() (Config, error) {
	cfg := Config{
		Addr:        getenv("HEALTHHUB_ADDR", ":8080"),
		DatabaseDSN: os.Getenv("HEALTHHUB_PG_DSN"),
		JWTSecret:   os.Getenv("HEALTHHUB_JWT_SECRET"),
		JWTIssuer:   getenv("HEALTHHUB_JWT_ISSUER", "health-hub"),
		AccessTTL:   getduration("HEALTHHUB_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:  getduration("HEALTHHUB_REFRESH_TTL", 7*24*time.Hour),
		SeedDir:     getenv("HEALTHHUB_SEED_DIR", "seed-data"),
	}
	if origins := os.Getenv("HEALTHHUB_CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("config: HEALTHHUB_JWT_SECRET is required")
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getduration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
