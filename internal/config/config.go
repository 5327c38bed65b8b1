// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/biskaken/garage-api/internal/token"
)

// insecureDevSecret signs tokens when no JWT_SECRET is configured outside
// production. It must never be accepted in prod.
const insecureDevSecret = "dev-insecure-signing-secret"

// Config holds all runtime configuration. Strings for identifiers and
// secrets, durations and ints for knobs, mirroring how the values are used.
type Config struct {
	Env        string        // application environment: dev, test or prod
	Port       string        // HTTP port to listen on
	DBUser     string        // database username
	DBPass     string        // database password (optional)
	DBHost     string        // database host
	DBPort     string        // database port
	DBName     string        // database name
	JWTSecret  string        // secret used to sign bearer tokens
	TokenTTL   time.Duration // bearer token lifetime (default 7 days)
	BcryptCost int           // bcrypt cost for password hashing
}

// Load reads configuration from the environment. Missing required values
// abort startup with a fatal log; the JWT secret additionally enforces the
// production policy: it must be set in prod and may only fall back to an
// insecure development default elsewhere, with a warning on every start.
func Load() Config {
	cfg := Config{
		Env:        must("APP_ENV"),
		Port:       envStr("APP_PORT", "8080"),
		DBUser:     must("DB_USER"),
		DBPass:     os.Getenv("DB_PASS"),
		DBHost:     must("DB_HOST"),
		DBPort:     must("DB_PORT"),
		DBName:     must("DB_NAME"),
		TokenTTL:   time.Duration(envInt("TOKEN_TTL_HOURS", 168)) * time.Hour,
		BcryptCost: envInt("BCRYPT_COST", 10),
	}
	cfg.JWTSecret = loadJWTSecret(cfg.Env)
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = token.DefaultTTL
	}
	return cfg
}

// IsProd reports whether the process runs with production hardening.
func (c Config) IsProd() bool { return c.Env == "prod" || c.Env == "production" }

func loadJWTSecret(env string) string {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		return v
	}
	if env == "prod" || env == "production" {
		log.Fatal("JWT_SECRET must be set when APP_ENV=prod")
	}
	log.Printf("WARNING: JWT_SECRET not set, using insecure development default (env=%s)", env)
	return insecureDevSecret
}

// must retrieves a required environment variable or aborts startup.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
