// Package config centralises all environment / flag configuration for the API.
// It should be imported only by `cmd/server` (and test code). Business‑logic
// layers receive an already‑built Config instance via dependency‑injection.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime option the server needs.
// Keep it flat and simple—prefer primitive types over embedding structs.
type Config struct {
	// Network
	Port string

	// Data stores
	MongoURI string
	DBName   string

	// External services
	GitHubToken    string
	AIServiceURL   string
	AIServiceToken string

	// AI provider: "vertex" for real Vertex AI calls, "dummy" for local dev.
	AIProvider string

	// GCP project used by the Vertex provider.
	ProjectID string
	Location  string

	// Server tuning
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Fix pipeline tuning
	FixPollInterval time.Duration
	FixPollTimeout  time.Duration

	// Credit estimate cache
	CreditCacheTTL time.Duration
}

// Load parses the environment (and an optional .env file) into Config.
// It panics on missing critical variables so mis‑configurations fail fast.
func Load() Config {
	// godotenv.Load() is a no‑op if .env doesn't exist—safe in production.
	_ = godotenv.Load()

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		MongoURI:        must("MONGODB_URI"),
		DBName:          getEnv("MONGODB_DB", "gittldr"),
		GitHubToken:     must("GITHUB_TOKEN"),
		AIServiceURL:    must("AI_SERVICE_URL"),
		AIServiceToken:  os.Getenv("AI_SERVICE_TOKEN"),
		AIProvider:      getEnv("AI_PROVIDER", "vertex"),
		ReadTimeout:     getDuration("READ_TIMEOUT_SEC", 5),
		WriteTimeout:    getDuration("WRITE_TIMEOUT_SEC", 10),
		FixPollInterval: getDuration("FIX_POLL_INTERVAL_SEC", 2),
		FixPollTimeout:  getDuration("FIX_POLL_TIMEOUT_SEC", 600),
		CreditCacheTTL:  getDuration("CREDIT_CACHE_TTL_SEC", 300),
	}

	if cfg.AIProvider == "vertex" {
		cfg.ProjectID = must("GCP_PROJECT_ID")
		cfg.Location = getEnv("GCP_LOCATION", "us-central1")
	}

	return cfg
}

// must fetches a required env var or terminates the program.
func must(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("env var %s is required", key)
	}
	return val
}

// getEnv returns env[key] if set, otherwise defaultVal.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getDuration reads an integer (seconds) from env, falling back to defaultSec.
func getDuration(key string, defaultSec int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if sec, err := strconv.Atoi(v); err == nil {
			return time.Duration(sec) * time.Second
		}
		log.Printf("invalid %s=%q; using default %ds", key, v, defaultSec)
	}
	return time.Duration(defaultSec) * time.Second
}
