package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds everything read from the environment at startup.
type AppConfig struct {
	Port string

	// APIBase is the weather backend serving /api/weather-forecast/{city}.
	APIBase string

	// ConfigURL serves the remote configuration document; defaults to
	// APIBase + "/config".
	ConfigURL string

	HTTPTimeout time.Duration

	// FallbackDelay is the fixed wait before mock data resolves.
	FallbackDelay time.Duration

	// Storage backend options.
	StorePath       string
	SessionDir      string
	StoreQuotaBytes int

	// MaintenanceInterval controls the background janitor job.
	MaintenanceInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.APIBase = getenvDefault("WEATHER_API_BASE", "http://localhost:3000")
	cfg.ConfigURL = getenvDefault("CONFIG_URL", cfg.APIBase+"/config")

	timeout, err := getenvDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	delay, err := getenvDuration("FALLBACK_DELAY", "1s")
	if err != nil {
		return nil, fmt.Errorf("invalid FALLBACK_DELAY: %w", err)
	}
	cfg.FallbackDelay = delay

	cfg.StorePath = getenvDefault("STORE_PATH", "weather-lookup.db")
	cfg.SessionDir = os.Getenv("SESSION_STORE_DIR")
	cfg.StoreQuotaBytes = getenvInt("STORE_QUOTA_BYTES", 0)

	interval, err := getenvDuration("MAINTENANCE_INTERVAL", "15m")
	if err != nil {
		return nil, fmt.Errorf("invalid MAINTENANCE_INTERVAL: %w", err)
	}
	cfg.MaintenanceInterval = interval

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	return time.ParseDuration(getenvDefault(key, def))
}
