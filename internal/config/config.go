package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	// HTTPTimeout bounds each outbound provider request.
	HTTPTimeout time.Duration

	// DatabasePath is the sqlite file; empty keeps records in memory.
	DatabasePath string

	// GeocoderAPIKey enables the live Google geocoding step; without it
	// only the static city table resolves places.
	GeocoderAPIKey string

	// TrackedLocations are acquired daily by the scheduler.
	TrackedLocations []string

	// FetchInterval controls how often tracked locations are refreshed.
	FetchInterval time.Duration

	// MaxRangeDates caps dates per range acquisition (0 = default).
	MaxRangeDates int

	// EnableComputedSource adds the offline computed source alongside
	// the two provider APIs.
	EnableComputedSource bool
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.DatabasePath = os.Getenv("DATABASE_PATH")
	cfg.GeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	intervalStr := getenvDefault("FETCH_INTERVAL", "24h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	cfg.FetchInterval = interval

	cfg.MaxRangeDates = getenvInt("MAX_RANGE_DATES", 30)
	cfg.EnableComputedSource = getenvBool("ENABLE_COMPUTED_SOURCE", false)

	if locs := os.Getenv("TRACKED_LOCATIONS"); locs != "" {
		for _, loc := range strings.Split(locs, ",") {
			loc = strings.TrimSpace(loc)
			if loc != "" {
				cfg.TrackedLocations = append(cfg.TrackedLocations, loc)
			}
		}
	}

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

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
