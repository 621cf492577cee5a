package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/DannySS123/weather-pulse-explorer/internal/api/http"
	"github.com/DannySS123/weather-pulse-explorer/internal/astro"
	"github.com/DannySS123/weather-pulse-explorer/internal/astro/sources"
	"github.com/DannySS123/weather-pulse-explorer/internal/config"
	"github.com/DannySS123/weather-pulse-explorer/internal/geo"
	"github.com/DannySS123/weather-pulse-explorer/internal/observability"
	"github.com/DannySS123/weather-pulse-explorer/internal/scheduler"
	"github.com/DannySS123/weather-pulse-explorer/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	metrics := observability.NewMetrics()

	// Persistence gateway: sqlite when a path is configured, otherwise
	// in-memory.
	var recordStore astro.Store
	if cfg.DatabasePath != "" {
		s, err := store.NewSQLiteStore(cfg.DatabasePath, nil)
		if err != nil {
			log.Fatalf("failed to open record store: %v", err)
		}
		recordStore = s
	} else {
		recordStore = store.NewMemoryStore(nil)
	}

	// Geocoding: live lookup first, static city table as fallback.
	geocoder := geo.NewChain(
		geo.NewGoogleGeocoder(cfg.GeocoderAPIKey),
		geo.NewStaticGeocoder(),
	)

	// Source adapters, one per provider.
	srcs := []astro.SourceAdapter{
		sources.NewSunriseSunsetOrg(httpClient),
		sources.NewSunriseSunsetIO(httpClient),
	}
	if cfg.EnableComputedSource {
		srcs = append(srcs, sources.NewComputed())
	}

	// Core service orchestrating geocoding, sources, and the store.
	service := astro.NewService(recordStore, geocoder, srcs, metrics, cfg.MaxRangeDates)

	// Scheduler that periodically acquires tracked locations.
	sched := scheduler.New(cfg.TrackedLocations, cfg.FetchInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-pulse-explorer",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-pulse-explorer",
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
