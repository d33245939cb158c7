package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-lookup/internal/api/http"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/prefs"
	"github.com/i474232898/weather-lookup/internal/scheduler"
	"github.com/i474232898/weather-lookup/internal/searches"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/source"
)

// apiTokenKey holds the upstream bearer token in the storage backend.
const apiTokenKey = "api_token"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Storage backend, selected once with fallback: persistent -> session -> memory.
	backend := store.Select(store.Options{
		SQLitePath: cfg.StorePath,
		SessionDir: cfg.SessionDir,
		QuotaBytes: cfg.StoreQuotaBytes,
	})

	units := prefs.NewUnits(backend)

	// Recent-search limit from remote config, cached in the backend.
	limit := config.ResolveSearchLimit(httpClient, cfg.ConfigURL, backend)
	recent := searches.New(backend, limit)

	// Upstream client; the bearer token is read from storage on each call.
	fetcher := source.NewClient(httpClient, cfg.APIBase, func() string {
		token, err := backend.Get(apiTokenKey)
		if err != nil {
			return source.DefaultToken
		}
		return token
	}, cfg.FallbackDelay)

	svc := weather.NewService(fetcher, recent)

	// Periodic maintenance: refresh the cached search limit, compact storage.
	sched := scheduler.New(cfg.MaintenanceInterval, func() {
		config.RefreshSearchLimit(httpClient, cfg.ConfigURL, backend)
		if compacter, ok := backend.(interface{ Compact() error }); ok {
			if err := compacter.Compact(); err != nil {
				log.Printf("WARN: storage compaction failed: %v", err)
			}
		}
	})
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-lookup",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
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
			"service": "weather-lookup",
			"storage": backend.Name(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, svc, recent, units)

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

	// The in-memory backend cannot survive a stop; flag unsaved history.
	if backend.Name() == "memory" && len(recent.List()) > 0 {
		log.Printf("WARN: shutting down with in-memory storage; recent searches are lost")
	}
	if closer, ok := backend.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Printf("error closing storage: %v", err)
		}
	}
}
