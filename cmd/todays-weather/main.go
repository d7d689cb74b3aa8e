package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	httpapi "github.com/i474232898/todays-weather/internal/api/http"
	"github.com/i474232898/todays-weather/internal/config"
	"github.com/i474232898/todays-weather/internal/datapoint"
	"github.com/i474232898/todays-weather/internal/geo"
	"github.com/i474232898/todays-weather/internal/geocode"
	"github.com/i474232898/todays-weather/internal/logging"
	"github.com/i474232898/todays-weather/internal/observability"
	"github.com/i474232898/todays-weather/internal/scheduler"
	"github.com/i474232898/todays-weather/internal/weather"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Outbound DataPoint client with a bounded timeout; no retries.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	client := datapoint.NewClient(httpClient, cfg.APIKey, metrics, log)

	distance, err := geo.ParseMetric(cfg.StationDistance)
	if err != nil {
		log.Error("invalid station distance metric", "error", err)
		os.Exit(1)
	}

	service := weather.NewService(client, cfg.Endpoints(),
		weather.WithDistance(distance),
		weather.WithMetrics(metrics),
		weather.WithLogger(log),
	)

	// Optional place lookup for the station locator.
	var geocoder httpapi.Geocoder
	if g := geocode.NewGoogle(cfg.GeocoderAPIKey); g != nil {
		geocoder = g
	}

	// Optional upstream probe.
	sched := scheduler.New(service, cfg.ProbeInterval, 3*cfg.HTTPTimeout, metrics, log)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "todays-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout + 5*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "todays-weather",
		})
	})
	app.Get("/metrics", observability.Handler())

	httpapi.RegisterRoutes(app, service, geocoder, log)

	go func() {
		log.Info("listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}
