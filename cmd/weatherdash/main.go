package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "weatherdash/internal/api/http"
	"weatherdash/internal/cache"
	"weatherdash/internal/config"
	"weatherdash/internal/dashboard"
	"weatherdash/internal/logger"
	"weatherdash/internal/store"
	"weatherdash/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "development").Errorf("failed to load config: %v", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.Environment)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// One response cache per process, handed by reference to the client.
	responses := cache.New(cache.DefaultTTL)
	client := weather.NewClient(httpClient, responses, log.WithField("component", "weather_client"),
		weather.WithBaseURLs(cfg.ForecastBaseURL, cfg.GeocodingBaseURL))

	favorites := store.NewFavoritesStore(cfg.DataDir, log.WithField("component", "favorites"))
	settings := store.NewSettingsStore(cfg.DataDir, log.WithField("component", "settings"))
	state := dashboard.NewState()

	orch := dashboard.NewOrchestrator(client, favorites, state, log.WithField("component", "orchestrator"))
	orch.Start()
	defer orch.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weatherdash",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
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

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weatherdash",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.API{
		Orchestrator: orch,
		Favorites:    favorites,
		State:        state,
		Settings:     settings,
		Places:       client,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorf("fiber server stopped: %v", err)
		}
	}()
	log.Infof("weatherdash listening on :%s", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
}
