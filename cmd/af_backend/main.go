package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/asientoflow/asientoflow/internal/adapters/remote/ledgerapi"
	"github.com/asientoflow/asientoflow/internal/adapters/storage/boltstore"
	"github.com/asientoflow/asientoflow/internal/core/services"
	"github.com/asientoflow/asientoflow/internal/handlers"
	"github.com/asientoflow/asientoflow/internal/middleware"
	"github.com/asientoflow/asientoflow/internal/platform/config"
	"github.com/asientoflow/asientoflow/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Local durable draft store
	draftStore, err := boltstore.New(cfg.DraftDBPath)
	if err != nil {
		logger.Error("Failed to open draft store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if cerr := draftStore.Close(); cerr != nil {
			logger.Error("Error closing draft store", slog.String("error", cerr.Error()))
		}
	}()
	logger.Info("Draft store opened.", slog.String("path", cfg.DraftDBPath))

	// Remote ledger authority client
	ledgerClient := ledgerapi.NewClient(ledgerapi.ClientConfig{
		BaseURL: cfg.LedgerAPIURL,
		Timeout: cfg.LedgerAPITimeout,
	})

	analyticsClient := utils.NewAnalyticsClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer analyticsClient.Close()

	container := services.NewContainer(ledgerClient, draftStore, analyticsClient, services.ContainerConfig{
		ValidationDebounce:    cfg.ValidationDebounce,
		DraftAutosaveInterval: cfg.DraftAutosaveInterval,
		DraftMaxAge:           cfg.DraftMaxAge,
		SessionIdleTTL:        cfg.SessionIdleTTL,
	})
	defer container.Close()

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit format", slog.String("rate_limit", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	limiterInstance := limiter.New(memory.NewStore(), rate)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, metrics)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg)))
	r.Use(middleware.Metrics())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container, limiterInstance)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	for _, origin := range cfg.CORSAllowedOrigins {
		if strings.TrimSpace(origin) == "*" {
			corsCfg.AllowAllOrigins = true
			corsCfg.AllowOrigins = nil
			break
		}
	}
	return corsCfg
}
