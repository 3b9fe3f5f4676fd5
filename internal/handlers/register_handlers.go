package handlers

import (
	"github.com/asientoflow/asientoflow/internal/core/services"
	"github.com/asientoflow/asientoflow/internal/middleware"
	"github.com/asientoflow/asientoflow/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service container.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	container *services.Container,
	limiterInstance *limiter.Limiter,
) {
	RegisterCustomValidators()

	r.GET("/", getHome)
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupAPIV1Routes(r, cfg, container, limiterInstance)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific
// route registrations.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	container *services.Container,
	limiterInstance *limiter.Limiter,
) {
	v1 := r.Group("/api/v1",
		middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer),
		middleware.RateLimit(limiterInstance),
	)

	registerSessionRoutes(v1, container.Editor, container.Suggestion)
	registerEntryRoutes(v1, container.Lifecycle, container.Suggestion)
	registerExportRoutes(v1, container.Export)
}
