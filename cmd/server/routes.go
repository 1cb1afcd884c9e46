package main

import (
	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/taxsale/api/internal/config"
	apierrors "github.com/stwalsh4118/taxsale/api/internal/errors"
	"github.com/stwalsh4118/taxsale/api/internal/handlers"
	"github.com/stwalsh4118/taxsale/api/internal/logger"
	"github.com/stwalsh4118/taxsale/api/internal/middleware"
)

type routes struct {
	health        *handlers.HealthHandler
	imports       *handlers.ImportHandler
	importLimiter *middleware.IPRateLimiter
	linkage       *handlers.LinkageHandler
	properties    *handlers.PropertyHandler
}

// newRouter wires middleware in order RequestID, Logger, Recovery, CORS and
// registers every route. Only import submission is rate limited.
func newRouter(cfg *config.Config, log *logger.Logger, r routes) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.CORS(cfg.CORS.Origins),
	)

	router.GET("/health", r.health.Health)
	router.GET("/health/ready", r.health.Ready)

	throttled := middleware.RateLimit(r.importLimiter, func(c *gin.Context) {
		apierrors.TooManyRequests(c, "Too many import submissions, try again later")
	})

	v1 := router.Group("/api/v1")
	v1.GET("/info", r.health.Info)
	v1.POST("/imports", throttled, r.imports.Submit)
	v1.GET("/imports/:job_id", r.imports.Status)
	v1.POST("/linkage/resolve", r.linkage.Resolve)
	v1.GET("/properties/:parcel_id", r.properties.Get)

	return router
}
