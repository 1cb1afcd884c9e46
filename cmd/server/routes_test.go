package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stwalsh4118/taxsale/api/internal/config"
	"github.com/stwalsh4118/taxsale/api/internal/handlers"
	"github.com/stwalsh4118/taxsale/api/internal/logger"
	"github.com/stwalsh4118/taxsale/api/internal/middleware"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	up := handlers.PingFunc(func(context.Context) error { return nil })
	cfg := &config.Config{
		Server: config.ServerConfig{Env: "test"},
		Import: config.ImportConfig{RatePerMinute: 1, RateBurst: 1},
		CORS:   config.CORSConfig{Origins: []string{"http://localhost:3000"}},
	}
	return newRouter(cfg, logger.New("test"), routes{
		health:        handlers.NewHealthHandler(up, up, "test"),
		imports:       handlers.NewImportHandler(nil, 1<<20),
		importLimiter: middleware.NewIPRateLimiter(cfg.Import.RatePerMinute, cfg.Import.RateBurst),
		linkage:       handlers.NewLinkageHandler(nil),
		properties:    handlers.NewPropertyHandler(nil),
	})
}

func TestNewRouter_Health(t *testing.T) {
	router := testRouter()

	for _, path := range []string{"/health", "/health/ready", "/api/v1/info"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader), path)
	}
}

func TestNewRouter_UnknownRoute(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/parcels", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewRouter_ImportsAreRateLimited(t *testing.T) {
	router := testRouter()

	// An invalid body is rejected before the service is reached, but still
	// spends a token.
	submit := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusBadRequest, submit())
	assert.Equal(t, http.StatusTooManyRequests, submit())
}
