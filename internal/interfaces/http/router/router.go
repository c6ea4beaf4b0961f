// Package router assembles the gin engine: middleware chain, operational
// endpoints and the versioned API group.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/infrastructure/auth"
	"github.com/pharmapos/backend/internal/infrastructure/logger"
	"github.com/pharmapos/backend/internal/interfaces/http/dto"
	"github.com/pharmapos/backend/internal/interfaces/http/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouteRegistrar is implemented by handlers that mount their own routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Config is what the engine needs from the outside
type Config struct {
	ServiceName    string
	APIVersion     string
	MaxBodySize    int64
	TrustedProxies []string
	Verifier       *auth.TokenVerifier
	DefaultTenant  uuid.UUID
	Logger         *zap.Logger
	Registry       *prometheus.Registry
	Health         gin.HandlerFunc
}

// Router builds the engine from its registrars
type Router struct {
	cfg        Config
	registrars []RouteRegistrar
}

// NewRouter creates a router. APIVersion defaults to v1.
func NewRouter(cfg Config) *Router {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v1"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Router{cfg: cfg}
}

// Register adds registrars mounted under /api/<version>
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup builds the engine. /health and /metrics sit outside the API group
// and skip identity resolution.
func (r *Router) Setup() (*gin.Engine, error) {
	engine := gin.New()
	if err := engine.SetTrustedProxies(r.cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		logger.Recovery(r.cfg.Logger),
		middleware.RequestID(),
		middleware.Tracing(r.cfg.ServiceName),
		logger.GinMiddleware(r.cfg.Logger),
	)
	if r.cfg.Registry != nil {
		metrics, err := middleware.NewHTTPMetrics(r.cfg.Registry)
		if err != nil {
			return nil, err
		}
		engine.Use(metrics.Middleware())
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.cfg.Registry, promhttp.HandlerOpts{})))
	}
	if r.cfg.Health != nil {
		engine.GET("/health", r.cfg.Health)
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("NOT_FOUND", "route not found", "", c.GetString(logger.RequestIDKey)))
	})

	api := engine.Group("/api/"+r.cfg.APIVersion,
		middleware.BodyLimit(r.cfg.MaxBodySize),
		middleware.Identity(r.cfg.Verifier, r.cfg.DefaultTenant),
	)
	for _, reg := range r.registrars {
		reg.RegisterRoutes(api)
	}
	return engine, nil
}
