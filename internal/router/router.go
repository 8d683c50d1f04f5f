package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-ledger/internal/middleware"
	"github.com/jwalitptl/clinic-ledger/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type RouterConfig struct {
	RateLimit      rate.Limit
	RateBurst      int
	AllowedOrigins []string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// Handlers groups the route sets by access level. Protected handlers sit
// behind bearer authentication.
type Handlers struct {
	Health    Handler
	Auth      Handler
	Protected []Handler
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, m *metrics.Metrics, config RouterConfig) *Router {
	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
	)
	if m != nil {
		engine.Use(middleware.Metrics(m))
	}

	if len(config.AllowedOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     config.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderXRequestID},
			ExposeHeaders:    []string{"Content-Disposition", middleware.HeaderXRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	if config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}
	if config.MaxBodyBytes > 0 {
		engine.Use(middleware.SizeLimit(config.MaxBodyBytes))
	}
	engine.Use(middleware.Timeout(config.RequestTimeout))

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(api)
	}
	if r.handlers.Auth != nil {
		r.handlers.Auth.RegisterRoutes(api)
	}

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	for _, h := range r.handlers.Protected {
		h.RegisterRoutes(protected)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
