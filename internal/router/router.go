package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hospitalops/estadia-api/internal/config"
	"github.com/hospitalops/estadia-api/internal/middleware"
)

// Handler is anything that can hang its routes off the /api group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	handlers []Handler
	cache    *middleware.ResponseCache
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

// New assembles the engine with the shared middleware chain. The response
// cache only wraps the aggregate endpoints, which are the ones every
// dashboard client polls.
func New(cfg *config.Config, cache *middleware.ResponseCache, handlers ...Handler) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:   engine,
		handlers: handlers,
		cache:    cache,
		metrics:  initRouterMetrics("estadia_http"),
	}

	engine.Use(
		middleware.Recovery(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(cfg.Server.Timeout()),
		middleware.RequestID(),
	)
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	rateLimiter := middleware.NewRateLimiter(cfg.API.RateLimitRPS, cfg.API.RateLimitBurst)
	engine.Use(rateLimiter.Middleware())

	return r
}

// Setup registers every handler under /api. The response cache middleware
// runs group-wide but only acts on the paths it was configured with.
func (r *Router) Setup() {
	api := r.engine.Group("/api")

	if r.cache != nil {
		api.Use(r.cache.Middleware())
	}

	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
	// Duplicate registration only happens when tests build several routers;
	// the collectors still work locally, so the error is ignored.
	_ = prometheus.Register(m.requestDuration)
	_ = prometheus.Register(m.requestTotal)
	_ = prometheus.Register(m.errorTotal)
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
