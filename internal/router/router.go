package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/voicedrop/voicedrop-api/internal/config"
	"github.com/voicedrop/voicedrop-api/internal/handler"
	authhandler "github.com/voicedrop/voicedrop-api/internal/handler/auth"
	billinghandler "github.com/voicedrop/voicedrop-api/internal/handler/billing"
	campaignhandler "github.com/voicedrop/voicedrop-api/internal/handler/campaign"
	customerhandler "github.com/voicedrop/voicedrop-api/internal/handler/customer"
	dashboardhandler "github.com/voicedrop/voicedrop-api/internal/handler/dashboard"
	orghandler "github.com/voicedrop/voicedrop-api/internal/handler/organization"
	webhookhandler "github.com/voicedrop/voicedrop-api/internal/handler/webhook"
	"github.com/voicedrop/voicedrop-api/internal/middleware"
)

type Handlers struct {
	Auth         *authhandler.Handler
	Customer     *customerhandler.Handler
	Campaign     *campaignhandler.Handler
	Billing      *billinghandler.Handler
	Webhook      *webhookhandler.Handler
	Dashboard    *dashboardhandler.Handler
	Organization *orghandler.Handler
}

type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	authMW   *middleware.AuthMiddleware
	window   *middleware.CallWindow
	limiter  *middleware.WindowLimiter
	handlers Handlers
	db       *sqlx.DB
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func New(cfg *config.Config, logger *zerolog.Logger, authMW *middleware.AuthMiddleware,
	window *middleware.CallWindow, limiter *middleware.WindowLimiter,
	handlers Handlers, db *sqlx.DB) *Router {

	if !cfg.Server.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	r := &Router{
		engine:   engine,
		cfg:      cfg,
		authMW:   authMW,
		window:   window,
		limiter:  limiter,
		handlers: handlers,
		db:       db,
		metrics:  newRouterMetrics(),
	}

	throttle := middleware.NewThrottle(rate.Limit(200), 400)

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.ErrorHandler(cfg.Server.ExposeErrors, logger),
		r.metricsMiddleware(),
		middleware.Timeout(cfg.Server.WriteTimeout),
		middleware.CORS(middleware.DefaultCORSConfig(cfg.Security.AllowedOrigins)),
		throttle.Handler(),
	)

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/health", handler.HealthCheck(r.db))
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	rl := r.cfg.RateLimit

	public := api.Group("", r.limiter.Limit("auth", rl.Auth))
	r.handlers.Auth.RegisterRoutes(public)

	webhooks := api.Group("", r.limiter.Limit("webhook", rl.Webhook))
	r.handlers.Webhook.RegisterRoutes(webhooks)

	protected := api.Group("",
		r.limiter.Limit("default", rl.Default),
		r.authMW.Authenticate(),
	)
	r.handlers.Auth.RegisterProtectedRoutes(protected)
	r.handlers.Customer.RegisterRoutes(protected)
	r.handlers.Campaign.RegisterRoutes(protected,
		r.window.Enforce(),
		r.limiter.Limit("send", rl.Send),
	)
	r.handlers.Billing.RegisterRoutes(protected)
	r.handlers.Dashboard.RegisterRoutes(protected)
	r.handlers.Organization.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func newRouterMetrics() *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "voicedrop_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voicedrop_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
