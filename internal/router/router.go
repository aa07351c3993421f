package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pilger-eventos/rsvp-api/internal/handler"
	"github.com/pilger-eventos/rsvp-api/internal/middleware"
)

// Handlers bundles everything the router wires up.
type Handlers struct {
	Guest    *handler.GuestHandler
	Rule     *handler.RuleHandler
	Settings *handler.SettingsHandler
	Trigger  *handler.TriggerHandler
	Auth     *handler.AuthHandler
	Health   *handler.HealthHandler
}

type Options struct {
	AuthMiddleware *middleware.AuthMiddleware
	RateLimit      middleware.RateLimiterConfig
	Registry       *prometheus.Registry
}

func Setup(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	r.GET("/health/live", h.Health.Live)
	r.GET("/health/ready", h.Health.Ready)
	if opts.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/api/v1")

	// Public surface: the RSVP form and the scheduler-facing triggers.
	public := v1.Group("/")
	if opts.RateLimit.RPS > 0 {
		public.Use(middleware.NewRateLimiter(opts.RateLimit).RateLimit())
	}
	{
		public.POST("/rsvp", h.Guest.Register)
		public.POST("/auth/login", h.Auth.Login)
		public.POST("/triggers/signup", h.Trigger.Signup)
		public.POST("/triggers/schedule-rule", h.Trigger.ScheduleRule)
		public.POST("/cron/process-queue", h.Trigger.ProcessQueue)
	}

	admin := v1.Group("/admin")
	admin.Use(opts.AuthMiddleware.Authenticate())
	{
		admin.GET("/guests", h.Guest.List)
		admin.GET("/guests/:id", h.Guest.Get)
		admin.DELETE("/guests/:id", h.Guest.Delete)
		admin.POST("/guests/:id/checkin", h.Guest.CheckIn)
		admin.POST("/guests/:id/resend-welcome", h.Guest.ResendWelcome)
		admin.GET("/guests/:id/messages", h.Guest.ScheduledMessages)

		admin.POST("/rules", h.Rule.Create)
		admin.GET("/rules", h.Rule.List)
		admin.GET("/rules/:id", h.Rule.Get)
		admin.PUT("/rules/:id", h.Rule.Update)
		admin.DELETE("/rules/:id", h.Rule.Delete)

		admin.GET("/settings", h.Settings.List)
		admin.PUT("/settings", h.Settings.Update)
	}

	return r
}
