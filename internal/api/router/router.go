package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/pulsesocial/pulse/internal/api/docs"
	"github.com/pulsesocial/pulse/internal/api/handlers"
	"github.com/pulsesocial/pulse/internal/api/middleware"
	"github.com/pulsesocial/pulse/internal/config"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
	"github.com/pulsesocial/pulse/internal/pkg/metrics"
)

// Handlers groups the HTTP handlers the router mounts
type Handlers struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Post        *handlers.PostHandler
	Billing     *handlers.BillingHandler
	Webhook     *handlers.WebhookHandler
	Maintenance *handlers.MaintenanceHandler
	Profile     *handlers.ProfileHandler
	Analytics   *handlers.AnalyticsHandler
}

// New builds the HTTP handler with global middleware and every route
func New(cfg *config.Config, log *logger.Logger, limiter *middleware.RateLimiter, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(metrics.Middleware)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))

	// Probes and tooling
	r.Get("/health", h.Health.Healthz)
	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Payment provider webhooks authenticate by signature
	r.Post("/api/webhooks/stripe", h.Webhook.Stripe)

	// Maintenance triggers authenticate with the cron secret
	r.Route("/api/cron", func(r chi.Router) {
		r.Use(middleware.SharedSecret(cfg.Cron.Secret))
		r.Get("/monthly-reset", h.Maintenance.MonthlyReset)
		r.Get("/trial-expiry", h.Maintenance.TrialExpiry)
		r.Get("/jobs", h.Maintenance.Jobs)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(limiter))

			r.Post("/auth/register", h.Auth.Register)
			r.Post("/auth/login", h.Auth.Login)
			r.Post("/auth/refresh", h.Auth.RefreshToken)
			r.Post("/auth/logout", h.Auth.Logout)
			r.Get("/billing/plans", h.Billing.ListPlans)
		})

		// Protected routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))
			r.Use(middleware.RateLimit(limiter))

			r.Get("/auth/session", h.Auth.Session)

			r.Get("/usage", h.Post.Usage)
			r.Route("/posts", func(r chi.Router) {
				r.Get("/", h.Post.History)
				r.Post("/", h.Post.Create)
			})

			r.Post("/billing/checkout", h.Billing.Checkout)
			r.Post("/billing/portal", h.Billing.Portal)
			r.Get("/billing/subscription", h.Billing.Subscription)

			r.Route("/profiles", func(r chi.Router) {
				r.Post("/", h.Profile.Create)
				r.Get("/accounts", h.Profile.Accounts)
				r.Post("/invites", h.Profile.Invites)
				r.Get("/status", h.Profile.Status)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/", h.Analytics.Get)
				r.Get("/overview", h.Analytics.Overview)
			})
		})
	})

	return r
}
