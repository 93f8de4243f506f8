package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/centsible/centsible-go/internal/middleware"
	"github.com/centsible/centsible-go/internal/model"
)

// Limit is one fixed-window rate limit.
type Limit struct {
	Requests int
	Window   time.Duration
}

// RateLimits carries the three limiter budgets. Auth is counted per
// IP; API and Analytics per authenticated user. Analytics requests
// also count against the general API budget.
type RateLimits struct {
	Auth      Limit
	API       Limit
	Analytics Limit
}

// RouterConfig wires the handlers and cross-cutting middleware into
// the HTTP surface.
type RouterConfig struct {
	Auth         *AuthHandler
	Transactions *TransactionHandler
	Analytics    *AnalyticsHandler
	Health       *HealthHandler
	Verifier     middleware.TokenVerifier
	Logger       *slog.Logger
	CORSOrigins  []string
	Limits       RateLimits
}

// NewRouter assembles the chi router: /health and /metrics in the
// open, auth endpoints behind a per-IP limit, and the API behind
// token verification, role checks, and per-user limits.
func NewRouter(cfg RouterConfig) http.Handler {
	limits := cfg.Limits.withDefaults()

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/health", cfg.Health.HandleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", cfg.Health.HandleHealth)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(limits.Auth.Requests, limits.Auth.Window, "auth", httprate.KeyByIP))
			r.Post("/auth/register", cfg.Auth.HandleRegister)
			r.Post("/auth/login", cfg.Auth.HandleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.Verifier))
			r.Use(middleware.RateLimit(limits.API.Requests, limits.API.Window, "api", middleware.KeyByUser))

			r.Get("/auth/me", cfg.Auth.HandleMe)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(model.ActionRead))
				r.Get("/transactions", cfg.Transactions.HandleList)
				r.Get("/transactions/{id}", cfg.Transactions.HandleGet)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(model.ActionWrite))
				r.Post("/transactions", cfg.Transactions.HandleCreate)
				r.Put("/transactions/{id}", cfg.Transactions.HandleUpdate)
				r.Delete("/transactions/{id}", cfg.Transactions.HandleDelete)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(model.ActionRead))
				r.Use(middleware.RateLimit(limits.Analytics.Requests, limits.Analytics.Window, "analytics", middleware.KeyByUser))
				r.Get("/analytics/overview", cfg.Analytics.HandleOverview)
				r.Get("/analytics/detailed", cfg.Analytics.HandleDetailed)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(model.ActionAdmin))
				r.Get("/users", cfg.Auth.HandleListUsers)
			})
		})
	})

	return r
}

func (l RateLimits) withDefaults() RateLimits {
	if l.Auth.Requests == 0 {
		l.Auth = Limit{Requests: 5, Window: 15 * time.Minute}
	}
	if l.API.Requests == 0 {
		l.API = Limit{Requests: 100, Window: time.Hour}
	}
	if l.Analytics.Requests == 0 {
		l.Analytics = Limit{Requests: 50, Window: time.Hour}
	}
	return l
}
