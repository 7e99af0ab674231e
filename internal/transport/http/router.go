package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vaxwatch/vaxwatch/internal/application/admin"
	"github.com/vaxwatch/vaxwatch/internal/application/stats"
	"github.com/vaxwatch/vaxwatch/internal/application/subscription"
	"github.com/vaxwatch/vaxwatch/internal/config"
	"github.com/vaxwatch/vaxwatch/internal/domain"
	"github.com/vaxwatch/vaxwatch/internal/transport/http/handler"
	appmiddleware "github.com/vaxwatch/vaxwatch/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		// RequireRole still rejects requests without claims, so admin routes
		// stay closed even without a verifier configured.
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to the subscription endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	statsSvc := stats.NewService(deps.RecordRepo, deps.SupplyRepo, cfg.LookbackDays, nil)
	subSvc := subscription.NewService(deps.SubscriberRepo, deps.Alert, deps.Logger)
	adminSvc := admin.NewService(admin.Deps{
		Notifier:     deps.Notifier,
		Records:      deps.RecordRepo,
		Supply:       deps.SupplyRepo,
		Reports:      deps.DeliveryRepo,
		Objects:      deps.S3Store,
		AdminChannel: cfg.AdminChannel,
		AdminAddress: cfg.AdminAddress,
	})

	healthH := handler.NewHealthHandler()
	statsH := handler.NewStatsHandler(statsSvc)
	subH := handler.NewSubscriptionHandler(subSvc)
	adminH := handler.NewAdminHandler(adminSvc, subSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/subscriptions", subH.Subscribe)
		r.With(sensitiveRL.Limit).Delete("/subscriptions/{address}", subH.Unsubscribe)
		r.Get("/stats/latest", statsH.Latest)
		r.Get("/stats/week", statsH.Week)
		r.Get("/stats/overall", statsH.Overall)
		r.Get("/stats/supply", statsH.Supply)

		// ── Admin routes ─────────────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

			r.Post("/admin/broadcasts", adminH.Broadcast)
			r.Post("/admin/test-update", adminH.TestUpdate)
			r.Put("/admin/supply", adminH.UpsertSupply)
			r.Post("/admin/exports", adminH.ExportHistory)
			r.Get("/admin/exports/{name}", adminH.DownloadExport)
			r.Get("/admin/subscribers", adminH.Subscribers)
			r.Get("/admin/reports", adminH.Reports)
		})
	})

	return r
}
