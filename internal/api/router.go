package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// NewRouter builds and returns the Chi router with all routes configured.
// The storefront endpoints are public; everything under /admin requires
// Basic Auth. Rate limiting is applied globally: 120 requests per
// minute per IP (the storefront fires several requests per page view).
func NewRouter(handlers *Handlers, adminUser, adminPass string, db dbPinger, redisClient redisPinger, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(120, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(db, redisClient, log))

	r.Get("/api/v1/tours", handlers.SearchTours)
	r.Get("/api/v1/tour-types", handlers.ListTourTypes)
	r.Get("/api/v1/content", handlers.GetContent)
	r.Get("/api/v1/bootstrap", handlers.Bootstrap)
	r.Get("/api/v1/availability", handlers.GetAvailability)
	r.Post("/api/v1/leads", handlers.SubmitLead)

	r.Group(func(r chi.Router) {
		r.Use(AdminAuth(adminUser, adminPass))
		r.Get("/api/v1/admin/tours", handlers.AdminListTours)
		r.Post("/api/v1/admin/tours", handlers.AdminCreateTour)
		r.Put("/api/v1/admin/tours", handlers.AdminUpdateTour)
		r.Delete("/api/v1/admin/tours", handlers.AdminDeleteTour)
		r.Get("/api/v1/admin/tour-types", handlers.AdminListTourTypes)
		r.Post("/api/v1/admin/tour-types", handlers.AdminCreateTourType)
		r.Put("/api/v1/admin/tour-types", handlers.AdminUpdateTourType)
		r.Delete("/api/v1/admin/tour-types", handlers.AdminDeleteTourType)
		r.Put("/api/v1/admin/content", handlers.UpdateContent)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
