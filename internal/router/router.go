package router

import (
	"net/http"
	"time"

	"stockroom/internal/handler"
	"stockroom/internal/middleware"
	"stockroom/internal/model"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// requestTimeout bounds the time a handler may spend on one request.
const requestTimeout = 15 * time.Second

// New creates a new HTTP router with all routes and middleware configured.
// keys maps each accepted API key to the role it grants.
func New(
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	keys map[string]model.Role,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(chimw.Timeout(requestTimeout))

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(keys, logger))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleStaff, logger))

			r.Get("/products", productHandler.List)
			r.Get("/products/{id}", productHandler.GetByID)

			r.Get("/orders", orderHandler.List)
			r.Post("/orders", orderHandler.Create)
			r.Get("/orders/summary", orderHandler.Summary)
			r.Get("/orders/{id}", orderHandler.GetByID)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleAdmin, logger))

			r.Patch("/orders/{id}", orderHandler.UpdateStatus)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"NOT_FOUND","message":"resource not found"}`))
	})

	return r
}
