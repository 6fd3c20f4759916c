/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/tenants/*      Tenant management, payments, reminders
  /api/ledger/*       Dashboard aggregates
  /api/settings/*     Billing window and SMS templates
  /api/recompute      Manual reminder pass
  /api/scenarios/*    Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Tenant routes
		r.Route("/tenants", func(r chi.Router) {
			r.Get("/", h.ListTenants)
			r.Post("/", h.CreateTenant)
			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", h.GetTenant)
				r.Put("/", h.UpdateTenant)
				r.Delete("/", h.DeleteTenant)
				r.Get("/status", h.GetStatus)
				r.Get("/stats", h.GetStats)
				r.Get("/payments", h.ListPayments)
				r.Post("/payments", h.RecordPayment)
				r.Get("/reminders", h.ListReminders)
				r.Post("/reminders", h.SendManual)
			})
		})

		// Dashboard routes
		r.Get("/ledger/summary", h.LedgerSummary)
		r.Get("/reminders", h.ReminderLog)

		// Settings routes
		r.Route("/settings", func(r chi.Router) {
			r.Get("/window", h.GetWindow)
			r.Put("/window", h.PutWindow)
			r.Get("/templates", h.GetTemplates)
			r.Put("/templates", h.PutTemplates)
		})

		// Engine routes
		r.Post("/recompute", h.Recompute)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
