/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:      Unique ID per request for tracing
  2. RequestLogger:  httplog structured request logs (ECS field names)
  3. Recoverer:      Panic recovery (500 instead of crash)
  4. CORS:           Cross-origin requests for the frontend
  5. Heartbeat:      GET /health for load balancers

ROUTE GROUPS:
  /api/employees/*   Employee data, punches and periods per employee
  /api/punches/*     Punch registration and correction
  /api/periods/*     Closing periods and summaries
  /api/config/*      Labor configuration
  /api/scenarios/*   Demo scenarios

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterOptions configures the middleware stack.
type RouterOptions struct {
	// AllowedOrigins for CORS. Empty allows the local dev frontends.
	AllowedOrigins []string
	// Logger receives request logs. Nil disables request logging.
	Logger *slog.Logger
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	// Middleware
	r.Use(middleware.RequestID)
	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Heartbeat("/health"))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Get("/{id}/punches", h.ListEmployeePunches)
			r.Get("/{id}/periods", h.ListEmployeePeriods)
		})

		r.Route("/punches", func(r chi.Router) {
			r.Post("/", h.RegisterPunch)
			r.Patch("/{id}", h.CorrectPunch)
		})

		r.Route("/periods", func(r chi.Router) {
			r.Get("/", h.ListPeriods)
			r.Post("/", h.OpenPeriod)
			r.Get("/{id}", h.GetPeriod)
			r.Get("/{id}/punches", h.ListPeriodPunches)
			r.Get("/{id}/summary", h.GetPeriodSummary)
			r.Put("/{id}/status", h.SetPeriodStatus)
		})

		r.Route("/config", func(r chi.Router) {
			r.Get("/", h.GetConfig)
			r.Put("/", h.UpdateConfig)
			r.Post("/reset", h.ResetConfig)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
