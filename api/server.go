/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, included in request logs
  2. Logger:     Structured request logging (slog)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the score-entry UI

ROUTE GROUPS:
  /health               Liveness
  /metrics              Prometheus (when metrics are enabled)
  /api/wagers/*         Parse and describe bets
  /api/settle           Stateless settlement
  /api/obligations/*    Stateless consolidation
  /api/courses/*        Course management
  /api/players/*        Player registry
  /api/matches/*        Matches, scores and settlement history
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions holds settings that come from server configuration.
type RouterOptions struct {
	AllowedOrigins []string
	// MetricsPath is where h.Metrics is served. Ignored when h.Metrics is nil.
	MetricsPath string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", h.Health)
	if h.Metrics != nil && opts.MetricsPath != "" {
		r.Handle(opts.MetricsPath, h.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Wager text
		r.Route("/wagers", func(r chi.Router) {
			r.Post("/parse", h.ParseWager)
			r.Post("/describe", h.DescribeWager)
		})

		// Stateless settlement
		r.Post("/settle", h.Settle)
		r.Post("/obligations/consolidate", h.ConsolidateObligations)

		// Course routes
		r.Route("/courses", func(r chi.Router) {
			r.Get("/", h.ListCourses)
			r.Post("/", h.CreateCourse)
			r.Get("/{id}", h.GetCourse)
		})

		// Player routes
		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.ListPlayers)
			r.Post("/", h.CreatePlayer)
		})

		// Match routes
		r.Route("/matches", func(r chi.Router) {
			r.Get("/", h.ListMatches)
			r.Post("/", h.CreateMatch)
			r.Get("/{id}", h.GetMatch)
			r.Put("/{id}/scores", h.RecordScore)
			r.Post("/{id}/settle", h.SettleMatch)
			r.Get("/{id}/settlements", h.ListSettlements)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

// requestLogger logs one line per request with its chi request ID.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.InfoContext(r.Context(), "request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
