/*
server.go - HTTP router and middleware configuration

PURPOSE:

	Configures the HTTP router (chi), middleware stack, and route
	definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
 1. CORS:          Cross-origin requests for the frontend
 2. RequestLogger: Structured JSON request logging (httplog/slog)
 3. CleanPath:     Normalizes request paths
 4. Recoverer:     Panic recovery (500 instead of crash)
 5. Heartbeat:     Liveness probe on /healthz

ROUTE GROUPS:

	/api/auth/*       Registration and login (public)
	/api/leaves/*     Leave lifecycle and queries (authenticated)
	/api/employees/*  Directory management and profiles (authenticated)

Authenticated groups run jwtauth.Verifier + jwtauth.Authenticator; the
finer authorization decisions (owner, awaited approver, HR) live in the
domain layer, not in routing.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/nandhu-6/leave-management-system/auth"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler, tokens *auth.TokenService, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.CleanPath)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/healthz"))

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(tokens.JWTAuth()))
			r.Use(jwtauth.Authenticator(tokens.JWTAuth()))

			r.Route("/leaves", func(r chi.Router) {
				r.Post("/apply", h.ApplyLeave)
				r.Get("/my", h.MyLeaves)
				r.Get("/team", h.TeamLeaves)
				r.Get("/all", h.AllLeaves)
				r.Get("/pending", h.PendingApprovals)
				r.Get("/balance", h.GetBalance)
				r.Get("/summary", h.GetSummary)
				r.Get("/holidays", h.ListHolidays)
				r.Get("/calendar", h.TeamCalendar)
				r.Get("/{id}/status", h.LeaveStatus)
				r.Put("/{id}/approve", h.ApproveLeave)
				r.Put("/{id}/reject", h.RejectLeave)
				r.Put("/{id}/cancel", h.CancelLeave)
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.ListEmployees)
				r.Post("/", h.CreateEmployee)
				r.Get("/me", h.Me)
				r.Get("/team", h.MyTeam)
				r.Get("/manager", h.MyManager)
				r.Get("/approvers", h.Approvers)
				r.Put("/{id}", h.UpdateEmployee)
				r.Delete("/{id}", h.DeleteEmployee)
			})
		})
	})

	return r
}

// NewLogger builds the structured JSON logger used by the router and
// the server process.
func NewLogger(env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env == "development")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "leave-management-system"),
		slog.String("env", env),
	)
}
