package edge

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/launchkit/saas-console/internal/config"
	"github.com/launchkit/saas-console/internal/guard"
	"github.com/launchkit/saas-console/internal/httputil"
	"github.com/launchkit/saas-console/internal/logging"
)

// NewRouter creates and configures the edge gateway router. Every request
// passes through the route guard before being proxied; the guard only
// reads cookie presence, so this stays a zero-round-trip check.
func NewRouter(cfg *config.Config, routeGuard *guard.Guard, proxy http.Handler, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Edge.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Edge.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", cfg.Client.CSRFHeader},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)               // Security headers on all responses
	r.Use(middleware.Recoverer)          // Recover from panics
	r.Use(middleware.RequestID)          // Add request ID
	r.Use(middleware.RealIP)             // Set RemoteAddr to real IP
	r.Use(logging.RequestLogger(logger)) // Structured logging with request context
	r.Use(middleware.Compress(5))        // Compress responses

	r.Get("/health", handleHealth)

	// Everything else passes the cookie-presence guard and is proxied
	r.Handle("/*", routeGuard.Middleware(proxy))

	return r
}

// handleHealth is a simple health check endpoint
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "edge is running"}, http.StatusOK)
}
