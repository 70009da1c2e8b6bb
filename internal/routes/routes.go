package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/mfukui/lockgate/internal/handlers"
	"github.com/mfukui/lockgate/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	reportHandler *handlers.ReportHandler,
	loginRateLimit middleware.RateLimitConfig,
) {
	// The login endpoint carries its own burst limiter on top of the
	// failure counters.
	router.With(middleware.RateLimitByIP(loginRateLimit)).Post("/login", authHandler.Login)

	// Operational report endpoints.
	router.Get("/report", reportHandler.FromLedger)
	router.Get("/report2", reportHandler.FromCounters)
}
