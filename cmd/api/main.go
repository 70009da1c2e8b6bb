package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mfukui/lockgate/internal/auth"
	"github.com/mfukui/lockgate/internal/cache"
	"github.com/mfukui/lockgate/internal/config"
	"github.com/mfukui/lockgate/internal/database"
	"github.com/mfukui/lockgate/internal/handlers"
	middlewareCustom "github.com/mfukui/lockgate/internal/middleware"
	"github.com/mfukui/lockgate/internal/repositories"
	"github.com/mfukui/lockgate/internal/routes"
	"github.com/mfukui/lockgate/internal/services"
	pkghttp "github.com/mfukui/lockgate/pkg/http"
	pkglogger "github.com/mfukui/lockgate/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	banRepo := repositories.NewBanRepository(db)
	attemptRepo := repositories.NewLoginAttemptRepository(db)
	lastLoginRepo := repositories.NewLastLoginRepository(db)

	// Load the startup reference cache. A partial cache would silently
	// weaken ban decisions, so any load failure is fatal.
	ref, err := loadReferenceCache(userRepo, banRepo, logger)
	if err != nil {
		logger.Error("failed to load reference cache", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Timing delay pads failure responses to a uniform minimum
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Security.TimingDelayBaseMs,
		RandomDelayMs: cfg.Security.TimingDelayRandomMs,
	})

	// Initialize services
	lockoutService := services.NewLockoutService(banRepo, ref, cfg.Security, logger)
	loginService := services.NewLoginService(ref, lockoutService, attemptRepo, lastLoginRepo, timingDelay, logger, auditLogger)
	reportService := services.NewReportService(banRepo, attemptRepo, cfg.Security)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(loginService, ipConfig, logger)
	reportHandler := handlers.NewReportHandler(reportService, logger)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	loginRateLimit := middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Security.LoginRatePerMinute}
	routes.RegisterRoutes(router, authHandler, reportHandler, loginRateLimit)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// loadReferenceCache reads the full user table and the current per-IP
// failure counters into the in-memory reference used on the hot path.
func loadReferenceCache(userRepo *repositories.UserRepository, banRepo *repositories.BanRepository, logger *slog.Logger) (*cache.Reference, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, err := userRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	ipCounters, err := banRepo.ListIPFailures(ctx)
	if err != nil {
		return nil, err
	}

	ref := cache.NewReference(users, ipCounters)
	logger.Info("reference cache loaded",
		slog.Int("users", ref.UserCount()),
		slog.Int("ip_counters", len(ipCounters)))
	return ref, nil
}
