package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/christian-rost/stammdatenmanagement/internal/config"
	"github.com/christian-rost/stammdatenmanagement/internal/database"
	"github.com/christian-rost/stammdatenmanagement/internal/handlers"
	"github.com/christian-rost/stammdatenmanagement/internal/metrics"
	"github.com/christian-rost/stammdatenmanagement/internal/middleware"
	"github.com/christian-rost/stammdatenmanagement/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading it (this is fine if using environment variables): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Stammdatenmanagement API...")

	logLevel := database.ParseLogLevel(cfg.DBLogLevel)

	// User database is local sqlite and always available
	userDB, err := database.OpenSQLiteFile(cfg.UserDatabasePath(), logLevel)
	if err != nil {
		log.Fatalf("Failed to open user database: %v", err)
	}
	defer closeDB("user", userDB)
	if err := database.AutoMigrateUsers(userDB); err != nil {
		log.Fatalf("Failed to migrate user database: %v", err)
	}

	userService := services.NewUserService(userDB)
	if err := userService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to bootstrap admin user: %v", err)
	}

	reviewMetrics, err := metrics.NewReviewMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	reviewService := services.NewReviewService(nil, nil)
	if cfg.DatabaseConfigured() {
		reviewDB, err := database.Open(cfg.DatabaseURL, logLevel)
		if err != nil {
			log.Fatalf("Failed to connect to review database: %v", err)
		}
		defer closeDB("review", reviewDB)
		if err := database.AutoMigrate(reviewDB); err != nil {
			log.Fatalf("Failed to migrate review database: %v", err)
		}
		reviewService = services.NewReviewService(database.NewRecordStore(reviewDB), database.NewDecisionStore(reviewDB))
		log.Printf("Review database connected (postgres=%t)", database.IsPostgres(cfg.DatabaseURL))
	} else {
		log.Printf("WARNING: DATABASE_URL not set - duplicate endpoints will answer 503")
	}
	reviewService.SetMetrics(reviewMetrics)

	jwtAuthMiddleware := middleware.NewJWTAuthMiddleware(&middleware.JWTAuthConfig{
		JWTSecret:      cfg.JWTSecret,
		JWTExpiryHours: cfg.JWTExpiryHours,
		SkipPaths: []string{
			"/",
			"/api/health",
			"/metrics",
			"/api/auth/login",
			"/api/auth/register",
		},
	})

	httpHandler := handlers.NewHTTPHandler(cfg.DatabaseConfigured(), reviewMetrics.Handler())
	authHandler := handlers.NewAuthHandler(
		userService,
		jwtAuthMiddleware,
		middleware.NewRateLimiter("login", cfg.LoginPerMinute),
		middleware.NewRateLimiter("register", cfg.RegisterPerMinute),
	)
	reviewHandler := handlers.NewReviewHandler(reviewService, cfg.StoreTimeout)

	mux := http.NewServeMux()
	httpHandler.SetupRoutes(mux)
	authHandler.SetupRoutes(mux)
	reviewHandler.SetupRoutes(mux)

	// CORS first so preflights never hit auth, then request ids, then JWT
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORSOrigins...)
	handler := corsMiddleware.Wrap(
		middleware.RequestIDMiddleware(
			middleware.AccessLogMiddleware(
				jwtAuthMiddleware.Wrap(mux))))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %d", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	log.Printf("Health check endpoint: http://localhost:%d/api/health", cfg.HTTPPort)
	log.Printf("API base URL: http://localhost:%d/api", cfg.HTTPPort)

	select {
	case err := <-serverErr:
		if err != nil {
			log.Printf("HTTP server error: %v", err)
		}
	case <-ctx.Done():
		log.Println("Received shutdown signal, cleaning up...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}
	log.Println("Shutdown complete")
}

func closeDB(name string, db *gorm.DB) {
	if err := database.Close(db); err != nil {
		log.Printf("Error closing %s database: %v", name, err)
	}
}
