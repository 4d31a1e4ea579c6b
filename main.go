package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/api/option"

	"sunsetCompanionAPI/handlers"
	"sunsetCompanionAPI/internal/config"
	"sunsetCompanionAPI/internal/notification"
	"sunsetCompanionAPI/internal/storage"
	"sunsetCompanionAPI/internal/storage/postgres"
	"sunsetCompanionAPI/internal/storage/sqlite"
	"sunsetCompanionAPI/internal/streak"
	"sunsetCompanionAPI/internal/upload"
	"sunsetCompanionAPI/middleware"
	"sunsetCompanionAPI/services"

	_ "net/http/pprof"
)

type migratingStore interface {
	storage.Store
	Migrate(ctx context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config) storage.Store {
	driver, dsn, err := cfg.Database()
	if err != nil {
		log.Fatal("Invalid DATABASE_URL: ", err)
	}

	var store migratingStore
	switch driver {
	case config.DriverPostgres:
		store, err = postgres.Open(ctx, dsn)
	case config.DriverSQLite:
		store, err = sqlite.Open(dsn)
	}
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}

	if err := store.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database: ", err)
	}
	log.Printf("Successfully connected to %s database", driver)

	// an in-memory sqlite database is always empty
	if cfg.AutoMigrate || dsn == ":memory:" {
		if err := store.Migrate(ctx); err != nil {
			log.Fatal("Failed to migrate database: ", err)
		}
		log.Println("Database schema is up to date")
	}

	return store
}

func newFirebaseApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	opt := option.WithCredentialsFile(cfg.FirebaseCredsFile)
	if len(cfg.FirebaseCredentials) > 0 {
		opt = option.WithCredentialsJSON(cfg.FirebaseCredentials)
	}
	return firebase.NewApp(ctx, &firebase.Config{StorageBucket: cfg.FirebaseStorageBucket}, opt)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration error: ", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store := openStore(startupCtx, cfg)
	defer func() {
		log.Println("Closing database connection...")
		store.Close()
	}()

	if cfg.ClerkSecretKey != "" {
		clerk.SetKey(cfg.ClerkSecretKey)
		log.Println("Clerk initialized successfully")
	}

	notificationService := services.NewNotificationService(store)
	streakService := services.NewStreakService(store, streak.NewCalendar(cfg.Location), notificationService)
	userService := services.NewUserService(store)
	profileService := services.NewProfileService(store, streakService)
	sunsetService := services.NewSunsetService(store, streakService)
	feedService := services.NewFeedService(store)

	var uploader upload.Uploader
	if cfg.FirebaseEnabled() {
		app, err := newFirebaseApp(startupCtx, cfg)
		if err != nil {
			log.Fatal("Failed to initialize Firebase: ", err)
		}

		fcmService, err := notification.NewFCMService(startupCtx, app)
		if err != nil {
			log.Printf("Warning: Could not initialize FCM: %v", err)
		} else {
			notificationService.SetPushProvider(fcmService)
			log.Println("FCM Push Provider initialized successfully")
		}

		if cfg.FirebaseStorageBucket != "" {
			if uploader, err = upload.NewFirebaseUploader(startupCtx, app, cfg.FirebaseStorageBucket); err != nil {
				log.Fatal("Failed to open storage bucket: ", err)
			}
			log.Printf("Uploading images to bucket %s", cfg.FirebaseStorageBucket)
		}
	}
	if uploader == nil {
		if uploader, err = upload.NewLocalUploader(cfg.UploadDir, cfg.PublicBaseURL); err != nil {
			log.Fatal("Failed to prepare upload dir: ", err)
		}
		log.Printf("Uploading images to %s", cfg.UploadDir)
	}
	uploadService := services.NewUploadService(uploader, cfg.MaxUploadBytes)

	middleware.InitPrometheus(prometheus.DefaultRegisterer)
	services.RegisterMetrics(prometheus.DefaultRegisterer)

	sessions := middleware.NewSessionManager(cfg.SessionSecret, cfg.SessionMaxAge, cfg.SecureCookies)
	var verifyClerk middleware.ClerkVerifier
	if cfg.ClerkSecretKey != "" {
		verifyClerk = middleware.VerifyClerkToken
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go limiter.CleanupVisitors(cleanupCtx)

	assetsDir := filepath.Dir(cfg.UploadDir)
	rt := &handlers.Router{
		Users:         handlers.NewUserHandler(userService, profileService, sessions),
		Sunsets:       handlers.NewSunsetHandler(sunsetService, feedService),
		Streaks:       handlers.NewStreakHandler(streakService),
		Uploads:       handlers.NewUploadHandler(uploadService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Webhooks:      handlers.NewWebhookHandler(userService, cfg.ClerkWebhookSecret),
		Auth:          middleware.NewAuthenticator(sessions, userService, verifyClerk),
		Limiter:       limiter,
		DB:            store,
		Metrics:       promhttp.Handler(),
		MetricsUser:   cfg.MetricsUser,
		MetricsPass:   cfg.MetricsPass,
		Pprof:         http.DefaultServeMux,
		PprofSecret:   cfg.PprofSecret,
		AssetsDir:     assetsDir,
	}
	log.Printf("Serving static files from %s at /assets/", assetsDir)

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins(cfg.AllowedOrigins),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := ":" + cfg.Port
	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(rt.Handler()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	notificationService.Stop()
	log.Println("Server stopped")
}
