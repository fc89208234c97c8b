package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/beatmatch/backend/internal/gateway"
	"github.com/beatmatch/backend/internal/gateway/middleware"
	"github.com/beatmatch/backend/internal/modules/auth"
	"github.com/beatmatch/backend/internal/modules/events"
	"github.com/beatmatch/backend/internal/modules/filestorage"
	"github.com/beatmatch/backend/internal/modules/musician"
	musicianHttp "github.com/beatmatch/backend/internal/modules/musician/interfaces/http"
	"github.com/beatmatch/backend/internal/modules/notification"
	"github.com/beatmatch/backend/internal/modules/payment"
	"github.com/beatmatch/backend/internal/modules/reviews"
	"github.com/beatmatch/backend/internal/shared/infrastructure/config"
	"github.com/beatmatch/backend/internal/shared/infrastructure/database"
	"github.com/beatmatch/backend/pkg/migration"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := migration.AutoMigrate(cfg.Database.URL(), migrationsPath, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis only backs response caching; the app runs without it.
	redisClient, err := database.NewRedis(cfg.Redis)
	if err != nil {
		log.Printf("Redis unavailable, caching disabled: %v", err)
		redisClient = nil
	}

	// File storage is optional in development; uploads answer 503 without it.
	var fileService musicianHttp.FileService
	storageModule, err := filestorage.NewModule(context.Background(), cfg.FileStorage)
	if err != nil {
		log.Printf("File storage unavailable, uploads disabled: %v", err)
	} else {
		fileService = storageModule.Service()
	}

	authModule := auth.NewModule(db, cfg.JWT, cfg.Google)
	notificationModule := notification.NewModule(db)
	defer notificationModule.Shutdown()

	musicianModule := musician.NewModule(db, redisClient, authModule.UserFinder(), fileService, cfg.FileStorage.UploadFolder)
	eventsModule := events.NewModule(db, redisClient, musicianModule.Service(), authModule.UserFinder())
	reviewsModule := reviews.NewModule(db, redisClient, authModule.UserFinder(), notificationModule.Service())
	paymentModule := payment.NewModule(db, cfg.Razorpay, cfg.Payment, musicianModule.Service(), notificationModule.Service())

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	mux := gateway.SetupRoutes(gateway.RouterConfig{
		AuthHandler:         authModule.HTTPHandler(),
		AuthMiddleware:      authMiddleware,
		ProfileHandler:      musicianModule.ProfileHandler(),
		AvailabilityHandler: musicianModule.AvailabilityHandler(),
		UploadHandler:       musicianModule.UploadHandler(),
		EventHandler:        eventsModule.HTTPHandler(),
		ReviewHandler:       reviewsModule.HTTPHandler(),
		PaymentHandler:      paymentModule.HTTPHandler(),
		NotificationHandler: notificationModule.Handler(),
	})

	var handler http.Handler = mux
	handler = middleware.PrometheusMiddleware(handler)
	handler = middleware.CORSMiddleware(handler, cfg.Server.AllowedOrigins)

	server := gateway.NewServer(cfg.Server.Port, handler)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
