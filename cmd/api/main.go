package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/student-affairs/servicedesk-api/internal/config"
	"github.com/student-affairs/servicedesk-api/internal/database"
	"github.com/student-affairs/servicedesk-api/internal/handler"
	"github.com/student-affairs/servicedesk-api/internal/middleware"
	"github.com/student-affairs/servicedesk-api/internal/models"
	"github.com/student-affairs/servicedesk-api/internal/observability"
	"github.com/student-affairs/servicedesk-api/internal/repository"
	"github.com/student-affairs/servicedesk-api/internal/router"
	"github.com/student-affairs/servicedesk-api/internal/service"
	"github.com/student-affairs/servicedesk-api/pkg/auth"
	"github.com/student-affairs/servicedesk-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Category{},
		&models.RequestType{},
		&models.Request{},
		&models.RequestHistory{},
		&models.Attachment{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	var store storage.BlobStore
	switch cfg.StorageDriver {
	case "cloudinary":
		store, err = storage.NewCloudinary(storage.CloudinaryConfig{
			CloudName: cfg.CloudinaryName,
			APIKey:    cfg.CloudinaryKey,
			APISecret: cfg.CloudinarySecret,
			Folder:    cfg.CloudinaryFolder,
		}, logger)
	default:
		store, err = storage.NewLocal(cfg.StorageLocalDir, logger)
	}
	if err != nil {
		log.Fatalf("failed to initialise storage: %v", err)
	}

	tokens, err := auth.NewTokenManager(auth.TokenManagerConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		Issuer:        cfg.AppName,
	})
	if err != nil {
		log.Fatalf("failed to create token manager: %v", err)
	}

	observability.RegisterMetrics()
	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	requestTypeRepo := repository.NewRequestTypeRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.EventChannel, natsConn, logger)
	authService := service.NewAuthService(userRepo, tokens, validate, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	catalogService := service.NewCatalogService(categoryRepo, requestTypeRepo, validate, logger)
	requestService := service.NewRequestService(requestRepo, requestTypeRepo, notificationService, validate, logger)
	attachmentService := service.NewAttachmentService(attachmentRepo, requestRepo, store, cfg.UploadMaxMB, logger)

	runCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()
	notificationService.Start(runCtx)

	deps := router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		UserHandler:         handler.NewUserHandler(userService, logger),
		CatalogHandler:      handler.NewCatalogHandler(catalogService, logger),
		RequestHandler:      handler.NewRequestHandler(requestService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger, cfg.SSEKeepAlive),
		AttachmentHandler:   handler.NewAttachmentHandler(attachmentService, logger),
		JWTMiddleware:       middleware.JWTProtected(tokens),
		RoleMiddleware:      middleware.ResolveRole(userService),
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, CORSOrigins: cfg.CORSOrigins})
	router.Register(app, cfg, deps)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
