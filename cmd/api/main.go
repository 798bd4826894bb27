package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/config"
	"github.com/noah-isme/membership-portal-api/internal/database"
	"github.com/noah-isme/membership-portal-api/internal/handler"
	"github.com/noah-isme/membership-portal-api/internal/middleware"
	"github.com/noah-isme/membership-portal-api/internal/repository"
	"github.com/noah-isme/membership-portal-api/internal/router"
	"github.com/noah-isme/membership-portal-api/internal/service"
	cloud "github.com/noah-isme/membership-portal-api/pkg/cloudinary"
	"github.com/noah-isme/membership-portal-api/pkg/storage"
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

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, caching disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var publisher service.EventPublisher
	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, audit fan-out limited to websocket subscribers")
	} else {
		defer natsConn.Drain()
		publisher = natsConn
	}

	healthChecks := []handler.DependencyCheck{{Name: "database", Required: true, Check: database.PingPostgres(db)}}
	if redisClient != nil {
		healthChecks = append(healthChecks, handler.DependencyCheck{Name: "redis", Check: database.PingRedis(redisClient)})
	}
	if natsConn != nil {
		healthChecks = append(healthChecks, handler.DependencyCheck{Name: "nats", Check: database.PingNATS(natsConn)})
	}

	fileStorage, uploads, err := buildStorage(cfg, logger)
	if err != nil {
		log.Fatalf("failed to configure storage: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	associationRepo := repository.NewAssociationRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	examRepo := repository.NewExamRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	resultRepo := repository.NewExamResultRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	galleryRepo := repository.NewGalleryRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	homepageRepo := repository.NewHomepageRepository(db)
	advertisementRepo := repository.NewAdvertisementRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	campRepo := repository.NewCampRepository(db)

	auditService := service.NewAuditService(auditRepo, publisher, cfg.RealtimeChannel, logger)
	authService := service.NewAuthService(userRepo, associationRepo, refreshTokenRepo, auditService, validate, service.AuthConfig{
		AccessSecret:       cfg.JWTSecret,
		RefreshSecret:      cfg.JWTRefreshSecret,
		AccessTTL:          cfg.AccessTokenTTL,
		RefreshTTL:         cfg.RefreshTokenTTL,
		SuperadminPasscode: cfg.SuperadminPasscode,
		PresidentPasscode:  cfg.PresidentPasscode,
		UserCodePrefix:     cfg.UserCodePrefix,
	}, logger)
	userService := service.NewUserService(userRepo, validate, auditService, logger)
	associationService := service.NewAssociationService(associationRepo, validate, auditService, logger)
	examService := service.NewExamService(examRepo, validate, auditService, logger)
	attemptService := service.NewAttemptService(examRepo, attemptRepo, validate, logger)
	resultService := service.NewResultService(resultRepo, auditService, redisClient, cfg.ResultsCacheTTL, logger)
	paymentService := service.NewPaymentService(paymentRepo, fileStorage, auditService, redisClient, validate, logger)
	announcementService := service.NewAnnouncementService(announcementRepo, auditService, validate, redisClient, cfg.DashboardCacheTTL, logger)
	galleryService := service.NewGalleryService(galleryRepo, auditService, validate, logger)
	blogService := service.NewBlogService(blogRepo, auditService, validate, logger)
	homepageService := service.NewHomepageService(homepageRepo, auditService, validate, logger)
	advertisementService := service.NewAdvertisementService(advertisementRepo, auditService, validate, logger)
	mediaService := service.NewMediaService(fileStorage, mediaRepo, auditService, logger)
	campService := service.NewCampService(campRepo, userRepo, auditService, redisClient, validate, logger)
	exportService := service.NewExportService(userRepo, paymentRepo, resultRepo, campRepo, auditService, logger)
	dashboardService := service.NewDashboardService(service.DashboardRepositories{
		Users:    userRepo,
		Attempts: attemptRepo,
		Results:  resultRepo,
		Payments: paymentRepo,
		Camps:    campRepo,
	}, redisClient, cfg.DashboardCacheTTL, logger)
	seedService := service.NewSeedService(userRepo, homepageRepo, service.SeedConfig{
		SuperadminEmail:    cfg.SeedSuperadminEmail,
		SuperadminPassword: cfg.SeedSuperadminPassword,
		UserCodePrefix:     cfg.UserCodePrefix,
	}, logger)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if report, err := seedService.Bootstrap(seedCtx); err != nil {
		logger.Error().Err(err).Msg("startup seeding failed")
	} else {
		logger.Info().
			Bool("superadmin_created", report.SuperadminCreated).
			Int64("homepage_sections", report.HomepageSections).
			Msg("startup seeding finished")
	}
	cancelSeed()

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    12 * 1024 * 1024,
		ProxyHeader:  cfg.ProxyHeader,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSOrigins})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:              handler.NewAuthHandler(authService, logger),
		UserHandler:              handler.NewUserHandler(userService, logger),
		AdminUserHandler:         handler.NewAdminUserHandler(userService, logger),
		AssociationHandler:       handler.NewAssociationHandler(associationService, logger),
		ExamHandler:              handler.NewExamHandler(examService, attemptService, resultService, logger),
		AdminExamHandler:         handler.NewAdminExamHandler(examService, resultService, logger),
		PaymentHandler:           handler.NewPaymentHandler(paymentService, logger),
		AdminPaymentHandler:      handler.NewAdminPaymentHandler(paymentService, logger),
		AnnouncementHandler:      handler.NewAnnouncementHandler(announcementService, logger),
		AdminAnnouncementHandler: handler.NewAdminAnnouncementHandler(announcementService, logger),
		GalleryHandler:           handler.NewGalleryHandler(galleryService, logger),
		AdminGalleryHandler:      handler.NewAdminGalleryHandler(galleryService, logger),
		BlogHandler:              handler.NewBlogHandler(blogService, logger),
		AdminBlogHandler:         handler.NewAdminBlogHandler(blogService, logger),
		HomepageHandler:          handler.NewHomepageHandler(homepageService, logger),
		AdvertisementHandler:     handler.NewAdvertisementHandler(advertisementService, logger),
		UploadHandler:            handler.NewUploadHandler(mediaService, logger),
		CampHandler:              handler.NewCampHandler(campService, logger),
		AuditHandler:             handler.NewAuditHandler(auditService, logger),
		ExportHandler:            handler.NewExportHandler(exportService, logger),
		DashboardHandler:         handler.NewDashboardHandler(dashboardService, logger),
		SeedHandler:              handler.NewSeedHandler(seedService, logger),
		Uploads:                  uploads,
		JWTMiddleware:            middleware.JWTProtected(cfg.JWTSecret),
		AuthLimiter:              middleware.RateLimit("auth", 10, time.Minute),
		HealthChecks:             healthChecks,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// buildStorage returns the upload driver and, for local storage, the filesystem served under the public base.
func buildStorage(cfg config.Config, logger zerolog.Logger) (service.FileStorage, http.FileSystem, error) {
	if cfg.StorageDriver == "cloudinary" {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return uploader, nil, nil
	}

	local, err := storage.NewLocalDisk(cfg.StorageLocalDir, cfg.StoragePublicBase, logger)
	if err != nil {
		return nil, nil, err
	}
	return local, local.FileSystem(), nil
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
