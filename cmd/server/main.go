package main

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"campusevents/config"
	"campusevents/internal/adapters/auth"
	"campusevents/internal/adapters/email"
	"campusevents/internal/adapters/storage"
	"campusevents/internal/badges"
	httpdelivery "campusevents/internal/delivery/http"
	"campusevents/internal/delivery/http/controllers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/jobs"
	"campusevents/internal/metrics"
	"campusevents/internal/repository/postgres"
	"campusevents/internal/services"
)

const (
	bcryptCost     = 10
	serviceTimeout = 10 * time.Second
)

// @title CampusEvents API
// @version 1.0
// @description College event management platform: events, registrations, comments, badges, and analytics.
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	metrics.Register()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	commentRepo := postgres.NewCommentRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(bcryptCost)
	jwt := auth.NewJWT(cfg.JWTSecret)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFrom,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretKey,
			InsecureSkipVerify: cfg.SESInsecureTLS,
		},
	})
	if err != nil {
		log.Fatalf("failed to create mailer: %v", err)
	}
	media, err := storage.NewMediaStore(storage.MediaConfig{
		Provider: cfg.MediaProvider,
		BaseURL:  cfg.MediaBaseURL,
		S3: storage.S3Config{
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
		},
	})
	if err != nil {
		log.Fatalf("failed to create media store: %v", err)
	}

	// Services
	badgeEngine := badges.NewEngine(userRepo, badges.DefaultCatalog(), logger)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), cfg.AppURL)
	authService := services.NewAuthService(userRepo, hasher, jwt, emailService, cfg.TokenExpiry, logger, serviceTimeout)
	userService := services.NewUserService(userRepo, eventRepo, media, serviceTimeout)
	eventService := services.NewEventService(eventRepo, userRepo, badgeEngine, emailService, media, logger, serviceTimeout)
	commentService := services.NewCommentService(commentRepo, eventRepo, userRepo, badgeEngine, emailService, logger, serviceTimeout)
	analyticsService := services.NewAnalyticsService(eventRepo, userRepo, serviceTimeout)
	reminderService := services.NewReminderService(eventRepo, userRepo, emailService, logger, 10*time.Minute)

	// Scheduled jobs
	reminderJob := jobs.NewReminderJob(reminderService, cfg.ReminderSchedule, logger)
	if err := reminderJob.Start(); err != nil {
		log.Fatalf("failed to start reminder job: %v", err)
	}
	defer reminderJob.Stop()

	// HTTP
	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:      controllers.NewAuthController(logger, authService),
		Events:    controllers.NewEventController(logger, eventService),
		Comments:  controllers.NewCommentController(logger, commentService),
		Users:     controllers.NewUserController(logger, userService),
		Analytics: controllers.NewAnalyticsController(logger, analyticsService),
		Badges:    controllers.NewBadgeController(badgeEngine),
	}, jwt)

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(logger, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
