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
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/aulavirtual/aula-api/internal/config"
	"github.com/aulavirtual/aula-api/internal/database"
	"github.com/aulavirtual/aula-api/internal/handler"
	"github.com/aulavirtual/aula-api/internal/middleware"
	"github.com/aulavirtual/aula-api/internal/models"
	"github.com/aulavirtual/aula-api/internal/policy"
	"github.com/aulavirtual/aula-api/internal/repository"
	"github.com/aulavirtual/aula-api/internal/router"
	"github.com/aulavirtual/aula-api/internal/service"
	"github.com/aulavirtual/aula-api/internal/session"
	"github.com/aulavirtual/aula-api/pkg/blob"
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
		&models.Course{},
		&models.CourseFile{},
		&models.Exam{},
		&models.Question{},
		&models.Option{},
		&models.StudentAnswer{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	sessions := session.NewStore(redisClient, cfg.SessionSecret, cfg.SessionTTL, logger)
	accessPolicy := policy.New(cfg.EnrollmentPolicy)

	blobs, err := blob.NewCloudinaryStore(blob.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create blob store: %v", err)
	}

	notifier := buildNotifier(cfg, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	fileRepo := repository.NewFileRepository(db)
	examRepo := repository.NewExamRepository(db)
	answerRepo := repository.NewAnswerRepository(db)

	authService := service.NewAuthService(userRepo, sessions, validate, logger)
	accountService := service.NewAccountService(userRepo, accessPolicy, notifier, validate, cfg.LoginURL, logger)
	courseService := service.NewCourseService(courseRepo, fileRepo, accessPolicy, blobs, validate, logger)
	enrollmentService := service.NewEnrollmentService(courseRepo, userRepo, accessPolicy, validate, logger)
	contentService := service.NewContentService(fileRepo, courseRepo, accessPolicy, blobs, logger)
	examService := service.NewExamService(examRepo, answerRepo, courseRepo, accessPolicy, validate, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	accountHandler := handler.NewAccountHandler(accountService, logger)
	courseHandler := handler.NewCourseHandler(courseService, enrollmentService, logger)
	contentHandler := handler.NewContentHandler(contentService, logger)
	examHandler := handler.NewExamHandler(examService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		AccountHandler:    accountHandler,
		CourseHandler:     courseHandler,
		ContentHandler:    contentHandler,
		ExamHandler:       examHandler,
		SessionMiddleware: middleware.SessionProtected(sessions),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildNotifier(cfg config.Config, logger zerolog.Logger) service.Notifier {
	if cfg.NATSUrl == "" {
		return service.NewLogNotifier(logger)
	}

	conn, err := nats.Connect(cfg.NATSUrl, nats.Name(cfg.AppName))
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, falling back to log notifier")
		return service.NewLogNotifier(logger)
	}

	return service.NewNATSNotifier(conn, cfg.NotificationSubject, logger)
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
