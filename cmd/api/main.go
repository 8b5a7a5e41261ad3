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

	"github.com/halward/procsight/internal/config"
	"github.com/halward/procsight/internal/database"
	"github.com/halward/procsight/internal/handler"
	"github.com/halward/procsight/internal/middleware"
	"github.com/halward/procsight/internal/models"
	"github.com/halward/procsight/internal/progress"
	"github.com/halward/procsight/internal/repository"
	"github.com/halward/procsight/internal/router"
	"github.com/halward/procsight/internal/rubric"
	"github.com/halward/procsight/internal/service"
	"github.com/halward/procsight/pkg/llm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Submission{}, &models.AssessmentRun{}, &models.WritingSession{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	progressStore := progress.NewMemoryStore()
	if cfg.RedisURL != "" {
		redisClient, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		progressStore = progress.NewRedisStore(redisClient, cfg.ProgressTTL)
	}

	provider, err := buildProvider(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create llm provider: %v", err)
	}

	activeRubric := rubric.Default()
	if err := activeRubric.Validate(); err != nil {
		logger.Warn().Err(err).Msg("rubric validation reported problems")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	submissionRepo := repository.NewSubmissionRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	submissionService := service.NewSubmissionService(submissionRepo, sessionRepo, validate, logger)
	sessionService := service.NewSessionService(sessionRepo, validate, logger)
	assessmentService := service.NewAssessmentService(
		submissionRepo, assessmentRepo, progressStore, provider, activeRubric,
		service.AssessmentConfig{
			DefaultModel:     cfg.AnalysisModel,
			EmbeddingModel:   cfg.EmbeddingModel,
			TopK:             cfg.RetrievalTopK,
			MinScore:         cfg.RetrievalMinScore,
			AuthenticityMode: cfg.AuthenticityMode,
		},
		validate, logger,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    16 * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		Provider:          provider,
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		AssessmentHandler: handler.NewAssessmentHandler(assessmentService, logger),
		SessionHandler:    handler.NewSessionHandler(sessionService, logger),
		ModelsHandler:     handler.NewModelsHandler(provider, cfg.AnalysisModel, logger),
		RubricHandler:     handler.NewRubricHandler(activeRubric, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildProvider(cfg config.Config, logger zerolog.Logger) (llm.Provider, error) {
	if cfg.LLMProvider == "openai" {
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Logger:  logger,
		})
	}

	return llm.NewOllamaClient(llm.OllamaConfig{
		BaseURL:         cfg.OllamaBaseURL,
		GenerateTimeout: cfg.GenerateTimeout,
		EmbedTimeout:    cfg.EmbedTimeout,
		Logger:          logger,
	}), nil
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
