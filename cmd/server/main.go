package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campusforms/docufill-api/internal/auth"
	"github.com/campusforms/docufill-api/internal/config"
	"github.com/campusforms/docufill-api/internal/db"
	"github.com/campusforms/docufill-api/internal/extractor"
	"github.com/campusforms/docufill-api/internal/formfill"
	"github.com/campusforms/docufill-api/internal/handlers"
	"github.com/campusforms/docufill-api/internal/llm"
	"github.com/campusforms/docufill-api/internal/repository"
	"github.com/campusforms/docufill-api/internal/router"
	"github.com/campusforms/docufill-api/internal/semantic"
	"github.com/campusforms/docufill-api/internal/services"
	"github.com/campusforms/docufill-api/internal/storage"
	"github.com/campusforms/docufill-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	// Initialize database
	database, err := db.NewSQLiteDB(cfg.DBFile)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.DBFile); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Blob store for uploaded documents
	store, err := storage.NewS3Storage(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}

	// LLM provider
	provider, err := llm.NewProvider(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize LLM provider", "error", err)
	}

	// Repositories
	chunkRepo := repository.NewChunkRepository(database)
	userRepo := repository.NewUserRepository(database)

	// Question sets
	generalQuestions, err := formfill.LoadGeneralQuestions(cfg.GeneralQuestionsFile)
	if err != nil {
		logger.Fatal("Failed to load general questions", "error", err)
	}
	schoolQuestions, err := formfill.LoadSchoolQuestions(cfg.SchoolQuestionsFile)
	if err != nil {
		logger.Fatal("Failed to load school questions", "error", err)
	}

	// Core pipeline services
	estimator := semantic.TokenEstimator{
		CharsPerToken:  cfg.ContextCharsPerTok,
		PromptOverhead: cfg.ContextPromptTokens,
		Limit:          cfg.ContextLimitTokens,
	}
	former := semantic.NewFormer(provider, estimator, logger)
	vision := extractor.NewVisionExtractor(provider)
	parseService := services.NewParseService(store, chunkRepo, former, vision, cfg.FillConcurrency, logger)

	fieldExtractor := formfill.NewExtractor(provider, logger)
	fillService := formfill.NewService(chunkRepo, fieldExtractor, generalQuestions, schoolQuestions, cfg.FillConcurrency, logger)

	// Auth
	tokens := auth.NewTokenManager(cfg.JWTSecret)
	authService := auth.NewService(userRepo, tokens, logger)

	// Setup HTTP router
	handler := router.NewRouter(router.Dependencies{
		AuthHandler:     handlers.NewAuthHandler(authService, logger),
		DocumentHandler: handlers.NewDocumentHandler(store, parseService, cfg.MaxFileSize, logger),
		FormFillHandler: handlers.NewFormFillHandler(fillService, logger),
		Tokens:          tokens,
		Logger:          logger,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
