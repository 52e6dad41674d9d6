package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andreypavlenko/scout/internal/config"
	"github.com/andreypavlenko/scout/internal/platform/auth"
	"github.com/andreypavlenko/scout/internal/platform/cache"
	httpPlatform "github.com/andreypavlenko/scout/internal/platform/http"
	"github.com/andreypavlenko/scout/internal/platform/llm"
	"github.com/andreypavlenko/scout/internal/platform/logger"
	"github.com/andreypavlenko/scout/internal/platform/postgres"
	"github.com/andreypavlenko/scout/internal/platform/redis"
	"github.com/andreypavlenko/scout/internal/platform/storage"

	"github.com/andreypavlenko/scout/modules/startups/taxonomy"

	calendarHandler "github.com/andreypavlenko/scout/modules/calendar/handler"
	calendarRepo "github.com/andreypavlenko/scout/modules/calendar/repository"
	calendarService "github.com/andreypavlenko/scout/modules/calendar/service"

	conciergeHandler "github.com/andreypavlenko/scout/modules/concierge/handler"
	conciergeService "github.com/andreypavlenko/scout/modules/concierge/service"
	"github.com/andreypavlenko/scout/modules/concierge/tools"

	feedbackHandler "github.com/andreypavlenko/scout/modules/feedback/handler"
	feedbackRepo "github.com/andreypavlenko/scout/modules/feedback/repository"
	feedbackService "github.com/andreypavlenko/scout/modules/feedback/service"

	providersHandler "github.com/andreypavlenko/scout/modules/providers/handler"
	providersModel "github.com/andreypavlenko/scout/modules/providers/model"
	providersService "github.com/andreypavlenko/scout/modules/providers/service"

	startupsHandler "github.com/andreypavlenko/scout/modules/startups/handler"
	startupsRepo "github.com/andreypavlenko/scout/modules/startups/repository"
	startupsService "github.com/andreypavlenko/scout/modules/startups/service"

	votesHandler "github.com/andreypavlenko/scout/modules/votes/handler"
	votesRepo "github.com/andreypavlenko/scout/modules/votes/repository"
	votesService "github.com/andreypavlenko/scout/modules/votes/service"

	sentry "github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	exitConfigError  = 1
	exitStorageError = 2
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		os.Exit(exitConfigError)
	}

	// Initialize logger
	logger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Printf("Failed to initialize logger: %v", err)
		os.Exit(exitConfigError)
	}
	defer logger.Sync()

	logger.Info("Starting Scout API server",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	ctx := context.Background()

	// Initialize Sentry (optional)
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Server.Env,
		}); err != nil {
			logger.Warn("Failed to initialize Sentry", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Initialize PostgreSQL
	pgClient, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL", zap.Error(err))
		os.Exit(exitStorageError)
	}
	defer pgClient.Close()
	logger.Info("Connected to PostgreSQL")

	// Run database migrations (MANDATORY: must run before HTTP server starts)
	migrationsPath := "./migrations"
	if err := postgres.RunMigrations(ctx, cfg.Database, logger, migrationsPath); err != nil {
		logger.Error("Failed to run database migrations",
			zap.Error(err),
			zap.String("migrations_path", migrationsPath),
		)
		os.Exit(exitStorageError)
	}

	// Initialize Redis
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logger.Error("Failed to connect to Redis", zap.Error(err))
		os.Exit(exitStorageError)
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis")

	// Initialize S3 archive for LLM call logs (optional)
	var archiver llm.Archiver
	if cfg.S3.Endpoint != "" && cfg.S3.Bucket != "" {
		s3Client, err := storage.NewS3Client(cfg.S3)
		if err != nil {
			logger.Warn("Failed to initialize S3 client, call-log archive disabled", zap.Error(err))
		} else {
			archiver = s3Client
			logger.Info("S3 call-log archive enabled", zap.String("bucket", cfg.S3.Bucket))
		}
	}

	// Initialize LLM gateway with its append-only call log
	callLog, err := llm.NewCallLog(cfg.LLM.LogDir, logger, archiver)
	if err != nil {
		logger.Error("Failed to initialize LLM call log", zap.Error(err))
		os.Exit(exitStorageError)
	}
	gateway := llm.NewGateway(cfg.LLM, logger, callLog)
	if !gateway.Available() {
		logger.Warn("LLM_API_KEY not set, LLM-dependent endpoints will be unavailable")
	}

	// Load the category taxonomy
	classifier, err := taxonomy.Load(cfg.Corpus.TaxonomyPath)
	if err != nil {
		logger.Warn("Failed to load taxonomy config, using built-in defaults",
			zap.String("path", cfg.Corpus.TaxonomyPath),
			zap.Error(err),
		)
		classifier = taxonomy.Default()
	}

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Sentry.DSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(httpPlatform.RequestIDMiddleware())
	router.Use(httpPlatform.LoggerMiddleware(logger))
	router.Use(httpPlatform.CORSMiddleware())

	// Health check endpoint
	router.GET("/health", healthCheckHandler(ctx, pgClient, redisClient, gateway))

	// Ping endpoint
	router.GET("/ping", pingHandler)

	// Optional auth: a valid bearer token binds user_id, its absence is fine
	var optionalAuth gin.HandlerFunc
	if cfg.JWT.AccessSecret != "" {
		jwtManager := auth.NewJWTManager(
			cfg.JWT.AccessSecret,
			cfg.JWT.RefreshSecret,
			cfg.JWT.AccessExpiry,
			cfg.JWT.RefreshExpiry,
		)
		optionalAuth = auth.OptionalAuthMiddleware(jwtManager)
	}

	// Initialize repositories
	startupRepository := startupsRepo.NewStartupRepository(pgClient.Pool)
	voteRepository := votesRepo.NewVoteRepository(pgClient.Pool)
	eventRepository := calendarRepo.NewEventRepository(pgClient.Pool)
	sessionRepository := feedbackRepo.NewSessionRepository(pgClient.Pool)
	insightRepository := feedbackRepo.NewInsightRepository(pgClient.Pool)

	// Initialize services
	startupSvc := startupsService.NewStartupService(startupRepository, voteRepository, classifier, redisClient, logger)
	if err := startupSvc.LoadSnapshot(ctx); err != nil {
		logger.Error("Failed to load corpus snapshot", zap.Error(err))
		os.Exit(exitStorageError)
	}

	voteSvc := votesService.NewVoteService(voteRepository)
	eventSvc := calendarService.NewEventService(eventRepository)

	var mailer feedbackService.Mailer
	if cfg.Email.ResendAPIKey != "" {
		mailer = feedbackService.NewResendMailer(cfg.Email.ResendAPIKey, cfg.Email.FromAddress)
	}
	feedbackSvc := feedbackService.NewFeedbackService(sessionRepository, insightRepository, gateway, mailer, logger)

	assessments := cache.NewLRU[providersModel.Decision](cfg.Cache.MaxSize, cfg.Cache.TTL, time.Minute)
	defer assessments.Close()
	scorer := providersService.NewScorer(classifier)
	providerFilter := providersService.NewProviderFilter(gateway, assessments, scorer, cfg.Filter.Workers, logger)

	registry := tools.NewCorpusRegistry(startupSvc, 2*time.Second)
	orchestrator := conciergeService.NewOrchestrator(gateway, registry, nil, logger)

	// Initialize handlers
	startupHdl := startupsHandler.NewStartupHandler(startupSvc)
	voteHdl := votesHandler.NewVoteHandler(voteSvc)
	eventHdl := calendarHandler.NewEventHandler(eventSvc)
	feedbackHdl := feedbackHandler.NewFeedbackHandler(feedbackSvc)
	providerHdl := providersHandler.NewProviderHandler(providerFilter)
	conciergeHdl := conciergeHandler.NewConciergeHandler(orchestrator)

	// API v1 routes
	v1 := router.Group("/api/v1")
	if optionalAuth != nil {
		v1.Use(optionalAuth)
	}
	{
		startupHdl.RegisterRoutes(v1)
		voteHdl.RegisterRoutes(v1)
		eventHdl.RegisterRoutes(v1)
		feedbackHdl.RegisterRoutes(v1)
		providerHdl.RegisterRoutes(v1)
		conciergeHdl.RegisterRoutes(v1)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.RequestTimeout,
		WriteTimeout: cfg.Server.RequestTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// healthCheckHandler godoc
// @Summary Health Check
// @Description Check the health status of the application and its dependencies
// @Tags system
// @Produce json
// @Success 200 {object} http.HealthResponse
// @Router /health [get]
func healthCheckHandler(ctx context.Context, pgClient *postgres.Client, redisClient *redis.Client, gateway *llm.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		services := make(map[string]string)

		// Check PostgreSQL
		if err := pgClient.Health(ctx); err != nil {
			services["postgres"] = "down"
		} else {
			services["postgres"] = "up"
		}

		// Check Redis
		if err := redisClient.Health(ctx); err != nil {
			services["redis"] = "down"
		} else {
			services["redis"] = "up"
		}

		// LLM gateway state
		if !gateway.Available() {
			services["llm"] = "unconfigured"
		} else if gateway.BreakerState() == llm.StateOpen {
			services["llm"] = "down"
		} else {
			services["llm"] = "up"
		}

		httpPlatform.RespondWithHealth(c, services)
	}
}

// pingHandler godoc
// @Summary Ping
// @Description Simple ping endpoint to check if the API is responding
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func pingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
