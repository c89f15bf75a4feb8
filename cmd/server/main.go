package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/trendscout/research-service/config"
	"github.com/trendscout/research-service/internal/catalog"
	"github.com/trendscout/research-service/internal/database"
	"github.com/trendscout/research-service/internal/handlers"
	"github.com/trendscout/research-service/internal/http/ratelimit"
	"github.com/trendscout/research-service/internal/llm"
	"github.com/trendscout/research-service/internal/middleware"
	"github.com/trendscout/research-service/internal/scoring"
	"github.com/trendscout/research-service/internal/store"
	"github.com/trendscout/research-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting research service")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.GetConfigFromEnv())
	if err != nil {
		logger.Warn().Err(err).Msg("Telemetry init failed, continuing without it")
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	var analysisStore *store.Store
	if dbURL := config.GetDatabaseURL(); dbURL != "" {
		if err := database.Connect(
			ctx,
			dbURL,
			cfg.Database.MaxConnections,
			cfg.Database.MinConnections,
			cfg.Database.MaxConnLifetime,
			cfg.Database.MaxConnIdleTime,
		); err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer database.Close()
		logger.Info().Msg("Database connected")

		analysisStore = store.New(database.Pool(), cfg.Cache.TTL)
		if err := analysisStore.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("Failed to apply analyses schema")
		}
	} else {
		logger.Warn().Msg("DATABASE_URL not set, analyses will not be cached")
	}

	rateOverrides := &ratelimit.PartialConfig{
		RequestsPerSecond: &cfg.RateLimit.RequestsPerSecond,
		Burst:             &cfg.RateLimit.Burst,
		MaxRetries:        &cfg.RateLimit.MaxRetries,
		InitialBackoffMs:  &cfg.RateLimit.InitialBackoffMs,
		MaxBackoffMs:      &cfg.RateLimit.MaxBackoffMs,
	}

	provider := llm.NewProvider(llm.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		RateLimit:   rateOverrides,
	})
	orchestrator := scoring.NewOrchestrator(scoring.NewAIScorer(provider), nil)

	searchClient := catalog.NewClient(catalog.ClientConfig{
		BaseURL:   cfg.Search.BaseURL,
		APIKey:    cfg.Search.APIKey,
		APIHost:   cfg.Search.APIHost,
		RateLimit: rateOverrides,
	})
	if !searchClient.Configured() {
		logger.Warn().Msg("Search provider not configured, only pre-normalized analyze requests will work")
	}

	research := handlers.NewResearchHandler(analysisStore, searchClient, orchestrator)

	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuth(cfg.Server.InternalKey))
	internal.Use(middleware.ServiceRateLimit(50, 100))
	{
		internal.GET("/health", handlers.HealthCheck)
		internal.POST("/analyze", research.Analyze)

		products := internal.Group("/products")
		{
			products.GET("/search", research.SearchAndAnalyze)
			products.GET("/winners", research.Winners)
			products.GET("/stats", research.Stats)
			products.POST("/export", research.ExportReport)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Telemetry shutdown failed")
	}

	logger.Info().Msg("Server exited")
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "research-service").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		event := logger.Info()
		if c.Writer.Status() >= 500 {
			event = logger.Error()
		} else if c.Writer.Status() >= 400 {
			event = logger.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("Request")
	})
	router.Use(middleware.RateLimit())
}
