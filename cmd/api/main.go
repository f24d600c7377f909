// Package main is the entry point for the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/currents/internal/analysis"
	"github.com/onnwee/currents/internal/api"
	"github.com/onnwee/currents/internal/auth"
	"github.com/onnwee/currents/internal/cache"
	"github.com/onnwee/currents/internal/config"
	"github.com/onnwee/currents/internal/db"
	"github.com/onnwee/currents/internal/feed"
	"github.com/onnwee/currents/internal/health"
	"github.com/onnwee/currents/internal/interaction"
	"github.com/onnwee/currents/internal/interest"
	"github.com/onnwee/currents/internal/middleware"
	"github.com/onnwee/currents/internal/post"
	"github.com/onnwee/currents/internal/profile"
	"github.com/onnwee/currents/internal/scoring"
	"github.com/onnwee/currents/internal/similarity"
	"github.com/onnwee/currents/internal/tracing"
	"github.com/onnwee/currents/internal/trending"
)

const serviceName = "currents-api"

func main() {
	configPath := flag.String("config", "", "path to optional YAML config file")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("Currents API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, cfgErrs := config.Load(*configPath)

	// Initialize logger before reporting config problems so they come
	// out structured.
	env := config.DefaultEnv
	if cfg != nil {
		env = cfg.Env
	}
	logger := middleware.NewLogger(env)
	slog.SetDefault(logger)

	if len(cfgErrs) > 0 {
		for _, err := range cfgErrs {
			logger.Error("configuration error", "error", err)
		}
		os.Exit(1)
	}

	logger.Info("configuration loaded", "summary", cfg.LogSummary())

	// Distributed tracing. Sample everything in development, a fraction
	// in production.
	samplingRate := 0.1
	insecure := false
	if cfg.Env != "production" {
		samplingRate = 1.0
		insecure = true
	}
	tracerProvider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplingRate: samplingRate,
		InsecureMode: insecure,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Database and Redis connections.
	dbConn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("invalid redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Stores and cache.
	postStore := post.NewPostgresStore(dbConn)
	profileStore := profile.NewPostgresStore(dbConn)
	interactionStore := interaction.NewPostgresStore(dbConn)
	cacheClient := cache.NewRedisCache(redisClient)

	// Metrics registry shared by all components.
	registry := prometheus.NewRegistry()

	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register http metrics", "error", err)
		os.Exit(1)
	}

	trendingMetrics := trending.NewMetrics()
	if err := trendingMetrics.Register(registry); err != nil {
		logger.Error("failed to register trending metrics", "error", err)
		os.Exit(1)
	}
	tracker := trending.NewRedisTracker(redisClient, trendingMetrics)

	feedMetrics := feed.NewMetrics()
	if err := feedMetrics.Register(registry); err != nil {
		logger.Error("failed to register feed metrics", "error", err)
		os.Exit(1)
	}

	// Scoring weights. Defaults apply when no calibration file is given.
	var weights *scoring.Weights
	if cfg.CalibrationPath != "" {
		weights, err = scoring.LoadCalibration(cfg.CalibrationPath)
		if err != nil {
			logger.Error("failed to load calibration weights", "path", cfg.CalibrationPath, "error", err)
			os.Exit(1)
		}
		logger.Info("calibration weights loaded", "path", cfg.CalibrationPath)
	}
	scorer := scoring.NewContentScorer(weights)

	engine := feed.NewEngine(feed.Deps{
		Profiles:     profileStore,
		Posts:        postStore,
		Interactions: interactionStore,
		Cache:        cacheClient,
		Trending:     tracker,
		Similarity:   similarity.StubSource{},
	}, feed.Config{
		Scorer:          scorer,
		ProfileCacheTTL: time.Duration(cfg.ProfileCacheTTLSeconds) * time.Second,
		Metrics:         feedMetrics,
		Logger:          logger,
	})

	// Content analysis is optional. Without an API key the interest
	// updater skips posts that have no stored embedding.
	var analyzer analysis.Analyzer
	if cfg.OpenAIAPIKey != "" {
		analyzer = analysis.NewOpenAIAnalyzer(cfg.OpenAIAPIKey)
		logger.Info("content analysis enabled")
	} else {
		logger.Warn("OPENAI_API_KEY not set, embedding fallback disabled")
	}
	updater := interest.NewUpdater(profileStore, postStore, cacheClient, analyzer, logger)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTPreviousSecret)

	feedHandlers := api.NewFeedHandlers(engine, logger)
	interactionHandlers := api.NewInteractionHandlers(tracker, updater, logger)
	healthHandlers := api.NewHealthHandlers(api.HealthHandlersConfig{
		DBChecker:    health.NewDBChecker(dbConn),
		RedisChecker: health.NewRedisChecker(redisClient),
	})

	handler := newHandler(handlerDeps{
		logger:              logger,
		jwtService:          jwtService,
		httpMetrics:         httpMetrics,
		registry:            registry,
		feedHandlers:        feedHandlers,
		interactionHandlers: interactionHandlers,
		healthHandlers:      healthHandlers,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := tracerProvider.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown tracer provider", "error", err)
	}

	logger.Info("server stopped")
}

// handlerDeps holds everything needed to assemble the HTTP handler tree.
type handlerDeps struct {
	logger              *slog.Logger
	jwtService          *auth.JWTService
	httpMetrics         *middleware.Metrics
	registry            *prometheus.Registry
	feedHandlers        *api.FeedHandlers
	interactionHandlers *api.InteractionHandlers
	healthHandlers      *api.HealthHandlers
}

// newHandler builds the route table and wraps it in the middleware
// chain: RequestID -> Tracing -> Logging -> HTTPMetrics -> routes.
func newHandler(deps handlerDeps) http.Handler {
	mux := http.NewServeMux()

	requireAuth := auth.RequireAuth(deps.jwtService)
	mux.Handle("/api/v1/feed", requireAuth(http.HandlerFunc(deps.feedHandlers.GetFeed)))
	mux.Handle("/api/v1/interaction", requireAuth(http.HandlerFunc(deps.interactionHandlers.RecordInteraction)))

	mux.HandleFunc("/health", deps.healthHandlers.Health)
	mux.HandleFunc("/ready", deps.healthHandlers.Ready)

	mux.Handle("/metrics", promhttp.HandlerFor(deps.registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Only handle exact root path, everything else returns 404
		if r.URL.Path != "/" {
			api.WriteError(w, r.Context(), http.StatusNotFound, api.ErrCodeNotFound, "The requested resource was not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"currents-api","version":"0.0.1"}`)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	return middleware.RequestID(
		middleware.Tracing(serviceName)(
			middleware.Logging(deps.logger)(
				middleware.HTTPMetrics(deps.httpMetrics)(mux),
			),
		),
	)
}
