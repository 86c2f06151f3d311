package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/innoreg/internal/config"
	dbRedis "github.com/kailas-cloud/innoreg/internal/db/redis"
	"github.com/kailas-cloud/innoreg/internal/domain"
	"github.com/kailas-cloud/innoreg/internal/domain/verdict"
	logpkg "github.com/kailas-cloud/innoreg/internal/logger"
	"github.com/kailas-cloud/innoreg/internal/metrics"
	"github.com/kailas-cloud/innoreg/internal/repository/embcache"
	recordrepo "github.com/kailas-cloud/innoreg/internal/repository/record"
	chiTransport "github.com/kailas-cloud/innoreg/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/innoreg/internal/transport/openai"
	chatuc "github.com/kailas-cloud/innoreg/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/innoreg/internal/usecase/health"
	recorduc "github.com/kailas-cloud/innoreg/internal/usecase/record"
	retrievaluc "github.com/kailas-cloud/innoreg/internal/usecase/retrieval"
	similarityuc "github.com/kailas-cloud/innoreg/internal/usecase/similarity"
	"github.com/kailas-cloud/innoreg/internal/version"
)

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting innoreg API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register AI metrics explicitly (no init())
	metrics.RegisterAIMetrics()

	// Embedder chain: OpenAI -> Cached -> Instruction (outermost so the
	// cache key includes the instruction prefix).
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.AI.APIKey,
		BaseURL:    cfg.AI.BaseURL,
		Model:      cfg.AI.EmbeddingModel,
		Dimensions: cfg.AI.Dimensions,
		Timeout:    time.Duration(cfg.AI.EmbedTimeoutSec) * time.Second,
		Provider:   cfg.AI.Provider,
		Logger:     logger,
	})

	var docEmbedder domain.Embedder = embcache.New(baseEmbedder, store, metrics.EmbeddingCacheTotal, logger)
	queryEmbedder := docEmbedder
	if cfg.AI.DocumentInstruction != "" {
		docEmbedder = domain.NewInstructionEmbedder(docEmbedder, cfg.AI.DocumentInstruction)
	}
	if cfg.AI.QueryInstruction != "" {
		queryEmbedder = domain.NewInstructionEmbedder(queryEmbedder, cfg.AI.QueryInstruction)
	}
	logger.Info("Embedder created",
		zap.String("provider", cfg.AI.Provider),
		zap.String("model", cfg.AI.EmbeddingModel),
		zap.Int("dimensions", cfg.AI.Dimensions),
	)

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:   cfg.AI.APIKey,
		BaseURL:  cfg.AI.BaseURL,
		Model:    cfg.AI.ChatModel,
		Timeout:  time.Duration(cfg.AI.GenerateTimeoutSec) * time.Second,
		Provider: cfg.AI.Provider,
		Logger:   logger,
	})

	repo := recordrepo.New(store)

	policy := verdict.Policy{
		DuplicateMin: cfg.Similarity.DuplicateMin,
		SimilarMin:   cfg.Similarity.SimilarMin,
	}
	if err := policy.Validate(); err != nil {
		logger.Fatal("Invalid similarity policy", zap.Error(err))
	}

	recordSvc := recorduc.New(repo, docEmbedder, logger)
	retrievalSvc := retrievaluc.New(queryEmbedder, retrievaluc.Options{
		MaxResults:      cfg.Retrieval.MaxResults,
		VectorThreshold: cfg.Retrieval.VectorThreshold,
		PreviewRunes:    cfg.Retrieval.PreviewRunes,
	}, logger)
	chatSvc := chatuc.New(retrievalSvc, generator, logger)
	similaritySvc := similarityuc.New(generator, policy, similarityuc.Options{
		MaxReferences: cfg.Similarity.MaxReferences,
		PreviewRunes:  cfg.Retrieval.PreviewRunes,
	}, logger)
	healthSvc := healthuc.New(store, baseEmbedder)

	server := chiTransport.NewServer(recordSvc, chatSvc, similaritySvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
