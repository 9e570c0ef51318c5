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
	"go.uber.org/zap"

	"github.com/kailas-cloud/docquery/internal/audit"
	"github.com/kailas-cloud/docquery/internal/config"
	"github.com/kailas-cloud/docquery/internal/db"
	"github.com/kailas-cloud/docquery/internal/domain/embedding"
	"github.com/kailas-cloud/docquery/internal/domain/ratelimit"
	"github.com/kailas-cloud/docquery/internal/domain/sqlguard"
	logpkg "github.com/kailas-cloud/docquery/internal/logger"
	"github.com/kailas-cloud/docquery/internal/metrics"
	"github.com/kailas-cloud/docquery/internal/repository/auditlog"
	documentrepo "github.com/kailas-cloud/docquery/internal/repository/documents"
	vectorrepo "github.com/kailas-cloud/docquery/internal/repository/vectors"
	chiTransport "github.com/kailas-cloud/docquery/internal/transport/chi"
	openaiLLM "github.com/kailas-cloud/docquery/internal/transport/openai"
	reindexuc "github.com/kailas-cloud/docquery/internal/usecase/reindex"
	searchuc "github.com/kailas-cloud/docquery/internal/usecase/search"
	structureduc "github.com/kailas-cloud/docquery/internal/usecase/structured"
	"github.com/kailas-cloud/docquery/internal/version"
)

func main() {
	// Load configuration based on ENV
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

	logger.Info("Starting docquery engine",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_path", cfg.Database.Path),
	)

	// Open the document store and wait for it to be ready
	store, err := db.Open(db.Config{Path: cfg.Database.Path})
	if err != nil {
		logger.Fatal("Failed to open document store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Document store not ready", zap.Error(err))
	}
	logger.Info("Connected to document store")

	// Register query metrics explicitly (no init())
	metrics.RegisterQueryMetrics()

	// Audit: ring + log, plus the durable stream sink when configured
	ring := audit.NewRing(cfg.Audit.RingSize)
	var sinks []audit.Sink
	if len(cfg.Audit.Addrs) > 0 {
		streamSink, err := auditlog.New(auditlog.Config{
			Addrs:    cfg.Audit.Addrs,
			Username: cfg.Audit.Username,
			Password: cfg.Audit.Password,
			Stream:   cfg.Audit.Stream,
			MaxLen:   cfg.Audit.MaxLen,
		})
		if err != nil {
			logger.Fatal("Failed to create audit stream sink", zap.Error(err))
		}
		defer streamSink.Close()
		sinks = append(sinks, streamSink)
		logger.Info("Audit stream sink enabled", zap.String("stream", cfg.Audit.Stream))
	}
	recorder := audit.NewRecorder(ring, logger, sinks...)

	// Engine components — composition root, no hidden globals
	engine := embedding.NewEngine()
	limiter := ratelimit.New(cfg.Query.RatePerMinute, cfg.Query.RatePerHour)
	validator := sqlguard.NewValidator([]string{"documents", "embeddings"}, cfg.Query.MaxRows)
	builder := structureduc.New()

	gateway := documentrepo.New(store, logger).
		WithTimeout(time.Duration(cfg.Query.ExecTimeoutSec) * time.Second)
	vectorStore := vectorrepo.New(store, engine)

	llm := openaiLLM.New(&openaiLLM.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		Logger:  logger,
	})
	if cfg.LLM.APIKey == "" {
		logger.Warn("LLM adapter not configured; analysis disabled")
	}

	searchSvc := searchuc.New(
		gateway, vectorStore, validator, builder, limiter, llm, recorder,
		searchuc.Options{
			TopK:          cfg.Query.SearchTopK,
			MinSimilarity: cfg.Query.SearchMinScore,
		},
	)

	// Background jobs stop when appCtx is canceled on shutdown
	appCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	reindexSvc := reindexuc.New(appCtx, gateway, vectorStore, engine, logger)

	server := chiTransport.NewServer(searchSvc, reindexSvc, store, llm, logger)

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
	stopJobs()

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

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
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
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
