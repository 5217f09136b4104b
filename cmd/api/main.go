// Package main is the entry point for the issue tracker API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/devtrack-ai/issue-platform/internal/assistant"
	"github.com/devtrack-ai/issue-platform/internal/config"
	"github.com/devtrack-ai/issue-platform/internal/events"
	"github.com/devtrack-ai/issue-platform/internal/handler"
	"github.com/devtrack-ai/issue-platform/internal/llm"
	"github.com/devtrack-ai/issue-platform/internal/middleware"
	"github.com/devtrack-ai/issue-platform/internal/service"
	"github.com/devtrack-ai/issue-platform/internal/store"
	"github.com/devtrack-ai/issue-platform/pkg/logger"
	"github.com/devtrack-ai/issue-platform/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "issue-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Open the database
	db, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		log.Error("failed to open database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Connect the event publisher when a broker is configured
	var publisher events.Publisher = events.Noop{}
	if cfg.NATSURL != "" {
		natsPub, err := events.Connect(ctx, events.Config{
			URL:   cfg.NATSURL,
			Token: cfg.NATSToken,
		}, log)
		if err != nil {
			log.Warn("failed to connect to NATS, events disabled", zap.Error(err))
		} else {
			publisher = natsPub
			defer natsPub.Close()
		}
	}

	// Initialize LLM client
	var llmClient llm.Client
	switch llm.Provider(cfg.LLMProvider) {
	case llm.ProviderAnthropic:
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	default:
		llmClient, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	}
	if err != nil {
		log.Warn("failed to create LLM client, assistant disabled", zap.Error(err))
		llmClient = nil
	}

	// Initialize services
	issueSvc := service.NewIssueService(db, publisher, log)
	chatAssistant := assistant.New(db, llmClient, assistant.Config{
		Model:          cfg.AIModel,
		MaxTokens:      cfg.AIMaxTokens,
		Temperature:    cfg.AITemperature,
		RequestTimeout: cfg.AIRequestTimeout,
	}, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(db)
	issueHandler := handler.NewIssueHandler(issueSvc, log)
	metaHandler := handler.NewMetaHandler(issueSvc, log)
	aiHandler := handler.NewAIHandler(chatAssistant, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		if cfg.JWTSecret != "" {
			r.Use(middleware.Auth(cfg.JWTSecret))
		}
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		// Issues
		r.Route("/issues", func(r chi.Router) {
			r.Get("/", issueHandler.List)
			r.Post("/", issueHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", issueHandler.Get)
				r.Put("/", issueHandler.Update)
				r.Delete("/", issueHandler.Delete)
				r.Post("/comments", issueHandler.AddComment)
			})
		})

		// Directory and stats
		r.Get("/users", metaHandler.Users)
		r.Get("/labels", metaHandler.Labels)
		r.Get("/stats", metaHandler.Stats)

		// AI assistant
		r.Route("/ai", func(r chi.Router) {
			r.Post("/chat", aiHandler.Chat)
			r.Get("/search", aiHandler.Search)
			r.Get("/suggestions/{issueID}", aiHandler.Suggestions)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
