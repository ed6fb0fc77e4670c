package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/teamred/preguntas/api"
	"github.com/teamred/preguntas/internal/config"
	"github.com/teamred/preguntas/internal/locales"
	"github.com/teamred/preguntas/internal/repository/mongodb"
	"github.com/teamred/preguntas/internal/stream"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{DSN: cfg.SentryDSN, Release: version}); err != nil {
			log.Fatalf("Failed to init sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	locales.Init(cfg.DefaultLang)

	logger.Info("starting preguntas server",
		slog.String("version", version),
		slog.String("buildTime", buildTime))

	ctx := context.Background()

	client, db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	questionRepo := mongodb.NewQuestionRepository(db)
	userRepo := mongodb.NewUserRepository(db)

	hub := stream.NewHub()

	var watcher *stream.Watcher
	if cfg.WatchChanges {
		watcher = stream.NewWatcher(db, hub, logger)
		watcher.Start(ctx)
	}

	handler := api.SetupRoutes(cfg, version, buildTime, questionRepo, userRepo, hub)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if watcher != nil {
		watcher.Stop()
	}

	if err := client.Disconnect(shutdownCtx); err != nil {
		logger.Error("closing mongodb client", slog.Any("err", err))
	}

	logger.Info("server exited")
}
