package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"lavishtravels/internal/config"
	"lavishtravels/internal/httpapi"
	"lavishtravels/internal/logger"
	"lavishtravels/internal/services"
	"lavishtravels/internal/templates"
)

const (
	shutdownTimeout = 30 * time.Second
	readTimeout     = 15 * time.Second
	writeTimeout    = 30 * time.Second
	idleTimeout     = 60 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(logger.Config{
		Format:        cfg.Log.Format,
		Level:         cfg.Log.Level,
		ServiceName:   "lavish-travels-api",
		Version:       cfg.App.Version,
		File:          cfg.Log.File,
		FileMaxSizeMB: cfg.Log.FileMaxSizeMB,
		FileBackups:   cfg.Log.FileBackups,
		FileMaxAge:    cfg.Log.FileMaxAge,
	})
	defer func() { _ = logger.Sync() }()
	lg := logger.Named("api")

	lg.Info("starting",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.Bool("debug", cfg.App.Debug),
		zap.String("host", cfg.App.Host),
		zap.String("port", cfg.App.Port),
		zap.Strings("allowed_origins", cfg.CORS.AllowedOrigins),
		zap.Int("rate_limit_per_minute", cfg.RateLimit.PerMinute),
	)

	emailSvc := services.NewEmailService(&cfg.Email)
	notificationSvc := services.NewNotificationService(&cfg.Email, emailSvc, templates.NewStoreFromConfig(cfg.Templates.Dir))
	inquirySvc := services.NewInquiryService(notificationSvc)
	healthSvc := services.NewHealthService(&cfg.App)

	server := httpapi.New(cfg, inquirySvc, healthSvc)

	addr := fmt.Sprintf("%s:%s", cfg.App.Host, cfg.App.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		ErrorLog:     zap.NewStdLog(logger.Named("http")),
	}

	serverErrors := make(chan error, 1)
	go func() {
		lg.Info("server listening", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("server error: %w", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		lg.Fatal("server failed to start", zap.Error(err))
	case sig := <-shutdown:
		lg.Info("starting graceful shutdown", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			lg.Warn("shutdown timeout exceeded, forcing close")
			_ = httpServer.Close()
		}
	}

	lg.Info("server shutdown complete")
}
