package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sga-feedback/backend/internal/api"
	"github.com/sga-feedback/backend/internal/delivery"
	"github.com/sga-feedback/backend/internal/extension"
	"github.com/sga-feedback/backend/internal/history"
	"github.com/sga-feedback/backend/internal/metrics"
	"github.com/sga-feedback/backend/internal/middleware/ratelimit"
	"github.com/sga-feedback/backend/internal/settings"
	"github.com/sga-feedback/backend/internal/webhook"
	"github.com/sga-feedback/backend/pkg/circuitbreaker"
	"github.com/sga-feedback/backend/pkg/config"
	appLogger "github.com/sga-feedback/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting SGA feedback server")

	metrics.Init()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	backends, err := openBackends(ctx, cfg)
	cancel()
	if err != nil {
		appLogger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer backends.Close()

	settingsStore := settings.NewStore(backends.settings, cfg.Webhook.DefaultURL)
	installed, err := settingsStore.Install(context.Background())
	if err != nil {
		appLogger.Warn("Failed to write install defaults", zap.Error(err))
	} else if installed {
		appLogger.Info("Install defaults written", zap.String("webhook_url", cfg.Webhook.DefaultURL))
	}

	historyLog := history.NewLog(backends.history, cfg.History.Serialize)
	webhookClient := webhook.NewClient(time.Duration(cfg.Webhook.TimeoutSec) * time.Second)

	var opts []delivery.Option
	if cfg.Webhook.Breaker.Enabled {
		opts = append(opts, delivery.WithBreakers(circuitbreaker.NewRegistry(circuitbreaker.Config{
			FailureThreshold: cfg.Webhook.Breaker.FailureThreshold,
			OpenTimeout:      time.Duration(cfg.Webhook.Breaker.OpenTimeoutSec) * time.Second,
			Logger:           appLogger.Log,
		})))
		appLogger.Info("Webhook circuit breaker enabled",
			zap.Uint32("failure_threshold", cfg.Webhook.Breaker.FailureThreshold),
		)
	}
	manager := delivery.NewManager(webhookClient, settingsStore, historyLog, opts...)

	router := extension.NewRouter(manager, backends.history)

	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Logger:            appLogger.Log,
	})
	defer limiter.Stop()

	app := api.New(api.Options{
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:      cfg.Server.BodyLimit,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Development:    cfg.Server.Development,
		AccessLog:      true,
		Logger:         appLogger.Log,
	}, api.Deps{
		Submitter:   manager,
		History:     historyLog,
		Settings:    settingsStore,
		Router:      router,
		RateLimiter: limiter,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
