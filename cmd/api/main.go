package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	server "todolist/internal/adapter/http"
	"todolist/internal/core/telemetry"
	. "todolist/internal/shared"
)

func main() {
	config, err := LoadConfig()

	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	logger, err := NewLokiLogger(config.Telemetry.ServiceName, config.Logging.LokiURL)

	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}

	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := InitTelemetry(ctx, config.Telemetry, logger.Zap())

	if err != nil {
		logger.Logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	metrics := telemetry.NewAppMetrics(tel.PrometheusRegistry)
	metrics.StartSystemMetrics(ctx)

	if err := server.StartServerWithConfig(ctx, metrics, logger, config); err != nil {
		logger.Logger.Error("Server stopped", zap.Error(err))
		return
	}

	logger.Logger.Info("Shut down gracefully")
}
