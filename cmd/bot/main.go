package main

import (
	"context"
	"log/slog"
	"os"

	"telegram-sheets-crm/internal/app"
	"telegram-sheets-crm/internal/config"
	"telegram-sheets-crm/pkg/telemetry"

	"github.com/joho/godotenv"
)

func main() {

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if cfg.EnableTelemetry {
		shutdown, err := telemetry.InitTracer("telegram-sheets-crm", os.Stderr)
		if err != nil {
			logger.Error("Failed to init telemetry", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error("Failed to shutdown telemetry", "error", err)
				}
			}()
		}
	}

	application := app.NewApp(cfg, logger)

	if err := application.Run(context.Background()); err != nil {
		logger.Error("Application error", "error", err)
		os.Exit(1)
	}
}
