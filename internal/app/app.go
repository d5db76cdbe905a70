package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"telegram-sheets-crm/internal/config"
	"telegram-sheets-crm/internal/metrics"
	"telegram-sheets-crm/internal/repository"
	"telegram-sheets-crm/internal/service"
	"telegram-sheets-crm/internal/sheets"
	"telegram-sheets-crm/internal/telegram"
	"telegram-sheets-crm/internal/transport/webhook"

	"gorm.io/gorm"
)

type App struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a.logger.Info("Starting Telegram Sheets CRM")

	var db *gorm.DB
	var err error
	if a.cfg.DBDSN != "" {
		db, err = repository.NewPostgresDB(a.cfg.DBDSN)
	} else {
		db, err = repository.NewSQLiteDB(a.cfg.DBFilename)
	}
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}

	updateRepo := repository.NewUpdateRepository(db)

	sheetsClient, err := sheets.NewClient(ctx, a.logger, a.cfg.CredentialsFile, a.cfg.SheetID)
	if err != nil {
		return fmt.Errorf("failed to init sheets client: %w", err)
	}

	tgClient := telegram.NewClient(a.logger, a.cfg.BotToken)

	svc := service.NewWebhookService(a.logger, updateRepo, sheetsClient, tgClient, a.cfg.Location(), a.cfg.SheetRange)
	h := webhook.NewHandler(a.logger, svc, a.cfg.WebhookSecret)

	metricsSrv := metrics.NewServer(a.logger, a.cfg.MetricsAddr)
	go func() {
		if err := metricsSrv.Listen(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("Metrics server failed", "error", err)
		}
	}()

	srv := webhook.NewServer(a.logger, h, a.cfg.Port)
	cleanup, err := srv.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start webhook server: %w", err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			a.logger.Error("Cleanup failed", "error", err)
		}
	}()

	<-ctx.Done()
	a.logger.Info("Shutting down...")

	return nil
}
