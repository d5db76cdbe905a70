package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"telegram-sheets-crm/internal/messages"
	"telegram-sheets-crm/internal/metrics"
	"telegram-sheets-crm/internal/repository"
	"telegram-sheets-crm/internal/telegram"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const sheetTimestampLayout = "2006-01-02 15:04:05"

// Status is the pipeline outcome for one webhook delivery.
type Status string

const (
	// StatusProcessed means the update was new and the side-effect
	// sequence ran (each step best-effort).
	StatusProcessed Status = "processed"
	// StatusSkipped means the update was already recorded, either found
	// up front or lost the insert race to a concurrent delivery.
	StatusSkipped Status = "skipped"
)

// InboundUpdate carries the fields extracted from one webhook body plus the
// raw payload retained for audit.
type InboundUpdate struct {
	UpdateID int64
	ChatID   *int64
	Username string
	Text     string
	Raw      []byte
}

// MessageGateway sends outbound text messages to the messaging platform.
type MessageGateway interface {
	SendMessage(ctx context.Context, chatID int64, text, parseMode string) (*telegram.Response, error)
}

// SheetAppender appends one row to the logging spreadsheet.
type SheetAppender interface {
	AppendRow(ctx context.Context, values []string, rng string) error
}

type Service interface {
	ProcessUpdate(ctx context.Context, upd InboundUpdate) (Status, error)
}

type WebhookService struct {
	logger     *slog.Logger
	updates    repository.UpdateRepository
	sheets     SheetAppender
	gateway    MessageGateway
	location   *time.Location
	sheetRange string
	tracer     trace.Tracer
}

func NewWebhookService(
	logger *slog.Logger,
	updates repository.UpdateRepository,
	sheets SheetAppender,
	gateway MessageGateway,
	location *time.Location,
	sheetRange string,
) Service {
	if location == nil {
		location = time.UTC
	}
	return &WebhookService{
		logger:     logger,
		updates:    updates,
		sheets:     sheets,
		gateway:    gateway,
		location:   location,
		sheetRange: sheetRange,
		tracer:     otel.Tracer("service"),
	}
}

// ProcessUpdate runs the pipeline for one authenticated, validated update:
// idempotency check, persistence, then the two best-effort side effects.
// The spreadsheet append and the reply each swallow their own failures; only
// a store read error propagates, everything after the idempotency check
// resolves to a Status.
func (s *WebhookService) ProcessUpdate(ctx context.Context, upd InboundUpdate) (Status, error) {
	ctx, span := s.tracer.Start(ctx, "ProcessUpdate")
	defer span.End()
	span.SetAttributes(attribute.Int64("update_id", upd.UpdateID))

	exists, err := s.updates.Exists(ctx, upd.UpdateID)
	if err != nil {
		return "", fmt.Errorf("failed to check for duplicate update: %w", err)
	}
	if exists {
		s.logger.Info("Update already processed, skipping", "update_id", upd.UpdateID)
		return StatusSkipped, nil
	}

	if duplicate := s.storeUpdate(ctx, upd); duplicate {
		return StatusSkipped, nil
	}

	s.appendToSheet(ctx, upd)

	if upd.ChatID != nil {
		s.sendReply(ctx, *upd.ChatID)
	}

	return StatusProcessed, nil
}

// storeUpdate persists the audit record. It reports true only when the
// insert lost a race to a concurrent delivery of the same update_id; any
// other write failure is logged and deliberately non-fatal so an otherwise
// completable interaction is not lost over an auxiliary write.
func (s *WebhookService) storeUpdate(ctx context.Context, upd InboundUpdate) bool {
	raw := string(upd.Raw)
	record := &repository.TelegramUpdate{
		UpdateID:    upd.UpdateID,
		ChatID:      upd.ChatID,
		Username:    &upd.Username,
		RawData:     &raw,
		MessageText: &upd.Text,
	}

	if err := s.updates.Insert(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicateUpdate) {
			s.logger.Info("Update already processed, insert lost race", "update_id", upd.UpdateID)
			return true
		}
		s.logger.Error("Database error while storing update", "update_id", upd.UpdateID, "error", err)
		metrics.IncStoreFailure()
	}
	return false
}

func (s *WebhookService) appendToSheet(ctx context.Context, upd InboundUpdate) {
	row := []string{
		time.Now().In(s.location).Format(sheetTimestampLayout),
		upd.Username,
		upd.Text,
	}
	if err := s.sheets.AppendRow(ctx, row, s.sheetRange); err != nil {
		s.logger.Error("Google Sheets integration failed", "update_id", upd.UpdateID, "error", err)
		metrics.IncSheetAppendFailure()
	}
}

func (s *WebhookService) sendReply(ctx context.Context, chatID int64) {
	if _, err := s.gateway.SendMessage(ctx, chatID, messages.MsgMessageAccepted, "Markdown"); err != nil {
		s.logger.Error("Failed to send reply", "chat_id", chatID, "error", err)
		metrics.IncReplyFailure()
		return
	}
	s.logger.Info("Reply sent", "chat_id", chatID)
}
