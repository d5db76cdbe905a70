package service

import (
	"context"

	"telegram-sheets-crm/internal/repository"
	"telegram-sheets-crm/internal/telegram"
)

type MockUpdateRepository struct {
	ExistsFunc func(ctx context.Context, updateID int64) (bool, error)
	InsertFunc func(ctx context.Context, update *repository.TelegramUpdate) error
}

func (m *MockUpdateRepository) Exists(ctx context.Context, updateID int64) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, updateID)
	}
	return false, nil
}

func (m *MockUpdateRepository) Insert(ctx context.Context, update *repository.TelegramUpdate) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, update)
	}
	return nil
}

type MockSheetAppender struct {
	AppendRowFunc func(ctx context.Context, values []string, rng string) error
}

func (m *MockSheetAppender) AppendRow(ctx context.Context, values []string, rng string) error {
	if m.AppendRowFunc != nil {
		return m.AppendRowFunc(ctx, values, rng)
	}
	return nil
}

type MockMessageGateway struct {
	SendMessageFunc func(ctx context.Context, chatID int64, text, parseMode string) (*telegram.Response, error)
}

func (m *MockMessageGateway) SendMessage(ctx context.Context, chatID int64, text, parseMode string) (*telegram.Response, error) {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, chatID, text, parseMode)
	}
	return &telegram.Response{OK: true}, nil
}
