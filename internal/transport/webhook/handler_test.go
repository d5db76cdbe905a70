package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"telegram-sheets-crm/internal/service"

	"github.com/stretchr/testify/assert"
)

type MockService struct {
	ProcessUpdateFunc func(ctx context.Context, upd service.InboundUpdate) (service.Status, error)
	Calls             int
	LastUpdate        service.InboundUpdate
}

func (m *MockService) ProcessUpdate(ctx context.Context, upd service.InboundUpdate) (service.Status, error) {
	m.Calls++
	m.LastUpdate = upd
	if m.ProcessUpdateFunc != nil {
		return m.ProcessUpdateFunc(ctx, upd)
	}
	return service.StatusProcessed, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func postWebhook(h *Handler, secret, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	if secret != "" {
		req.Header.Set(SecretTokenHeader, secret)
	}
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response body %q is not valid JSON: %v", rec.Body.String(), err)
	}
	return resp
}

func TestHandler_Webhook_Unauthorized(t *testing.T) {
	tests := []struct {
		name         string
		configSecret string
		remoteSecret string
	}{
		{"wrong secret", "expected-secret", "wrong-secret"},
		{"missing header", "expected-secret", ""},
		{"unconfigured secret", "", ""},
		{"unconfigured secret with header", "", "anything"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockService{}
			h := NewHandler(testLogger(), svc, tt.configSecret)

			rec := postWebhook(h, tt.remoteSecret, `{"update_id":1}`)

			assert.Equal(t, http.StatusForbidden, rec.Code)
			resp := decodeResponse(t, rec)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, "Unauthorized", resp.Message)
			assert.Equal(t, 0, svc.Calls, "pipeline must not run on auth failure")
		})
	}
}

func TestHandler_Webhook_MissingUpdateID(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no update_id field", `{"message":{"text":"hi"}}`},
		{"empty object", `{}`},
		{"malformed json", `{not json`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockService{}
			h := NewHandler(testLogger(), svc, "secret")

			rec := postWebhook(h, "secret", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeResponse(t, rec)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, "No update_id", resp.Message)
			assert.Equal(t, 0, svc.Calls, "nothing may be persisted for invalid bodies")
		})
	}
}

func TestHandler_Webhook_Success(t *testing.T) {
	svc := &MockService{}
	h := NewHandler(testLogger(), svc, "secret")

	body := `{"update_id":42,"message":{"chat":{"id":555},"from":{"username":"someuser"},"text":"hello"}}`
	rec := postWebhook(h, "secret", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "success", resp.Status)

	assert.Equal(t, 1, svc.Calls)
	assert.Equal(t, int64(42), svc.LastUpdate.UpdateID)
	if assert.NotNil(t, svc.LastUpdate.ChatID) {
		assert.Equal(t, int64(555), *svc.LastUpdate.ChatID)
	}
	assert.Equal(t, "someuser", svc.LastUpdate.Username)
	assert.Equal(t, "hello", svc.LastUpdate.Text)
	assert.JSONEq(t, body, string(svc.LastUpdate.Raw), "raw payload retained for audit")
}

func TestHandler_Webhook_DefaultsWhenMessageFieldsAbsent(t *testing.T) {
	svc := &MockService{}
	h := NewHandler(testLogger(), svc, "secret")

	rec := postWebhook(h, "secret", `{"update_id":43}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.Calls)
	assert.Nil(t, svc.LastUpdate.ChatID)
	assert.Equal(t, "Unknown", svc.LastUpdate.Username)
	assert.Equal(t, "", svc.LastUpdate.Text)
}

func TestHandler_Webhook_Skipped(t *testing.T) {
	svc := &MockService{
		ProcessUpdateFunc: func(ctx context.Context, upd service.InboundUpdate) (service.Status, error) {
			return service.StatusSkipped, nil
		},
	}
	h := NewHandler(testLogger(), svc, "secret")

	rec := postWebhook(h, "secret", `{"update_id":42}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "skipped", resp.Status)
	assert.Equal(t, "Already processed", resp.Message)
}

func TestHandler_Webhook_ServiceError(t *testing.T) {
	svc := &MockService{
		ProcessUpdateFunc: func(ctx context.Context, upd service.InboundUpdate) (service.Status, error) {
			return "", errors.New("db connection refused")
		},
	}
	h := NewHandler(testLogger(), svc, "secret")

	rec := postWebhook(h, "secret", `{"update_id":42}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "Internal Server Error", resp.Message)
	assert.NotContains(t, rec.Body.String(), "refused", "internal details must not leak")
}

func TestHandler_Webhook_PanicRecovered(t *testing.T) {
	svc := &MockService{
		ProcessUpdateFunc: func(ctx context.Context, upd service.InboundUpdate) (service.Status, error) {
			panic("boom")
		},
	}
	h := NewHandler(testLogger(), svc, "secret")

	rec := postWebhook(h, "secret", `{"update_id":42}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "Internal Server Error", resp.Message)
}

func TestHandler_Webhook_MethodNotAllowed(t *testing.T) {
	svc := &MockService{}
	h := NewHandler(testLogger(), svc, "secret")

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	req.Header.Set(SecretTokenHeader, "secret")
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, 0, svc.Calls)
}

func TestHandler_Health(t *testing.T) {
	h := NewHandler(testLogger(), &MockService{}, "secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "telegram-sheets-crm is running!", resp.Message)
}

func TestHandler_Health_UnknownPath(t *testing.T) {
	h := NewHandler(testLogger(), &MockService{}, "secret")

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
