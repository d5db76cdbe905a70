package webhook

import (
	"crypto/hmac"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"telegram-sheets-crm/internal/metrics"
	"telegram-sheets-crm/internal/service"

	"github.com/google/uuid"
)

// SecretTokenHeader is set by Telegram on every webhook delivery when a
// secret was registered with setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

const defaultUsername = "Unknown"

type Handler struct {
	logger *slog.Logger
	svc    service.Service
	secret string
}

func NewHandler(logger *slog.Logger, svc service.Service, secret string) *Handler {
	return &Handler{
		logger: logger,
		svc:    svc,
		secret: secret,
	}
}

type updatePayload struct {
	UpdateID *int64          `json:"update_id"`
	Message  *messagePayload `json:"message"`
}

type messagePayload struct {
	Chat *chatPayload `json:"chat"`
	From *userPayload `json:"from"`
	Text string       `json:"text"`
}

type chatPayload struct {
	ID int64 `json:"id"`
}

type userPayload struct {
	Username string `json:"username"`
}

type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Status: "success", Message: "telegram-sheets-crm is running!"})
}

// Webhook is the ingestion entry point. Order is binding: secret check,
// then structural validation, then the pipeline; downstream side-effect
// failures never change the response.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := h.logger.With("request_id", uuid.NewString())

	status := "error"
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Panic while handling webhook", "panic", rec)
			writeJSON(w, http.StatusInternalServerError, apiResponse{Status: "error", Message: "Internal Server Error"})
		}
		metrics.IncWebhookRequest(status)
		metrics.ObserveProcessing(status, time.Since(start).Seconds())
	}()

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, apiResponse{Status: "error", Message: "Method Not Allowed"})
		return
	}

	remoteToken := r.Header.Get(SecretTokenHeader)
	if h.secret == "" || !secureCompare(h.secret, remoteToken) {
		logger.Error("Security alert: unauthorized webhook access attempt", "remote_addr", r.RemoteAddr)
		status = "unauthorized"
		writeJSON(w, http.StatusForbidden, apiResponse{Status: "error", Message: "Unauthorized"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warn("Failed to read webhook body", "error", err)
		status = "invalid"
		writeJSON(w, http.StatusBadRequest, apiResponse{Status: "error", Message: "No update_id"})
		return
	}

	var payload updatePayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.UpdateID == nil {
		logger.Warn("Invalid webhook data received: missing update_id")
		status = "invalid"
		writeJSON(w, http.StatusBadRequest, apiResponse{Status: "error", Message: "No update_id"})
		return
	}

	upd := extractUpdate(&payload, body)

	outcome, err := h.svc.ProcessUpdate(r.Context(), upd)
	if err != nil {
		logger.Error("Failed to process update", "update_id", upd.UpdateID, "error", err)
		writeJSON(w, http.StatusInternalServerError, apiResponse{Status: "error", Message: "Internal Server Error"})
		return
	}

	if outcome == service.StatusSkipped {
		status = "skipped"
		writeJSON(w, http.StatusOK, apiResponse{Status: "skipped", Message: "Already processed"})
		return
	}

	status = "success"
	writeJSON(w, http.StatusOK, apiResponse{Status: "success"})
}

func extractUpdate(payload *updatePayload, raw []byte) service.InboundUpdate {
	upd := service.InboundUpdate{
		UpdateID: *payload.UpdateID,
		Username: defaultUsername,
		Raw:      raw,
	}
	if payload.Message != nil {
		upd.Text = payload.Message.Text
		if payload.Message.Chat != nil {
			chatID := payload.Message.Chat.ID
			upd.ChatID = &chatID
		}
		if payload.Message.From != nil && payload.Message.From.Username != "" {
			upd.Username = payload.Message.From.Username
		}
	}
	return upd
}

// secureCompare takes time independent of where the first mismatch occurs.
func secureCompare(expected, actual string) bool {
	return hmac.Equal([]byte(expected), []byte(actual))
}

func writeJSON(w http.ResponseWriter, code int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
