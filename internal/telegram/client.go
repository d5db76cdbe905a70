package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.telegram.org"

	// MaxMessageLength is the Telegram Bot API limit for message text.
	MaxMessageLength = 4096

	requestTimeout = 10 * time.Second
	rawBodyPreview = 200
)

type Response struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Client talks to the Telegram Bot API over HTTP.
type Client struct {
	logger  *slog.Logger
	token   string
	client  *http.Client
	baseURL string
}

func NewClient(logger *slog.Logger, token string) *Client {
	return &Client{
		logger:  logger,
		token:   token,
		client:  &http.Client{Timeout: requestTimeout},
		baseURL: defaultBaseURL,
	}
}

// WithBaseURL overrides the API base URL (for testing).
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// SendMessage sends text to a chat, truncating it to MaxMessageLength runes
// first. Failures come back as *TransportError, *ProtocolError or *APIError;
// the caller decides whether they are fatal.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text, parseMode string) (*Response, error) {
	params := url.Values{
		"chat_id":    {strconv.FormatInt(chatID, 10)},
		"text":       {Truncate(text, MaxMessageLength)},
		"parse_mode": {parseMode},
	}

	resp, err := c.sendRequest(ctx, "sendMessage", params)
	if err != nil {
		c.logger.Error("Failed to send message", "chat_id", chatID, "error", err)
		return nil, err
	}
	return resp, nil
}

func (c *Client) sendRequest(ctx context.Context, method string, params url.Values) (*Response, error) {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var decoded Response
	if err := json.Unmarshal(body, &decoded); err != nil {
		preview := string(body)
		if len(preview) > rawBodyPreview {
			preview = preview[:rawBodyPreview]
		}
		return nil, &ProtocolError{StatusCode: httpResp.StatusCode, RawBody: preview}
	}

	if !decoded.OK {
		code := decoded.ErrorCode
		if code == 0 {
			code = httpResp.StatusCode
		}
		description := decoded.Description
		if description == "" {
			description = "Unknown API error"
		}
		return nil, &APIError{Code: code, Description: description}
	}

	return &decoded, nil
}

// Truncate cuts text to at most limit runes, with no ellipsis.
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
