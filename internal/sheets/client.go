package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	// DefaultRange is the A1 range rows are appended to when the config
	// does not override it.
	DefaultRange = "Sheet1!A:C"

	requestTimeout = 10 * time.Second
)

var ErrEmptyRow = errors.New("row data cannot be empty")

// Client appends rows to a single Google spreadsheet.
type Client struct {
	logger        *slog.Logger
	service       *sheets.Service
	spreadsheetID string
}

// NewClient builds a Sheets client from a service-account credentials file.
// A construction failure is meant to be fatal at startup.
func NewClient(ctx context.Context, logger *slog.Logger, credentialsFile, spreadsheetID string) (*Client, error) {
	service, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init sheets service: %w", err)
	}

	return &Client{
		logger:        logger,
		service:       service,
		spreadsheetID: spreadsheetID,
	}, nil
}

// AppendRow appends a single row of values to rng. Every value is sanitized
// against formula injection before transmission; values are sent with
// USER_ENTERED interpretation so the spreadsheet auto-types dates and
// numbers. Errors carry the attempted payload.
func (c *Client) AppendRow(ctx context.Context, values []string, rng string) error {
	if len(values) == 0 {
		c.logger.Warn("Attempted to append empty row")
		return ErrEmptyRow
	}

	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = Sanitize(v)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	body := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := c.service.Spreadsheets.Values.
		Append(c.spreadsheetID, rng, body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row %v: %w", values, err)
	}
	return nil
}

// Sanitize neutralizes values that spreadsheet software would interpret as
// formulas by prefixing them with a quote.
func Sanitize(value string) string {
	if value == "" {
		return value
	}
	switch value[0] {
	case '=', '+', '-', '@', '\t', '\r', '\n':
		return "'" + value
	}
	return value
}
