package telegram

import "fmt"

// TransportError covers connection, DNS and timeout failures before any
// response was decoded.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("telegram request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError means the response body was not valid JSON. It keeps the
// HTTP status and a short raw-body prefix for diagnosis.
type ProtocolError struct {
	StatusCode int
	RawBody    string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("telegram response is not valid JSON (status %d): %q", e.StatusCode, e.RawBody)
}

// APIError is a structurally valid response with ok=false.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error (%d): %s", e.Code, e.Description)
}
