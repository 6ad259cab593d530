package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// ConnectionErrorMessage is shown when the server could not be reached at all
const ConnectionErrorMessage = "Error de conexión con el servidor"

var (
	ErrNoRefreshToken = errors.New("no refresh token stored")
	ErrSessionExpired = errors.New("session expired")
)

// APIError is a non-2xx response. Message is the server's human-readable explanation,
// empty when the body carried none.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func newAPIError(resp *Response) *APIError {
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    extractMessage(resp.Body),
		Body:       resp.Body,
	}
}

// ConnectionError means no response was received
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "connection error: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsStatus reports whether err is an APIError with the given status code
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Message reduces any client error to a single string fit for display
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return ConnectionErrorMessage
	}
	return fallback
}

// extractMessage reads, in order: a string "detail", a list of {"msg": ...} under "detail"
// (request validation failures), then "message".
func extractMessage(body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return ""
	}

	if len(payload.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(payload.Detail, &detail); err == nil && detail != "" {
			return detail
		}

		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, item := range items {
				if item.Msg != "" {
					msgs = append(msgs, item.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	return payload.Message
}
