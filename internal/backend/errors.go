package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnavailable wraps transport failures where no response arrived.
var ErrUnavailable = errors.New("cannot reach the server, check the network or whether the backend is running")

// ErrNoReminderID is returned when a create succeeds without echoing an id.
var ErrNoReminderID = errors.New("failed to create reminder: server returned no reminder id")

// Error is a non-2xx response from the backend.
type Error struct {
	Status int
	Detail string // Server-provided detail, if any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message(), e.Status)
}

// Message is the user-facing text for the response status.
func (e *Error) Message() string {
	switch e.Status {
	case http.StatusUnauthorized:
		return "session expired or insufficient permission, please log in again"
	case http.StatusForbidden:
		return "access denied"
	case http.StatusNotFound:
		return "requested resource does not exist"
	case http.StatusInternalServerError:
		return "internal server error"
	default:
		if e.Detail != "" {
			return e.Detail
		}
		return "system error"
	}
}

// IsUnauthorized reports whether err is a 401 from the backend or a
// locally detected expired session.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

func newError(status int, body []byte) *Error {
	return &Error{Status: status, Detail: parseDetail(body)}
}

// parseDetail extracts {"detail": ...}. Non-string details (validation
// error lists) are kept as raw JSON.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(payload.Detail))
}

func retryable(err error) bool {
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status >= http.StatusInternalServerError
}
