package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrUnavailable is returned after a call exhausts its retry budget.
// Handlers translate it into a 503 toward the inbound caller.
var ErrUnavailable = errors.New("upstream unavailable")

// StatusError is a non-2xx response from the upstream provider with the
// upstream's own message preserved where possible.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Message)
}

// isTransient reports whether a status code should trigger cooldown and
// retry. Rate limits and server-side failures are transient; other 4xx
// responses are client errors and are never retried.
func isTransient(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// newStatusError builds a StatusError from an upstream error body,
// extracting the OpenAI-style error message when present.
func newStatusError(status int, body []byte) *StatusError {
	msg := http.StatusText(status)

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		msg = envelope.Error.Message
	} else if len(body) > 0 {
		msg = truncate(string(body), 200)
	}

	return &StatusError{StatusCode: status, Message: msg}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
