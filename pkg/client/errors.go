package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrSessionEnded marks a terminal authorization failure: the refresh token
// was missing or rejected, the session store has been cleared, and the user
// must sign in again. It is joined with the original *HTTPError.
var ErrSessionEnded = errors.New("session ended")

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
	// Fields holds field-keyed validation messages, e.g. {"username": [...]}.
	Fields map[string][]string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// IsUnauthorized reports a 401 response.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// IsValidation reports a 4xx response other than 401, i.e. a message meant
// for the user that must not be retried.
func IsValidation(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 && httpErr.StatusCode != http.StatusUnauthorized
}

// IsSessionEnded reports a terminal authorization failure.
func IsSessionEnded(err error) bool {
	return errors.Is(err, ErrSessionEnded)
}

// parseHTTPError turns an error body into an HTTPError. The backend answers
// with {"detail": "..."}, {"error": "..."}, or a field-keyed mapping of
// message lists.
func parseHTTPError(status int, body []byte) *HTTPError {
	e := &HTTPError{StatusCode: status}

	var raw map[string]any
	if json.Unmarshal(body, &raw) != nil {
		e.Message = strings.TrimSpace(string(body))
		if e.Message == "" {
			e.Message = http.StatusText(status)
		}
		return e
	}

	for _, key := range []string{"detail", "error"} {
		if s, ok := raw[key].(string); ok && s != "" {
			e.Message = s
			delete(raw, key)
			break
		}
	}

	for field, v := range raw {
		var msgs []string
		switch val := v.(type) {
		case string:
			msgs = []string{val}
		case []any:
			for _, item := range val {
				if s, ok := item.(string); ok {
					msgs = append(msgs, s)
				}
			}
		}
		if len(msgs) == 0 {
			continue
		}
		if e.Fields == nil {
			e.Fields = make(map[string][]string)
		}
		e.Fields[field] = msgs
	}

	if e.Message == "" {
		e.Message = e.fieldSummary()
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// fieldSummary renders Fields as "email: Enter a valid email address.; username: ..."
// in a stable order.
func (e *HTTPError) fieldSummary() string {
	if len(e.Fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "non_field_errors" {
			parts = append(parts, strings.Join(e.Fields[k], " "))
			continue
		}
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return strings.Join(parts, "; ")
}
