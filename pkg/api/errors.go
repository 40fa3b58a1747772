package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a structured error body returned by the backend. Callers can
// render Message directly, it is the server's user-facing text.
type Error struct {
	HTTPStatus int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: status %d", e.HTTPStatus)
	}
	return fmt.Sprintf("server error %s: %s", e.Code, e.Message)
}

// AsServerError extracts a structured server error from an error chain.
// The second return is false for transport-level failures, i.e. calls
// that never produced a response.
func AsServerError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsAuthError reports whether err is a server rejection of the
// credentials. Token expiry is not detected client-side, this is how the
// caller learns about it.
func IsAuthError(err error) bool {
	se, ok := AsServerError(err)
	return ok && (se.HTTPStatus == http.StatusUnauthorized || se.HTTPStatus == http.StatusForbidden)
}

// decodeError turns a non-2xx response into an *Error, keeping whatever
// the server sent. Bodies that are not the expected JSON shape still
// surface, truncated, as the message.
func decodeError(status int, body []byte) error {
	e := &Error{HTTPStatus: status}
	if len(body) > 0 && json.Unmarshal(body, e) == nil && (e.Code != "" || e.Message != "") {
		return e
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	e.Message = msg
	return e
}
