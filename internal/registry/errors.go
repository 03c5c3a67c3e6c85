package registry

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrAuthentication means the registry rejected or never received a
	// credential. The upstream message is kept on the APIError.
	ErrAuthentication = errors.New("authentication failed")
	ErrNotFound       = errors.New("resource not found")
	// ErrUnavailable wraps transport failures: DNS, refused connections,
	// broken bodies.
	ErrUnavailable = errors.New("registry service unavailable")
	ErrTimeout     = errors.New("registry request timed out")
)

// APIError is a non-2xx answer from the registry or the proxy in front of it.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// Unwrap lets callers test 401 and 404 answers with errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrAuthentication
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// StatusCode reports the HTTP status behind err, or 0 when err did not come
// from an HTTP answer.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
