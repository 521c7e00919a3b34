package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel kinds for provider errors.
var (
	ErrMissingAPIKey   = errors.New("api key is required")
	ErrUnknownProvider = errors.New("unknown llm provider")
	ErrEmptyResponse   = errors.New("no text candidate in response")
	ErrResponseBlocked = errors.New("response blocked by provider")
)

// HTTPError carries status/body for non-2xx responses.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, snippet(e.Body, 300))
}

// StatusClass returns "4xx", "5xx" or the bare code for anything else.
func (e *HTTPError) StatusClass() string {
	switch {
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return "4xx"
	case e.StatusCode >= 500 && e.StatusCode < 600:
		return "5xx"
	}
	return fmt.Sprintf("%d", e.StatusCode)
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
