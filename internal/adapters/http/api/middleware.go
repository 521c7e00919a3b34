package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/payscout/pkg/logger"
	"github.com/okian/payscout/pkg/metrics"
)

// RequestIDHeader carries the request identifier in and out.
const RequestIDHeader = "X-Request-ID"

// statusClass labels an error status for metrics.
type statusClass struct {
	errorType string
	severity  string
}

// Match outcomes each have their own status, so they get their own labels
// rather than collapsing into client_error.
var statusClasses = map[int]statusClass{
	http.StatusBadRequest:          {"invalid_input", "low"},
	http.StatusNotFound:            {"not_found", "low"},
	http.StatusConflict:            {"stale", "low"},
	http.StatusTooManyRequests:     {"busy", "medium"},
	http.StatusInternalServerError: {"server_error", "high"},
	http.StatusBadGateway:          {"upstream", "high"},
	http.StatusServiceUnavailable:  {"unavailable", "high"},
}

func classifyStatus(code int) statusClass {
	if c, ok := statusClasses[code]; ok {
		return c
	}
	switch {
	case code >= http.StatusInternalServerError:
		return statusClass{"server_error", "high"}
	case code >= http.StatusBadRequest:
		return statusClass{"client_error", "medium"}
	}
	return statusClass{"none", "none"}
}

// MetricsMiddleware tags the request with an ID, records Prometheus metrics
// under endpoint and logs server side failures.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		elapsed := time.Since(start)
		durationMs := float64(elapsed.Milliseconds())
		code := strconv.Itoa(wrapped.statusCode)
		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, durationMs)

		if wrapped.statusCode < http.StatusBadRequest {
			return
		}
		class := classifyStatus(wrapped.statusCode)
		metrics.RecordErrorByEndpoint(endpoint, r.Method, class.errorType)
		metrics.RecordErrorByType(class.errorType, class.severity)
		metrics.RecordErrorLatency("http", class.errorType, durationMs)

		if wrapped.statusCode >= http.StatusInternalServerError {
			logger.Get().Warn(r.Context(), "request failed",
				logger.String("endpoint", endpoint),
				logger.String("method", r.Method),
				logger.Int("status", wrapped.statusCode),
				logger.String("error_type", class.errorType),
				logger.String("request_id", requestID),
				logger.Int("bytes", wrapped.bytes),
				logger.Duration("elapsed", elapsed),
			)
		}
	}
}

// responseWriter records the first status written and the body size.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	bytes       int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.wroteHeader = true
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}
