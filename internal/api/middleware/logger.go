package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/pulsesocial/pulse/internal/pkg/logger"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

type logFieldsKey struct{}

// logFields collects values that inner handlers attach to the request log
type logFields struct {
	mu     sync.Mutex
	values map[string]interface{}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// AddLogField adds a field to the request log
func AddLogField(r *http.Request, key string, value interface{}) {
	if f, ok := r.Context().Value(logFieldsKey{}).(*logFields); ok {
		f.mu.Lock()
		f.values[key] = value
		f.mu.Unlock()
	}
}

// Logger returns a middleware that logs HTTP requests. Server errors log
// at error level and client errors at warn.
func Logger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			extra := &logFields{values: make(map[string]interface{})}

			next.ServeHTTP(wrapped, r.WithContext(context.WithValue(r.Context(), logFieldsKey{}, extra)))

			fields := map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      wrapped.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
				"bytes":       wrapped.written,
				"ip":          r.RemoteAddr,
				"user_agent":  r.UserAgent(),
				"request_id":  GetRequestID(r),
			}
			extra.mu.Lock()
			for k, v := range extra.values {
				fields[k] = v
			}
			extra.mu.Unlock()

			entry := log.WithFields(fields)
			switch {
			case wrapped.statusCode >= 500:
				entry.Error("HTTP request")
			case wrapped.statusCode >= 400:
				entry.Warn("HTTP request")
			default:
				entry.Info("HTTP request")
			}
		})
	}
}
