package logging

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/constants"
)

// RequestLogger assigns request IDs and logs one line per HTTP request.
type RequestLogger struct {
	logger    *Logger
	skipPaths map[string]bool
}

// NewRequestLogger creates request logging middleware. Requests to skipPaths
// still get a request ID but are not logged.
func NewRequestLogger(logger *Logger, skipPaths ...string) *RequestLogger {
	skip := make(map[string]bool, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = true
	}
	return &RequestLogger{logger: logger, skipPaths: skip}
}

// Middleware returns the HTTP middleware function
func (rl *RequestLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(constants.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(constants.HeaderRequestID, requestID)
		r = r.WithContext(SetRequestID(r.Context(), requestID))

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		if rl.skipPaths[r.URL.Path] {
			return
		}

		event := rl.logger.logger.Info()
		if rw.statusCode >= 500 {
			event = rl.logger.logger.Error()
		} else if rw.statusCode >= 400 {
			event = rl.logger.logger.Warn()
		}

		event.
			Str(constants.ContextKeyRequestID, requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", time.Since(start)).
			Int("bytes", rw.bytesWritten).
			Str("remote_addr", r.RemoteAddr).
			Msg("Request completed")
	})
}

// responseWriter wraps http.ResponseWriter to capture status code and bytes
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}
