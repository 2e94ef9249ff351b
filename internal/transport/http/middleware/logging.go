package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pingwatch/connectivity-monitor/pkg/dto"
	"github.com/pingwatch/connectivity-monitor/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(data)
	rw.written += n
	return n, err
}

// LoggingMiddleware tags the request with an id, reusing the caller's
// X-Request-ID when present, and writes one access log record per request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		r = r.WithContext(logger.ContextWithRequestID(r.Context(), requestID))
		w.Header().Set(RequestIDHeader, requestID)

		wrapped := &responseWriter{ResponseWriter: w}

		slog.Debug("HTTP Request started",
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr),
		)

		next.ServeHTTP(wrapped, r)

		logger.LogHTTPRequest(
			r.Context(),
			r.Method,
			r.URL.Path,
			r.UserAgent(),
			requestID,
			time.Since(start),
			wrapped.statusCode,
		)
	})
}

func PanicRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				requestID := logger.RequestIDFromContext(r.Context())

				logger.WithRequestID(requestID).ErrorContext(r.Context(), "Panic recovered in HTTP handler",
					slog.Any("panic", err),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)

				dto.NewErr("internal server error", requestID).Write(w, http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
