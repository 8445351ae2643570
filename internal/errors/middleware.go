package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// maxLoggedBodyBytes caps how much of a request body is buffered for error
// logging. Larger bodies (dataset uploads) stream through untouched.
const maxLoggedBodyBytes = 1 << 20

// ErrorMiddleware is the request-level error plumbing: it logs every request
// at a level derived from the response status, keeps small request bodies
// around so rejected config writes can be diagnosed, and converts panics into
// RFC 7807 responses through the ErrorHandler.
type ErrorMiddleware struct {
	handler *ErrorHandler
	logger  *slog.Logger
	onPanic func(ctx context.Context)
}

// NewErrorMiddleware creates the middleware. onPanic, when non-nil, runs
// after a recovered panic so the caller can record metrics without this
// package importing the instrumentation layer.
func NewErrorMiddleware(handler *ErrorHandler, logger *slog.Logger, onPanic func(ctx context.Context)) *ErrorMiddleware {
	return &ErrorMiddleware{
		handler: handler,
		logger:  logger.With(slog.String("component", "error_middleware")),
		onPanic: onPanic,
	}
}

// Handler wraps next with status capture, panic recovery and the access log.
func (m *ErrorMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		var body []byte
		if r.Body != nil && r.ContentLength > 0 && r.ContentLength < maxLoggedBodyBytes {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		start := time.Now()
		defer func() {
			if rvr := recover(); rvr != nil {
				if m.onPanic != nil {
					m.onPanic(r.Context())
				}
				m.handler.HandlePanic(ww, r, rvr)
			}
		}()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.Int("bytes", ww.BytesWritten()),
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		}
		if r.URL.RawQuery != "" {
			attrs = append(attrs, slog.String("query", r.URL.RawQuery))
		}
		if status >= 400 && len(body) > 0 {
			attrs = append(attrs, slog.String("request_body", redactBody(body)))
		}

		m.logger.LogAttrs(r.Context(), level, "http request", attrs...)
	})
}

// redactBody masks credential-shaped JSON fields and clips the body for the
// access log. Non-JSON bodies (raw CSV, multipart uploads) are clipped only.
func redactBody(body []byte) string {
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err == nil {
		for _, field := range []string{"password", "token", "secret", "api_key"} {
			if _, ok := data[field]; ok {
				data[field] = "[REDACTED]"
			}
		}
		if clean, err := json.Marshal(data); err == nil {
			body = clean
		}
	}
	if len(body) > 500 {
		return string(body[:500]) + "..."
	}
	return string(body)
}
