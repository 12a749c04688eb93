package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Paths too noisy to log per request.
var unloggedPrefixes = []string{"/health", "/metrics", "/static/"}

// Query parameter names whose values never reach the log. The console's
// own URLs carry no credentials, but platform callback URLs might.
var redactedParams = map[string]bool{
	"token":         true,
	"code":          true,
	"key":           true,
	"secret":        true,
	"password":      true,
	"api_key":       true,
	"apikey":        true,
	"access_token":  true,
	"refresh_token": true,
}

// RequestLoggingMiddleware writes one line per page request: method,
// path, status, duration, client IP, and user agent.
type RequestLoggingMiddleware struct {
	logger *slog.Logger
}

// NewRequestLoggingMiddleware creates a new request logging middleware.
func NewRequestLoggingMiddleware(logger *slog.Logger) *RequestLoggingMiddleware {
	return &RequestLoggingMiddleware{logger: logger}
}

// Handler returns the middleware. Server errors log at WARN, everything
// else at INFO.
func (m *RequestLoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range unloggedPrefixes {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		level := slog.LevelInfo
		if recorder.status >= 500 {
			level = slog.LevelWarn
		}
		m.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", loggablePath(r.URL),
			"status", recorder.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", getClientIP(r),
			"user_agent", r.UserAgent(),
		)
	})
}

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// loggablePath rebuilds the request path with credential-looking query
// values replaced.
func loggablePath(u *url.URL) string {
	if u.RawQuery == "" {
		return u.Path
	}
	values, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return u.Path
	}
	for name := range values {
		if redactedParams[strings.ToLower(name)] {
			values.Set(name, "redacted")
		}
	}
	return u.Path + "?" + values.Encode()
}
