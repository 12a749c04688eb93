// Package middleware contains HTTP middleware for the console.
//
// Middleware functions follow the standard Go pattern of wrapping http.Handler
// and are composed with Stack.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dhakanet/ispconsole/internal/auth"
	"github.com/dhakanet/ispconsole/internal/handler"
	"github.com/dhakanet/ispconsole/internal/session"
)

// AuthMiddleware loads and enforces console sessions.
//
// The console keeps the platform's JWT pair server-side: the browser only
// carries an opaque session cookie, and the session row holds the access
// and refresh tokens used for platform calls.
type AuthMiddleware struct {
	sessions *session.Store
	logger   *slog.Logger
	isSecure bool // Whether to set Secure flag on cookies (true in production)
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(sessions *session.Store, logger *slog.Logger, isSecure bool) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		logger:   logger,
		isSecure: isSecure,
	}
}

// WithSession attempts to load the session from the cookie and stores it in
// the request context. It continues to the next handler regardless of
// authentication status; an invalid or expired cookie is cleared.
func (m *AuthMiddleware) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(session.CookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := m.sessions.Get(r.Context(), cookie.Value)
		if err != nil {
			clearSessionCookie(w, m.isSecure)
			next.ServeHTTP(w, r)
			return
		}

		token := cookie.Value
		deleteCtx := context.WithoutCancel(r.Context())
		ctx := auth.WithSession(r.Context(), sess)
		ctx = auth.WithSessionEnder(ctx, func() {
			if err := m.sessions.Delete(deleteCtx, token); err != nil {
				m.logger.Warn("failed to delete session", "error", err)
			}
			clearSessionCookie(w, m.isSecure)
		})
		r = r.WithContext(ctx)
		next.ServeHTTP(w, r)
	})
}

// RequireSession requires an authenticated session in the context.
// Unauthenticated HTML requests are redirected to /login with a return_to
// parameter; API requests get a 401 JSON body.
//
// Must run after WithSession.
func (m *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := auth.GetSession(r.Context())
		if sess == nil {
			if isAPIRequest(r) {
				handler.UnauthorizedResponse(w, r, m.logger)
				return
			}

			returnTo := r.URL.Path
			if r.URL.RawQuery != "" {
				returnTo += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, "/login?return_to="+url.QueryEscape(returnTo), http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin requires the session's role to be admin. The platform
// enforces this too; the check here just keeps non-admins off the staff
// management pages entirely.
//
// Must run after RequireSession.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := auth.GetSession(r.Context())
		if sess == nil {
			m.logger.Error("RequireAdmin called without session in context")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if sess.Role != "admin" {
			handler.ForbiddenResponse(w, r, m.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SetSessionCookie sets the session cookie on the response.
//
// Cookie Settings:
// - HttpOnly: true - Prevents JavaScript access (XSS protection)
// - Secure: configurable - Set true in production (HTTPS only)
// - SameSite: Lax - Prevents CSRF while allowing normal navigation
func SetSessionCookie(w http.ResponseWriter, token string, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   session.CookieMaxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie removes the session cookie from the client.
func clearSessionCookie(w http.ResponseWriter, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie is the exported version for use in logout handlers.
func ClearSessionCookie(w http.ResponseWriter, isSecure bool) {
	clearSessionCookie(w, isSecure)
}

// isAPIRequest determines if the request expects a JSON response.
//
// Checks:
// 1. HX-Request header is NOT present (htmx wants HTML)
// 2. Accept header contains application/json
// 3. Content-Type is application/json
// 4. URL path starts with /api/
func isAPIRequest(r *http.Request) bool {
	// htmx requests want HTML fragments
	if r.Header.Get("HX-Request") == "true" {
		return false
	}

	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") {
		return true
	}

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		return true
	}

	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}

	return false
}

// Stack composes multiple middleware functions into a single middleware.
//
// Middleware is applied in the order provided, meaning the first middleware
// in the slice is the outermost (runs first on request, last on response).
//
// Example:
//
//	stack := Stack(loggingMw, authMw.WithSession, authMw.RequireSession)
//	mux.Handle("GET /customers", stack(customerHandler))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// Ensure middleware functions have correct signature
var (
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).WithSession
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).RequireSession
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).RequireAdmin
)
