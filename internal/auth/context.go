// Package auth provides request-context helpers for the signed-in
// operator's session.
//
// It is imported by the middleware, api, and handler packages without
// creating import cycles.
package auth

import (
	"context"
	"net/http"

	"github.com/dhakanet/ispconsole/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// GetSession retrieves the operator session from the context.
// Returns nil if the request is unauthenticated.
func GetSession(ctx context.Context) *session.Session {
	sess, ok := ctx.Value(sessionContextKey).(*session.Session)
	if !ok {
		return nil
	}
	return sess
}

// GetSessionFromRequest is a convenience wrapper around GetSession.
func GetSessionFromRequest(r *http.Request) *session.Session {
	return GetSession(r.Context())
}

// WithSession stores a session in the context. Called by the auth
// middleware after the cookie token has been resolved.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

const sessionEnderContextKey contextKey = "sessionEnder"

// WithSessionEnder stores the callback that destroys the current session,
// both the stored row and the cookie. The auth middleware installs it
// alongside the session so deeper layers can end a session that the
// platform no longer honors.
func WithSessionEnder(ctx context.Context, end func()) context.Context {
	return context.WithValue(ctx, sessionEnderContextKey, end)
}

// EndSession destroys the current session. Returns false when the request
// carries no session to destroy.
func EndSession(ctx context.Context) bool {
	end, ok := ctx.Value(sessionEnderContextKey).(func())
	if !ok {
		return false
	}
	end()
	return true
}
