// Package session stores operator sessions for the console.
//
// The console authenticates against the billing platform and receives a
// JWT access/refresh token pair. Those tokens are kept server-side in
// Postgres, keyed by an opaque cookie token, so a console restart does not
// sign every operator out. The browser only ever sees the cookie token.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName is the name of the cookie that stores the session token.
	CookieName = "ispconsole_session"

	// CookiePath ensures the cookie is sent with all requests.
	CookiePath = "/"

	// CookieMaxAge sets the cookie expiration (7 days = 604800 seconds).
	// This matches Duration below.
	CookieMaxAge = 7 * 24 * 60 * 60

	// Duration is how long a session row stays valid.
	Duration = 7 * 24 * time.Hour
)

// Session is one signed-in operator with their platform token pair.
type Session struct {
	Token        string // opaque cookie value
	Username     string
	Role         string
	AccessToken  string // platform JWT, short-lived
	RefreshToken string // platform JWT, long-lived
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ExpiresAt    time.Time
}

// Expired reports whether the session row itself has lapsed. The access
// token expiring earlier is fine — the api client refreshes it in place.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// AccessExpiry returns the expiry of the platform access token, parsed
// without signature verification — the console is not the token's
// audience and has no verification key; it only reads the claim for
// display and logging.
func AccessExpiry(accessToken string) (time.Time, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, err
	}
	return exp.Time, nil
}
