// Package csrf provides CSRF protection using the double-submit cookie
// pattern: a random token lives in a cookie and is echoed back in a hidden
// form field, and mutating handlers compare the two. Cross-origin pages can
// make the browser send the cookie but cannot read it, so they cannot
// produce a matching form value.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
)

const (
	// CookieName is the name of the CSRF token cookie.
	CookieName = "ispconsole_csrf"

	// FormFieldName is the name of the CSRF token form field.
	FormFieldName = "csrf_token"

	// TokenLength is the number of random bytes for the token.
	TokenLength = 32

	// CookieMaxAge is the lifetime of the CSRF cookie (1 hour). Shorter
	// than the session cookie so tokens rotate.
	CookieMaxAge = 3600
)

// GenerateToken generates a cryptographically secure random token,
// base64 URL-encoded.
func GenerateToken() (string, error) {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// MustGenerateToken generates a token or panics. crypto/rand failure means
// the host is broken in ways the server cannot recover from anyway.
func MustGenerateToken() string {
	token, err := GenerateToken()
	if err != nil {
		panic("csrf: failed to generate token: " + err.Error())
	}
	return token
}

// ValidateToken compares the cookie token with the form token in constant
// time. Returns true only when both are present and equal.
func ValidateToken(cookieToken, formToken string) bool {
	if cookieToken == "" || formToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(formToken)) == 1
}

// ValidateRequest validates the CSRF token carried by a mutating request,
// reading the cookie and the csrf_token form field.
func ValidateRequest(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	return ValidateToken(cookie.Value, r.FormValue(FormFieldName))
}

// SetCookie sets the CSRF token cookie. Not HttpOnly: the value has to be
// readable so forms can embed it.
func SetCookie(w http.ResponseWriter, token string, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   CookieMaxAge,
		HttpOnly: false,
		Secure:   isSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetTokenFromRequest retrieves the CSRF token from the request cookie,
// or "" if the cookie is absent.
func GetTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// EnsureToken returns the request's CSRF token, minting and setting a new
// one when the cookie is missing. Handlers call this on GET so the form
// they render carries a valid token.
func EnsureToken(w http.ResponseWriter, r *http.Request, isSecure bool) string {
	if existing := GetTokenFromRequest(r); existing != "" {
		return existing
	}

	token := MustGenerateToken()
	SetCookie(w, token, isSecure)
	return token
}

// RefreshToken rotates the CSRF token after a successful submission.
func RefreshToken(w http.ResponseWriter, isSecure bool) string {
	token := MustGenerateToken()
	SetCookie(w, token, isSecure)
	return token
}
