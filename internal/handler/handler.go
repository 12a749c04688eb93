// Package handler contains the console's HTTP handlers.
//
// Handlers render server-side pages against the platform services and keep
// state in the session store; htmx covers the few in-page refreshes.
package handler

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dhakanet/ispconsole/internal/auth"
	"github.com/dhakanet/ispconsole/internal/csrf"
	"github.com/dhakanet/ispconsole/internal/domain"
)

// TemplateRenderer is the interface for rendering HTML templates.
// This interface allows for mocking in tests.
type TemplateRenderer interface {
	RenderHTTP(w http.ResponseWriter, name string, data interface{})
	RenderPartial(w http.ResponseWriter, name string, data interface{})
}

// Flash represents a flash message to display to the user.
//
// The Type field determines styling in templates:
// - "success" -> green background
// - "error"   -> red background
// - "info"    -> blue background
type Flash struct {
	Type    string // "success", "error", or "info"
	Message string
}

// flashCookieName carries a flash message across one redirect.
const flashCookieName = "ispconsole_flash"

// SetFlash stores a flash message for the next page load.
func SetFlash(w http.ResponseWriter, flashType, message string) {
	value := flashType + "|" + message
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.URLEncoding.EncodeToString([]byte(value)),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads and clears the pending flash message, if any.
func PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	decoded, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil
	}
	return &Flash{Type: parts[0], Message: parts[1]}
}

// PageData carries the fields every page template needs.
type PageData struct {
	CurrentPath string // Current URL path for navigation highlighting
	Username    string // Logged-in operator
	Role        string // Operator role (admin/manager/staff)
	Flash       *Flash // Flash message to display
	CSRFToken   string // CSRF token for form protection
}

// NewPageData builds the common page fields from the request. It pops any
// pending flash and ensures a CSRF token exists.
func NewPageData(w http.ResponseWriter, r *http.Request, isSecure bool) PageData {
	data := PageData{
		CurrentPath: r.URL.Path,
		Flash:       PopFlash(w, r),
		CSRFToken:   csrf.EnsureToken(w, r, isSecure),
	}
	if sess := auth.GetSession(r.Context()); sess != nil {
		data.Username = sess.Username
		data.Role = sess.Role
	}
	return data
}

// ParseListQuery extracts the standard list-page parameters (page, q,
// status) plus any named extra filters from the request.
func ParseListQuery(r *http.Request, extras ...string) domain.ListQuery {
	q := domain.ListQuery{
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && page > 1 {
		q.Page = page
	}
	for _, name := range extras {
		if v := strings.TrimSpace(r.URL.Query().Get(name)); v != "" {
			if q.Filters == nil {
				q.Filters = make(map[string]string)
			}
			q.Filters[name] = v
		}
	}
	return q
}

// ListQueryString rebuilds the query string for pagination links, with the
// page parameter replaced. The page parameter is always present so the
// links never render as an empty href, which the browser resolves to the
// current URL, query string included.
func ListQueryString(q domain.ListQuery, page int) string {
	if page < 1 {
		page = 1
	}
	values := url.Values{}
	values.Set("page", strconv.Itoa(page))
	if q.Search != "" {
		values.Set("q", q.Search)
	}
	if q.Status != "" {
		values.Set("status", q.Status)
	}
	for name, v := range q.Filters {
		values.Set(name, v)
	}
	return "?" + values.Encode()
}

// CheckCSRF validates the double-submit token on a mutating request.
// Returns false after writing the error response when validation fails.
func CheckCSRF(w http.ResponseWriter, r *http.Request) bool {
	if csrf.ValidateRequest(r) {
		return true
	}
	http.Error(w, "Invalid or missing CSRF token. Please reload the page and try again.", http.StatusForbidden)
	return false
}

// ParseID reads a numeric {id} path value. The second return is false when
// the value is missing or not a positive integer.
func ParseID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
