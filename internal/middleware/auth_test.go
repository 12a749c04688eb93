package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dhakanet/ispconsole/internal/auth"
	"github.com/dhakanet/ispconsole/internal/session"
)

// newTestLogger creates a logger that discards everything below error.
func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// newTestAuthMiddleware builds an AuthMiddleware without a session store.
// The store is only consulted when a cookie is present, so these tests
// exercise the cookieless and context-driven paths.
func newTestAuthMiddleware() *AuthMiddleware {
	return NewAuthMiddleware(nil, newTestLogger(), false)
}

func testSession(role string) *session.Session {
	return &session.Session{
		Token:        "tok-123",
		Username:     "rahim",
		Role:         role,
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func TestWithSession_NoCookie_ContinuesWithoutSession(t *testing.T) {
	mw := newTestAuthMiddleware()

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		if sess := auth.GetSession(r.Context()); sess != nil {
			t.Errorf("expected nil session, got %+v", sess)
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/customers", nil)
	rec := httptest.NewRecorder()

	mw.WithSession(handler).ServeHTTP(rec, req)

	if !handlerCalled {
		t.Error("handler was not called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequireSession_WithSession_Continues(t *testing.T) {
	mw := newTestAuthMiddleware()

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/customers", nil)
	req = req.WithContext(auth.WithSession(req.Context(), testSession("staff")))
	rec := httptest.NewRecorder()

	mw.RequireSession(handler).ServeHTTP(rec, req)

	if !handlerCalled {
		t.Error("handler was not called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequireSession_NoSession_RedirectsWithReturnTo(t *testing.T) {
	mw := newTestAuthMiddleware()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest("GET", "/bills?status=overdue&page=2", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	mw.RequireSession(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status code = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/login?return_to=") {
		t.Fatalf("Location = %q, want /login?return_to=... prefix", location)
	}

	u, err := url.Parse(location)
	if err != nil {
		t.Fatalf("failed to parse Location: %v", err)
	}
	returnTo := u.Query().Get("return_to")
	if returnTo != "/bills?status=overdue&page=2" {
		t.Errorf("return_to = %q, want %q", returnTo, "/bills?status=overdue&page=2")
	}
}

func TestRequireSession_NoSession_APIRequest_Returns401JSON(t *testing.T) {
	mw := newTestAuthMiddleware()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest("GET", "/api/customers", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	mw.RequireSession(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestRequireSession_HtmxRequest_RedirectsInsteadOf401(t *testing.T) {
	mw := newTestAuthMiddleware()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	// htmx sends HX-Request; it wants a redirect it can follow, not JSON.
	req := httptest.NewRequest("GET", "/schedule/stats", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	mw.RequireSession(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusSeeOther)
	}
}

func TestRequireAdmin_AdminRole_Continues(t *testing.T) {
	mw := newTestAuthMiddleware()

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/users", nil)
	req = req.WithContext(auth.WithSession(req.Context(), testSession("admin")))
	rec := httptest.NewRecorder()

	mw.RequireAdmin(handler).ServeHTTP(rec, req)

	if !handlerCalled {
		t.Error("handler was not called for admin")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequireAdmin_NonAdminRoles_Return403(t *testing.T) {
	mw := newTestAuthMiddleware()

	for _, role := range []string{"manager", "staff"} {
		t.Run(role, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be called")
			})

			req := httptest.NewRequest("GET", "/users", nil)
			req.Header.Set("Accept", "text/html")
			req = req.WithContext(auth.WithSession(req.Context(), testSession(role)))
			rec := httptest.NewRecorder()

			mw.RequireAdmin(handler).ServeHTTP(rec, req)

			if rec.Code != http.StatusForbidden {
				t.Errorf("status code = %d, want %d", rec.Code, http.StatusForbidden)
			}
		})
	}
}

func TestRequireAdmin_NoSession_RedirectsToLogin(t *testing.T) {
	mw := newTestAuthMiddleware()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest("GET", "/users", nil)
	rec := httptest.NewRecorder()

	mw.RequireAdmin(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if location := rec.Header().Get("Location"); location != "/login" {
		t.Errorf("Location = %q, want /login", location)
	}
}

func TestSetSessionCookie_Flags(t *testing.T) {
	rec := httptest.NewRecorder()

	SetSessionCookie(rec, "tok-456", false)

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no cookies set")
	}

	c := cookies[0]
	if c.Name != session.CookieName {
		t.Errorf("cookie name = %q, want %q", c.Name, session.CookieName)
	}
	if c.Value != "tok-456" {
		t.Errorf("cookie value = %q, want %q", c.Value, "tok-456")
	}
	if !c.HttpOnly {
		t.Error("HttpOnly flag should be true")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want %v", c.SameSite, http.SameSiteLaxMode)
	}
	if c.MaxAge != session.CookieMaxAge {
		t.Errorf("MaxAge = %d, want %d", c.MaxAge, session.CookieMaxAge)
	}
}

func TestClearSessionCookie_Expires(t *testing.T) {
	rec := httptest.NewRecorder()

	ClearSessionCookie(rec, false)

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no cookies set")
	}
	if cookies[0].MaxAge != -1 {
		t.Errorf("MaxAge = %d, want -1", cookies[0].MaxAge)
	}
}

func TestStack_AppliesInOrder(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	Stack(tag("outer"), tag("inner"))(handler).ServeHTTP(rec, req)

	want := []string{"outer", "inner", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
