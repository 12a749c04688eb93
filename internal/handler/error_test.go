package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/dhakanet/ispconsole/internal/auth"
	"github.com/dhakanet/ispconsole/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// deadSessionZones answers every call the way the API client does once a
// token refresh has failed.
type deadSessionZones struct{}

func (deadSessionZones) expired() error {
	return domain.Unauthorized("zones.list", "session expired, please sign in again")
}

func (s deadSessionZones) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Zone], error) {
	return nil, s.expired()
}

func (s deadSessionZones) Get(ctx context.Context, id int64) (*domain.Zone, error) {
	return nil, s.expired()
}

func (s deadSessionZones) Create(ctx context.Context, params domain.ZoneParams) (*domain.Zone, error) {
	return nil, s.expired()
}

func (s deadSessionZones) Update(ctx context.Context, id int64, params domain.ZoneParams) (*domain.Zone, error) {
	return nil, s.expired()
}

func (s deadSessionZones) Delete(ctx context.Context, id int64) error {
	return s.expired()
}

type emptyConnTypes struct{}

func (emptyConnTypes) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.ConnectionType], error) {
	return &domain.Page[domain.ConnectionType]{}, nil
}

func (emptyConnTypes) Create(ctx context.Context, params domain.ConnectionTypeParams) (*domain.ConnectionType, error) {
	return &domain.ConnectionType{}, nil
}

func (emptyConnTypes) Update(ctx context.Context, id int64, params domain.ConnectionTypeParams) (*domain.ConnectionType, error) {
	return &domain.ConnectionType{}, nil
}

func (emptyConnTypes) Delete(ctx context.Context, id int64) error {
	return nil
}

type recordingRenderer struct {
	rendered []string
}

func (r *recordingRenderer) RenderHTTP(w http.ResponseWriter, name string, data interface{}) {
	r.rendered = append(r.rendered, name)
}

func (r *recordingRenderer) RenderPartial(w http.ResponseWriter, name string, data interface{}) {
	r.rendered = append(r.rendered, name)
}

func TestErrorResponse_UnauthorizedEndsSessionAndRedirects(t *testing.T) {
	ended := false
	r := httptest.NewRequest(http.MethodGet, "/zones", nil)
	r = r.WithContext(auth.WithSessionEnder(r.Context(), func() { ended = true }))
	w := httptest.NewRecorder()

	ErrorResponse(w, r, newTestLogger(), domain.Unauthorized("zones.list", "session expired, please sign in again"))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if !ended {
		t.Error("session was not destroyed")
	}
}

func TestErrorResponse_UnauthorizedJSONRequestGets401(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/zones", nil)
	r.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()

	ErrorResponse(w, r, newTestLogger(), domain.Unauthorized("zones.list", "session expired, please sign in again"))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestErrorResponse_OtherErrorsStayPlainText(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/zones", nil)
	w := httptest.NewRecorder()

	ErrorResponse(w, r, newTestLogger(), domain.NotFound("zones.get", "zone"))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if loc := w.Header().Get("Location"); loc != "" {
		t.Errorf("unexpected redirect to %q", loc)
	}
}

// A page request whose platform calls come back unauthorized must land the
// operator on the login page, not on a bare 401 body.
func TestZoneList_ExpiredSessionRedirectsToLogin(t *testing.T) {
	renderer := &recordingRenderer{}
	h := NewZoneHandler(deadSessionZones{}, emptyConnTypes{}, renderer, newTestLogger(), false)

	ended := false
	r := httptest.NewRequest(http.MethodGet, "/zones", nil)
	r = r.WithContext(auth.WithSessionEnder(r.Context(), func() { ended = true }))
	w := httptest.NewRecorder()

	h.List(w, r)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if !ended {
		t.Error("session was not destroyed")
	}
	if len(renderer.rendered) != 0 {
		t.Errorf("rendered %v, want no templates", renderer.rendered)
	}
}
