package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dhakanet/ispconsole/internal/csrf"
	"github.com/dhakanet/ispconsole/internal/domain"
)

func TestFlashRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	SetFlash(w, "success", "Customer created")

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}

	r := httptest.NewRequest(http.MethodGet, "/customers", nil)
	r.AddCookie(cookies[0])

	w2 := httptest.NewRecorder()
	flash := PopFlash(w2, r)
	if flash == nil {
		t.Fatal("flash not returned")
	}
	if flash.Type != "success" || flash.Message != "Customer created" {
		t.Errorf("flash = %+v", flash)
	}

	// Pop clears the cookie so the message shows once.
	cleared := w2.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge != -1 {
		t.Errorf("flash cookie not cleared: %+v", cleared)
	}
}

func TestPopFlash_NoCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/customers", nil)
	if flash := PopFlash(httptest.NewRecorder(), r); flash != nil {
		t.Errorf("flash = %+v, want nil", flash)
	}
}

func TestFlashMessageWithSeparator(t *testing.T) {
	w := httptest.NewRecorder()
	SetFlash(w, "error", "Bill BILL-2026-0001 | payment rejected")

	r := httptest.NewRequest(http.MethodGet, "/bills", nil)
	r.AddCookie(w.Result().Cookies()[0])

	flash := PopFlash(httptest.NewRecorder(), r)
	if flash == nil || flash.Message != "Bill BILL-2026-0001 | payment rejected" {
		t.Errorf("flash = %+v", flash)
	}
}

func TestParseListQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/bills?q=rahim&status=unpaid&page=3&month=4&year=&zone=2", nil)

	q := ParseListQuery(r, "month", "year", "zone")
	if q.Search != "rahim" || q.Status != "unpaid" || q.Page != 3 {
		t.Errorf("query = %+v", q)
	}
	if q.Filters["month"] != "4" || q.Filters["zone"] != "2" {
		t.Errorf("filters = %v", q.Filters)
	}
	if _, ok := q.Filters["year"]; ok {
		t.Error("empty extra filter kept")
	}
}

func TestParseListQuery_Defaults(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/customers?page=0", nil)

	q := ParseListQuery(r)
	if q.Page != 0 {
		t.Errorf("page = %d, want 0 for first page", q.Page)
	}
	if q.Search != "" || q.Status != "" || q.Filters != nil {
		t.Errorf("query = %+v, want zero value", q)
	}
}

func TestListQueryString(t *testing.T) {
	tests := []struct {
		name string
		q    domain.ListQuery
		page int
		want string
	}{
		{"empty first page", domain.ListQuery{}, 1, "?page=1"},
		{"page only", domain.ListQuery{}, 2, "?page=2"},
		{"page clamped to one", domain.ListQuery{}, 0, "?page=1"},
		{
			"search and status",
			domain.ListQuery{Search: "rahim", Status: "active"},
			1,
			"?page=1&q=rahim&status=active",
		},
		{
			"filters included",
			domain.ListQuery{Status: "unpaid", Filters: map[string]string{"month": "4"}},
			3,
			"?month=4&page=3&status=unpaid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ListQueryString(tt.q, tt.page); got != tt.want {
				t.Errorf("ListQueryString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListQueryString_RoundTripsParse(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/bills?q=karim&status=partial&month=6&page=2", nil)
	q := ParseListQuery(r, "month")

	r2 := httptest.NewRequest(http.MethodGet, "/bills"+ListQueryString(q, 5), nil)
	q2 := ParseListQuery(r2, "month")
	q2.Page = q.Page
	if q2.Search != q.Search || q2.Status != q.Status || q2.Filters["month"] != q.Filters["month"] {
		t.Errorf("round trip lost parameters: %+v vs %+v", q, q2)
	}
}

func TestCheckCSRF(t *testing.T) {
	token := csrf.MustGenerateToken()

	form := url.Values{}
	form.Set(csrf.FormFieldName, token)
	r := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: token})

	if !CheckCSRF(httptest.NewRecorder(), r) {
		t.Error("valid request rejected")
	}

	bad := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(form.Encode()))
	bad.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	if CheckCSRF(w, bad) {
		t.Error("request without cookie accepted")
	}
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		value  string
		wantID int64
		wantOK bool
	}{
		{"7", 7, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/customers/x", nil)
		r.SetPathValue("id", tt.value)
		id, ok := ParseID(r, "id")
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("ParseID(%q) = (%d, %v), want (%d, %v)", tt.value, id, ok, tt.wantID, tt.wantOK)
		}
	}
}
