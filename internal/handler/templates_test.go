package handler

import (
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestAsTime(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	if got := asTime(now); !got.Equal(now) {
		t.Errorf("asTime(time.Time) = %v", got)
	}
	if got := asTime(&now); !got.Equal(now) {
		t.Errorf("asTime(*time.Time) = %v", got)
	}
	if got := asTime((*time.Time)(nil)); !got.IsZero() {
		t.Errorf("asTime(nil pointer) = %v, want zero", got)
	}
	if got := asTime("2026-08-31"); !got.IsZero() {
		t.Errorf("asTime(string) = %v, want zero", got)
	}
}

func TestFormatDateHandlesNilPointer(t *testing.T) {
	funcs := TemplateFuncs()
	formatDate := funcs["formatDate"].(func(any) string)

	if got := formatDate((*time.Time)(nil)); got != "" {
		t.Errorf("formatDate(nil) = %q, want empty", got)
	}
	when := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	if got := formatDate(&when); got != "Mar 5, 2026" {
		t.Errorf("formatDate = %q", got)
	}
}

func TestFormatMoney(t *testing.T) {
	funcs := TemplateFuncs()
	formatMoney := funcs["formatMoney"].(func(decimal.Decimal) string)

	tests := []struct {
		amount decimal.Decimal
		want   string
	}{
		{decimal.NewFromInt(1500), "৳1,500.00"},
		{decimal.NewFromFloat(999.5), "৳999.50"},
		{decimal.Zero, "৳0.00"},
	}
	for _, tt := range tests {
		if got := formatMoney(tt.amount); got != tt.want {
			t.Errorf("formatMoney(%s) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestTitle(t *testing.T) {
	funcs := TemplateFuncs()
	title := funcs["title"].(func(interface{}) string)

	if got := title("generate_monthly_bills"); got != "Generate Monthly Bills" {
		t.Errorf("title = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	funcs := TemplateFuncs()
	truncate := funcs["truncate"].(func(string, int) string)

	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("a longer sync error message", 8); got != "a longer..." {
		t.Errorf("truncate = %q", got)
	}
}

func TestCSRFFieldEscapes(t *testing.T) {
	funcs := TemplateFuncs()
	csrfField := funcs["csrfField"].(func(string) template.HTML)

	got := string(csrfField(`abc"><script>`))
	if strings.Contains(got, "<script>") {
		t.Errorf("token not escaped: %q", got)
	}
	if !strings.Contains(got, `name="csrf_token"`) {
		t.Errorf("field name missing: %q", got)
	}
}

func TestStatusColor(t *testing.T) {
	funcs := TemplateFuncs()
	statusColor := funcs["statusColor"].(func(interface{}) string)

	if got := statusColor("active"); !strings.Contains(got, "green") {
		t.Errorf("statusColor(active) = %q", got)
	}
	if got := statusColor("suspended"); !strings.Contains(got, "red") {
		t.Errorf("statusColor(suspended) = %q", got)
	}
	if got := statusColor("something-new"); !strings.Contains(got, "gray") {
		t.Errorf("statusColor(unknown) = %q", got)
	}
}
