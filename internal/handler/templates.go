package handler

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/dhakanet/ispconsole/internal/domain"
)

// moneyPrinter applies en-style digit grouping to amounts (1,500.00).
var moneyPrinter = message.NewPrinter(language.English)

// TemplateFuncs returns a FuncMap with custom template functions
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// Math functions
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"mul": func(a, b int) int {
			return a * b
		},
		"min": func(a, b int) int {
			if a < b {
				return a
			}
			return b
		},

		// Date/Time functions
		"year": func() int {
			return time.Now().Year()
		},
		"formatDate": func(v any) string {
			t := asTime(v)
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(v any) string {
			t := asTime(v)
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006 3:04 PM")
		},
		"formatDateISO": func(v any) string {
			t := asTime(v)
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"timeAgo": func(v any) string {
			t := asTime(v)
			if t.IsZero() {
				return ""
			}
			now := time.Now()
			diff := now.Sub(t)

			switch {
			case diff < time.Minute:
				return "just now"
			case diff < time.Hour:
				mins := int(diff.Minutes())
				if mins == 1 {
					return "1 minute ago"
				}
				return fmt.Sprintf("%d minutes ago", mins)
			case diff < 24*time.Hour:
				hours := int(diff.Hours())
				if hours == 1 {
					return "1 hour ago"
				}
				return fmt.Sprintf("%d hours ago", hours)
			case diff < 7*24*time.Hour:
				days := int(diff.Hours() / 24)
				if days == 1 {
					return "yesterday"
				}
				return fmt.Sprintf("%d days ago", days)
			default:
				return t.Format("Jan 2, 2006")
			}
		},

		// Money functions (amounts are BDT)
		"formatMoney": func(d decimal.Decimal) string {
			f, _ := d.Float64()
			return moneyPrinter.Sprintf("৳%v", number.Decimal(f,
				number.MinFractionDigits(2), number.MaxFractionDigits(2)))
		},
		"formatAmount": func(d decimal.Decimal) string {
			return d.StringFixed(2)
		},
		"isZero": func(d decimal.Decimal) bool {
			return d.IsZero()
		},

		// String functions
		"hasPrefix": func(s, prefix string) bool {
			return strings.HasPrefix(s, prefix)
		},
		"contains": func(s, substr string) bool {
			return strings.Contains(s, substr)
		},
		"lower": func(s string) string {
			return strings.ToLower(s)
		},
		"upper": func(s string) string {
			return strings.ToUpper(s)
		},
		"title": func(v interface{}) string {
			s := strings.ReplaceAll(fmt.Sprint(v), "_", " ")
			return cases.Title(language.English).String(s)
		},
		"truncate": func(s string, length int) string {
			if len(s) <= length {
				return s
			}
			return s[:length] + "..."
		},
		// JSON encoding for safe JavaScript embedding
		"json": func(v interface{}) template.JS {
			b, err := json.Marshal(v)
			if err != nil {
				return template.JS(`""`)
			}
			return template.JS(b)
		},

		// Conditional/Logic functions
		"ternary": func(condition bool, trueVal, falseVal interface{}) interface{} {
			if condition {
				return trueVal
			}
			return falseVal
		},
		"default": func(defaultVal, val interface{}) interface{} {
			if val == nil || val == "" || val == 0 {
				return defaultVal
			}
			return val
		},

		// Collection functions
		"dict": func(values ...interface{}) map[string]interface{} {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil
				}
				dict[key] = values[i+1]
			}
			return dict
		},
		"seq": func(start, end int) []int {
			var result []int
			for i := start; i <= end; i++ {
				result = append(result, i)
			}
			return result
		},
		// pageRange returns page numbers with -1 marking an ellipsis gap.
		"pageRange": domain.PageRange,

		// HTML rendering functions
		"html": func(s string) template.HTML {
			return template.HTML(s)
		},
		"attr": func(s string) template.HTMLAttr {
			return template.HTMLAttr(s)
		},
		"safeURL": func(s string) template.URL {
			return template.URL(s)
		},

		// Form helpers
		"csrfField": func(token string) template.HTML {
			return template.HTML(fmt.Sprintf(`<input type="hidden" name="csrf_token" value="%s">`, template.HTMLEscapeString(token)))
		},

		// Status/badge helpers. These accept interface{} so custom string
		// types from the domain package work without conversion.
		"statusColor": func(status interface{}) string {
			switch fmt.Sprint(status) {
			case "active", "paid", "completed", "success", "online":
				return "bg-green-100 text-green-800"
			case "pending", "partial", "requested", "processing":
				return "bg-yellow-100 text-yellow-800"
			case "suspended", "overdue", "failed", "rejected", "offline":
				return "bg-red-100 text-red-800"
			case "inactive", "cancelled", "disabled":
				return "bg-gray-100 text-gray-600"
			case "approved":
				return "bg-blue-100 text-blue-800"
			default:
				return "bg-gray-100 text-gray-600"
			}
		},
		"roleColor": func(role interface{}) string {
			switch fmt.Sprint(role) {
			case "admin":
				return "bg-purple-100 text-purple-800"
			case "manager":
				return "bg-blue-100 text-blue-800"
			default:
				return "bg-gray-100 text-gray-600"
			}
		},
	}
}

// asTime normalizes the time values templates pass to the date helpers.
// Nullable platform timestamps arrive as *time.Time.
func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t == nil {
			return time.Time{}
		}
		return *t
	default:
		return time.Time{}
	}
}
