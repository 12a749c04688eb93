package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dhakanet/ispconsole/internal/domain"
)

func userFormRequest(overrides map[string]string) *http.Request {
	form := url.Values{}
	form.Set("username", "shakil")
	form.Set("email", "shakil@dhakanet.com.bd")
	form.Set("first_name", "Shakil")
	form.Set("role", domain.RoleStaff)
	form.Set("password", "changeme123")
	form.Set("password_confirm", "changeme123")
	for k, v := range overrides {
		form.Set(k, v)
	}
	r := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestParseUserForm_Valid(t *testing.T) {
	params, _, fieldErrors := parseUserForm(userFormRequest(nil), true)
	if len(fieldErrors) != 0 {
		t.Fatalf("unexpected field errors: %v", fieldErrors)
	}
	if params.Username != "shakil" {
		t.Errorf("Username = %q", params.Username)
	}
	if params.Email != "shakil@dhakanet.com.bd" {
		t.Errorf("Email = %q", params.Email)
	}
	if params.Password != "changeme123" {
		t.Errorf("Password not carried through")
	}
}

func TestParseUserForm_EmailValidation(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"missing", "", "Email is required"},
		{"not an address", "not-an-email", "Enter a valid email address"},
		{"missing domain", "shakil@", "Enter a valid email address"},
		{"valid", "billing@dhakanet.com.bd", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, fieldErrors := parseUserForm(userFormRequest(map[string]string{"email": tt.email}), true)
			if got := fieldErrors["email"]; got != tt.want {
				t.Errorf("fieldErrors[email] = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseUserForm_PasswordRules(t *testing.T) {
	_, _, fieldErrors := parseUserForm(userFormRequest(map[string]string{
		"password":         "short",
		"password_confirm": "short",
	}), true)
	if fieldErrors["password"] == "" {
		t.Error("short password accepted")
	}

	_, _, fieldErrors = parseUserForm(userFormRequest(map[string]string{
		"password_confirm": "somethingelse",
	}), true)
	if fieldErrors["password_confirm"] == "" {
		t.Error("mismatched confirmation accepted")
	}

	// Edits never touch the password fields.
	params, _, fieldErrors := parseUserForm(userFormRequest(map[string]string{
		"password":         "",
		"password_confirm": "",
	}), false)
	if len(fieldErrors) != 0 {
		t.Errorf("unexpected field errors on edit: %v", fieldErrors)
	}
	if params.Password != "" {
		t.Errorf("Password = %q, want empty on edit", params.Password)
	}
}

func TestParseUserForm_Role(t *testing.T) {
	_, _, fieldErrors := parseUserForm(userFormRequest(map[string]string{"role": "superuser"}), true)
	if fieldErrors["role"] == "" {
		t.Error("unknown role accepted")
	}
}
