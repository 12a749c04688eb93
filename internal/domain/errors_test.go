package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"typed error", NotFound("customers.get", "customer"), ENOTFOUND},
		{"wrapped typed error", fmt.Errorf("loading page: %w", Unauthorized("auth.me", "session expired")), EUNAUTHORIZED},
		{"validation error", NewValidationError("customers.create", "phone", "invalid phone"), EINVALID},
		{"plain error", errors.New("boom"), EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorMessage_MasksInternal(t *testing.T) {
	internal := Internal(errors.New("pq: connection refused"), "bills.list", "query failed")
	msg := ErrorMessage(internal)
	if msg == "query failed" {
		t.Error("internal detail leaked to user message")
	}
	if msg == "" {
		t.Error("internal error produced empty message")
	}

	visible := Invalid("bills.create", "billing month is required")
	if got := ErrorMessage(visible); got != "billing month is required" {
		t.Errorf("message = %q", got)
	}

	if got := ErrorMessage(errors.New("raw")); got == "raw" {
		t.Error("untyped error message leaked")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Unavailable(cause, "customers.list")

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable with errors.Is")
	}
	if ErrorCode(err) != EUNAVAILABLE {
		t.Errorf("code = %q", ErrorCode(err))
	}
}

func TestFieldErrors(t *testing.T) {
	ve := NewValidationError("subscriptions.create", "mikrotik_username", "already in use")
	wrapped := fmt.Errorf("creating subscription: %w", ve)

	fields := FieldErrors(wrapped)
	if fields["mikrotik_username"] != "already in use" {
		t.Errorf("fields = %v", fields)
	}

	if FieldErrors(Invalid("x", "y")) != nil {
		t.Error("plain Error reported field errors")
	}
	if FieldErrors(nil) != nil {
		t.Error("nil error reported field errors")
	}
}
