package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestBaseError_Message(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapPersistenceError("Movie", "insert", cause)

	want := "Movie: failed to insert entity: connection reset"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected the cause to be reachable through errors.Is")
	}
	if err.Context()["operation"] != "insert" {
		t.Errorf("expected operation context, got %v", err.Context())
	}
}

func TestHasCode_ThroughWrapping(t *testing.T) {
	base := MissingKeyProperty("Movie", "Key", []string{"ID", "Title"})
	wrapped := fmt.Errorf("register: %w", base)

	if !HasCode(wrapped, ConfigurationErrorCode) {
		t.Error("expected configuration code through fmt wrapping")
	}
	if HasCode(wrapped, RegistrationErrorCode) {
		t.Error("did not expect registration code")
	}
	if HasCode(errors.New("plain"), ConfigurationErrorCode) {
		t.Error("plain errors carry no code")
	}
	if len(base.Suggestions()) != 1 {
		t.Errorf("expected one suggestion, got %v", base.Suggestions())
	}
}

func TestErrorCode_IsStartup(t *testing.T) {
	tests := []struct {
		code    ErrorCode
		startup bool
		name    string
	}{
		{ConfigurationErrorCode, true, "ConfigurationError"},
		{RegistrationErrorCode, true, "RegistrationError"},
		{TemplateErrorCode, true, "TemplateError"},
		{DependencyErrorCode, true, "DependencyError"},
		{AmbiguousActionErrorCode, false, "AmbiguousActionError"},
		{BindingErrorCode, false, "BindingError"},
		{PersistenceErrorCode, false, "PersistenceError"},
		{UnknownErrorCode, false, "UnknownError"},
	}

	for _, tt := range tests {
		if tt.code.IsStartup() != tt.startup {
			t.Errorf("%s: expected IsStartup %v", tt.name, tt.startup)
		}
		if tt.code.String() != tt.name {
			t.Errorf("expected name %s, got %s", tt.name, tt.code.String())
		}
	}
}

func TestMultipleErrors(t *testing.T) {
	var multi *MultipleErrors
	if multi.ErrorOrNil() != nil {
		t.Fatal("expected nil for an unset collection")
	}

	AddToMultiple(&multi, ConfigurationError("adapter", "unknown adapter"))
	if multi.ErrorOrNil() == nil || multi.Count() != 1 {
		t.Fatalf("expected one error, got %v", multi)
	}
	if multi.Error() != "adapter: unknown adapter" {
		t.Errorf("single errors print without numbering, got %q", multi.Error())
	}

	AddToMultiple(&multi, DependencyError("database", "postgres", "dial failed"))
	if !HasCode(multi, DependencyErrorCode) {
		t.Error("expected dependency code among collected errors")
	}

	var target *BaseError
	if !errors.As(multi, &target) || target.Subject() != "adapter" {
		t.Errorf("expected errors.As to reach the first error, got %v", target)
	}
}

func TestWrapConfigurationError(t *testing.T) {
	err := WrapConfigurationError("language", "parse", errors.New("bad tag"))

	if err.ErrorCode() != ConfigurationErrorCode {
		t.Errorf("expected configuration code, got %s", err.ErrorCode())
	}
	if err.Error() != "failed to parse configuration 'language': bad tag" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
