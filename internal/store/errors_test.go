package store

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	if got := ErrNotFound.Error(); got != "resource not found" {
		t.Errorf("unexpected message: %q", got)
	}

	wrapped := ErrNotFound.WithCause(fmt.Errorf("no rows"))
	if got := wrapped.Error(); got != "resource not found: no rows" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	wrapped := ErrAlreadyExists.WithCause(cause)

	if !errors.Is(wrapped, cause) {
		t.Error("expected wrapped error to match cause")
	}
}

func TestErrorHTTPCode(t *testing.T) {
	tests := []struct {
		err  *Error
		code int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrInvalidInput, http.StatusBadRequest},
	}

	for _, tt := range tests {
		if got := tt.err.HTTPCode(); got != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.err.Message, tt.code, got)
		}
	}
}

func TestWithMessage(t *testing.T) {
	custom := ErrNotFound.WithMessage("recipe not found")
	if custom.Error() != "recipe not found" {
		t.Errorf("unexpected message: %q", custom.Error())
	}
	if custom.Code != ErrNotFound.Code {
		t.Error("expected code to be preserved")
	}
	if ErrNotFound.Message != "resource not found" {
		t.Error("expected original to be unchanged")
	}
}
