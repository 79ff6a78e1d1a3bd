package errorhandler

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/sweetpotato0/radsafe/errors"
	"github.com/sweetpotato0/radsafe/middleware"
)

func TestErrorHandler(t *testing.T) {
	t.Run("catches error from next middleware", func(t *testing.T) {
		errorCaught := false
		handler := NewErrorHandler(func(err error) error {
			errorCaught = true
			return nil // suppress error
		})

		err := handler.Execute(&middleware.Context{}, func(c *middleware.Context) error {
			return stderrors.New("test error")
		})

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !errorCaught {
			t.Error("error was not caught")
		}
	})

	t.Run("success skips handler", func(t *testing.T) {
		handler := NewErrorHandler(func(err error) error {
			t.Error("handler must not run without an error")
			return err
		})
		if err := handler.Execute(&middleware.Context{}, func(*middleware.Context) error { return nil }); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestClassify(t *testing.T) {
	grading := fmt.Errorf("error executing step grade: %w", errors.ErrGrading)
	raw := stderrors.New("connection reset")

	tests := []struct {
		name   string
		err    error
		target error
		same   bool
	}{
		{name: "taxonomy error kept", err: grading, target: errors.ErrGrading, same: true},
		{name: "credential kept", err: &errors.CredentialError{Provider: "Gemini"}, target: errors.ErrMissingCredential, same: true},
		{name: "canceled kept", err: context.Canceled, target: context.Canceled, same: true},
		{name: "unknown becomes internal", err: raw, target: errors.ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if !errors.Is(got, tt.target) {
				t.Errorf("Classify() = %v, want match for %v", got, tt.target)
			}
			if tt.same && got != tt.err {
				t.Errorf("expected error to be returned unchanged, got %v", got)
			}
		})
	}

	if !errors.Is(Classify(raw), raw) {
		t.Error("classified error should still wrap the cause")
	}
	if Classify(nil) != nil {
		t.Error("nil stays nil")
	}
	if errors.UserMessage(Classify(raw)) != errors.GenericUserMessage {
		t.Error("internal errors show the generic message")
	}
}
