package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that input validation failed
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingCredential indicates that the selected model backend has no API key
	ErrMissingCredential = errors.New("missing model credential")

	// ErrRateLimited indicates that the caller exceeded the request budget
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrRetrieval indicates that a corpus lookup failed
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGrading indicates that an LLM grading call failed
	ErrGrading = errors.New("grading failed")

	// ErrGeneration indicates that answer generation or query reformulation failed
	ErrGeneration = errors.New("generation failed")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")
)

// GenericUserMessage is shown to end users for failures they cannot fix themselves.
const GenericUserMessage = "Something went wrong while answering. Please try again."

// CredentialError reports that a provider was selected without a usable API key.
type CredentialError struct {
	Provider string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("Please provide a valid API key for %s in Settings. "+
		"The key is stored only locally and used only for LLM requests.", e.Provider)
}

// Unwrap lets errors.Is match ErrMissingCredential.
func (e *CredentialError) Unwrap() error {
	return ErrMissingCredential
}

// IsClientError reports whether err was caused by the caller's request
// (bad input, missing credential, rate limit) rather than by a backend.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrMissingCredential) ||
		errors.Is(err, ErrRateLimited)
}

// UserMessage returns the text that may be shown to an end user for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if IsClientError(err) {
		return err.Error()
	}
	return GenericUserMessage
}

// Is and As mirror the standard library so callers need a single import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
