package errorhandler

import (
	"context"
	"fmt"

	"github.com/sweetpotato0/radsafe/errors"
	"github.com/sweetpotato0/radsafe/middleware"
)

// ErrorHandlerFunc handles errors
type ErrorHandlerFunc func(error) error

// ErrorHandler handles errors in the middleware chain
type ErrorHandler struct {
	handler ErrorHandlerFunc
}

// NewErrorHandler creates an error handling middleware
func NewErrorHandler(handler ErrorHandlerFunc) *ErrorHandler {
	return &ErrorHandler{handler: handler}
}

// NewClassifier returns a handler that applies Classify.
func NewClassifier() *ErrorHandler {
	return NewErrorHandler(Classify)
}

// Name returns the middleware name
func (m *ErrorHandler) Name() string {
	return "ErrorHandler"
}

// Execute handles errors from downstream middlewares
func (m *ErrorHandler) Execute(ctx *middleware.Context, next middleware.Handler) error {
	err := next(ctx)
	if err != nil && m.handler != nil {
		return m.handler(err)
	}
	return err
}

var known = []error{
	errors.ErrInvalidInput,
	errors.ErrNotFound,
	errors.ErrMissingCredential,
	errors.ErrRateLimited,
	errors.ErrRetrieval,
	errors.ErrGrading,
	errors.ErrGeneration,
	errors.ErrInternal,
}

// Classify keeps errors of the radsafe taxonomy as they are and wraps
// everything else with ErrInternal. Cancellation is passed through.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	for _, k := range known {
		if errors.Is(err, k) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", errors.ErrInternal, err)
}
