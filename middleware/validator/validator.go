package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sweetpotato0/radsafe/errors"
	"github.com/sweetpotato0/radsafe/middleware"
)

// ValidatorFunc validates the question
type ValidatorFunc func(string) error

// FilterFunc transforms or rejects the answer
type FilterFunc func(string) (string, error)

// Limits bounds the size of a request. Zero disables a limit.
type Limits struct {
	MaxQuestionChars int
	MaxHistoryTurns  int
}

// InputValidator validates the question and the history size
type InputValidator struct {
	validator ValidatorFunc
	limits    Limits
}

// NewInputValidator creates an input validation middleware
func NewInputValidator(validator ValidatorFunc) *InputValidator {
	return &InputValidator{validator: validator}
}

// NewRequestValidator rejects empty questions and requests over limits.
func NewRequestValidator(limits Limits) *InputValidator {
	return &InputValidator{validator: NonEmpty, limits: limits}
}

// Name returns the middleware name
func (m *InputValidator) Name() string {
	return "InputValidator"
}

// Execute validates the input
func (m *InputValidator) Execute(ctx *middleware.Context, next middleware.Handler) error {
	if m.validator != nil {
		if err := m.validator(ctx.Question); err != nil {
			return err
		}
	}
	if max := m.limits.MaxQuestionChars; max > 0 {
		if n := utf8.RuneCountInString(ctx.Question); n > max {
			return fmt.Errorf("%w: question is %d characters long, the limit is %d", errors.ErrInvalidInput, n, max)
		}
	}
	if max := m.limits.MaxHistoryTurns; max > 0 && len(ctx.History) > max {
		return fmt.Errorf("%w: chat history has %d turns, the limit is %d", errors.ErrInvalidInput, len(ctx.History), max)
	}
	return next(ctx)
}

// NonEmpty rejects blank questions.
func NonEmpty(question string) error {
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("%w: question cannot be empty", errors.ErrInvalidInput)
	}
	return nil
}

// ResponseFilter filters or transforms the answer
type ResponseFilter struct {
	filter FilterFunc
}

// NewResponseFilter creates a response filtering middleware
func NewResponseFilter(filter FilterFunc) *ResponseFilter {
	return &ResponseFilter{filter: filter}
}

// Name returns the middleware name
func (m *ResponseFilter) Name() string {
	return "ResponseFilter"
}

// Execute filters the answer once the rest of the chain has produced it
func (m *ResponseFilter) Execute(ctx *middleware.Context, next middleware.Handler) error {
	if err := next(ctx); err != nil {
		return err
	}
	if ctx.Answer == "" || m.filter == nil {
		return nil
	}
	answer, err := m.filter(ctx.Answer)
	if err != nil {
		return err
	}
	ctx.Answer = answer
	return nil
}

// TrimAnswer strips surrounding whitespace from model output.
func TrimAnswer(answer string) (string, error) {
	return strings.TrimSpace(answer), nil
}
