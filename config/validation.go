package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ValidationError reports one offending setting. Field is the environment
// variable or option name the value came from.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validator collects every problem of a configuration instead of stopping at
// the first one, so a misconfigured deployment is fixed in a single round.
type Validator struct {
	errors []ValidationError
}

// NewValidator returns an empty Validator.
func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) add(field, msg string) *Validator {
	v.errors = append(v.errors, ValidationError{Field: field, Message: msg})
	return v
}

// RequireNonEmpty fails on blank strings.
func (v *Validator) RequireNonEmpty(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		return v.add(field, "value cannot be empty")
	}
	return v
}

// RequirePositive fails on n <= 0.
func (v *Validator) RequirePositive(field string, n int) *Validator {
	if n <= 0 {
		return v.add(field, fmt.Sprintf("value must be positive, got %d", n))
	}
	return v
}

// RequirePositiveDuration fails on d <= 0.
func (v *Validator) RequirePositiveDuration(field string, d time.Duration) *Validator {
	if d <= 0 {
		return v.add(field, fmt.Sprintf("duration must be positive, got %s", d))
	}
	return v
}

// ValidateRange checks lo <= n <= hi.
func (v *Validator) ValidateRange(field string, n, lo, hi int) *Validator {
	if n < lo || n > hi {
		return v.add(field, fmt.Sprintf("value must be between %d and %d, got %d", lo, hi, n))
	}
	return v
}

// ValidateFloatRange checks lo <= f <= hi.
func (v *Validator) ValidateFloatRange(field string, f, lo, hi float64) *Validator {
	if f < lo || f > hi {
		return v.add(field, fmt.Sprintf("value must be between %.2f and %.2f, got %.2f", lo, hi, f))
	}
	return v
}

// ValidateOneOf checks value against a closed set.
func (v *Validator) ValidateOneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if a == value {
			return v
		}
	}
	return v.add(field, fmt.Sprintf("value must be one of %v, got %q", allowed, value))
}

// ValidatePattern checks value against re. Used for identifiers that end up
// in SQL, such as vector table names.
func (v *Validator) ValidatePattern(field, value string, re *regexp.Regexp) *Validator {
	if !re.MatchString(value) {
		return v.add(field, fmt.Sprintf("value %q does not match %s", value, re))
	}
	return v
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns the collected problems in check order.
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// Error joins the collected problems, or returns nil. Each one stays
// reachable through errors.As.
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	errs := make([]error, 0, len(v.errors)+1)
	errs = append(errs, errors.New("invalid configuration"))
	for _, e := range v.errors {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// ValidateRedisConfig checks the settings of the shared search cache.
func ValidateRedisConfig(addr string, db int, prefix string) error {
	return NewValidator().
		RequireNonEmpty("REDIS_ADDR", addr).
		ValidateRange("REDIS_DB", db, 0, 15).
		RequireNonEmpty("prefix", prefix).
		Error()
}
