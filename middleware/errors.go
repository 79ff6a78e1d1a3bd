package middleware

import (
	"fmt"

	"github.com/sweetpotato0/radsafe/errors"
)

var (
	// ErrRateLimitExceeded indicates rate limit has been exceeded
	ErrRateLimitExceeded = fmt.Errorf("%w: too many questions, please wait a moment", errors.ErrRateLimited)

	// ErrInvalidContext indicates middleware context is invalid
	ErrInvalidContext = fmt.Errorf("%w: nil middleware context", errors.ErrInternal)
)
