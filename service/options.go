package service

import (
	"log/slog"

	"github.com/sweetpotato0/radsafe/config"
	"github.com/sweetpotato0/radsafe/middleware"
	"github.com/sweetpotato0/radsafe/middleware/errorhandler"
	"github.com/sweetpotato0/radsafe/middleware/limiter"
	"github.com/sweetpotato0/radsafe/middleware/logger"
	"github.com/sweetpotato0/radsafe/middleware/smalltalk"
	"github.com/sweetpotato0/radsafe/middleware/validator"
)

// Option configures a Service.
type Option func(*Service)

// WithMiddleware replaces the request chain. The final handler that runs the
// workflow is always appended by the service.
func WithMiddleware(m ...middleware.Middleware) Option {
	return func(s *Service) {
		s.chain = middleware.NewChain()
		for _, mw := range m {
			s.chain.Add(mw)
		}
	}
}

// WithDefaults sets the provider and model used when a request names none,
// and the process-wide API keys.
func WithDefaults(provider, model string, keys map[string]string) Option {
	return func(s *Service) {
		s.defaultProvider = provider
		s.defaultModel = model
		s.fallbackKeys = keys
	}
}

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// FromSettings applies the process configuration.
func FromSettings(cfg config.Settings) Option {
	return func(s *Service) {
		WithDefaults(cfg.Provider, cfg.Model, cfg.APIKeys)(s)
		WithMiddleware(DefaultMiddleware(cfg)...)(s)
	}
}

// DefaultMiddleware is the standard request chain: error classification,
// logging, rate limiting, validation, small talk and answer trimming.
func DefaultMiddleware(cfg config.Settings) []middleware.Middleware {
	return []middleware.Middleware{
		errorhandler.NewClassifier(),
		logger.NewResponseLogger(nil),
		logger.NewRequestLogger(nil),
		limiter.NewRateLimiter(cfg.RequestsPerSecond, max(1, int(cfg.RequestsPerSecond))),
		validator.NewRequestValidator(validator.Limits{
			MaxQuestionChars: cfg.MaxQuestionChars,
			MaxHistoryTurns:  cfg.MaxHistoryTurns,
		}),
		smalltalk.New(),
		validator.NewResponseFilter(validator.TrimAnswer),
	}
}
