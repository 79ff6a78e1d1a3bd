package logger

import (
	"log/slog"
	"time"

	"github.com/sweetpotato0/radsafe/pkg/logging"
	"github.com/sweetpotato0/radsafe/middleware"
)

const questionLogLimit = 120

// RequestLogger logs incoming requests
type RequestLogger struct {
	logger *slog.Logger
}

// NewRequestLogger creates a request logging middleware. A nil logger uses
// the process logger.
func NewRequestLogger(logger *slog.Logger) *RequestLogger {
	if logger == nil {
		logger = logging.WithComponent("request")
	}
	return &RequestLogger{logger: logger}
}

// Name returns the middleware name
func (m *RequestLogger) Name() string {
	return "RequestLogger"
}

// Execute logs the request
func (m *RequestLogger) Execute(ctx *middleware.Context, next middleware.Handler) error {
	m.logger.InfoContext(ctx.Context(), "question received",
		"question", logging.Trim(ctx.Question, questionLogLimit),
		"history_turns", len(ctx.History))
	return next(ctx)
}

// ResponseLogger logs outgoing responses
type ResponseLogger struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewResponseLogger creates a response logging middleware
func NewResponseLogger(logger *slog.Logger) *ResponseLogger {
	if logger == nil {
		logger = logging.WithComponent("request")
	}
	return &ResponseLogger{logger: logger, now: time.Now}
}

// Name returns the middleware name
func (m *ResponseLogger) Name() string {
	return "ResponseLogger"
}

// Execute logs the response
func (m *ResponseLogger) Execute(ctx *middleware.Context, next middleware.Handler) error {
	start := m.now()
	err := next(ctx)
	elapsed := m.now().Sub(start)
	if err != nil {
		m.logger.WarnContext(ctx.Context(), "question failed", "error", err, "duration", elapsed)
		return err
	}
	m.logger.InfoContext(ctx.Context(), "question answered",
		"answer_chars", len(ctx.Answer),
		"short_circuit", ctx.Handled,
		"duration", elapsed)
	return nil
}
