package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sweetpotato0/radsafe/message"
)

// GenerateRequest bundles inputs for a non-streaming LLM invocation.
type GenerateRequest struct {
	Messages []*message.Message
	// JSON asks the backend for a JSON object reply when it supports it.
	JSON bool
}

// GenerateResponse captures the LLM reply for non-streaming calls.
type GenerateResponse struct {
	Message *message.Message
}

// Client is the chat completion capability every pipeline stage depends on.
// Implementations must be safe for concurrent use.
type Client interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}

// Complete sends a system + user prompt pair and returns the reply text.
func Complete(ctx context.Context, c Client, system, user string) (string, error) {
	return complete(ctx, c, system, user, false)
}

// CompleteJSON sends a system + user prompt pair and decodes the reply into T.
func CompleteJSON[T any](ctx context.Context, c Client, system, user string) (*T, error) {
	raw, err := complete(ctx, c, system, user, true)
	if err != nil {
		return nil, err
	}
	return DecodeJSON[T](raw)
}

func complete(ctx context.Context, c Client, system, user string, asJSON bool) (string, error) {
	if c == nil {
		return "", fmt.Errorf("llm client is nil")
	}
	msgs := make([]*message.Message, 0, 2)
	if system != "" {
		msgs = append(msgs, message.System(system))
	}
	msgs = append(msgs, message.User(user))

	resp, err := c.Generate(ctx, &GenerateRequest{Messages: msgs, JSON: asJSON})
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Message == nil {
		return "", fmt.Errorf("llm returned empty response")
	}
	return resp.Message.Text(), nil
}

type timeoutClient struct {
	next    Client
	timeout time.Duration
}

// WithTimeout bounds every Generate call on c by d. A non-positive d returns c unchanged.
func WithTimeout(c Client, d time.Duration) Client {
	if c == nil || d <= 0 {
		return c
	}
	return &timeoutClient{next: c, timeout: d}
}

func (t *timeoutClient) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Generate(ctx, req)
}
