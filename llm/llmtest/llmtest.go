// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sweetpotato0/radsafe/llm"
	"github.com/sweetpotato0/radsafe/message"
)

type rule struct {
	match   string
	replies []string
	err     error
	served  int
}

// Fake answers Generate calls from rules matched by substring against the
// request's system and user text. The first matching rule wins. Fake is safe
// for concurrent use.
type Fake struct {
	mu      sync.Mutex
	rules   []*rule
	calls   []string
	Default string
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{}
}

// On replies with replies in order for requests containing match; the last
// reply repeats once the list is exhausted.
func (f *Fake) On(match string, replies ...string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, &rule{match: match, replies: replies})
	return f
}

// Fail returns err for requests containing match.
func (f *Fake) Fail(match string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, &rule{match: match, err: err})
	return f
}

// Generate implements llm.Client.
func (f *Fake) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := flatten(req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	for _, r := range f.rules {
		if !strings.Contains(text, r.match) {
			continue
		}
		if r.err != nil {
			return nil, r.err
		}
		if len(r.replies) == 0 {
			break
		}
		reply := r.replies[min(r.served, len(r.replies)-1)]
		r.served++
		return respond(reply), nil
	}
	if f.Default != "" {
		return respond(f.Default), nil
	}
	return nil, fmt.Errorf("llmtest: no rule matches request %q", truncate(text, 120))
}

// Calls counts requests containing match.
func (f *Fake) Calls(match string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.Contains(c, match) {
			n++
		}
	}
	return n
}

// Requests returns the flattened text of requests containing match.
func (f *Fake) Requests(match string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if strings.Contains(c, match) {
			out = append(out, c)
		}
	}
	return out
}

// Total returns the number of Generate calls.
func (f *Fake) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func respond(reply string) *llm.GenerateResponse {
	return &llm.GenerateResponse{Message: message.Assistant(reply)}
}

func flatten(req *llm.GenerateRequest) string {
	if req == nil {
		return ""
	}
	parts := make([]string, 0, len(req.Messages))
	for _, m := range req.Messages {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
