// Package rewrite turns a question and its surrounding context into short
// retrieval and web search queries.
package rewrite

import (
	"context"
	"fmt"
	"strings"

	radsafeerrors "github.com/sweetpotato0/radsafe/errors"
	"github.com/sweetpotato0/radsafe/llm"
	"github.com/sweetpotato0/radsafe/message"
	"github.com/sweetpotato0/radsafe/prompt"
)

// Budgets for the previous answer in ContextPrefix and caps on generated queries.
const (
	DefaultPrefixChars   = 400
	WebPrefixChars       = 300
	MaxMissingQueryChars = 150
	MaxSearchQueryChars  = 200

	emptyContext = "None."
)

// ContextPrefix renders the most recent exchange so short follow-up questions
// keep their referent. The answer is cut to maxAnswerChars runes.
func ContextPrefix(history []message.Turn, maxAnswerChars int) string {
	last, ok := message.LastTurn(history)
	if !ok {
		return ""
	}
	answer := []rune(last.Answer)
	truncated := last.Answer
	if len(answer) > maxAnswerChars {
		truncated = string(answer[:maxAnswerChars]) + "…"
	}
	return fmt.Sprintf("Previous exchange:\nUser: %s\nAssistant: %s\n\n", last.Question, truncated)
}

// Rewriter produces queries with an LLM.
type Rewriter struct {
	llm     llm.Client
	prompts *prompt.Manager
}

// New builds a Rewriter. A nil manager selects the built-in prompts.
func New(client llm.Client, prompts *prompt.Manager) *Rewriter {
	if prompts == nil {
		prompts = prompt.Defaults()
	}
	return &Rewriter{llm: client, prompts: prompts}
}

// MissingQuery asks for a query that finds what the context lacks. The
// result is capped at MaxMissingQueryChars and falls back to question.
func (r *Rewriter) MissingQuery(ctx context.Context, question, contextText string) (string, error) {
	return r.query(ctx, prompt.MissingQuery, question, contextText, MaxMissingQueryChars)
}

// SearchQuery asks for a web search query, capped at MaxSearchQueryChars.
func (r *Rewriter) SearchQuery(ctx context.Context, question, contextText string) (string, error) {
	return r.query(ctx, prompt.SearchQuery, question, contextText, MaxSearchQueryChars)
}

func (r *Rewriter) query(ctx context.Context, name, question, contextText string, limit int) (string, error) {
	if strings.TrimSpace(contextText) == "" {
		contextText = emptyContext
	}
	system, user, err := r.prompts.RenderPair(name, prompt.Vars{
		"question": question,
		"context":  contextText,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", radsafeerrors.ErrGeneration, name, err)
	}
	out, err := llm.Complete(ctx, r.llm, system, user)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", radsafeerrors.ErrGeneration, name, err)
	}
	return capQuery(out, limit, question), nil
}

func capQuery(out string, limit int, fallback string) string {
	runes := []rune(strings.TrimSpace(out))
	if len(runes) > limit {
		runes = runes[:limit]
	}
	if len(runes) == 0 {
		return fallback
	}
	return string(runes)
}
