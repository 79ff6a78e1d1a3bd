// Package generator writes the final answer from labeled context blocks.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	radsafeerrors "github.com/sweetpotato0/radsafe/errors"
	"github.com/sweetpotato0/radsafe/llm"
	"github.com/sweetpotato0/radsafe/message"
	"github.com/sweetpotato0/radsafe/pkg/logging"
	"github.com/sweetpotato0/radsafe/prompt"
	"github.com/sweetpotato0/radsafe/rag/document"
	"github.com/sweetpotato0/radsafe/rag/tokenizer"
)

// Generator produces answers with an LLM.
type Generator struct {
	llm       llm.Client
	prompts   *prompt.Manager
	tokenizer tokenizer.Tokenizer
	maxTokens int
	logger    *slog.Logger
}

// Option customises a Generator.
type Option func(*Generator)

// WithPrompts swaps the prompt manager.
func WithPrompts(m *prompt.Manager) Option {
	return func(g *Generator) {
		if m != nil {
			g.prompts = m
		}
	}
}

// WithTokenBudget drops trailing corpus blocks from the prompt context until
// the rendered user prompt fits in maxTokens as counted by t. Web blocks are
// never dropped. The workflow state keeps every chunk.
func WithTokenBudget(t tokenizer.Tokenizer, maxTokens int) Option {
	return func(g *Generator) {
		g.tokenizer = t
		g.maxTokens = maxTokens
	}
}

// New builds a Generator.
func New(client llm.Client, opts ...Option) *Generator {
	g := &Generator{
		llm:     client,
		prompts: prompt.Defaults(),
		logger:  logging.WithComponent("generator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate answers question from chunks and the prior conversation.
func (g *Generator) Generate(ctx context.Context, question string, chunks []document.Chunk, history []message.Turn) (string, error) {
	web, corpus := Order(chunks)
	historyText := FormatHistory(history)

	if g.tokenizer != nil && g.maxTokens > 0 {
		base := question + "\n" + historyText + "\n" + joinBlocks(web)
		keep := tokenizer.Fit(g.tokenizer, base, blocks(corpus), g.maxTokens)
		if keep < len(corpus) {
			g.logger.Info("context trimmed to token budget", "max_tokens", g.maxTokens, "dropped", len(corpus)-keep)
			corpus = corpus[:keep]
		}
	}

	system, user, err := g.prompts.RenderPair(prompt.Answer, prompt.Vars{
		"question": question,
		"history":  historyText,
		"context":  joinBlocks(append(append([]document.Chunk{}, web...), corpus...)),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", radsafeerrors.ErrGeneration, err)
	}

	answer, err := llm.Complete(ctx, g.llm, system, user)
	if err != nil {
		return "", fmt.Errorf("%w: %w", radsafeerrors.ErrGeneration, err)
	}
	return answer, nil
}

// Order splits chunks into web results and corpus chunks, each in input order.
// Web results go first in the prompt.
func Order(chunks []document.Chunk) (web, corpus []document.Chunk) {
	for _, c := range chunks {
		if c.Type == document.TypeWeb {
			web = append(web, c)
		} else {
			corpus = append(corpus, c)
		}
	}
	return web, corpus
}

// BuildContext renders the labeled context in prompt order.
func BuildContext(chunks []document.Chunk) string {
	web, corpus := Order(chunks)
	return joinBlocks(append(web, corpus...))
}

// FormatHistory renders prior turns as alternating User/Assistant lines.
func FormatHistory(history []message.Turn) string {
	if len(history) == 0 {
		return ""
	}
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, "User: "+turn.Question+"\nAssistant: "+turn.Answer)
	}
	return strings.Join(lines, "\n\n")
}

func blocks(chunks []document.Chunk) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Label()+"\n"+c.Text)
	}
	return out
}

func joinBlocks(chunks []document.Chunk) string {
	return strings.Join(blocks(chunks), "\n\n")
}
