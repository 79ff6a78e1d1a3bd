// Package grader holds the LLM judgments that gate the answer workflow:
// context sufficiency, combined grounding and usefulness, hallucination
// checks against trusted sources, and per-document relevance.
package grader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	radsafeerrors "github.com/sweetpotato0/radsafe/errors"
	"github.com/sweetpotato0/radsafe/llm"
	"github.com/sweetpotato0/radsafe/pkg/logging"
	"github.com/sweetpotato0/radsafe/prompt"
	"github.com/sweetpotato0/radsafe/rag/document"
)

// DefaultRelevanceWorkers caps concurrent relevance calls.
const DefaultRelevanceWorkers = 8

// Grader runs grading prompts against one LLM client. Every failure wraps
// ErrGrading; a grading error is never turned into a default verdict.
type Grader struct {
	llm     llm.Client
	prompts *prompt.Manager
	workers int
	logger  *slog.Logger
}

// Option customises a Grader.
type Option func(*Grader)

// WithPrompts swaps the prompt manager.
func WithPrompts(m *prompt.Manager) Option {
	return func(g *Grader) {
		if m != nil {
			g.prompts = m
		}
	}
}

// WithRelevanceWorkers sets the relevance pool cap.
func WithRelevanceWorkers(n int) Option {
	return func(g *Grader) {
		if n > 0 {
			g.workers = n
		}
	}
}

// New builds a Grader.
func New(client llm.Client, opts ...Option) *Grader {
	g := &Grader{
		llm:     client,
		prompts: prompt.Defaults(),
		workers: DefaultRelevanceWorkers,
		logger:  logging.WithComponent("grader"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Sufficient asks whether chunks hold enough specific information to answer
// question. No chunks means insufficient, without an LLM call.
func (g *Grader) Sufficient(ctx context.Context, question string, chunks []document.Chunk) (bool, error) {
	if len(chunks) == 0 {
		return false, nil
	}
	score, err := g.binary(ctx, prompt.Sufficiency, prompt.Vars{
		"question": question,
		"context":  Truncate(chunks),
	})
	if err != nil {
		return false, err
	}
	g.logger.Debug("sufficiency graded", "documents", len(chunks), "sufficient", score)
	return score, nil
}

// Generation grades generation for grounding in chunks and for answering
// question in one call. Empty chunks are graded against NoDocuments.
func (g *Grader) Generation(ctx context.Context, question, generation string, chunks []document.Chunk) (GenerationScore, error) {
	docs := Truncate(chunks)
	if len(chunks) == 0 {
		docs = NoDocuments
	}
	out, err := render[generationScore](ctx, g, prompt.Generation, prompt.Vars{
		"documents":  docs,
		"question":   question,
		"generation": generation,
	})
	if err != nil {
		return GenerationScore{}, err
	}
	if out.Grounded == nil || out.AnswersQuestion == nil {
		return GenerationScore{}, fmt.Errorf("%w: generation grade is missing a score", radsafeerrors.ErrGrading)
	}
	score := GenerationScore{Grounded: bool(*out.Grounded), AnswersQuestion: bool(*out.AnswersQuestion)}
	g.logger.Debug("generation graded", "grounded", score.Grounded, "answers_question", score.AnswersQuestion)
	return score, nil
}

// Supported reports whether generation is grounded in chunks. Chunks whose
// truncated text is blank are never support.
func (g *Grader) Supported(ctx context.Context, generation string, chunks []document.Chunk) (bool, error) {
	docs := Truncate(chunks)
	if strings.TrimSpace(docs) == "" {
		return false, nil
	}
	return g.binary(ctx, prompt.Hallucination, prompt.Vars{
		"documents":  docs,
		"generation": generation,
	})
}

// Relevant grades a single chunk against question.
func (g *Grader) Relevant(ctx context.Context, question string, chunk document.Chunk) (bool, error) {
	return g.binary(ctx, prompt.Relevance, prompt.Vars{
		"document": chunk.Text,
		"question": question,
	})
}

func (g *Grader) binary(ctx context.Context, name string, vars prompt.Vars) (bool, error) {
	out, err := render[binaryScore](ctx, g, name, vars)
	if err != nil {
		return false, err
	}
	if out.BinaryScore == nil {
		return false, fmt.Errorf("%w: %s reply has no binary_score", radsafeerrors.ErrGrading, name)
	}
	return bool(*out.BinaryScore), nil
}

func render[T any](ctx context.Context, g *Grader, name string, vars prompt.Vars) (*T, error) {
	system, user, err := g.prompts.RenderPair(name, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", radsafeerrors.ErrGrading, name, err)
	}
	out, err := llm.CompleteJSON[T](ctx, g.llm, system, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", radsafeerrors.ErrGrading, name, err)
	}
	return out, nil
}
