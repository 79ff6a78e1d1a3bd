// Package workflow answers radiation-safety questions with a fixed state
// machine: retrieve from both corpora, judge sufficiency, retry retrieval
// for the missing piece, fall back to web search, generate, grade the answer
// and finally verify it against trusted sources only.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	radsafeerrors "github.com/sweetpotato0/radsafe/errors"
	"github.com/sweetpotato0/radsafe/graph"
	"github.com/sweetpotato0/radsafe/message"
	"github.com/sweetpotato0/radsafe/pkg/logging"
	"github.com/sweetpotato0/radsafe/rag/document"
	"github.com/sweetpotato0/radsafe/rag/generator"
	"github.com/sweetpotato0/radsafe/rag/grader"
	"github.com/sweetpotato0/radsafe/rag/rewrite"
)

// Retriever searches both corpora and returns the merged, deduplicated hits.
// retriever.Corpora and retriever.Registry implement it.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]document.Chunk, error)
}

// Workflow is safe for concurrent use: all request data lives in the State
// of a single Run.
type Workflow struct {
	cfg       *Config
	retriever Retriever
	graph     *graph.Graph[run]
	logger    *slog.Logger
}

// New builds the workflow around retriever.
func New(retriever Retriever, opts ...Option) (*Workflow, error) {
	if retriever == nil {
		return nil, fmt.Errorf("retriever is required")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	w := &Workflow{
		cfg:       cfg,
		retriever: retriever,
		logger:    logging.WithComponent("workflow"),
	}

	builder := graph.NewBuilder[run]().
		AddStep(StepRetrieve, w.retrieve).
		AddStep(StepGradeSufficiency, w.gradeSufficiency).
		AddStep(StepRetrieveMissing, w.retrieveMissing).
		AddStep(StepWebSearch, w.webSearch).
		AddStep(StepGenerate, w.generate).
		AddStep(StepVerifyTrusted, w.verifyTrusted).
		AddStep(StepFinalize, w.finalize).
		SetStart(StepRetrieve).
		SetEnd(StepDone).
		SetMaxVisits(cfg.MaxVisits).
		SpanPrefix("radsafe.step.").
		Route(w.next)
	for _, observe := range cfg.observers {
		builder.Observe(func(step graph.Step, r *run) {
			observe(step, r.State.Clone())
		})
	}

	g, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build workflow graph: %w", err)
	}
	w.graph = g
	w.logger.Info("workflow initialised",
		"web_search_enabled", cfg.WebSearchEnabled,
		"trusted_domains_only", cfg.TrustedDomainsOnly,
		"strategy", string(cfg.Strategy),
		"searcher", cfg.searcher != nil,
	)
	return w, nil
}

// Config returns a copy of the effective configuration.
func (w *Workflow) Config() Config {
	return *w.cfg
}

// Run answers one question. Grading, rewriting and generation failures abort
// the run; web search failures never do.
func (w *Workflow) Run(ctx context.Context, in Input) (*Result, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question cannot be empty", radsafeerrors.ErrInvalidInput)
	}
	if in.LLM == nil {
		return nil, fmt.Errorf("%w: no language model selected", radsafeerrors.ErrInternal)
	}

	r := &run{
		State: State{
			Question: question,
			History:  append([]message.Turn(nil), in.History...),
		},
		prior: append([]message.Turn(nil), in.History...),
		grader: grader.New(in.LLM,
			grader.WithPrompts(w.cfg.prompts),
			grader.WithRelevanceWorkers(w.cfg.RelevanceWorkers),
		),
		rewriter: rewrite.New(in.LLM, w.cfg.prompts),
		generator: generator.New(in.LLM,
			generator.WithPrompts(w.cfg.prompts),
			generator.WithTokenBudget(w.cfg.tokenizer, w.cfg.MaxContextTokens),
		),
	}

	w.logger.Info("workflow run started",
		"question", logging.Trim(question, 120),
		"history_turns", len(in.History),
	)
	path, err := w.graph.Run(ctx, r)
	if err != nil {
		w.logger.Error("workflow run failed", "error", err, "path", path)
		return nil, err
	}

	w.logger.Info("workflow run finished",
		"path", path,
		"documents", len(r.Documents),
		"trusted_documents", len(r.TrustedDocuments),
		"web_search_attempted", r.WebSearchAttempted,
		"trusted_verified", r.TrustedVerified,
		"warning", r.Warning != "",
	)
	return newResult(&r.State, path), nil
}
