// Package service is the caller-facing layer: it resolves the requested
// model, runs the request chain and the answer workflow, and shapes the
// result into a Response with a deduplicated source list.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sweetpotato0/radsafe/config"
	"github.com/sweetpotato0/radsafe/contrib/provider"
	"github.com/sweetpotato0/radsafe/message"
	"github.com/sweetpotato0/radsafe/middleware"
	"github.com/sweetpotato0/radsafe/pkg/logging"
	"github.com/sweetpotato0/radsafe/pkg/telemetry"
	"github.com/sweetpotato0/radsafe/rag/document"
	"github.com/sweetpotato0/radsafe/rag/i18n"
	"github.com/sweetpotato0/radsafe/rag/workflow"
)

// NotReadyAnswer is returned while no workflow is loaded.
const NotReadyAnswer = "Backend not ready. Please try again shortly."

// unnamedSource stands in for chunks without a source.
const unnamedSource = "retrieved"

// Answerer runs the answer workflow. *workflow.Workflow implements it.
type Answerer interface {
	Run(ctx context.Context, in workflow.Input) (*workflow.Result, error)
}

// ModelResolver turns a model selection into a client.
// *provider.Resolver implements it.
type ModelResolver interface {
	Resolve(ctx context.Context, sel provider.Selection) (provider.Resolution, error)
}

// Service answers questions. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	answerer        Answerer
	resolver        ModelResolver
	chain           *middleware.MiddlewareChain
	defaultProvider string
	defaultModel    string
	fallbackKeys    map[string]string
	logger          *slog.Logger
}

// New creates a service. A nil answerer yields a service that reports itself
// as not ready.
func New(answerer Answerer, resolver ModelResolver, opts ...Option) (*Service, error) {
	if resolver == nil {
		return nil, fmt.Errorf("model resolver is required")
	}
	s := &Service{
		answerer: answerer,
		resolver: resolver,
		logger:   logging.WithComponent("service"),
	}
	WithMiddleware(DefaultMiddleware(config.Default())...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Health reports whether the workflow is loaded.
func (s *Service) Health() Health {
	return Health{
		Status:         "ok",
		WorkflowLoaded: s.answerer != nil,
		Middleware:     s.chain.Names(),
	}
}

// Ask answers one question. A missing API key for the selected provider
// returns an *errors.CredentialError before the workflow starts. Small talk
// is answered without a model.
func (s *Service) Ask(ctx context.Context, req Request) (resp *Response, err error) {
	ctx, span := telemetry.Start(ctx, "radsafe.ask",
		attribute.String("provider", provider.Normalize(s.providerFor(req))),
		attribute.Int("history_turns", len(req.ChatHistory)),
	)
	defer func() { telemetry.End(span, err) }()

	if s.answerer == nil {
		return &Response{
			Answer:      NotReadyAnswer,
			Sources:     []Source{},
			ChatHistory: append([]message.Turn{}, req.ChatHistory...),
		}, nil
	}

	mctx := middleware.NewContext(ctx, req.Question, req.ChatHistory)
	var result *workflow.Result
	var res provider.Resolution

	err = s.chain.Execute(mctx, func(c *middleware.Context) error {
		var rerr error
		res, rerr = s.resolve(c.Context(), req)
		if rerr != nil {
			return rerr
		}
		result, rerr = s.answerer.Run(c.Context(), workflow.Input{
			Question: c.Question,
			History:  c.History,
			LLM:      res.Client,
		})
		if rerr != nil {
			return rerr
		}
		c.Answer = result.Generation
		c.History = result.History
		return nil
	})
	if err != nil {
		return nil, err
	}

	if mctx.Handled {
		return &Response{
			Answer:      mctx.Answer,
			Sources:     []Source{},
			ChatHistory: mctx.History,
		}, nil
	}

	history := append([]message.Turn{}, mctx.History...)
	if n := len(history); n > 0 {
		// The chain may have rewritten the answer; keep history in step.
		history[n-1].Answer = mctx.Answer
	}
	resp = &Response{
		Answer:        mctx.Answer,
		Sources:       Sources(result.Documents),
		ChatHistory:   history,
		Warning:       result.Warning,
		UsedWebSearch: result.UsedWebSearch,
		Provider:      provider.DisplayName(res.Provider),
		Model:         res.Model,
	}
	if result.UsedWebSearch {
		resp.SourcesLabel = i18n.For(req.Question, i18n.LabelSourcesInclWeb)
	}
	s.logger.InfoContext(ctx, "question answered",
		"provider", res.Provider,
		"model", res.Model,
		"sources", len(resp.Sources),
		"used_web_search", resp.UsedWebSearch,
		"trusted_verified", result.TrustedVerified,
	)
	return resp, nil
}

func (s *Service) providerFor(req Request) string {
	if req.Model != "" {
		return req.Model
	}
	return s.defaultProvider
}

func (s *Service) resolve(ctx context.Context, req Request) (provider.Resolution, error) {
	name := provider.Normalize(s.providerFor(req))
	model := req.ModelVariant
	if model == "" && name == provider.Normalize(s.defaultProvider) {
		model = s.defaultModel
	}
	res, err := s.resolver.Resolve(ctx, provider.Selection{
		Provider:     name,
		Model:        model,
		APIKeys:      req.APIKeys,
		FallbackKeys: s.fallbackKeys,
	})
	if err != nil {
		return res, err
	}
	if !res.OK() {
		if cerr := res.Err(); cerr != nil {
			return res, cerr
		}
		return res, fmt.Errorf("no client for provider %s", name)
	}
	return res, nil
}

// Sources lists the distinct (source, document type) pairs of docs in
// document order. Chunks without a source are listed as "retrieved".
func Sources(docs []document.Chunk) []Source {
	out := make([]Source, 0, len(docs))
	seen := make(map[Source]struct{}, len(docs))
	for _, d := range docs {
		src := Source{Source: d.Source, DocumentType: string(d.Type)}
		if src.Source == "" {
			src.Source = unnamedSource
		}
		if _, dup := seen[src]; dup {
			continue
		}
		seen[src] = struct{}{}
		out = append(out, src)
	}
	return out
}
