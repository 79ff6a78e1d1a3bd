package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	radsafeerrors "github.com/sweetpotato0/radsafe/errors"
	"github.com/sweetpotato0/radsafe/message"
	"github.com/sweetpotato0/radsafe/pkg/logging"
	"github.com/sweetpotato0/radsafe/rag/document"
	"github.com/sweetpotato0/radsafe/rag/generator"
	"github.com/sweetpotato0/radsafe/rag/grader"
	"github.com/sweetpotato0/radsafe/rag/i18n"
	"github.com/sweetpotato0/radsafe/rag/rewrite"
	"github.com/sweetpotato0/radsafe/websearch"
)

// retrieve runs the question, prefixed by the previous exchange on
// follow-ups, against both corpora.
func (w *Workflow) retrieve(ctx context.Context, r *run) error {
	query := rewrite.ContextPrefix(r.prior, rewrite.DefaultPrefixChars) + r.Question
	docs, err := w.retriever.Retrieve(ctx, query)
	if err != nil {
		return ensure(err, radsafeerrors.ErrRetrieval)
	}

	r.Documents = docs
	r.TrustedDocuments = append([]document.Chunk(nil), docs...)
	r.WebSearchAttempted = false
	w.logger.Info("documents retrieved", "documents", len(docs))
	return nil
}

func (w *Workflow) gradeSufficiency(ctx context.Context, r *run) error {
	sufficient, err := w.sufficient(ctx, r)
	if err != nil {
		return err
	}
	r.WebSearch = !sufficient
	w.logger.Info("sufficiency graded",
		"documents", len(r.Documents),
		"sufficient", sufficient,
		"strategy", string(w.cfg.Strategy),
	)
	return nil
}

// retrieveMissing asks for a query aimed at what the context lacks, merges
// the new hits into both document sets and grades the result again.
func (w *Workflow) retrieveMissing(ctx context.Context, r *run) error {
	docContext := "None."
	if len(r.Documents) > 0 {
		texts := make([]string, 0, len(r.Documents))
		for _, d := range r.Documents {
			texts = append(texts, d.Text)
		}
		docContext = strings.Join(texts, "\n\n")
	}
	contextText := rewrite.ContextPrefix(r.prior, rewrite.DefaultPrefixChars) + "Document context:\n" + docContext

	query, err := r.rewriter.MissingQuery(ctx, r.Question, contextText)
	if err != nil {
		return err
	}
	found, err := w.retriever.Retrieve(ctx, query)
	if err != nil {
		return ensure(err, radsafeerrors.ErrRetrieval)
	}

	merged, added := document.Merge(r.Documents, found)
	r.Documents = merged
	r.TrustedDocuments = append(r.TrustedDocuments, added...)

	sufficient, err := w.sufficient(ctx, r)
	if err != nil {
		return err
	}
	r.SufficientAfterMissing = sufficient
	w.logger.Info("missing information retrieved",
		"query", logging.Trim(query, 120),
		"added", len(added),
		"documents", len(r.Documents),
		"sufficient", sufficient,
	)
	return nil
}

// sufficient applies the configured strategy to the current documents.
func (w *Workflow) sufficient(ctx context.Context, r *run) (bool, error) {
	if w.cfg.Strategy != StrategyRelevance {
		return r.grader.Sufficient(ctx, r.Question, r.Documents)
	}

	res, err := r.grader.FilterRelevant(ctx, r.Question, r.Documents)
	if err != nil {
		return false, err
	}
	if res.Irrelevant > 0 {
		keep := make(map[string]struct{}, len(res.Relevant))
		for _, c := range res.Relevant {
			keep[c.Key()] = struct{}{}
		}
		r.Documents = res.Relevant
		r.TrustedDocuments = filterKeys(r.TrustedDocuments, keep)
	}
	return res.Irrelevant == 0 && len(res.Relevant) > 0, nil
}

// webSearch appends one Web chunk per hit to the working documents. Without a
// usable searcher it only latches, before any query is rewritten. Search
// failures never fail the run, and the trusted documents are never touched.
func (w *Workflow) webSearch(ctx context.Context, r *run) error {
	r.WebSearchAttempted = true
	r.WebSearch = false

	if !websearch.Available(w.cfg.searcher) {
		w.logger.Warn("web search unavailable, continuing without it", "error", websearch.ErrNoCredential)
		return nil
	}

	contextText := rewrite.ContextPrefix(r.prior, rewrite.WebPrefixChars) + grader.Truncate(r.Documents)
	query, err := r.rewriter.SearchQuery(ctx, r.Question, contextText)
	if err != nil {
		return err
	}
	if w.cfg.TrustedDomainsOnly {
		query = websearch.RestrictToTrusted(query)
	}

	results, err := w.search(ctx, query)
	if err != nil {
		w.logger.Warn("web search unavailable, continuing without it",
			"query", logging.Trim(query, 120),
			"error", err,
		)
		return nil
	}

	merged, added := document.Merge(r.Documents, websearch.ToChunks(results))
	r.Documents = merged
	w.logger.Info("web search finished",
		"query", logging.Trim(query, 120),
		"results", len(results),
		"added", len(added),
	)
	return nil
}

// trustedOnlySearch searches the trusted domains only and returns the joined
// snippets. Failures yield an empty string.
func (w *Workflow) trustedOnlySearch(ctx context.Context, question string) string {
	results, err := w.search(ctx, websearch.RestrictToTrusted(question))
	if err != nil {
		w.logger.Warn("trusted web search unavailable", "error", err)
		return ""
	}
	return websearch.Snippets(results)
}

func (w *Workflow) search(ctx context.Context, query string) ([]websearch.Result, error) {
	if !websearch.Available(w.cfg.searcher) {
		return nil, websearch.ErrNoCredential
	}
	if w.cfg.SearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.SearchTimeout)
		defer cancel()
	}
	return w.cfg.searcher.Search(ctx, query, w.cfg.SearchResults)
}

// generate drafts the answer, records the turn and grades the draft so the
// router can decide without another call.
func (w *Workflow) generate(ctx context.Context, r *run) error {
	if w.cfg.tokenizer != nil {
		w.logger.Debug("generation context size",
			"tokens", w.cfg.tokenizer.CountTokens(generator.BuildContext(r.Documents)),
			"documents", len(r.Documents),
		)
	}

	answer, err := r.generator.Generate(ctx, r.Question, r.Documents, r.prior)
	if err != nil {
		return err
	}
	r.Generation = answer
	// A second draft after web search replaces the first turn instead of adding one.
	r.History = message.AppendTurn(r.prior, r.Question, answer)

	score, err := r.grader.Generation(ctx, r.Question, answer, r.Documents)
	if err != nil {
		return err
	}
	r.Grade = score
	w.logger.Info("answer generated",
		"documents", len(r.Documents),
		"grounded", score.Grounded,
		"answers_question", score.AnswersQuestion,
	)
	return nil
}

// verifyTrusted checks the answer against the corpus chunks alone. When that
// fails after a web search, a search restricted to trusted domains gets one
// chance to supply the missing support.
func (w *Workflow) verifyTrusted(ctx context.Context, r *run) error {
	if len(r.TrustedDocuments) == 0 {
		r.Warning = i18n.For(r.Question, i18n.NoTrustedSources)
		w.logger.Info("no trusted sources to verify against")
		return nil
	}

	supported, err := r.grader.Supported(ctx, r.Generation, r.TrustedDocuments)
	if err != nil {
		return err
	}
	if supported {
		r.TrustedVerified = true
		w.logger.Info("answer verified against trusted sources", "trusted_documents", len(r.TrustedDocuments))
		return nil
	}

	if !r.WebSearchAttempted {
		r.Warning = i18n.For(r.Question, i18n.NotVerifiedTrustedOnly)
		w.logger.Info("answer not verified against trusted sources")
		return nil
	}

	if supplemental := w.trustedOnlySearch(ctx, r.Question); supplemental != "" {
		evidence := append(append([]document.Chunk(nil), r.TrustedDocuments...), document.Chunk{
			Text:   supplemental,
			Source: document.WebSourcePlaceholder,
			Type:   document.TypeWeb,
		})
		supported, err = r.grader.Supported(ctx, r.Generation, evidence)
		if err != nil {
			return err
		}
		if supported {
			r.TrustedVerified = true
			w.logger.Info("answer verified with trusted web sources")
			return nil
		}
	}
	r.Warning = i18n.For(r.Question, i18n.NotVerifiedAfterWeb)
	w.logger.Info("answer not verified after trusted web search")
	return nil
}

// finalize adds the generic warning when the web was searched but trust was
// never established and no more specific warning exists.
func (w *Workflow) finalize(_ context.Context, r *run) error {
	if r.Warning == "" && r.WebSearchAttempted && !r.TrustedVerified {
		r.Warning = i18n.For(r.Question, i18n.WebSearchPoor)
	}
	return nil
}

// ensure wraps err with kind unless it already matches.
func ensure(err, kind error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

func filterKeys(chunks []document.Chunk, keep map[string]struct{}) []document.Chunk {
	out := make([]document.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if _, ok := keep[c.Key()]; ok {
			out = append(out, c)
		}
	}
	return out
}
