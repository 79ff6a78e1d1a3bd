package workflow

import (
	"time"

	"github.com/sweetpotato0/radsafe/graph"
	"github.com/sweetpotato0/radsafe/prompt"
	"github.com/sweetpotato0/radsafe/rag/grader"
	"github.com/sweetpotato0/radsafe/rag/tokenizer"
	"github.com/sweetpotato0/radsafe/websearch"
)

// SufficiencyStrategy selects how retrieved context is judged.
type SufficiencyStrategy string

const (
	// StrategySingle asks one question about the whole truncated context.
	StrategySingle SufficiencyStrategy = "single"
	// StrategyRelevance grades every document, drops the irrelevant ones and
	// calls the context insufficient when any document was dropped.
	StrategyRelevance SufficiencyStrategy = "relevance"
)

// Config controls the workflow.
type Config struct {
	WebSearchEnabled   bool
	TrustedDomainsOnly bool
	Strategy           SufficiencyStrategy
	RelevanceWorkers   int
	SearchResults      int
	SearchTimeout      time.Duration
	MaxContextTokens   int
	MaxVisits          int

	prompts   *prompt.Manager
	searcher  websearch.Searcher
	tokenizer tokenizer.Tokenizer
	observers []func(graph.Step, State)
}

// Option customises the workflow configuration.
type Option func(*Config)

// WithWebSearch enables every web search branch. Without it the workflow
// answers from the corpora only.
func WithWebSearch(enabled bool) Option {
	return func(cfg *Config) {
		cfg.WebSearchEnabled = enabled
	}
}

// WithTrustedDomainsOnly restricts the main web search to the corpora's
// canonical domains.
func WithTrustedDomainsOnly(enabled bool) Option {
	return func(cfg *Config) {
		cfg.TrustedDomainsOnly = enabled
	}
}

// WithSufficiencyStrategy picks the sufficiency judgment.
func WithSufficiencyStrategy(s SufficiencyStrategy) Option {
	return func(cfg *Config) {
		if s == StrategySingle || s == StrategyRelevance {
			cfg.Strategy = s
		}
	}
}

// WithRelevanceWorkers caps concurrent relevance grading calls.
func WithRelevanceWorkers(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.RelevanceWorkers = n
		}
	}
}

// WithSearcher sets the web search backend. Without one, web search steps
// behave as if no credential were configured.
func WithSearcher(s websearch.Searcher) Option {
	return func(cfg *Config) {
		cfg.searcher = s
	}
}

// WithSearchResults sets how many hits a web search asks for.
func WithSearchResults(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.SearchResults = n
		}
	}
}

// WithSearchTimeout bounds each web search call.
func WithSearchTimeout(d time.Duration) Option {
	return func(cfg *Config) {
		if d > 0 {
			cfg.SearchTimeout = d
		}
	}
}

// WithPrompts swaps the prompt templates.
func WithPrompts(m *prompt.Manager) Option {
	return func(cfg *Config) {
		if m != nil {
			cfg.prompts = m
		}
	}
}

// WithTokenizer sets the tokenizer used to count generation context tokens.
func WithTokenizer(t tokenizer.Tokenizer) Option {
	return func(cfg *Config) {
		if t != nil {
			cfg.tokenizer = t
		}
	}
}

// WithMaxContextTokens trims trailing corpus chunks from the generation
// prompt until it fits. Zero disables trimming.
func WithMaxContextTokens(n int) Option {
	return func(cfg *Config) {
		if n >= 0 {
			cfg.MaxContextTokens = n
		}
	}
}

// WithMaxVisits tweaks the loop guard of the state machine.
func WithMaxVisits(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxVisits = n
		}
	}
}

// WithObserver receives a snapshot of the state after every step.
func WithObserver(fn func(step graph.Step, s State)) Option {
	return func(cfg *Config) {
		if fn != nil {
			cfg.observers = append(cfg.observers, fn)
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		Strategy:         StrategySingle,
		RelevanceWorkers: grader.DefaultRelevanceWorkers,
		SearchResults:    websearch.DefaultResultCount,
		SearchTimeout:    15 * time.Second,
		MaxVisits:        4,
		prompts:          prompt.Defaults(),
		tokenizer:        tokenizer.NewSimpleTokenizer(),
	}
}
