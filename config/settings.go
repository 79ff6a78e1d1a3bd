package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Vector backends understood by Settings.VectorBackend.
const (
	VectorBackendMemory   = "memory"
	VectorBackendPostgres = "postgres"
)

// Sufficiency strategies understood by Settings.SufficiencyStrategy.
const (
	SufficiencySingle    = "single"
	SufficiencyRelevance = "relevance"
)

// Settings is the process configuration, read once at startup.
// Library packages never read the environment; binaries pass these values down.
type Settings struct {
	WebSearchEnabled   bool
	TrustedDomainsOnly bool

	Provider string
	Model    string
	APIKeys  map[string]string // provider -> key, from the *_API_KEY variables

	BraveAPIKey string
	BraveRPS    float64

	VectorBackend      string
	PGDSN              string
	EmbeddingDimension int

	RedisAddr      string
	SearchCacheTTL time.Duration

	LLMTimeout       time.Duration
	SearchTimeout    time.Duration
	RetrievalTimeout time.Duration

	SufficiencyStrategy string
	RelevanceWorkers    int
	MaxContextTokens    int // 0 disables the generation context budget

	MaxHistoryTurns   int
	MaxQuestionChars  int
	RequestsPerSecond float64
}

// Default returns the settings used when no variable is set.
func Default() Settings {
	return Settings{
		Provider:            "mistral",
		APIKeys:             map[string]string{},
		BraveRPS:            1,
		VectorBackend:       VectorBackendMemory,
		EmbeddingDimension:  1024,
		SearchCacheTTL:      time.Hour,
		LLMTimeout:          60 * time.Second,
		SearchTimeout:       15 * time.Second,
		RetrievalTimeout:    20 * time.Second,
		SufficiencyStrategy: SufficiencySingle,
		RelevanceWorkers:    8,
		MaxHistoryTurns:     20,
		MaxQuestionChars:    2000,
		RequestsPerSecond:   5,
	}
}

// FromEnv reads Settings from the process environment.
func FromEnv() (Settings, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup reads Settings through lookup, which has the os.LookupEnv signature.
func FromLookup(lookup func(string) (string, bool)) (Settings, error) {
	s := Default()
	get := func(name string) string {
		v, _ := lookup(name)
		return strings.TrimSpace(v)
	}

	s.WebSearchEnabled = parseBool(get("WEB_SEARCH_ENABLED"))
	s.TrustedDomainsOnly = parseBool(get("WEB_SEARCH_TRUSTED_DOMAINS_ONLY"))

	if p := strings.ToLower(get("LLM_PROVIDER")); p != "" {
		s.Provider = p
	}
	s.Model = get("LLM_MODEL")
	for provider, env := range map[string]string{
		"mistral":   "MISTRAL_API_KEY",
		"gemini":    "GOOGLE_API_KEY",
		"openai":    "OPENAI_API_KEY",
		"anthropic": "ANTHROPIC_API_KEY",
	} {
		if key := get(env); key != "" {
			s.APIKeys[provider] = key
		}
	}

	s.BraveAPIKey = get("BRAVE_SEARCH_API_KEY")
	if backend := strings.ToLower(get("VECTOR_BACKEND")); backend != "" {
		s.VectorBackend = backend
	}
	if strategy := strings.ToLower(get("SUFFICIENCY_STRATEGY")); strategy != "" {
		s.SufficiencyStrategy = strategy
	}
	s.PGDSN = get("PG_DSN")
	s.RedisAddr = get("REDIS_ADDR")

	v := NewValidator()
	parseFloat(v, "BRAVE_SEARCH_RPS", get("BRAVE_SEARCH_RPS"), &s.BraveRPS)
	parseFloat(v, "REQUESTS_PER_SECOND", get("REQUESTS_PER_SECOND"), &s.RequestsPerSecond)
	parseInt(v, "EMBEDDING_DIMENSION", get("EMBEDDING_DIMENSION"), &s.EmbeddingDimension)
	parseInt(v, "RELEVANCE_WORKERS", get("RELEVANCE_WORKERS"), &s.RelevanceWorkers)
	parseInt(v, "MAX_CONTEXT_TOKENS", get("MAX_CONTEXT_TOKENS"), &s.MaxContextTokens)
	parseInt(v, "MAX_HISTORY_TURNS", get("MAX_HISTORY_TURNS"), &s.MaxHistoryTurns)
	parseInt(v, "MAX_QUESTION_CHARS", get("MAX_QUESTION_CHARS"), &s.MaxQuestionChars)
	parseDuration(v, "SEARCH_CACHE_TTL", get("SEARCH_CACHE_TTL"), &s.SearchCacheTTL)
	parseDuration(v, "LLM_TIMEOUT", get("LLM_TIMEOUT"), &s.LLMTimeout)
	parseDuration(v, "SEARCH_TIMEOUT", get("SEARCH_TIMEOUT"), &s.SearchTimeout)
	parseDuration(v, "RETRIEVAL_TIMEOUT", get("RETRIEVAL_TIMEOUT"), &s.RetrievalTimeout)
	if err := v.Error(); err != nil {
		return s, err
	}
	return s, s.Validate()
}

// Validate checks value ranges and cross-field requirements.
func (s Settings) Validate() error {
	v := NewValidator()
	v.ValidateOneOf("VECTOR_BACKEND", s.VectorBackend, VectorBackendMemory, VectorBackendPostgres)
	if s.VectorBackend == VectorBackendPostgres {
		v.RequireNonEmpty("PG_DSN", s.PGDSN)
	}
	v.RequirePositive("EMBEDDING_DIMENSION", s.EmbeddingDimension)
	v.ValidateOneOf("SUFFICIENCY_STRATEGY", s.SufficiencyStrategy, SufficiencySingle, SufficiencyRelevance)
	v.ValidateRange("RELEVANCE_WORKERS", s.RelevanceWorkers, 1, 64)
	v.ValidateRange("MAX_CONTEXT_TOKENS", s.MaxContextTokens, 0, 1_000_000)
	v.ValidateFloatRange("BRAVE_SEARCH_RPS", s.BraveRPS, 0.01, 100)
	v.ValidateFloatRange("REQUESTS_PER_SECOND", s.RequestsPerSecond, 0.01, 10000)
	v.RequirePositive("MAX_HISTORY_TURNS", s.MaxHistoryTurns)
	v.RequirePositive("MAX_QUESTION_CHARS", s.MaxQuestionChars)
	v.RequirePositiveDuration("SEARCH_CACHE_TTL", s.SearchCacheTTL)
	v.RequirePositiveDuration("LLM_TIMEOUT", s.LLMTimeout)
	v.RequirePositiveDuration("SEARCH_TIMEOUT", s.SearchTimeout)
	v.RequirePositiveDuration("RETRIEVAL_TIMEOUT", s.RetrievalTimeout)
	return v.Error()
}

// parseBool treats "true" and "1" (any case) as true, everything else as false.
func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "1":
		return true
	}
	return false
}

func parseInt(v *Validator, field, raw string, dst *int) {
	if raw == "" {
		return
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		v.add(field, "value must be an integer, got "+strconv.Quote(raw))
		return
	}
	*dst = n
}

func parseFloat(v *Validator, field, raw string, dst *float64) {
	if raw == "" {
		return
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		v.add(field, "value must be a number, got "+strconv.Quote(raw))
		return
	}
	*dst = f
}

func parseDuration(v *Validator, field, raw string, dst *time.Duration) {
	if raw == "" {
		return
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		v.add(field, "value must be a duration such as 30s, got "+strconv.Quote(raw))
		return
	}
	*dst = d
}
