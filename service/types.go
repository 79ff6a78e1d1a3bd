package service

import "github.com/sweetpotato0/radsafe/message"

// Request is one question from a client. The client keeps the history and
// sends it back with every question.
type Request struct {
	Question    string         `json:"question"`
	ChatHistory []message.Turn `json:"chat_history,omitempty"`
	// Model selects the provider: mistral, gemini, openai or anthropic.
	Model string `json:"model,omitempty"`
	// ModelVariant selects a model of the provider's allow-list.
	ModelVariant string `json:"model_variant,omitempty"`
	// APIKeys maps provider names to keys and wins over the process keys.
	APIKeys map[string]string `json:"api_keys,omitempty"`
}

// Source is one entry of the answer's source list.
type Source struct {
	Source       string `json:"source"`
	DocumentType string `json:"document_type"`
}

// Response is the answer to a Request.
type Response struct {
	Answer      string         `json:"answer"`
	Sources     []Source       `json:"sources"`
	ChatHistory []message.Turn `json:"chat_history"`
	// Warning is localized to the question; empty means none.
	Warning       string `json:"warning,omitempty"`
	UsedWebSearch bool   `json:"used_web_search"`
	// SourcesLabel is set when the sources include web search results.
	SourcesLabel string `json:"sources_label,omitempty"`
	Provider     string `json:"provider,omitempty"`
	Model        string `json:"model,omitempty"`
}

// Health is the readiness report.
type Health struct {
	Status         string   `json:"status"`
	WorkflowLoaded bool     `json:"graph_loaded"`
	Middleware     []string `json:"middleware,omitempty"`
}
