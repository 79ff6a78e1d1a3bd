package document

import (
	"path/filepath"
	"strings"
)

// DocumentType identifies where a chunk came from.
type DocumentType string

const (
	// TypeIAEA marks chunks from the international standards corpus.
	TypeIAEA DocumentType = "IAEA"
	// TypeDanishLaw marks chunks from the national legislation corpus.
	TypeDanishLaw DocumentType = "Danish law"
	// TypeWeb marks chunks produced by a web search.
	TypeWeb DocumentType = "Web"
)

// Trusted reports whether the type belongs to one of the curated corpora.
func (t DocumentType) Trusted() bool {
	return t == TypeIAEA || t == TypeDanishLaw
}

// DedupKeyLength is the number of leading characters that identify a chunk.
const DedupKeyLength = 200

// WebSourcePlaceholder is used as source for web hits without a link.
const WebSourcePlaceholder = "web_search"

// Document represents a knowledge source that can be chunked and indexed.
type Document struct {
	ID       string         `json:"id"`
	Source   string         `json:"source"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Chunk is a retrieved unit of text with its provenance. Chunks are treated as
// immutable once created; stages share them by value.
type Chunk struct {
	Text     string         `json:"text"`
	Source   string         `json:"source"`
	Type     DocumentType   `json:"document_type"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Key returns the content-based identity of the chunk: its first 200 characters.
func (c Chunk) Key() string {
	runes := []rune(c.Text)
	if len(runes) <= DedupKeyLength {
		return c.Text
	}
	return string(runes[:DedupKeyLength])
}

// Label returns the human readable citation tag used in generation context.
func (c Chunk) Label() string {
	return "[Source: " + c.DisplayName() + " (" + string(c.Type) + ")]"
}

// DisplayName shortens file paths to their base name; URLs and ids are kept.
func (c Chunk) DisplayName() string {
	src := strings.TrimSpace(c.Source)
	if src == "" {
		return "unknown"
	}
	if strings.Contains(src, "://") {
		return src
	}
	return filepath.Base(src)
}

// Clone returns a deep copy of the chunk.
func (c Chunk) Clone() Chunk {
	out := c
	if c.Metadata != nil {
		out.Metadata = make(map[string]any, len(c.Metadata))
		for k, v := range c.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d
	if d.Metadata != nil {
		out.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
