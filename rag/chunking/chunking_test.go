package chunking

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sweetpotato0/radsafe/rag/document"
)

func TestRecursiveChunkerKeepsShortDocumentWhole(t *testing.T) {
	ch := NewRecursiveChunker()
	doc := document.Document{
		Source:   "iaea/gsr-part3.pdf",
		Content:  "Requirement 12.\n\nThe government shall establish dose limits.",
		Metadata: map[string]any{"title": "GSR Part 3"},
	}

	chunks, err := ch.Chunk(context.Background(), doc)
	if err != nil {
		t.Fatalf("chunk error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "Requirement 12.\n\nThe government shall establish dose limits." {
		t.Fatalf("unexpected text %q", chunks[0].Text)
	}
	if chunks[0].Source != "iaea/gsr-part3.pdf" || chunks[0].Metadata["title"] != "GSR Part 3" || chunks[0].Metadata["chunk_index"] != 0 {
		t.Fatalf("provenance not copied: %#v", chunks[0])
	}
}

func TestRecursiveChunkerRespectsSizeAndOverlap(t *testing.T) {
	ch := NewRecursiveChunker(WithChunkSize(50), WithOverlap(10))
	var words []string
	for i := 0; i < 60; i++ {
		words = append(words, "dose")
	}
	text := strings.Join(words, " ")

	parts := ch.SplitText(text)
	if len(parts) < 2 {
		t.Fatalf("expected several chunks, got %d", len(parts))
	}
	for i, p := range parts {
		if n := utf8.RuneCountInString(p); n > 50 {
			t.Fatalf("chunk %d has %d runes", i, n)
		}
	}
	// Overlap carries the tail of one chunk into the next.
	if !strings.HasPrefix(parts[1], "dose dose") {
		t.Fatalf("expected overlap at start of second chunk, got %q", parts[1])
	}
}

func TestRecursiveChunkerPrefersParagraphs(t *testing.T) {
	ch := NewRecursiveChunker(WithChunkSize(40), WithOverlap(0))
	text := "First paragraph about shielding.\n\nSecond paragraph about waste."
	parts := ch.SplitText(text)
	if len(parts) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(parts), parts)
	}
	if parts[0] != "First paragraph about shielding." || parts[1] != "Second paragraph about waste." {
		t.Fatalf("unexpected split %q", parts)
	}
}

func TestRecursiveChunkerFallsBackToCharacters(t *testing.T) {
	ch := NewRecursiveChunker(WithChunkSize(10), WithOverlap(0), WithMetadataCopy(false))
	chunks, err := ch.Chunk(context.Background(), document.Document{Content: strings.Repeat("ø", 25)})
	if err != nil {
		t.Fatalf("chunk error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0].Metadata != nil {
		t.Fatalf("metadata copy disabled but got %#v", chunks[0].Metadata)
	}
}

func TestRecursiveChunkerEmptyInput(t *testing.T) {
	chunks, err := NewRecursiveChunker().Chunk(context.Background(), document.Document{Content: "   "})
	if err != nil {
		t.Fatalf("chunk error: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
}
