package chunking

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sweetpotato0/radsafe/rag/document"
)

// Chunker splits documents into chunks that can be embedded and indexed.
type Chunker interface {
	Chunk(ctx context.Context, doc document.Document) ([]document.Chunk, error)
}

// DefaultSeparators are tried in order: paragraphs, lines, sentences, words,
// then single characters.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

type Options struct {
	ChunkSize   int
	Overlap     int
	Separators  []string
	IncludeMeta bool
}

// RecursiveChunker splits text on the coarsest separator that occurs, recurses
// into pieces that are still too long, and merges small pieces back up to
// ChunkSize with Overlap characters carried between neighbours. Sizes count
// runes.
type RecursiveChunker struct {
	size       int
	overlap    int
	separators []string
	addMeta    bool
}

var _ Chunker = (*RecursiveChunker)(nil)

// Option customizes the recursive chunker.
type Option func(*Options)

// WithChunkSize overrides the default chunk size (characters).
func WithChunkSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.ChunkSize = size
		}
	}
}

// WithOverlap configures overlap (characters) between consecutive chunks.
func WithOverlap(overlap int) Option {
	return func(o *Options) {
		if overlap >= 0 {
			o.Overlap = overlap
		}
	}
}

// WithSeparators replaces the separator list.
func WithSeparators(seps ...string) Option {
	return func(o *Options) {
		if len(seps) > 0 {
			o.Separators = seps
		}
	}
}

// WithMetadataCopy toggles whether document metadata should be copied to chunks.
func WithMetadataCopy(enabled bool) Option {
	return func(o *Options) {
		o.IncludeMeta = enabled
	}
}

// NewRecursiveChunker uses 800 characters with 100 overlap unless overridden.
func NewRecursiveChunker(opts ...Option) *RecursiveChunker {
	cfg := &Options{
		ChunkSize:   800,
		Overlap:     100,
		Separators:  DefaultSeparators,
		IncludeMeta: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = cfg.ChunkSize / 2
	}
	return &RecursiveChunker{
		size:       cfg.ChunkSize,
		overlap:    cfg.Overlap,
		separators: cfg.Separators,
		addMeta:    cfg.IncludeMeta,
	}
}

// Chunk splits the document into bounded pieces.
func (c *RecursiveChunker) Chunk(ctx context.Context, doc document.Document) ([]document.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	texts := c.SplitText(doc.Content)
	chunks := make([]document.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, c.newChunk(doc, i, text))
	}
	return chunks, nil
}

// SplitText returns the chunk texts for text.
func (c *RecursiveChunker) SplitText(text string) []string {
	return c.split(text, c.separators)
}

func (c *RecursiveChunker) split(text string, separators []string) []string {
	separator := ""
	var next []string
	if len(separators) > 0 {
		separator = separators[len(separators)-1]
	}
	for i, s := range separators {
		if s == "" {
			separator = s
			break
		}
		if strings.Contains(text, s) {
			separator = s
			next = separators[i+1:]
			break
		}
	}

	var splits []string
	if separator == "" {
		for _, r := range text {
			splits = append(splits, string(r))
		}
	} else {
		for _, s := range strings.Split(text, separator) {
			if s != "" {
				splits = append(splits, s)
			}
		}
	}

	var final, good []string
	for _, s := range splits {
		if utf8.RuneCountInString(s) < c.size {
			good = append(good, s)
			continue
		}
		if len(good) > 0 {
			final = append(final, c.merge(good, separator)...)
			good = nil
		}
		if len(next) == 0 {
			final = append(final, s)
		} else {
			final = append(final, c.split(s, next)...)
		}
	}
	if len(good) > 0 {
		final = append(final, c.merge(good, separator)...)
	}
	return final
}

func (c *RecursiveChunker) merge(splits []string, separator string) []string {
	sepLen := utf8.RuneCountInString(separator)
	var (
		docs    []string
		current []string
		total   int
	)
	joinLen := func() int {
		if len(current) > 0 {
			return sepLen
		}
		return 0
	}
	for _, s := range splits {
		n := utf8.RuneCountInString(s)
		if total+n+joinLen() > c.size && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
				docs = append(docs, doc)
			}
			for total > c.overlap || (total+n+joinLen() > c.size && total > 0) {
				drop := utf8.RuneCountInString(current[0])
				if len(current) > 1 {
					drop += sepLen
				}
				total -= drop
				current = current[1:]
			}
		}
		current = append(current, s)
		total += n
		if len(current) > 1 {
			total += sepLen
		}
	}
	if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

func (c *RecursiveChunker) newChunk(doc document.Document, index int, content string) document.Chunk {
	chunk := document.Chunk{
		Text:   content,
		Source: doc.Source,
	}
	if c.addMeta {
		chunk.Metadata = make(map[string]any, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			chunk.Metadata[k] = v
		}
		chunk.Metadata["chunk_index"] = index
	}
	return chunk
}
