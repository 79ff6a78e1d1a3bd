package retriever

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	radsafeerrors "github.com/sweetpotato0/radsafe/errors"
	"github.com/sweetpotato0/radsafe/rag/chunking"
	"github.com/sweetpotato0/radsafe/rag/document"
	"github.com/sweetpotato0/radsafe/rag/embedder"
	"github.com/sweetpotato0/radsafe/vector"
)

// Collection names and the document type each one holds.
const (
	CollectionIAEA      = "radiation-iaea"
	CollectionDanishLaw = "radiation-dk-law"

	// DefaultTopK is the number of neighbours fetched per corpus.
	DefaultTopK = 5

	metaSource       = "source"
	metaDocumentType = "document_type"
)

// TypeForCollection maps a collection name to its document type.
func TypeForCollection(collection string) (document.DocumentType, bool) {
	switch collection {
	case CollectionIAEA:
		return document.TypeIAEA, true
	case CollectionDanishLaw:
		return document.TypeDanishLaw, true
	}
	return "", false
}

// Config controls retrieval behaviour.
type Config struct {
	SearchTopK int
}

// Option customizes retriever config.
type Option func(*Config)

// WithSearchTopK sets the number of neighbors fetched from the vector store.
func WithSearchTopK(k int) Option {
	return func(cfg *Config) {
		if k > 0 {
			cfg.SearchTopK = k
		}
	}
}

// Retriever indexes and searches one corpus. Provenance travels in the
// embedding metadata, so any vector store backend round-trips it.
type Retriever struct {
	collection string
	docType    document.DocumentType
	store      vector.VectorStore
	embedder   embedder.Embedder
	chunker    chunking.Chunker
	cfg        Config
}

// New creates a retriever for collection. The chunker is only needed for
// IndexDocuments and may be nil for read-only use.
func New(collection string, store vector.VectorStore, emb embedder.Embedder, chunker chunking.Chunker, opts ...Option) (*Retriever, error) {
	docType, ok := TypeForCollection(collection)
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
	if store == nil || emb == nil {
		return nil, fmt.Errorf("retriever %s: store and embedder are required", collection)
	}
	cfg := Config{SearchTopK: DefaultTopK}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Retriever{
		collection: collection,
		docType:    docType,
		store:      store,
		embedder:   emb,
		chunker:    chunker,
		cfg:        cfg,
	}, nil
}

// Collection returns the collection name.
func (r *Retriever) Collection() string { return r.collection }

// IndexDocuments chunks, embeds and stores documents. A document that was
// indexed before is replaced as a whole, so chunks left over from a longer
// earlier version do not linger. It returns the number of chunks stored.
func (r *Retriever) IndexDocuments(ctx context.Context, docs ...document.Document) (int, error) {
	if r.chunker == nil {
		return 0, fmt.Errorf("retriever %s: no chunker configured", r.collection)
	}

	stored := 0
	for _, doc := range docs {
		chunks, err := r.chunker.Chunk(ctx, doc)
		if err != nil {
			return stored, fmt.Errorf("chunk document %s: %w", doc.Source, err)
		}
		if len(chunks) == 0 {
			continue
		}
		vecs, err := r.embedder.EmbedDocuments(ctx, chunks)
		if err != nil {
			return stored, fmt.Errorf("embed document %s: %w", doc.Source, err)
		}

		batch := make([]*vector.Embedding, 0, len(chunks))
		for i, chunk := range chunks {
			meta := vector.CloneMetadata(chunk.Metadata)
			if meta == nil {
				meta = make(map[string]any, 1)
			}
			meta[metaDocumentType] = string(r.docType)
			batch = append(batch, &vector.Embedding{
				ID:       chunkID(r.collection, doc.Source, i),
				Vector:   vecs[i],
				Text:     chunk.Text,
				Source:   doc.Source,
				Metadata: meta,
			})
		}
		if _, err := r.store.DeleteBySource(ctx, doc.Source); err != nil {
			return stored, fmt.Errorf("replace document %s: %w", doc.Source, err)
		}
		if err := r.store.Upsert(ctx, batch...); err != nil {
			return stored, fmt.Errorf("store document %s: %w", doc.Source, err)
		}
		stored += len(batch)
	}
	return stored, nil
}

// Search returns the top-K chunks for query, most similar first.
func (r *Retriever) Search(ctx context.Context, query string) ([]document.Chunk, error) {
	queryVec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: embed query: %w", radsafeerrors.ErrRetrieval, r.collection, err)
	}
	hits, err := r.store.Search(ctx, queryVec, r.cfg.SearchTopK)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: vector search: %w", radsafeerrors.ErrRetrieval, r.collection, err)
	}

	chunks := make([]document.Chunk, 0, len(hits))
	for _, hit := range hits {
		chunks = append(chunks, r.toChunk(hit))
	}
	return chunks, nil
}

func (r *Retriever) toChunk(hit *vector.Embedding) document.Chunk {
	meta := vector.CloneMetadata(hit.Metadata)
	chunk := document.Chunk{Text: hit.Text, Source: hit.Source, Type: r.docType, Metadata: meta}
	if t, ok := meta[metaDocumentType].(string); ok && t != "" {
		chunk.Type = document.DocumentType(t)
	}
	delete(meta, metaSource)
	delete(meta, metaDocumentType)
	if len(meta) == 0 {
		chunk.Metadata = nil
	}
	return chunk
}

// Clear drops all indexed state.
func (r *Retriever) Clear(ctx context.Context) error {
	return r.store.Clear(ctx)
}

// Count returns number of chunks indexed.
func (r *Retriever) Count(ctx context.Context) (int, error) {
	return r.store.Count(ctx)
}

func chunkID(collection, source string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(collection+"/"+source+"#"+strconv.Itoa(index))).String()
}
