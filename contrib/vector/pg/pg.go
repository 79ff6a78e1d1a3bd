package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/sweetpotato0/radsafe/config"
	"github.com/sweetpotato0/radsafe/vector"
)

const defaultTopK = 10

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PGVectorStore implements VectorStore using PostgreSQL with the pgvector extension.
// One table holds one collection.
type PGVectorStore struct {
	db        *sql.DB
	ownsDB    bool
	dimension int
	tableName string
}

// PGVectorConfig holds pgvector configuration
type PGVectorConfig struct {
	DSN       string
	Dimension int    // Embedding dimension (1024 for mistral-embed)
	TableName string // One table per collection
}

// DefaultPGVectorConfig returns default pgvector configuration
func DefaultPGVectorConfig() *PGVectorConfig {
	return &PGVectorConfig{
		DSN:       "host=127.0.0.1 port=5432 user=postgres dbname=radsafe sslmode=disable",
		Dimension: 1024,
		TableName: "radiation_iaea",
	}
}

// TableForCollection maps a collection name such as "radiation-iaea" to a table name.
func TableForCollection(collection string) string {
	return strings.ReplaceAll(strings.ToLower(collection), "-", "_")
}

// NewPGVectorStore opens a connection and prepares the collection table.
func NewPGVectorStore(ctx context.Context, cfg *PGVectorConfig) (*PGVectorStore, error) {
	if cfg == nil {
		cfg = DefaultPGVectorConfig()
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	store, err := NewWithDB(ctx, db, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	store.ownsDB = true
	return store, nil
}

// NewWithDB reuses an existing connection pool; Close will not close it.
func NewWithDB(ctx context.Context, db *sql.DB, cfg *PGVectorConfig) (*PGVectorStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := validateTable(cfg); err != nil {
		return nil, err
	}
	store := &PGVectorStore{
		db:        db,
		dimension: cfg.Dimension,
		tableName: cfg.TableName,
	}
	if err := store.setup(ctx); err != nil {
		return nil, fmt.Errorf("failed to setup pgvector: %w", err)
	}
	return store, nil
}

func validate(cfg *PGVectorConfig) error {
	return config.NewValidator().
		RequireNonEmpty("PG_DSN", cfg.DSN).
		ValidateRange("EMBEDDING_DIMENSION", cfg.Dimension, 1, 16000).
		ValidatePattern("tableName", cfg.TableName, tableNamePattern).
		Error()
}

func validateTable(cfg *PGVectorConfig) error {
	return config.NewValidator().
		ValidateRange("EMBEDDING_DIMENSION", cfg.Dimension, 1, 16000).
		ValidatePattern("tableName", cfg.TableName, tableNamePattern).
		Error()
}

func (s *PGVectorStore) setup(ctx context.Context) error {
	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(255) PRIMARY KEY,
		source TEXT NOT NULL DEFAULT '',
		text TEXT NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
		embedding vector(%d) NOT NULL,
		indexed_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, s.tableName, s.dimension),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING hnsw (embedding vector_cosine_ops)`, s.tableName, s.tableName),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_source_idx ON %s (source)`, s.tableName, s.tableName),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Upsert implements vector.VectorStore. The batch is written in one
// transaction, so a failed chunk leaves the document as it was.
func (s *PGVectorStore) Upsert(ctx context.Context, embeddings ...*vector.Embedding) (err error) {
	for _, e := range embeddings {
		if err := vector.Validate(e, s.dimension); err != nil {
			return err
		}
	}
	if len(embeddings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
	INSERT INTO %s (id, source, text, metadata, embedding)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE SET
		source = EXCLUDED.source,
		text = EXCLUDED.text,
		metadata = EXCLUDED.metadata,
		embedding = EXCLUDED.embedding,
		indexed_at = now()`, s.tableName))
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, e := range embeddings {
		meta, err := encodeMetadata(e.Metadata)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, e.ID, e.Source, e.Text, meta, pgvector.NewVector(e.Vector)); err != nil {
			return fmt.Errorf("upsert embedding %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// Search implements vector.VectorStore using the cosine distance operator.
func (s *PGVectorStore) Search(ctx context.Context, queryVector []float32, topK int) ([]*vector.Embedding, error) {
	if len(queryVector) != s.dimension {
		return nil, &vector.DimensionError{Want: s.dimension, Got: len(queryVector)}
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
	SELECT id, source, text, metadata, embedding, 1 - (embedding <=> $1) AS score
	FROM %s
	ORDER BY embedding <=> $1
	LIMIT $2`, s.tableName), pgvector.NewVector(queryVector), topK)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.tableName, err)
	}
	defer rows.Close()

	out := make([]*vector.Embedding, 0, topK)
	for rows.Next() {
		var (
			e       vector.Embedding
			metaRaw []byte
			vec     pgvector.Vector
			score   float64
		)
		if err := rows.Scan(&e.ID, &e.Source, &e.Text, &metaRaw, &vec, &score); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		if e.Metadata, err = decodeMetadata(metaRaw); err != nil {
			return nil, fmt.Errorf("embedding %s: %w", e.ID, err)
		}
		e.Vector = vec.Slice()
		e.Score = float32(score)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search %s: %w", s.tableName, err)
	}
	return out, nil
}

// DeleteBySource implements vector.VectorStore.
func (s *PGVectorStore) DeleteBySource(ctx context.Context, source string) (int, error) {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE source = $1", s.tableName), source)
	if err != nil {
		return 0, fmt.Errorf("delete source %s: %w", source, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete source %s: %w", source, err)
	}
	return int(n), nil
}

// Clear implements vector.VectorStore.
func (s *PGVectorStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s", s.tableName)); err != nil {
		return fmt.Errorf("clear %s: %w", s.tableName, err)
	}
	return nil
}

// Count implements vector.VectorStore.
func (s *PGVectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.tableName)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.tableName, err)
	}
	return n, nil
}

// Close closes the connection pool when the store opened it.
func (s *PGVectorStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

func encodeMetadata(meta map[string]any) ([]byte, error) {
	if meta == nil {
		return []byte("{}"), nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return raw, nil
}

func decodeMetadata(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, nil
}
