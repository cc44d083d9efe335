// Package pgstore is the optional durable mirror that persists documents
// and embedded chunks to Postgres via pgvector, for operators who want a
// server-side copy of the otherwise file-based index (SPEC_FULL.md §2's
// domain-stack table). The runtime's required VectorStore remains the
// in-memory exact-scan implementation in internal/index; nothing in this
// package is on RAGPipeline's query path.
//
// Grounded directly on store/storage.go's PostgresStore: same pgxpool +
// pgvector-go stack, same create-tables-if-missing Init step, same
// upsert-document/insert-chunk/ANN-search shape, reworked from the
// teacher's uuid.UUID-keyed types.Document/types.Chunk to this module's
// string-keyed domain.Document/domain.EmbeddedChunk.
package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/uni-regulations/rag-core/internal/domain"
)

// Store is a durable Postgres+pgvector mirror of the document and chunk
// sets an ingestion run produces.
type Store struct {
	pool *pgxpool.Pool
	dim  int
}

// Open connects to Postgres and verifies the connection with a ping.
func Open(ctx context.Context, connStr string, embeddingDim int) (*Store, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("pgstore: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgstore: ping: %w", err)
	}
	return &Store{pool: pool, dim: embeddingDim}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Init creates the documents/chunks tables, the pgvector extension, and
// the supporting indexes if they do not already exist. Safe to call on
// every startup, matching the teacher's createRagTables/Init pattern.
func (s *Store) Init(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		filename TEXT,
		source_url TEXT,
		category TEXT,
		language TEXT,
		doc_type TEXT,
		downloaded_at TIMESTAMPTZ
	);

	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		chunk_index INT NOT NULL,
		category TEXT,
		language TEXT,
		content TEXT NOT NULL,
		tokens INT,
		embedding vector(%d)
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);
	CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks(document_id);
	CREATE INDEX IF NOT EXISTS idx_chunks_category ON chunks(category);
	`, s.dim)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("pgstore: init schema: %w", err)
	}
	return nil
}

// UpsertDocument inserts or updates a document record.
func (s *Store) UpsertDocument(ctx context.Context, doc domain.Document) error {
	query := `INSERT INTO documents (id, title, filename, source_url, category, language, doc_type, downloaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			filename = EXCLUDED.filename,
			source_url = EXCLUDED.source_url,
			category = EXCLUDED.category,
			language = EXCLUDED.language,
			doc_type = EXCLUDED.doc_type,
			downloaded_at = EXCLUDED.downloaded_at`
	_, err := s.pool.Exec(ctx, query,
		doc.ID, doc.Title, doc.Filename, doc.SourceURL, doc.Category,
		string(doc.Language), string(doc.Type), doc.DownloadedAt)
	if err != nil {
		return fmt.Errorf("pgstore: upsert document %s: %w", doc.ID, err)
	}
	return nil
}

// ReplaceChunks deletes a document's existing chunks and inserts its
// current set, mirroring a re-ingested document wholesale rather than
// diffing, matching domain.Document's "replace wholesale on re-run"
// contract.
func (s *Store) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.EmbeddedChunk) error {
	for _, c := range chunks {
		if len(c.Embedding) != s.dim {
			return fmt.Errorf("pgstore: chunk %s has embedding length %d, want %d", c.ChunkID, len(c.Embedding), s.dim)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pgstore: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM chunks WHERE document_id = $1", documentID); err != nil {
		return fmt.Errorf("pgstore: delete old chunks for %s: %w", documentID, err)
	}

	for _, c := range chunks {
		_, err := tx.Exec(ctx,
			`INSERT INTO chunks (id, document_id, chunk_index, category, language, content, tokens, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ChunkID, c.DocumentID, c.ChunkIndex, c.Category, string(c.Language), c.Text, c.Tokens,
			pgvector.NewVector(c.Embedding))
		if err != nil {
			return fmt.Errorf("pgstore: insert chunk %s: %w", c.ChunkID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("pgstore: commit: %w", err)
	}
	return nil
}

// MirroredChunk is one row of a Search result, joined back to its parent
// document's metadata.
type MirroredChunk struct {
	ChunkID       string
	DocumentID    string
	DocumentTitle string
	Text          string
	Category      string
	Distance      float64
}

// Search runs an ANN query via pgvector's cosine-distance operator,
// returning the closest limit chunks. This is an optional operator-facing
// query path (e.g. for cross-checking the in-memory VectorStore), never
// called from RAGPipeline.
func (s *Store) Search(ctx context.Context, query []float32, limit int) ([]MirroredChunk, error) {
	if len(query) != s.dim {
		return nil, fmt.Errorf("pgstore: query dimension %d, want %d", len(query), s.dim)
	}
	vec := pgvector.NewVector(query)

	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.document_id, d.title, c.content, c.category, c.embedding <=> $1 AS distance
		FROM chunks c
		JOIN documents d ON c.document_id = d.id
		ORDER BY c.embedding <=> $1
		LIMIT $2`, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("pgstore: search: %w", err)
	}
	defer rows.Close()

	var out []MirroredChunk
	for rows.Next() {
		var m MirroredChunk
		if err := rows.Scan(&m.ChunkID, &m.DocumentID, &m.DocumentTitle, &m.Text, &m.Category, &m.Distance); err != nil {
			return nil, fmt.Errorf("pgstore: scan row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteDocument removes a document and, via the foreign key cascade, its
// chunks.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM documents WHERE id = $1", documentID)
	if err != nil {
		return fmt.Errorf("pgstore: delete document %s: %w", documentID, err)
	}
	return nil
}
