// Package embedder turns Chunks into EmbeddedChunks by driving the
// Embedder collaborator, and writes the resulting index artifact both
// uncompressed and gzip-compressed, per spec.md §4.4.
//
// The driver's batches-of-10/yield-1s loop and the uncompressed-plus-gzip
// write are new: the teacher's loader embeds one chunk at a time inline
// while converting a PDF and never compresses its output. The HTTP
// embedder client in client.go is grounded on model/ollama.go's shape.
package embedder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/uni-regulations/rag-core/internal/domain"
	"github.com/uni-regulations/rag-core/internal/ports"
)

const batchSize = 10

// ChunkConfig is copied verbatim from the chunker config into the index
// artifact per spec.md §6 artifact #3's "copy of chunk config" field.
type ChunkConfig struct {
	TargetTokens   int `json:"target_tokens"`
	OverlapTokens  int `json:"overlap_tokens"`
	MinChunkTokens int `json:"min_chunk_tokens"`
}

// EmbeddedChunkRecord is one entry of the embeddings index: a chunk plus
// its embedding vector, matching spec.md §6 artifact #3's per-entry shape.
type EmbeddedChunkRecord struct {
	ChunkID     string   `json:"chunk_id"`
	DocumentID  string   `json:"document_id"`
	Text        string   `json:"text"`
	Tokens      int      `json:"tokens"`
	ChunkIndex  int      `json:"chunk_index"`
	Category    string   `json:"category"`
	Language    string   `json:"language"`
	Metadata    Metadata `json:"metadata"`
	Embedding   []float32 `json:"embedding"`
}

// Metadata mirrors spec.md §6 artifact #2's per-chunk metadata block.
type Metadata struct {
	DocumentTitle    string `json:"document_title"`
	DocumentFilename string `json:"document_filename"`
	SourceURL        string `json:"source_url"`
}

// Index is the root shape of embeddings.json / embeddings.json.gz.
type Index struct {
	Version      string                `json:"version"`
	GeneratedAt  string                `json:"generated_at"`
	Model        string                `json:"model"`
	EmbeddingDim int                   `json:"embedding_dim"`
	TotalChunks  int                   `json:"total_chunks"`
	Config       ChunkConfig           `json:"config"`
	Chunks       []EmbeddedChunkRecord `json:"chunks"`
}

// Driver feeds Chunks through an Embedder in bounded batches and collects
// the resulting EmbeddedChunks.
type Driver struct {
	embedder  ports.Embedder
	modelName string
	batchSize int
	yield     time.Duration
}

// New constructs a Driver with the spec's default batch size (10) and
// yield (1s). modelName is an opaque label recorded in the output index's
// "model" field; it does not affect embedding behavior.
func New(embedder ports.Embedder, modelName string) *Driver {
	return &Driver{
		embedder:  embedder,
		modelName: modelName,
		batchSize: batchSize,
		yield:     time.Second,
	}
}

// NewWithBatching constructs a Driver with an operator-tunable batch size
// and inter-batch yield, falling back to the spec defaults for zero
// values, so a deployment can trade ingestion latency against embedder
// load without touching the default Driver behavior New provides.
func NewWithBatching(embedder ports.Embedder, modelName string, batch int, yield time.Duration) *Driver {
	d := New(embedder, modelName)
	if batch > 0 {
		d.batchSize = batch
	}
	if yield > 0 {
		d.yield = yield
	}
	return d
}

// Run embeds chunks sequentially in batches, yielding between batches to
// bound peak memory. Per-chunk embedding failures are logged and skipped;
// the run itself only fails if ctx is cancelled.
func (d *Driver) Run(ctx context.Context, chunks []domain.Chunk) ([]domain.EmbeddedChunk, error) {
	result := make([]domain.EmbeddedChunk, 0, len(chunks))

	for start := 0; start < len(chunks); start += d.batchSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		end := start + d.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		for _, chunk := range chunks[start:end] {
			vec, err := d.embedder.Embed(ctx, chunk.Text)
			if err != nil {
				fmt.Printf("embedder: chunk %s failed, skipping: %v\n", chunk.ChunkID, err)
				continue
			}
			result = append(result, domain.EmbeddedChunk{Chunk: chunk, Embedding: vec})
		}

		if end < len(chunks) {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(d.yield):
			}
		}
	}

	return result, nil
}

// BuildIndex assembles the embeddings.json artifact shape from a driver
// run's output.
func BuildIndex(embedded []domain.EmbeddedChunk, modelName string, dim int, cfg ChunkConfig, now time.Time) Index {
	records := make([]EmbeddedChunkRecord, len(embedded))
	for i, ec := range embedded {
		records[i] = EmbeddedChunkRecord{
			ChunkID:    ec.ChunkID,
			DocumentID: ec.DocumentID,
			Text:       ec.Text,
			Tokens:     ec.Tokens,
			ChunkIndex: ec.ChunkIndex,
			Category:   ec.Category,
			Language:   string(ec.Language),
			Metadata: Metadata{
				DocumentTitle:    ec.DocTitle,
				DocumentFilename: ec.DocFilename,
				SourceURL:        ec.SourceURL,
			},
			Embedding: ec.Embedding,
		}
	}
	return Index{
		Version:      "1.0",
		GeneratedAt:  now.UTC().Format(time.RFC3339),
		Model:        modelName,
		EmbeddingDim: dim,
		TotalChunks:  len(records),
		Config:       cfg,
		Chunks:       records,
	}
}

// WriteIndex writes both the uncompressed and gzip-compressed artifacts
// side by side at uncompressedPath and uncompressedPath+".gz".
func WriteIndex(uncompressedPath string, idx Index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("embedder: marshal index: %w", err)
	}

	if err := os.WriteFile(uncompressedPath, data, 0o644); err != nil {
		return fmt.Errorf("embedder: write uncompressed index: %w", err)
	}

	gzPath := uncompressedPath + ".gz"
	f, err := os.Create(gzPath)
	if err != nil {
		return fmt.Errorf("embedder: create gzip index: %w", err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	if _, err := gw.Write(data); err != nil {
		return fmt.Errorf("embedder: write gzip index: %w", err)
	}
	if err := gw.Close(); err != nil {
		return fmt.Errorf("embedder: close gzip index: %w", err)
	}

	return nil
}
