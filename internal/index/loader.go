// Package index implements the runtime VectorIndex loader and the exact
// top-K VectorStore search over it, per spec.md §4.5.
//
// Grounded on kxddry-rag-text-search's internal/vectorstore/memory.Storage
// for the brute-force exact-scan shape, reworked to a single row-major
// []float32 buffer instead of [][]float64 and to topK-bounded partial
// selection instead of a full sort, per SPEC_FULL.md §4.5's design note.
// The BlobFetcher-backed gzip decompression and validate-then-build load
// path is new; its validate-before-trust discipline is grounded on the
// teacher's store.NewPostgresStore load-then-validate pattern.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/uni-regulations/rag-core/internal/domain"
	"github.com/uni-regulations/rag-core/internal/ports"
	"github.com/uni-regulations/rag-core/internal/ragerr"
)

// wireChunk mirrors the per-entry shape of embeddings.json (spec.md §6
// artifact #3), decoded independently of the embedder package's writer
// types to keep the runtime loader's wire contract explicit and minimal.
type wireChunk struct {
	ChunkID    string   `json:"chunk_id"`
	DocumentID string   `json:"document_id"`
	Text       string   `json:"text"`
	Tokens     int      `json:"tokens"`
	ChunkIndex int      `json:"chunk_index"`
	Category   string   `json:"category"`
	Language   string   `json:"language"`
	Metadata   struct {
		DocumentTitle    string `json:"document_title"`
		DocumentFilename string `json:"document_filename"`
		SourceURL        string `json:"source_url"`
	} `json:"metadata"`
	Embedding []float32 `json:"embedding"`
}

type wireIndex struct {
	Version      string      `json:"version"`
	EmbeddingDim int         `json:"embedding_dim"`
	TotalChunks  int         `json:"total_chunks"`
	Chunks       []wireChunk `json:"chunks"`
}

// Load fetches a gzip-compressed index blob via fetcher, decompresses and
// validates it, and returns the runtime VectorIndex. Any structural
// violation is fatal and returned wrapped in ragerr.ErrIndexCorrupt.
func Load(ctx context.Context, fetcher ports.BlobFetcher, path string) (*VectorIndex, error) {
	blob, err := fetcher.Fetch(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("index: fetch %s: %w", path, err)
	}

	gr, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("index: %s is not valid gzip: %w", path, ragerr.ErrIndexCorrupt)
	}
	defer gr.Close()

	data, err := io.ReadAll(gr)
	if err != nil {
		return nil, fmt.Errorf("index: decompress %s: %w", path, ragerr.ErrIndexCorrupt)
	}

	var wire wireIndex
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("index: parse %s: %w", path, ragerr.ErrIndexCorrupt)
	}

	return build(wire)
}

func build(wire wireIndex) (*VectorIndex, error) {
	if wire.EmbeddingDim <= 0 {
		return nil, fmt.Errorf("index: missing or invalid embedding_dim: %w", ragerr.ErrIndexCorrupt)
	}
	if len(wire.Chunks) != wire.TotalChunks {
		return nil, fmt.Errorf("index: total_chunks %d does not match %d chunk entries: %w", wire.TotalChunks, len(wire.Chunks), ragerr.ErrIndexCorrupt)
	}

	dim := wire.EmbeddingDim
	n := len(wire.Chunks)
	vectors := make([]float32, n*dim)
	chunks := make([]domain.Chunk, n)
	byID := make(map[string]int, n)
	byDocument := make(map[string][]int)
	byCategory := make(map[string][]int)

	for i, wc := range wire.Chunks {
		if wc.ChunkID == "" || wc.DocumentID == "" || wc.Text == "" {
			return nil, fmt.Errorf("index: chunk at position %d missing required field: %w", i, ragerr.ErrIndexCorrupt)
		}
		if len(wc.Embedding) != dim {
			return nil, fmt.Errorf("index: chunk %s has embedding length %d, want %d: %w", wc.ChunkID, len(wc.Embedding), dim, ragerr.ErrIndexCorrupt)
		}
		if _, dup := byID[wc.ChunkID]; dup {
			return nil, fmt.Errorf("index: duplicate chunk_id %s: %w", wc.ChunkID, ragerr.ErrIndexCorrupt)
		}

		copy(vectors[i*dim:(i+1)*dim], wc.Embedding)

		chunks[i] = domain.Chunk{
			ChunkID:     wc.ChunkID,
			DocumentID:  wc.DocumentID,
			Text:        wc.Text,
			Tokens:      wc.Tokens,
			ChunkIndex:  wc.ChunkIndex,
			Category:    wc.Category,
			Language:    domain.Language(wc.Language),
			DocTitle:    wc.Metadata.DocumentTitle,
			DocFilename: wc.Metadata.DocumentFilename,
			SourceURL:   wc.Metadata.SourceURL,
		}
		byID[wc.ChunkID] = i
		byDocument[wc.DocumentID] = append(byDocument[wc.DocumentID], i)
		byCategory[wc.Category] = append(byCategory[wc.Category], i)
	}

	return &VectorIndex{
		dim:        dim,
		chunks:     chunks,
		vectors:    vectors,
		byID:       byID,
		byDocument: byDocument,
		byCategory: byCategory,
	}, nil
}

// NewFromEmbeddedChunks builds a VectorIndex directly from EmbeddedChunks,
// bypassing the BlobFetcher/gzip path. Used by tests and by any caller
// that already holds EmbeddedChunks in memory (e.g. the offline pipeline
// verifying its own output before writing the artifact).
func NewFromEmbeddedChunks(dim int, embedded []domain.EmbeddedChunk) (*VectorIndex, error) {
	wire := wireIndex{EmbeddingDim: dim, TotalChunks: len(embedded)}
	wire.Chunks = make([]wireChunk, len(embedded))
	for i, ec := range embedded {
		wire.Chunks[i] = wireChunk{
			ChunkID:    ec.ChunkID,
			DocumentID: ec.DocumentID,
			Text:       ec.Text,
			Tokens:     ec.Tokens,
			ChunkIndex: ec.ChunkIndex,
			Category:   ec.Category,
			Language:   string(ec.Language),
			Embedding:  ec.Embedding,
		}
		wire.Chunks[i].Metadata.DocumentTitle = ec.DocTitle
		wire.Chunks[i].Metadata.DocumentFilename = ec.DocFilename
		wire.Chunks[i].Metadata.SourceURL = ec.SourceURL
	}
	return build(wire)
}

// VectorIndex is the immutable loaded runtime container spec.md §3
// describes: ordered EmbeddedChunks, a by-id mapping, and by-document and
// by-category groupings, backed by a single row-major []float32 buffer.
type VectorIndex struct {
	dim        int
	chunks     []domain.Chunk
	vectors    []float32
	byID       map[string]int
	byDocument map[string][]int
	byCategory map[string][]int
}

// Dim returns the embedding dimension D.
func (v *VectorIndex) Dim() int { return v.dim }

// Len returns the number of chunks in the index.
func (v *VectorIndex) Len() int { return len(v.chunks) }

func (v *VectorIndex) vectorAt(i int) []float32 {
	return v.vectors[i*v.dim : (i+1)*v.dim]
}

// FirstChunkVector returns a copy of the embedding vector of documentID's
// first chunk (lowest chunk_index), used by RAGPipeline.FindSimilarDocuments
// as a stand-in query vector per spec.md §4.8.
func (v *VectorIndex) FirstChunkVector(documentID string) ([]float32, bool) {
	positions := v.byDocument[documentID]
	if len(positions) == 0 {
		return nil, false
	}
	first := positions[0]
	for _, p := range positions[1:] {
		if v.chunks[p].ChunkIndex < v.chunks[first].ChunkIndex {
			first = p
		}
	}
	vec := make([]float32, v.dim)
	copy(vec, v.vectorAt(first))
	return vec, true
}
