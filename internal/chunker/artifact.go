package chunker

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/uni-regulations/rag-core/internal/domain"
)

// wireChunk mirrors the per-entry shape of chunks.json (spec.md §6
// artifact #2).
type wireChunk struct {
	ChunkID    string `json:"chunk_id"`
	DocumentID string `json:"document_id"`
	Text       string `json:"text"`
	Tokens     int    `json:"tokens"`
	ChunkIndex int    `json:"chunk_index"`
	Category   string `json:"category"`
	Language   string `json:"language"`
	Metadata   struct {
		DocumentTitle    string `json:"document_title"`
		DocumentFilename string `json:"document_filename"`
		SourceURL        string `json:"source_url"`
	} `json:"metadata"`
}

// Artifact is chunks.json's root shape.
type Artifact struct {
	Version     string `json:"version"`
	GeneratedAt string `json:"generated_at"`
	Config      struct {
		TargetTokens   int `json:"target_tokens"`
		OverlapTokens  int `json:"overlap_tokens"`
		MinChunkTokens int `json:"min_chunk_tokens"`
	} `json:"config"`
	TotalChunks int         `json:"total_chunks"`
	Chunks      []wireChunk `json:"chunks"`
}

// BuildArtifact assembles chunks.json's contents from a Chunker's full
// output set and the configuration it ran with.
func BuildArtifact(cfg Config, chunks []domain.Chunk, now time.Time) Artifact {
	a := Artifact{
		Version:     "1.0",
		GeneratedAt: now.UTC().Format(time.RFC3339),
		TotalChunks: len(chunks),
	}
	a.Config.TargetTokens = cfg.TargetTokens
	a.Config.OverlapTokens = cfg.OverlapTokens
	a.Config.MinChunkTokens = cfg.MinChunkTokens

	a.Chunks = make([]wireChunk, len(chunks))
	for i, c := range chunks {
		wc := wireChunk{
			ChunkID:    c.ChunkID,
			DocumentID: c.DocumentID,
			Text:       c.Text,
			Tokens:     c.Tokens,
			ChunkIndex: c.ChunkIndex,
			Category:   c.Category,
			Language:   string(c.Language),
		}
		wc.Metadata.DocumentTitle = c.DocTitle
		wc.Metadata.DocumentFilename = c.DocFilename
		wc.Metadata.SourceURL = c.SourceURL
		a.Chunks[i] = wc
	}
	return a
}

// WriteArtifact renders a as indented JSON to path.
func WriteArtifact(path string, a Artifact) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("chunker: encode artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("chunker: write %s: %w", path, err)
	}
	return nil
}
