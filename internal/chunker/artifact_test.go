package chunker

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-regulations/rag-core/internal/domain"
)

func TestBuildArtifact_CarriesConfigAndChunks(t *testing.T) {
	cfg := Config{TargetTokens: 250, OverlapTokens: 50, MinChunkTokens: 100}
	chunks := []domain.Chunk{
		{ChunkID: "d1_chunk_0", DocumentID: "d1", Text: "hello", Tokens: 2, Category: "safety", Language: domain.LanguageEnglish, DocTitle: "Doc"},
	}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	a := BuildArtifact(cfg, chunks, now)

	assert.Equal(t, "1.0", a.Version)
	assert.Equal(t, 1, a.TotalChunks)
	assert.Equal(t, 250, a.Config.TargetTokens)
	require.Len(t, a.Chunks, 1)
	assert.Equal(t, "d1_chunk_0", a.Chunks[0].ChunkID)
	assert.Equal(t, "Doc", a.Chunks[0].Metadata.DocumentTitle)
}

func TestWriteArtifact_ProducesValidJSON(t *testing.T) {
	a := BuildArtifact(Config{}, nil, time.Now())
	path := filepath.Join(t.TempDir(), "chunks.json")

	require.NoError(t, WriteArtifact(path, a))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded Artifact
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, a.Version, decoded.Version)
}
