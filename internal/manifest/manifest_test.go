package manifest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_StampsVersionAndTimestamp(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	pf := Build("documents.json", "chunks.json", "embeddings.json", "embeddings.json.gz", "categories.json", now)

	assert.Equal(t, "1.0", pf.Version)
	assert.Equal(t, "2026-01-02T03:04:05Z", pf.GeneratedAt)
	assert.Equal(t, "chunks.json", pf.ChunksFile)
	assert.Equal(t, "embeddings.json.gz", pf.EmbeddingsGzFile)
}

func TestWriteLoad_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	pf := Build("documents.json", "chunks.json", "embeddings.json", "embeddings.json.gz", "categories.json", time.Now())

	require.NoError(t, Write(path, pf))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, pf, got)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
