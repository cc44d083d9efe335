package embedder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-regulations/rag-core/internal/domain"
)

type fakeEmbedder struct {
	failFor map[string]bool
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.failFor[text] {
		return nil, errors.New("embed failed")
	}
	return []float32{1, 0, 0}, nil
}

func chunkSet(n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{ChunkID: "c" + string(rune('0'+i)), Text: "text"}
	}
	return chunks
}

func TestDriver_RunSkipsFailures(t *testing.T) {
	fe := &fakeEmbedder{failFor: map[string]bool{}}
	d := New(fe, "test-model")
	d.yield = time.Millisecond

	chunks := []domain.Chunk{
		{ChunkID: "ok1", Text: "ok"},
		{ChunkID: "bad", Text: "bad text"},
		{ChunkID: "ok2", Text: "ok"},
	}
	fe.failFor["bad text"] = true

	result, err := d.Run(context.Background(), chunks)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "ok1", result[0].ChunkID)
	assert.Equal(t, "ok2", result[1].ChunkID)
}

func TestDriver_RunBatchesWithYield(t *testing.T) {
	fe := &fakeEmbedder{failFor: map[string]bool{}}
	d := New(fe, "test-model")
	d.batchSize = 2
	d.yield = time.Millisecond

	result, err := d.Run(context.Background(), chunkSet(5))
	require.NoError(t, err)
	assert.Len(t, result, 5)
}

func TestDriver_RunRespectsCancellation(t *testing.T) {
	fe := &fakeEmbedder{failFor: map[string]bool{}}
	d := New(fe, "test-model")
	d.batchSize = 1
	d.yield = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Run(ctx, chunkSet(3))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewWithBatching_FallsBackToDefaultsOnZero(t *testing.T) {
	fe := &fakeEmbedder{failFor: map[string]bool{}}
	d := NewWithBatching(fe, "test-model", 0, 0)
	assert.Equal(t, batchSize, d.batchSize)
	assert.Equal(t, time.Second, d.yield)
}

func TestNewWithBatching_OverridesDefaults(t *testing.T) {
	fe := &fakeEmbedder{failFor: map[string]bool{}}
	d := NewWithBatching(fe, "test-model", 3, 5*time.Millisecond)
	assert.Equal(t, 3, d.batchSize)
	assert.Equal(t, 5*time.Millisecond, d.yield)
}

func TestBuildIndex(t *testing.T) {
	embedded := []domain.EmbeddedChunk{
		{Chunk: domain.Chunk{ChunkID: "c1", DocumentID: "d1", Text: "hello"}, Embedding: []float32{1, 0}},
	}
	idx := BuildIndex(embedded, "test-model", 2, ChunkConfig{TargetTokens: 250, OverlapTokens: 50, MinChunkTokens: 100}, time.Unix(0, 0))
	assert.Equal(t, "1.0", idx.Version)
	assert.Equal(t, 1, idx.TotalChunks)
	assert.Equal(t, 2, idx.EmbeddingDim)
	require.Len(t, idx.Chunks, 1)
	assert.Equal(t, "c1", idx.Chunks[0].ChunkID)
}
