package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-regulations/rag-core/internal/domain"
	"github.com/uni-regulations/rag-core/internal/index"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return f.vec, f.err
}

func newTestStore(t *testing.T, scores []float32) *index.VectorStore {
	t.Helper()
	// dot([1,0], [score,0]) == score, so a single chunk with embedding
	// [score, 0] exercises ScoreDot against the query vector [1,0] used
	// throughout these tests.
	idx, err := index.NewFromEmbeddedChunks(2, []domain.EmbeddedChunk{
		{Chunk: domain.Chunk{ChunkID: "c0", DocumentID: "d1", Text: "x"}, Embedding: []float32{scores[0], 0}},
	})
	require.NoError(t, err)
	return index.NewVectorStore(idx)
}

func TestRoute_ForcedMode(t *testing.T) {
	r := New(fakeEmbedder{}, nil, func() int { return 10 }, Config{})
	forced := domain.ModeGeneral
	decision := r.Route(context.Background(), "hi", &forced)
	assert.Equal(t, domain.ModeGeneral, decision.Mode)
	assert.Equal(t, 1.0, decision.Confidence)
}

func TestRoute_EmptyIndex(t *testing.T) {
	r := New(fakeEmbedder{}, nil, func() int { return 0 }, Config{})
	decision := r.Route(context.Background(), "hi", nil)
	assert.Equal(t, domain.ModeGeneral, decision.Mode)
	assert.Equal(t, 1.0, decision.Confidence)
	assert.Equal(t, "empty_index", decision.Reason)
}

func TestRoute_EmbedError(t *testing.T) {
	r := New(fakeEmbedder{err: errors.New("boom")}, nil, func() int { return 5 }, Config{})
	decision := r.Route(context.Background(), "hi", nil)
	assert.Equal(t, domain.ModeGeneral, decision.Mode)
	assert.Equal(t, 0.5, decision.Confidence)
}

func TestRoute_AboveHighThreshold(t *testing.T) {
	store := newTestStore(t, []float32{0.8})
	r := New(fakeEmbedder{vec: []float32{1, 0}}, store, func() int { return 1 }, Config{HighThreshold: 0.6, LowThreshold: 0.4})
	decision := r.Route(context.Background(), "hi", nil)
	assert.Equal(t, domain.ModeRAG, decision.Mode)
	assert.InDelta(t, 0.8, decision.Confidence, 1e-6)
}

func TestRoute_BetweenThresholds(t *testing.T) {
	store := newTestStore(t, []float32{0.5})
	r := New(fakeEmbedder{vec: []float32{1, 0}}, store, func() int { return 1 }, Config{HighThreshold: 0.6, LowThreshold: 0.4})
	decision := r.Route(context.Background(), "hi", nil)
	require.Equal(t, domain.ModeGeneral, decision.Mode)
	assert.InDelta(t, 0.5, decision.Confidence, 1e-6)
	assert.NotEmpty(t, decision.TopChunks)
}

func TestRoute_BelowLowThreshold(t *testing.T) {
	store := newTestStore(t, []float32{0.1})
	r := New(fakeEmbedder{vec: []float32{1, 0}}, store, func() int { return 1 }, Config{HighThreshold: 0.6, LowThreshold: 0.4})
	decision := r.Route(context.Background(), "hi", nil)
	assert.Equal(t, domain.ModeGeneral, decision.Mode)
	assert.Equal(t, 1.0, decision.Confidence)
	assert.Empty(t, decision.TopChunks)
}
