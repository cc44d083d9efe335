package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-regulations/rag-core/internal/catalog"
	"github.com/uni-regulations/rag-core/internal/config"
	"github.com/uni-regulations/rag-core/internal/domain"
	"github.com/uni-regulations/rag-core/internal/index"
	"github.com/uni-regulations/rag-core/internal/ports"
	"github.com/uni-regulations/rag-core/internal/prompt"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) { return f.vec, f.err }

type fakeGenerator struct {
	out string
	err error
}

func (f fakeGenerator) Generate(_ context.Context, _ string, _ ports.GenerationConfig) (string, error) {
	return f.out, f.err
}

type fakeClock struct{ t int64 }

func (c *fakeClock) NowMS() int64 {
	c.t++
	return c.t
}

type fakeCounter struct{}

func (fakeCounter) Count(text string) (int, error) { return len(text), nil }

func newPipeline(t *testing.T, embed fakeEmbedder, gen fakeGenerator, docs []domain.Document, chunks []domain.EmbeddedChunk) *Pipeline {
	t.Helper()
	idx, err := index.NewFromEmbeddedChunks(2, chunks)
	require.NoError(t, err)
	store := index.NewVectorStore(idx)
	cat := catalog.New(docs, config.DefaultCategories())
	builder := prompt.New(fakeCounter{}, prompt.Config{})
	return New(embed, gen, store, builder, cat, &fakeClock{})
}

func TestPipeline_Answer_RAGMode(t *testing.T) {
	docs := []domain.Document{{ID: "d1", Title: "Safety Order", Category: "safety", Language: domain.LanguageEnglish}}
	chunks := []domain.EmbeddedChunk{
		{Chunk: domain.Chunk{ChunkID: "d1_chunk_0", DocumentID: "d1", Text: "safety text", Category: "safety"}, Embedding: []float32{1, 0}},
	}
	p := newPipeline(t, fakeEmbedder{vec: []float32{1, 0}}, fakeGenerator{out: "Assistant: the answer"}, docs, chunks)

	result := p.Answer(context.Background(), "what is safety policy?", SearchOptions{}, ports.GenerationConfig{})
	assert.Equal(t, domain.ModeRAG, result.Mode)
	assert.Equal(t, "the answer", result.Answer)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "d1", result.Sources[0].DocumentID)
}

func TestPipeline_Answer_NoResults(t *testing.T) {
	p := newPipeline(t, fakeEmbedder{vec: []float32{1, 0}}, fakeGenerator{}, nil, nil)
	result := p.Answer(context.Background(), "anything", SearchOptions{TopK: 1}, ports.GenerationConfig{})
	assert.Equal(t, domain.ModeNoResults, result.Mode)
	assert.Empty(t, result.Sources)
}

func TestPipeline_Answer_EmbedderError(t *testing.T) {
	docs := []domain.Document{{ID: "d1"}}
	chunks := []domain.EmbeddedChunk{{Chunk: domain.Chunk{ChunkID: "c0", DocumentID: "d1", Text: "x"}, Embedding: []float32{1, 0}}}
	p := newPipeline(t, fakeEmbedder{err: errors.New("down")}, fakeGenerator{}, docs, chunks)

	result := p.Answer(context.Background(), "q", SearchOptions{}, ports.GenerationConfig{})
	assert.Equal(t, domain.ModeError, result.Mode)
	assert.NotEmpty(t, result.Err)
}

func TestPipeline_GenerateFreeChat_Success(t *testing.T) {
	p := newPipeline(t, fakeEmbedder{}, fakeGenerator{out: "Assistant: hi there"}, nil, nil)

	result := p.GenerateFreeChat(context.Background(), "hello", ports.GenerationConfig{})
	assert.Equal(t, domain.ModeGeneral, result.Mode)
	assert.Equal(t, "hi there", result.Answer)
	assert.Empty(t, result.Sources)
}

func TestPipeline_GenerateFreeChat_GeneratorError(t *testing.T) {
	p := newPipeline(t, fakeEmbedder{}, fakeGenerator{err: errors.New("down")}, nil, nil)

	result := p.GenerateFreeChat(context.Background(), "hello", ports.GenerationConfig{})
	assert.Equal(t, domain.ModeError, result.Mode)
	assert.NotEmpty(t, result.Err)
}

func TestPipeline_FindSimilarDocuments_ExcludesSource(t *testing.T) {
	docs := []domain.Document{
		{ID: "d1", Title: "A"},
		{ID: "d2", Title: "B"},
	}
	chunks := []domain.EmbeddedChunk{
		{Chunk: domain.Chunk{ChunkID: "d1_chunk_0", DocumentID: "d1", Text: "x", ChunkIndex: 0}, Embedding: []float32{1, 0}},
		{Chunk: domain.Chunk{ChunkID: "d2_chunk_0", DocumentID: "d2", Text: "y", ChunkIndex: 0}, Embedding: []float32{0.9, 0.1}},
	}
	p := newPipeline(t, fakeEmbedder{}, fakeGenerator{}, docs, chunks)

	similar, err := p.FindSimilarDocuments("d1", 5)
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, "d2", similar[0].ID)
}
