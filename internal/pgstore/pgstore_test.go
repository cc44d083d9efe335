package pgstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/uni-regulations/rag-core/internal/domain"
)

func TestReplaceChunks_RejectsDimensionMismatch(t *testing.T) {
	s := &Store{dim: 768}
	chunks := []domain.EmbeddedChunk{
		{Chunk: domain.Chunk{ChunkID: "c0", DocumentID: "d1"}, Embedding: []float32{1, 2, 3}},
	}
	// ReplaceChunks validates embedding length before touching the pool, so
	// a nil pool is safe here: the dimension check fails first.
	err := s.ReplaceChunks(context.Background(), "d1", chunks)
	assert.Error(t, err)
}

func TestSearch_RejectsDimensionMismatch(t *testing.T) {
	s := &Store{dim: 768}
	_, err := s.Search(context.Background(), []float32{1, 2}, 5)
	assert.Error(t, err)
}
