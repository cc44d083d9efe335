package index

import (
	"fmt"
	"math"

	"github.com/uni-regulations/rag-core/internal/domain"
	"github.com/uni-regulations/rag-core/internal/ragerr"
)

// ScoringMode selects the similarity function. With L2-normalized vectors
// dot and cosine coincide; both are offered per spec.md §4.5.
type ScoringMode int

const (
	ScoreDot ScoringMode = iota
	ScoreCosine
)

// Filter restricts candidate chunks; a nil field is unconstrained. A chunk
// is a candidate iff every supplied field equals the chunk's corresponding
// field, per spec.md §4.5.
type Filter struct {
	Category   *string
	Language   *domain.Language
	DocumentID *string
}

func (f Filter) matches(c domain.Chunk) bool {
	if f.Category != nil && c.Category != *f.Category {
		return false
	}
	if f.Language != nil && c.Language != *f.Language {
		return false
	}
	if f.DocumentID != nil && c.DocumentID != *f.DocumentID {
		return false
	}
	return true
}

// VectorStore serves exact top-K nearest-neighbor queries over a loaded
// VectorIndex.
type VectorStore struct {
	idx *VectorIndex
}

// NewVectorStore wraps idx for search.
func NewVectorStore(idx *VectorIndex) *VectorStore {
	return &VectorStore{idx: idx}
}

// FirstChunkVector returns documentID's first chunk's embedding vector.
func (s *VectorStore) FirstChunkVector(documentID string) ([]float32, bool) {
	return s.idx.FirstChunkVector(documentID)
}

// Search returns the top topK chunks by score against query, in strictly
// decreasing score order, with earlier-stored chunks winning ties. An
// empty candidate set (after filtering, or an empty index) returns an
// empty, non-error result.
func (s *VectorStore) Search(query []float32, topK int, filter Filter, mode ScoringMode) ([]domain.ScoredChunk, error) {
	if len(query) != s.idx.dim {
		return nil, fmt.Errorf("index: query dimension %d, want %d: %w", len(query), s.idx.dim, ragerr.ErrDimensionMismatch)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("index: topK must be positive, got %d: %w", topK, ragerr.ErrInvalidArgument)
	}

	if mode == ScoreCosine {
		query = normalizeCopy(query)
	}

	// Partial top-K selection: maintain a bounded ascending-by-score
	// window and evict the minimum when a better candidate arrives. O(N·D)
	// scoring dominates; the bookkeeping here is O(N·topK) worst case,
	// acceptable since topK is small relative to N in practice.
	type scored struct {
		idx   int
		score float32
	}
	var best []scored

	for i := 0; i < s.idx.Len(); i++ {
		if !filter.matches(s.idx.chunks[i]) {
			continue
		}
		vec := s.idx.vectorAt(i)
		score := dotProduct(query, vec)
		if mode == ScoreCosine {
			vec = normalizeCopy(vec)
			score = dotProduct(query, vec)
		}

		if len(best) < topK {
			best = append(best, scored{idx: i, score: score})
			continue
		}
		// Find current minimum in the window; among equal minima pick the
		// latest-stored one so earlier-stored chunks win ties.
		minPos := 0
		for j := 1; j < len(best); j++ {
			if best[j].score < best[minPos].score || (best[j].score == best[minPos].score && best[j].idx > best[minPos].idx) {
				minPos = j
			}
		}
		if score > best[minPos].score {
			best[minPos] = scored{idx: i, score: score}
		}
	}

	// Stable sort descending by score, ties broken by original storage
	// order (lower idx first).
	for i := 1; i < len(best); i++ {
		for j := i; j > 0; j-- {
			a, b := best[j-1], best[j]
			if a.score < b.score || (a.score == b.score && a.idx > b.idx) {
				best[j-1], best[j] = b, a
			} else {
				break
			}
		}
	}

	results := make([]domain.ScoredChunk, len(best))
	for i, sc := range best {
		results[i] = domain.ScoredChunk{Chunk: s.idx.chunks[sc.idx], Score: sc.score}
	}
	return results, nil
}

func dotProduct(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func normalizeCopy(v []float32) []float32 {
	var sumSquares float32
	for _, x := range v {
		sumSquares += x * x
	}
	if sumSquares == 0 {
		return v
	}
	norm := float32(math.Sqrt(float64(sumSquares)))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
