// Package router implements QueryRouter, deciding whether a query should
// be answered from the document corpus or routed to free chat, per
// spec.md §4.6.
//
// The teacher has no router: app/api/handler.go always goes straight to
// retrieval with a single one-sided "minDistance" cutoff (filterChunks).
// This package generalizes that one-sided cutoff into the spec's
// three-way high/low/empty decision, keeping the teacher's own
// "minDistance"-style naming for the low threshold (lowThreshold below).
package router

import (
	"context"

	"github.com/uni-regulations/rag-core/internal/domain"
	"github.com/uni-regulations/rag-core/internal/index"
	"github.com/uni-regulations/rag-core/internal/ports"
)

// Config holds the two tunable thresholds. Changing them must not alter
// any other component's behavior, per spec.md §4.6.
type Config struct {
	HighThreshold float64
	LowThreshold  float64
}

// QueryRouter decides the RoutingDecision for a query.
type QueryRouter struct {
	embedder ports.Embedder
	store    *index.VectorStore
	indexLen func() int
	cfg      Config
}

// New constructs a QueryRouter. indexLen reports the current index size,
// used to special-case the empty-index condition in step 5.
func New(embedder ports.Embedder, store *index.VectorStore, indexLen func() int, cfg Config) *QueryRouter {
	if cfg.HighThreshold == 0 {
		cfg.HighThreshold = 0.6
	}
	if cfg.LowThreshold == 0 {
		cfg.LowThreshold = 0.4
	}
	return &QueryRouter{embedder: embedder, store: store, indexLen: indexLen, cfg: cfg}
}

// Route implements the six-step algorithm of spec.md §4.6. forcedMode, if
// non-nil, short-circuits to step 1.
func (r *QueryRouter) Route(ctx context.Context, query string, forcedMode *domain.RoutingMode) domain.RoutingDecision {
	if forcedMode != nil {
		return domain.RoutingDecision{Mode: *forcedMode, Confidence: 1.0, Reason: "forced"}
	}

	if r.indexLen() == 0 {
		return domain.RoutingDecision{Mode: domain.ModeGeneral, Confidence: 1.0, Reason: "empty_index"}
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return domain.RoutingDecision{Mode: domain.ModeGeneral, Confidence: 0.5, Reason: err.Error()}
	}

	results, err := r.store.Search(vec, 1, index.Filter{}, index.ScoreDot)
	if err != nil {
		return domain.RoutingDecision{Mode: domain.ModeGeneral, Confidence: 0.5, Reason: err.Error()}
	}
	if len(results) == 0 {
		return domain.RoutingDecision{Mode: domain.ModeGeneral, Confidence: 1.0, Reason: "empty_index"}
	}

	score := float64(results[0].Score)
	switch {
	case score >= r.cfg.HighThreshold:
		return domain.RoutingDecision{Mode: domain.ModeRAG, Confidence: score, Reason: "above_high_threshold", TopChunks: results}
	case score >= r.cfg.LowThreshold:
		return domain.RoutingDecision{Mode: domain.ModeGeneral, Confidence: 1 - score, Reason: "below_high_threshold", TopChunks: results}
	default:
		return domain.RoutingDecision{Mode: domain.ModeGeneral, Confidence: 1.0, Reason: "below_low_threshold"}
	}
}
