// Package ports declares the abstract collaborators the RAG core consumes
// but does not define: Embedder, Generator, BlobFetcher, Clock, and
// TokenCounter. The core is built entirely against these interfaces so the
// model runtime, storage layer, and wall clock can be swapped or faked in
// tests without touching retrieval, routing, or prompt-building logic.
package ports

import "context"

// GenerationConfig carries the enumerated generation knobs a Generator
// accepts. Zero values mean "use the Generator's own default".
type GenerationConfig struct {
	Temperature       float64
	MaxNewTokens      int
	TopK              int
	TopP              float64
	RepetitionPenalty float64
	DoSample          bool
}

// Embedder produces one L2-normalized, fixed-dimension vector per input
// string. Pooling and normalization happen inside the implementation; the
// same model, pooling, and normalization must be used offline and online or
// similarity scores silently stop meaning anything.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces a continuation for a prompt, excluding the prompt
// itself, honoring the supplied GenerationConfig.
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}

// BlobFetcher retrieves the raw bytes of a named artifact (a path or URL,
// depending on the implementation).
type BlobFetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Clock supplies monotonic millisecond readings for timing breakdowns.
type Clock interface {
	NowMS() int64
}

// TokenCounter estimates the number of model tokens in a string. Used only
// by the PromptBuilder for chat-history truncation; the Chunker has its own
// intrinsic char/3.5 estimator and must never call this.
type TokenCounter interface {
	Count(text string) (int, error)
}
