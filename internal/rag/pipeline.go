// Package rag implements RAGPipeline, the orchestrator that turns a
// query into a grounded answer, directly grounded on
// app/api/handler.go's HandleRequest: embed, search, build prompt,
// generate, format sources — reshaped into spec.md §4.8's discrete
// numbered steps and tagged-result contract (rag/general/no_results/error)
// instead of the teacher's always-200-or-bubbled-error style.
package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker/v2"

	"github.com/uni-regulations/rag-core/internal/catalog"
	"github.com/uni-regulations/rag-core/internal/domain"
	"github.com/uni-regulations/rag-core/internal/index"
	"github.com/uni-regulations/rag-core/internal/ports"
	"github.com/uni-regulations/rag-core/internal/prompt"
	"github.com/uni-regulations/rag-core/internal/ragerr"
)

const defaultTopK = 5

// Pipeline orchestrates a single grounded query end to end.
//
// Embedder and Generator calls are wrapped in gobreaker circuit breakers
// (grounded on kk7453603-AIAssistent's resilience idiom) so repeated
// collaborator failures trip to open state and fail fast with
// EmbedderUnavailable/GeneratorUnavailable rather than retrying into a
// timeout on every query.
type Pipeline struct {
	embedder  ports.Embedder
	generator ports.Generator
	store     *index.VectorStore
	builder   *prompt.Builder
	catalog   *catalog.Catalog
	clock     ports.Clock

	embedderBreaker  *gobreaker.CircuitBreaker[[]float32]
	generatorBreaker *gobreaker.CircuitBreaker[string]
}

// New constructs a Pipeline.
func New(embedder ports.Embedder, generator ports.Generator, store *index.VectorStore, builder *prompt.Builder, cat *catalog.Catalog, clock ports.Clock) *Pipeline {
	return &Pipeline{
		embedder:  embedder,
		generator: generator,
		store:     store,
		builder:   builder,
		catalog:   cat,
		clock:     clock,
		embedderBreaker: gobreaker.NewCircuitBreaker[[]float32](gobreaker.Settings{
			Name: "embedder",
		}),
		generatorBreaker: gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
			Name: "generator",
		}),
	}
}

// SearchOptions bounds and filters a retrieval-only or grounded query.
type SearchOptions struct {
	TopK   int
	Filter index.Filter
}

// Answer runs the nine-step algorithm of spec.md §4.8 and never returns an
// error: every failure is folded into a domain.RAGResult with Mode ==
// ModeError, matching step 9's "never rethrow to the caller".
func (p *Pipeline) Answer(ctx context.Context, query string, opts SearchOptions, genCfg ports.GenerationConfig) domain.RAGResult {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}

	t0 := p.clock.NowMS()

	vec, err := p.embed(ctx, query)
	if err != nil {
		return p.errorResult(err)
	}
	tEmbed := p.clock.NowMS()

	results, err := p.store.Search(vec, opts.TopK, opts.Filter, index.ScoreDot)
	if err != nil {
		return p.errorResult(err)
	}
	tRetrieve := p.clock.NowMS()

	if len(results) == 0 {
		return domain.RAGResult{
			Mode:   domain.ModeNoResults,
			Answer: ragerr.NoResultsNotice,
			Timings: domain.Timings{
				EmbedMS:    tEmbed - t0,
				RetrieveMS: tRetrieve - tEmbed,
				TotalMS:    tRetrieve - t0,
			},
		}
	}

	groundedPrompt := p.builder.BuildGroundedPrompt(results, query)

	raw, err := p.generate(ctx, groundedPrompt, genCfg)
	if err != nil {
		return p.errorResult(err)
	}
	tGenerate := p.clock.NowMS()

	answer := prompt.ExtractResponse(raw)
	sources := p.buildSources(results)

	return domain.RAGResult{
		Mode:            domain.ModeRAG,
		Answer:          answer,
		RetrievedChunks: results,
		Sources:         sources,
		AvgSimilarity:   avgScore(results),
		Timings: domain.Timings{
			EmbedMS:    tEmbed - t0,
			RetrieveMS: tRetrieve - tEmbed,
			GenerateMS: tGenerate - tRetrieve,
			TotalMS:    tGenerate - t0,
		},
	}
}

// GenerateFreeChat answers query without retrieval, using PromptBuilder's
// chat-prompt path instead of the grounded one. This is the free-chat leg
// QueryRouter's ModeGeneral decision routes to: per spec.md §9 the chat
// prompt path predates RAG and stays in the same PromptBuilder so both
// modes share ExtractResponse's cleanup logic.
func (p *Pipeline) GenerateFreeChat(ctx context.Context, query string, genCfg ports.GenerationConfig) domain.RAGResult {
	t0 := p.clock.NowMS()

	chatPrompt, err := p.builder.BuildChatPrompt(nil, query)
	if err != nil {
		return p.errorResult(err)
	}

	raw, err := p.generate(ctx, chatPrompt, genCfg)
	if err != nil {
		return p.errorResult(err)
	}
	tGenerate := p.clock.NowMS()

	return domain.RAGResult{
		Mode:   domain.ModeGeneral,
		Answer: prompt.ExtractResponse(raw),
		Timings: domain.Timings{
			GenerateMS: tGenerate - t0,
			TotalMS:    tGenerate - t0,
		},
	}
}

// SemanticSearch runs steps 1–2 of Answer (embed, search) without
// generation, returning matching chunks and their source documents.
func (p *Pipeline) SemanticSearch(ctx context.Context, query string, opts SearchOptions) ([]domain.ScoredChunk, []domain.SourceDocument, error) {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	vec, err := p.embed(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	results, err := p.store.Search(vec, opts.TopK, opts.Filter, index.ScoreDot)
	if err != nil {
		return nil, nil, err
	}
	return results, p.buildSources(results), nil
}

// FindSimilarDocuments uses the embedding of documentID's first chunk
// (lowest chunk_index) as a stand-in query, searches topK×3 candidates, and
// returns at most topK
// distinct documents excluding the source document, in order of first
// occurrence.
func (p *Pipeline) FindSimilarDocuments(documentID string, topK int) ([]domain.Document, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	seedVector, ok := p.store.FirstChunkVector(documentID)
	if !ok {
		return nil, fmt.Errorf("rag: document %s has no indexed chunks: %w", documentID, ragerr.ErrInvalidArgument)
	}

	seedResults, err := p.store.Search(seedVector, topK*3, index.Filter{}, index.ScoreDot)
	if err != nil {
		return nil, err
	}

	var out []domain.Document
	seen := map[string]bool{documentID: true}
	for _, sc := range seedResults {
		if seen[sc.Chunk.DocumentID] {
			continue
		}
		doc, ok := p.catalog.ByID(sc.Chunk.DocumentID)
		if !ok {
			continue
		}
		seen[sc.Chunk.DocumentID] = true
		out = append(out, doc)
		if len(out) >= topK {
			break
		}
	}
	return out, nil
}

func (p *Pipeline) embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := p.embedderBreaker.Execute(func() ([]float32, error) {
		return p.embedder.Embed(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("rag: embed: %w", joinUnavailable(err, ragerr.ErrEmbedderUnavailable))
	}
	return vec, nil
}

func (p *Pipeline) generate(ctx context.Context, prompt string, cfg ports.GenerationConfig) (string, error) {
	text, err := p.generatorBreaker.Execute(func() (string, error) {
		return p.generator.Generate(ctx, prompt, cfg)
	})
	if err != nil {
		return "", fmt.Errorf("rag: generate: %w", joinUnavailable(err, ragerr.ErrGeneratorUnavailable))
	}
	return text, nil
}

func joinUnavailable(err, sentinel error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return sentinel
	}
	return err
}

func (p *Pipeline) buildSources(chunks []domain.ScoredChunk) []domain.SourceDocument {
	var sources []domain.SourceDocument
	seen := make(map[string]bool, len(chunks))
	for _, sc := range chunks {
		if seen[sc.Chunk.DocumentID] {
			continue
		}
		seen[sc.Chunk.DocumentID] = true
		doc, ok := p.catalog.ByID(sc.Chunk.DocumentID)
		if !ok {
			sources = append(sources, domain.SourceDocument{DocumentID: sc.Chunk.DocumentID, Title: sc.Chunk.DocTitle, Category: sc.Chunk.Category, SourceURL: sc.Chunk.SourceURL})
			continue
		}
		sources = append(sources, domain.SourceDocument{DocumentID: doc.ID, Title: doc.Title, Category: doc.Category, SourceURL: doc.SourceURL})
	}
	return sources
}

func (p *Pipeline) errorResult(err error) domain.RAGResult {
	return domain.RAGResult{
		Mode:   domain.ModeError,
		Answer: ragerr.GenericFailureNotice,
		Err:    err.Error(),
	}
}

func avgScore(chunks []domain.ScoredChunk) float64 {
	if len(chunks) == 0 {
		return 0
	}
	var sum float64
	for _, c := range chunks {
		sum += float64(c.Score)
	}
	return sum / float64(len(chunks))
}
