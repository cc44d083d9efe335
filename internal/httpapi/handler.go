package httpapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/uni-regulations/rag-core/internal/catalog"
	"github.com/uni-regulations/rag-core/internal/domain"
	"github.com/uni-regulations/rag-core/internal/ports"
	"github.com/uni-regulations/rag-core/internal/rag"
	"github.com/uni-regulations/rag-core/internal/router"
)

var validate = validator.New()

// QueryParams is the /api/v1/query request body. Grounded on
// app/api/handler.go's types.QueryParams, extended with the optional
// retrieval knobs RAGPipeline.Answer accepts that the teacher's
// single-shot handler never exposed.
type QueryParams struct {
	Prompt   string  `json:"prompt" validate:"required"`
	TopK     int     `json:"top_k,omitempty"`
	Category *string `json:"category,omitempty"`
}

func validateBody(v any) map[string]string {
	if err := validate.Struct(v); err != nil {
		out := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			out[fe.Field()] = "failed on '" + fe.Tag() + "' tag"
		}
		return out
	}
	return nil
}

// RequestHandler wires the demo server's HTTP surface to a rag.Pipeline,
// the QueryRouter that decides between it and free chat, and the runtime
// DocumentCatalog.
type RequestHandler struct {
	pipeline *rag.Pipeline
	router   *router.QueryRouter
	catalog  *catalog.Catalog
	genCfg   ports.GenerationConfig
}

// NewRequestHandler constructs a RequestHandler.
func NewRequestHandler(pipeline *rag.Pipeline, qr *router.QueryRouter, cat *catalog.Catalog, genCfg ports.GenerationConfig) *RequestHandler {
	return &RequestHandler{pipeline: pipeline, router: qr, catalog: cat, genCfg: genCfg}
}

// HandleQuery routes the prompt through QueryRouter first, mirroring
// app/api/handler.go's HandleRequest but branching on the router's
// rag/general decision instead of always retrieving: a high-similarity
// query runs the full grounded pipeline, a low-similarity or empty-index
// one falls back to free chat, per spec.md §4.6/§4.8/§9.
func (h *RequestHandler) HandleQuery(c *fiber.Ctx) error {
	var params QueryParams
	if err := c.BodyParser(&params); err != nil {
		return ErrBadRequest("invalid JSON request")
	}
	if fieldErrors := validateBody(&params); len(fieldErrors) > 0 {
		return NewValidationError(fieldErrors)
	}

	opts := rag.SearchOptions{TopK: params.TopK}
	if params.Category != nil {
		opts.Filter.Category = params.Category
	}

	decision := h.router.Route(c.Context(), params.Prompt, nil)
	var result domain.RAGResult
	switch decision.Mode {
	case domain.ModeRAG:
		result = h.pipeline.Answer(c.Context(), params.Prompt, opts, h.genCfg)
	default:
		result = h.pipeline.GenerateFreeChat(c.Context(), params.Prompt, h.genCfg)
	}
	return c.JSON(result)
}

// SearchParams is the /api/v1/search request body: retrieval-only, no
// generation.
type SearchParams struct {
	Query    string  `json:"query" validate:"required"`
	TopK     int     `json:"top_k,omitempty"`
	Category *string `json:"category,omitempty"`
}

// SearchResponse is /api/v1/search's JSON response shape.
type SearchResponse struct {
	Chunks  []domain.ScoredChunk    `json:"chunks"`
	Sources []domain.SourceDocument `json:"sources"`
}

// HandleSearch runs semantic search without generation.
func (h *RequestHandler) HandleSearch(c *fiber.Ctx) error {
	var params SearchParams
	if err := c.BodyParser(&params); err != nil {
		return ErrBadRequest("invalid JSON request")
	}
	if fieldErrors := validateBody(&params); len(fieldErrors) > 0 {
		return NewValidationError(fieldErrors)
	}

	opts := rag.SearchOptions{TopK: params.TopK}
	if params.Category != nil {
		opts.Filter.Category = params.Category
	}

	chunks, sources, err := h.pipeline.SemanticSearch(c.Context(), params.Query, opts)
	if err != nil {
		return err
	}
	return c.JSON(SearchResponse{Chunks: chunks, Sources: sources})
}

// HandleSimilarDocuments returns documents related to :documentID by
// first-chunk similarity.
func (h *RequestHandler) HandleSimilarDocuments(c *fiber.Ctx) error {
	documentID := c.Params("documentID")
	if documentID == "" {
		return ErrBadRequest("documentID is required")
	}
	docs, err := h.pipeline.FindSimilarDocuments(documentID, 0)
	if err != nil {
		return err
	}
	return c.JSON(docs)
}

// HandleGetDocument returns a single document's catalog record.
func (h *RequestHandler) HandleGetDocument(c *fiber.Ctx) error {
	documentID := c.Params("documentID")
	doc, ok := h.catalog.ByID(documentID)
	if !ok {
		return ErrNotFound("document", documentID)
	}
	return c.JSON(doc)
}

// HandleListCategories returns the catalog's category breakdown.
func (h *RequestHandler) HandleListCategories(c *fiber.Ctx) error {
	return c.JSON(h.catalog.Stats())
}

// HandleSearchDocuments does a substring title/filename search over the
// catalog, as distinct from HandleSearch's semantic chunk search.
func (h *RequestHandler) HandleSearchDocuments(c *fiber.Ctx) error {
	q := c.Query("q")
	var lang *domain.Language
	if l := c.Query("lang"); l != "" {
		v := domain.Language(l)
		lang = &v
	}
	return c.JSON(h.catalog.Search(q, lang))
}
