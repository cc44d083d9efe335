package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-regulations/rag-core/internal/catalog"
	"github.com/uni-regulations/rag-core/internal/config"
	"github.com/uni-regulations/rag-core/internal/domain"
	"github.com/uni-regulations/rag-core/internal/index"
	"github.com/uni-regulations/rag-core/internal/ports"
	"github.com/uni-regulations/rag-core/internal/prompt"
	"github.com/uni-regulations/rag-core/internal/rag"
	"github.com/uni-regulations/rag-core/internal/router"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) { return []float32{1, 0}, nil }

type stubGenerator struct{ out string }

func (g stubGenerator) Generate(_ context.Context, _ string, _ ports.GenerationConfig) (string, error) {
	return g.out, nil
}

type stubClock struct{}

func (stubClock) NowMS() int64 { return 0 }

type stubCounter struct{}

func (stubCounter) Count(text string) (int, error) { return len(text), nil }

func TestHandleQuery_BadJSON(t *testing.T) {
	app := fiber.New(fiberConfig)
	app.Post("/api/v1/query", (&RequestHandler{}).HandleQuery)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/query", bytes.NewBufferString("{not json"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleQuery_ValidationFailsOnEmptyPrompt(t *testing.T) {
	app := fiber.New(fiberConfig)
	app.Post("/api/v1/query", (&RequestHandler{}).HandleQuery)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/query", bytes.NewBufferString(`{"prompt":""}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandleGetDocument_NotFound(t *testing.T) {
	cat := catalog.New(nil, config.DefaultCategories())
	h := NewRequestHandler(nil, nil, cat, ports.GenerationConfig{})

	app := fiber.New(fiberConfig)
	app.Get("/api/v1/documents/:documentID", h.HandleGetDocument)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/documents/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var payload Error
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Contains(t, payload.Message, "missing")
}

func TestHandleListCategories_ReturnsStats(t *testing.T) {
	docs := []domain.Document{{ID: "d1", Category: "safety"}}
	cat := catalog.New(docs, config.DefaultCategories())
	h := NewRequestHandler(nil, nil, cat, ports.GenerationConfig{})

	app := fiber.New(fiberConfig)
	app.Get("/api/v1/categories", h.HandleListCategories)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/categories", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHandleQuery_RoutesGeneralOnEmptyIndex(t *testing.T) {
	idx, err := index.NewFromEmbeddedChunks(2, nil)
	require.NoError(t, err)
	store := index.NewVectorStore(idx)
	cat := catalog.New(nil, config.DefaultCategories())
	builder := prompt.New(stubCounter{}, prompt.Config{})
	pipeline := rag.New(stubEmbedder{}, stubGenerator{out: "hello"}, store, builder, cat, stubClock{})
	qr := router.New(stubEmbedder{}, store, idx.Len, router.Config{})
	h := NewRequestHandler(pipeline, qr, cat, ports.GenerationConfig{})

	app := fiber.New(fiberConfig)
	app.Post("/api/v1/query", h.HandleQuery)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/query", bytes.NewBufferString(`{"prompt":"hi"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var result domain.RAGResult
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, domain.ModeGeneral, result.Mode)
}
