package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/uni-regulations/rag-core/internal/ports"
)

// HTTPClient implements ports.Embedder against an Ollama-compatible
// embeddings endpoint, directly grounded on model/ollama.go's
// OllamaEmbedder: same request/response JSON shape, same L2-normalization
// step, generalized to take a context from the caller instead of installing
// its own fixed timeout.
type HTTPClient struct {
	apiURL string
	model  string
	client *http.Client
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewHTTPClient constructs an HTTP-backed Embedder. client defaults to
// http.DefaultClient when nil.
func NewHTTPClient(apiURL, model string, client *http.Client) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{apiURL: apiURL, model: model, client: client}
}

var _ ports.Embedder = (*HTTPClient)(nil)

// Embed returns the endpoint's embedding for text, L2-normalized. The
// vector has whatever length the endpoint returns; it is not checked here.
func (c *HTTPClient) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: c.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("embedder: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedder: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedder: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedder: api error status %d: %s", resp.StatusCode, string(respBody))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embedder: read response: %w", err)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("embedder: unmarshal response: %w", err)
	}

	normalizeL2(parsed.Embedding)

	vec := make([]float32, len(parsed.Embedding))
	for i, v := range parsed.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// normalizeL2 scales vec to unit length in place. A zero vector is left
// unchanged rather than dividing by zero.
func normalizeL2(vec []float64) {
	var sumSquares float64
	for _, v := range vec {
		sumSquares += v * v
	}
	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		return
	}
	for i, v := range vec {
		vec[i] = v / norm
	}
}
