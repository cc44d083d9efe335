// Package generator implements the Generator collaborator against an
// Ollama-compatible /api/generate endpoint, directly grounded on
// app/agent/agent.go's GenerateAnswer: same request/response JSON shape,
// same streaming-response fallback for servers that emit newline-delimited
// chunks instead of a single JSON object, generalized to accept a fully
// assembled prompt and ports.GenerationConfig instead of building its own
// context/question template inline.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/uni-regulations/rag-core/internal/ports"
)

// HTTPClient implements ports.Generator against an Ollama-compatible
// generation endpoint.
type HTTPClient struct {
	apiURL string
	model  string
	system string
	client *http.Client
}

type generateRequest struct {
	Model   string  `json:"model"`
	System  string  `json:"system,omitempty"`
	Prompt  string  `json:"prompt"`
	Options options `json:"options"`
}

type options struct {
	Temperature    float64 `json:"temperature"`
	TopK           int     `json:"top_k"`
	TopP           float64 `json:"top_p"`
	NumPredict     int     `json:"num_predict"`
	RepeatPenalty  float64 `json:"repeat_penalty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// NewHTTPClient constructs an HTTP-backed Generator. system is an optional
// system prompt sent with every request; client defaults to
// http.DefaultClient when nil.
func NewHTTPClient(apiURL, model, system string, client *http.Client) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{apiURL: apiURL, model: model, system: system, client: client}
}

var _ ports.Generator = (*HTTPClient)(nil)

// Generate sends prompt to the generation endpoint and returns the
// completion, handling both a single-object response and a
// newline-delimited streaming response.
func (c *HTTPClient) Generate(ctx context.Context, prompt string, cfg ports.GenerationConfig) (string, error) {
	reqBody, err := json.Marshal(generateRequest{
		Model:  c.model,
		System: c.system,
		Prompt: prompt,
		Options: options{
			Temperature:   cfg.Temperature,
			TopK:          cfg.TopK,
			TopP:          cfg.TopP,
			NumPredict:    cfg.MaxNewTokens,
			RepeatPenalty: cfg.RepetitionPenalty,
		},
	})
	if err != nil {
		return "", fmt.Errorf("generator: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("generator: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generator: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generator: api error status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("generator: read response: %w", err)
	}

	var single generateResponse
	if err := json.Unmarshal(body, &single); err == nil && single.Response != "" {
		return single.Response, nil
	}

	var assembled string
	decoder := json.NewDecoder(bytes.NewReader(body))
	for decoder.More() {
		var chunk generateResponse
		if err := decoder.Decode(&chunk); err != nil {
			break
		}
		assembled += chunk.Response
	}
	return assembled, nil
}
