// Package blob provides BlobFetcher implementations for the index artifact:
// a local filesystem fetcher for the offline/demo pipeline, and an HTTP
// fetcher grounded on the teacher's own plain http.Client usage in
// model/ollama.go and app/agent/agent.go.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/uni-regulations/rag-core/internal/ports"
)

// FileFetcher reads blobs from the local filesystem. Used by the demo
// server and by tests, since the spec's runtime treats "fetch the index
// blob" as an abstract boundary regardless of transport.
type FileFetcher struct{}

var _ ports.BlobFetcher = FileFetcher{}

// Fetch reads the file at path. ctx is honored only insofar as it is
// checked before the read starts; os.ReadFile itself is not cancellable.
func (FileFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// HTTPFetcher retrieves blobs over HTTP, for deployments that publish the
// compressed index to a static file host or CDN instead of bundling it.
type HTTPFetcher struct {
	Client *http.Client
}

var _ ports.BlobFetcher = HTTPFetcher{}

// Fetch issues a GET request for path and returns the response body.
func (f HTTPFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("blob: build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blob: fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("blob: fetch %s: status %d: %s", path, resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("blob: read body of %s: %w", path, err)
	}
	return data, nil
}
