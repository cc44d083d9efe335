package generator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-regulations/rag-core/internal/ports"
)

func TestGenerate_SingleObjectResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"hello there"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-model", "", nil)
	out, err := c.Generate(context.Background(), "prompt", ports.GenerationConfig{})
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
}

func TestGenerate_StreamingResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"hel"}{"response":"lo"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-model", "", nil)
	out, err := c.Generate(context.Background(), "prompt", ports.GenerationConfig{})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestGenerate_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-model", "", nil)
	_, err := c.Generate(context.Background(), "prompt", ports.GenerationConfig{})
	assert.Error(t, err)
}
