// Command ragserver is the demo runtime HTTP server: it loads the
// artifacts cmd/ragingest produced, wires an Embedder/Generator against
// an Ollama-compatible endpoint, and serves RAGPipeline over a small
// Fiber API.
//
// Grounded on app/cmd/main.go's shape (godotenv env loading, a
// goroutine-run server, os/signal-based graceful shutdown) generalized
// from a direct Postgres connection to a manifest.json-discovered,
// file-backed index load.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/uni-regulations/rag-core/internal/blob"
	"github.com/uni-regulations/rag-core/internal/catalog"
	"github.com/uni-regulations/rag-core/internal/clockutil"
	"github.com/uni-regulations/rag-core/internal/config"
	"github.com/uni-regulations/rag-core/internal/embedder"
	"github.com/uni-regulations/rag-core/internal/fetcher"
	"github.com/uni-regulations/rag-core/internal/generator"
	"github.com/uni-regulations/rag-core/internal/httpapi"
	"github.com/uni-regulations/rag-core/internal/index"
	"github.com/uni-regulations/rag-core/internal/manifest"
	"github.com/uni-regulations/rag-core/internal/prompt"
	"github.com/uni-regulations/rag-core/internal/rag"
	"github.com/uni-regulations/rag-core/internal/router"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on process environment")
	}
}

func main() {
	ctx := context.Background()

	dataDir := envOr("DATA_DIR", "./data")
	pf, err := manifest.Load(filepath.Join(dataDir, "manifest.json"))
	if err != nil {
		log.Fatalf("ragserver: load manifest: %v", err)
	}

	cfg, err := config.Load(envOr("CONFIG_PATH", filepath.Join(dataDir, "config.yaml")))
	if err != nil {
		log.Fatalf("ragserver: load config: %v", err)
	}

	idx, err := index.Load(ctx, blob.FileFetcher{}, pf.EmbeddingsGzFile)
	if err != nil {
		log.Fatalf("ragserver: load index: %v", err)
	}
	store := index.NewVectorStore(idx)
	log.Printf("loaded index: %d chunks, dim %d\n", idx.Len(), idx.Dim())

	docManifest, err := fetcher.LoadManifest(pf.DocumentsFile)
	if err != nil {
		log.Fatalf("ragserver: load documents: %v", err)
	}
	cat := catalog.New(docManifest.Documents, cfg.Categories)

	embedURL := envOr("EMBEDDING_API_URL", "http://localhost:11434/api/embeddings")
	embedModel := envOr("EMBEDDING_MODEL", "nomic-embed-text")
	embedClient := embedder.NewHTTPClient(embedURL, embedModel, &http.Client{Timeout: 30 * time.Second})

	genURL := envOr("GENERATION_API_URL", "http://localhost:11434/api/generate")
	genModel := envOr("GENERATION_MODEL", "llama3")
	genSystem := envOr("GENERATION_SYSTEM_PROMPT", "You are a helpful university regulations assistant. Answer only from the provided sources.")
	genClient := generator.NewHTTPClient(genURL, genModel, genSystem, &http.Client{Timeout: 60 * time.Second})

	counter, err := prompt.NewTiktokenCounter("gpt-3.5-turbo")
	if err != nil {
		log.Fatalf("ragserver: init token counter: %v", err)
	}
	builder := prompt.New(counter, prompt.Config{
		ContextMaxTokens: cfg.Prompt.ContextMaxTokens,
		ReserveTokens:    cfg.Prompt.ReserveTokens,
	})

	pipeline := rag.New(embedClient, genClient, store, builder, cat, clockutil.System{})

	qr := router.New(embedClient, store, idx.Len, router.Config{
		HighThreshold: cfg.Router.HighThreshold,
		LowThreshold:  cfg.Router.LowThreshold,
	})

	addr := envOr("SERVER_ADDR", ":8080")
	srv := httpapi.NewServer(addr, pipeline, qr, cat)

	go srv.Run()
	log.Printf("ragserver listening on %s\n", addr)

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	log.Println("received shutdown signal, shutting down server...")
	srv.Stop()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
