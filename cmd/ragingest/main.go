// Command ragingest is the offline pipeline driver: it runs Fetcher,
// Extractor, Chunker, and the Embedder-driver in sequence and writes the
// four spec.md §6 contract artifacts plus the manifest.json pointer file
// SPEC_FULL.md §6 adds on top.
//
// Grounded on app/cmd/main.go and loader/cmd/main.go's shape: godotenv
// env loading in init, a single linear Run, and the same
// signal.Notify-based graceful shutdown loader/service/service.go installs
// around its own long-running Run loop, here wrapping the sequential
// pipeline so a SIGINT/SIGTERM mid-run cancels outstanding network calls
// instead of leaving them to finish.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/uni-regulations/rag-core/internal/catalog"
	"github.com/uni-regulations/rag-core/internal/chunker"
	"github.com/uni-regulations/rag-core/internal/config"
	"github.com/uni-regulations/rag-core/internal/domain"
	"github.com/uni-regulations/rag-core/internal/embedder"
	"github.com/uni-regulations/rag-core/internal/extractor"
	"github.com/uni-regulations/rag-core/internal/fetcher"
	"github.com/uni-regulations/rag-core/internal/manifest"
)

func init() {
	mustLoadEnvVariables()
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigch
		log.Println("received shutdown signal, cancelling ingestion...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		log.Fatalf("ragingest: %v", err)
	}
}

func run(ctx context.Context) error {
	dataDir := envOr("DATA_DIR", "./data")
	docsRoot := envOr("DOCS_ROOT", filepath.Join(dataDir, "documents"))
	indexURL := os.Getenv("INDEX_URL")
	if indexURL == "" {
		log.Fatal("INDEX_URL must be set")
	}
	embedURL := envOr("EMBEDDING_API_URL", "http://localhost:11434/api/embeddings")
	embedModel := envOr("EMBEDDING_MODEL", "nomic-embed-text")

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	cfg, err := config.Load(envOr("CONFIG_PATH", filepath.Join(dataDir, "config.yaml")))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Println("stage 1/4: fetching documents")
	f := fetcher.New(fetcher.Config{
		Root:         docsRoot,
		IndexURL:     indexURL,
		RequestDelay: time.Duration(cfg.Pipeline.RequestDelayMS) * time.Millisecond,
	})
	docManifest, err := f.Run(ctx)
	if err != nil {
		return err
	}
	documentsPath := filepath.Join(dataDir, "documents.json")
	if err := fetcher.WriteManifest(documentsPath, docManifest); err != nil {
		return err
	}
	log.Printf("fetched %d documents (%d ok, %d failed)\n", docManifest.TotalCount, docManifest.SuccessCount, docManifest.FailureCount)

	log.Println("stage 2/4: extracting and chunking")
	ex := extractor.New()
	ck := chunker.New(chunker.Config{
		TargetTokens:   cfg.Chunker.TargetTokens,
		OverlapTokens:  cfg.Chunker.OverlapTokens,
		MinChunkTokens: cfg.Chunker.MinChunkTokens,
	})

	var allChunks []domain.Chunk
	for _, doc := range docManifest.Documents {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !doc.Downloaded {
			continue
		}
		data, err := os.ReadFile(doc.FilePath)
		if err != nil {
			log.Printf("skip %s: read failed: %v\n", doc.ID, err)
			continue
		}
		text, err := ex.Extract(doc, data)
		if err != nil {
			log.Printf("skip %s: extraction failed: %v\n", doc.ID, err)
			continue
		}
		allChunks = append(allChunks, ck.Chunk(doc, text)...)
	}
	log.Printf("produced %d chunks from %d documents\n", len(allChunks), docManifest.SuccessCount)

	chunksArtifact := chunker.BuildArtifact(chunker.Config{
		TargetTokens:   cfg.Chunker.TargetTokens,
		OverlapTokens:  cfg.Chunker.OverlapTokens,
		MinChunkTokens: cfg.Chunker.MinChunkTokens,
	}, allChunks, time.Now())
	chunksPath := filepath.Join(dataDir, "chunks.json")
	if err := chunker.WriteArtifact(chunksPath, chunksArtifact); err != nil {
		return err
	}

	log.Println("stage 3/4: embedding")
	embedClient := embedder.NewHTTPClient(embedURL, embedModel, &http.Client{Timeout: 30 * time.Second})
	driver := embedder.NewWithBatching(embedClient, embedModel,
		cfg.Pipeline.EmbedBatchSize, time.Duration(cfg.Pipeline.EmbedYieldMS)*time.Millisecond)
	embedded, err := driver.Run(ctx, allChunks)
	if err != nil {
		return err
	}
	log.Printf("embedded %d/%d chunks\n", len(embedded), len(allChunks))

	idx := embedder.BuildIndex(embedded, embedModel, cfg.Pipeline.EmbeddingDim, embedder.ChunkConfig{
		TargetTokens:   cfg.Chunker.TargetTokens,
		OverlapTokens:  cfg.Chunker.OverlapTokens,
		MinChunkTokens: cfg.Chunker.MinChunkTokens,
	}, time.Now())
	embeddingsPath := filepath.Join(dataDir, "embeddings.json")
	if err := embedder.WriteIndex(embeddingsPath, idx); err != nil {
		return err
	}

	log.Println("stage 4/4: building catalog")
	var docs []domain.Document
	for _, d := range docManifest.Documents {
		if d.Downloaded {
			docs = append(docs, d)
		}
	}
	categoriesArtifact := catalog.Build(cfg.Categories, docs, time.Now())
	categoriesPath := filepath.Join(dataDir, "categories.json")
	if err := writeJSON(categoriesPath, categoriesArtifact); err != nil {
		return err
	}

	pf := manifest.Build(documentsPath, chunksPath, embeddingsPath, embeddingsPath+".gz", categoriesPath, time.Now())
	if err := manifest.Write(filepath.Join(dataDir, "manifest.json"), pf); err != nil {
		return err
	}

	log.Println("ingestion complete")
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("ragingest: encode %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func mustLoadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on process environment")
	}
}
