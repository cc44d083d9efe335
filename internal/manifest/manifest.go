// Package manifest writes manifest.json, the small pointer file
// SPEC_FULL.md §6 adds on top of spec.md's four contract artifacts so the
// demo server and IndexLoader can discover documents.json, chunks.json,
// embeddings.json(.gz), and categories.json without hardcoded paths.
//
// Grounded on the general "small index-of-indexes" idiom; no pack example
// writes one, since the teacher persists straight to Postgres instead of
// staged JSON artifacts.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// PointerFile is manifest.json's root shape.
type PointerFile struct {
	Version          string `json:"version"`
	GeneratedAt      string `json:"generated_at"`
	DocumentsFile    string `json:"documents_file"`
	ChunksFile       string `json:"chunks_file"`
	EmbeddingsFile   string `json:"embeddings_file"`
	EmbeddingsGzFile string `json:"embeddings_gz_file"`
	CategoriesFile   string `json:"categories_file"`
}

// Build assembles a PointerFile from the artifact paths an ingestion run
// produced, stamped with now.
func Build(documentsFile, chunksFile, embeddingsFile, embeddingsGzFile, categoriesFile string, now time.Time) PointerFile {
	return PointerFile{
		Version:          "1.0",
		GeneratedAt:      now.UTC().Format(time.RFC3339),
		DocumentsFile:    documentsFile,
		ChunksFile:       chunksFile,
		EmbeddingsFile:   embeddingsFile,
		EmbeddingsGzFile: embeddingsGzFile,
		CategoriesFile:   categoriesFile,
	}
}

// Write renders pf as indented JSON to path.
func Write(path string, pf PointerFile) error {
	data, err := json.MarshalIndent(pf, "", "  ")
	if err != nil {
		return fmt.Errorf("manifest: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("manifest: write %s: %w", path, err)
	}
	return nil
}

// Load reads and decodes a manifest.json pointer file.
func Load(path string) (PointerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PointerFile{}, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	var pf PointerFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return PointerFile{}, fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	return pf, nil
}
