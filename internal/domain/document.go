// Package domain holds the shared, collaborator-free data model used by both
// the offline ingestion pipeline and the retrieval runtime.
package domain

import "time"

// Language is the detected natural language of a Document or Chunk.
type Language string

const (
	LanguageUkrainian Language = "uk"
	LanguageEnglish   Language = "en"
)

// DocumentType is the on-disk format a Document was fetched as.
type DocumentType string

const (
	DocumentPDF     DocumentType = "pdf"
	DocumentDOCX    DocumentType = "docx"
	DocumentDOC     DocumentType = "doc"
	DocumentUnknown DocumentType = "unknown"
)

// UncategorizedID is the fallback category for documents that could not be
// assigned to one of the twelve fixed categories during discovery.
const UncategorizedID = "uncategorized"

// CategoryIDs is the closed, ordered taxonomy a Fetcher cycles through when
// assigning documents to headings on the index page.
var CategoryIDs = []string{
	"general_operations",
	"anti_corruption",
	"academic_council",
	"structural_divisions",
	"educational_process",
	"scientific_work",
	"financial_activities",
	"information_activities",
	"social_civic",
	"dormitories",
	"hr_management",
	"safety",
}

// Document is an immutable record produced by the Fetcher. It is never
// mutated after creation; re-running the pipeline replaces it wholesale.
type Document struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Filename       string       `json:"filename"`
	FilePath       string       `json:"filepath"`
	SourceURL      string       `json:"source_url"`
	Category       string       `json:"category"`
	Language       Language     `json:"language"`
	Type           DocumentType `json:"type"`
	Downloaded     bool         `json:"downloaded"`
	DownloadError  string       `json:"download_error"`
	DownloadedAt   time.Time    `json:"download_date"`
}

// Category is one of the twelve fixed domains plus the uncategorized
// fallback. DocumentCount is computed once by the Catalog builder after
// ingestion and never recomputed at runtime.
type Category struct {
	ID              string
	NameUK          string
	NameEN          string
	Icon            string
	DescriptionUK   string
	DescriptionEN   string
	DocumentCount   int
}

// Chunk is a sentence-aligned text window produced by the Chunker. ChunkID
// has the form "{document_id}_chunk_{i}" with i increasing monotonically
// from zero per document.
type Chunk struct {
	ChunkID      string
	DocumentID   string
	Text         string
	Tokens       int
	ChunkIndex   int
	Category     string
	Language     Language
	DocTitle     string
	DocFilename  string
	SourceURL    string

	// CoherencePrev/CoherenceNext optionally link a chunk to its immediate
	// neighbours in document order. The Chunker leaves both nil, and no
	// package in this module reads them; RAGPipeline does not use them.
	CoherencePrev *string
	CoherenceNext *string
}

// EmbeddedChunk pairs a Chunk with its dense, L2-normalized embedding.
type EmbeddedChunk struct {
	Chunk
	Embedding []float32
}

// ScoredChunk is a Chunk (without its embedding) returned from a similarity
// search together with the score it was ranked by.
type ScoredChunk struct {
	Chunk Chunk
	Score float32
}

// RoutingMode is the QueryRouter's decision about how to answer a query.
type RoutingMode string

const (
	ModeRAG       RoutingMode = "rag"
	ModeGeneral   RoutingMode = "general"
	ModeNoResults RoutingMode = "no_results"
	ModeError     RoutingMode = "error"
)

// RoutingDecision is the QueryRouter's output for a single query.
type RoutingDecision struct {
	Mode       RoutingMode
	Confidence float64
	Reason     string
	TopChunks  []ScoredChunk
}

// SourceDocument is a deduplicated, enriched reference to a document that
// contributed at least one retrieved chunk to a RAGResult.
type SourceDocument struct {
	DocumentID string
	Title      string
	Category   string
	SourceURL  string
}

// Timings records the millisecond durations of each stage of a RAGPipeline
// query, as read from the injected Clock.
type Timings struct {
	EmbedMS    int64
	RetrieveMS int64
	GenerateMS int64
	TotalMS    int64
}

// RAGResult is the tagged outcome of a single RAGPipeline.Answer call. Mode
// is always one of rag, general, no_results, error; callers branch on it
// instead of on a returned error, since RAGPipeline never returns one.
type RAGResult struct {
	Mode            RoutingMode
	Answer          string
	RetrievedChunks []ScoredChunk
	Sources         []SourceDocument
	AvgSimilarity   float64
	Timings         Timings
	Err             string
}
