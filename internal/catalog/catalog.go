// Package catalog provides the runtime DocumentCatalog (constant-time
// lookups by id/category, bilingual category names, substring search,
// statistics) and the offline Catalog builder that emits categories.json.
//
// No example repo keeps an in-memory document catalog (the teacher fetches
// one document at a time by id via SQL); this package is grounded on the
// general map-of-slices bookkeeping idiom kxddry-rag-text-search's
// in-memory vector store uses for its own indexing, applied here to
// documents-by-category and documents-by-id (spec.md §4.9).
package catalog

import (
	"strings"
	"time"

	"github.com/uni-regulations/rag-core/internal/config"
	"github.com/uni-regulations/rag-core/internal/domain"
)

// Catalog is the runtime DocumentCatalog: an immutable, constant-time
// lookup structure over a fixed document set.
type Catalog struct {
	byID         map[string]domain.Document
	byCategory   map[string][]domain.Document
	categoryMeta map[string]config.CategoryMeta
	ordered      []domain.Document
}

// New builds a Catalog from docs, preserving ingestion order within each
// category bucket, and from the static bilingual category metadata.
func New(docs []domain.Document, categories []config.CategoryMeta) *Catalog {
	c := &Catalog{
		byID:         make(map[string]domain.Document, len(docs)),
		byCategory:   make(map[string][]domain.Document),
		categoryMeta: make(map[string]config.CategoryMeta, len(categories)),
		ordered:      docs,
	}
	for _, meta := range categories {
		c.categoryMeta[meta.ID] = meta
	}
	for _, doc := range docs {
		c.byID[doc.ID] = doc
		c.byCategory[doc.Category] = append(c.byCategory[doc.Category], doc)
	}
	return c
}

// ByID returns the document with the given id and whether it was found.
func (c *Catalog) ByID(documentID string) (domain.Document, bool) {
	doc, ok := c.byID[documentID]
	return doc, ok
}

// ByCategory returns documents in a category, in ingestion order. A copy
// is returned so callers cannot mutate the catalog's internal slices.
func (c *Catalog) ByCategory(categoryID string) []domain.Document {
	docs := c.byCategory[categoryID]
	out := make([]domain.Document, len(docs))
	copy(out, docs)
	return out
}

// CategoryName returns the bilingual label for categoryID, falling back to
// the id itself when the category is unrecognized.
func (c *Catalog) CategoryName(categoryID string, lang domain.Language) string {
	meta, ok := c.categoryMeta[categoryID]
	if !ok {
		return categoryID
	}
	if lang == domain.LanguageUkrainian {
		return meta.NameUK
	}
	return meta.NameEN
}

// Search returns documents whose title or filename contains query
// case-insensitively, optionally restricted to lang.
func (c *Catalog) Search(query string, lang *domain.Language) []domain.Document {
	q := strings.ToLower(strings.TrimSpace(query))
	var results []domain.Document
	for _, doc := range c.ordered {
		if lang != nil && doc.Language != *lang {
			continue
		}
		if q == "" {
			continue
		}
		if strings.Contains(strings.ToLower(doc.Title), q) || strings.Contains(strings.ToLower(doc.Filename), q) {
			results = append(results, doc)
		}
	}
	return results
}

// Statistics holds the catalog-wide counts spec.md §4.9 requires.
type Statistics struct {
	TotalDocuments  int
	ByLanguage      map[domain.Language]int
	ByCategory      map[string]int
}

// Stats computes totals, per-language, and per-category counts.
func (c *Catalog) Stats() Statistics {
	stats := Statistics{
		TotalDocuments: len(c.ordered),
		ByLanguage:     make(map[domain.Language]int),
		ByCategory:     make(map[string]int),
	}
	for _, doc := range c.ordered {
		stats.ByLanguage[doc.Language]++
		stats.ByCategory[doc.Category]++
	}
	return stats
}

// Documents returns the full ingestion-ordered document list.
func (c *Catalog) Documents() []domain.Document {
	out := make([]domain.Document, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// CategoriesArtifact is the root shape of categories.json (spec.md §6
// artifact #4).
type CategoriesArtifact struct {
	Version         string           `json:"version"`
	GeneratedAt     string           `json:"generated_at"`
	TotalCategories int              `json:"total_categories"`
	Categories      []CategoryEntry  `json:"categories"`
}

// CategoryEntry is one categories.json entry, the static metadata plus the
// document count discovered during the offline build.
type CategoryEntry struct {
	ID            string `json:"id"`
	NameUK        string `json:"name_uk"`
	NameEN        string `json:"name_en"`
	Icon          string `json:"icon"`
	DescriptionUK string `json:"description_uk"`
	DescriptionEN string `json:"description_en"`
	DocumentCount int    `json:"document_count"`
}

// Build assembles the categories.json artifact from the static category
// metadata and the documents discovered by the offline pipeline.
func Build(categories []config.CategoryMeta, docs []domain.Document, now time.Time) CategoriesArtifact {
	counts := make(map[string]int, len(categories))
	for _, doc := range docs {
		counts[doc.Category]++
	}

	entries := make([]CategoryEntry, len(categories))
	for i, meta := range categories {
		entries[i] = CategoryEntry{
			ID:            meta.ID,
			NameUK:        meta.NameUK,
			NameEN:        meta.NameEN,
			Icon:          meta.Icon,
			DescriptionUK: meta.DescriptionUK,
			DescriptionEN: meta.DescriptionEN,
			DocumentCount: counts[meta.ID],
		}
	}

	return CategoriesArtifact{
		Version:         "1.0",
		GeneratedAt:     now.UTC().Format(time.RFC3339),
		TotalCategories: len(entries),
		Categories:      entries,
	}
}
