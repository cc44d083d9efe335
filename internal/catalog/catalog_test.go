package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-regulations/rag-core/internal/config"
	"github.com/uni-regulations/rag-core/internal/domain"
)

func sampleDocs() []domain.Document {
	return []domain.Document{
		{ID: "d1", Title: "Order on safety", Filename: "order_safety.pdf", Category: "safety", Language: domain.LanguageEnglish},
		{ID: "d2", Title: "Наказ про безпеку", Filename: "nakaz_bezpeka.pdf", Category: "safety", Language: domain.LanguageUkrainian},
		{ID: "d3", Title: "Admission rules", Filename: "admission.pdf", Category: "educational_process", Language: domain.LanguageEnglish},
	}
}

func TestCatalog_ByIDAndCategory(t *testing.T) {
	c := New(sampleDocs(), config.DefaultCategories())

	doc, ok := c.ByID("d1")
	require.True(t, ok)
	assert.Equal(t, "Order on safety", doc.Title)

	_, ok = c.ByID("missing")
	assert.False(t, ok)

	safety := c.ByCategory("safety")
	require.Len(t, safety, 2)
	assert.Equal(t, "d1", safety[0].ID)
	assert.Equal(t, "d2", safety[1].ID)
}

func TestCatalog_CategoryNameFallback(t *testing.T) {
	c := New(sampleDocs(), config.DefaultCategories())
	assert.Equal(t, "Safety", c.CategoryName("safety", domain.LanguageEnglish))
	assert.Equal(t, "Безпека життєдіяльності", c.CategoryName("safety", domain.LanguageUkrainian))
	assert.Equal(t, "unknown_id", c.CategoryName("unknown_id", domain.LanguageEnglish))
}

func TestCatalog_SearchCaseInsensitiveSubstring(t *testing.T) {
	c := New(sampleDocs(), config.DefaultCategories())
	results := c.Search("SAFETY", nil)
	require.Len(t, results, 1)
	assert.Equal(t, "d1", results[0].ID)

	uk := domain.LanguageUkrainian
	results = c.Search("nakaz", &uk)
	require.Len(t, results, 1)
	assert.Equal(t, "d2", results[0].ID)
}

func TestCatalog_Stats(t *testing.T) {
	c := New(sampleDocs(), config.DefaultCategories())
	stats := c.Stats()
	assert.Equal(t, 3, stats.TotalDocuments)
	assert.Equal(t, 2, stats.ByCategory["safety"])
	assert.Equal(t, 2, stats.ByLanguage[domain.LanguageEnglish])
}

func TestBuild_CategoriesArtifact(t *testing.T) {
	artifact := Build(config.DefaultCategories(), sampleDocs(), time.Unix(0, 0))
	assert.Equal(t, "1.0", artifact.Version)
	assert.Equal(t, 12, artifact.TotalCategories)

	var safetyCount int
	for _, entry := range artifact.Categories {
		if entry.ID == "safety" {
			safetyCount = entry.DocumentCount
		}
	}
	assert.Equal(t, 2, safetyCount)
}
