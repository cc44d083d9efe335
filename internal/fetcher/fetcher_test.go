package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-regulations/rag-core/internal/domain"
	"github.com/uni-regulations/rag-core/internal/ragerr"
)

const sampleIndex = `
<html><body>
<h2>Загальна діяльність</h2>
<a href="/docs/a.pdf">Order A</a>
<h2>Антикорупційна діяльність</h2>
<a href="https://example.org/docs/b.docx">Order B</a>
<a href="https://drive.google.com/file/d/abc123/view">Shared Order</a>
</body></html>`

func TestDiscoverLinks(t *testing.T) {
	links, err := discoverLinks([]byte(sampleIndex), "https://example.org/index.html")
	require.NoError(t, err)
	require.Len(t, links, 3)

	assert.Equal(t, "https://example.org/docs/a.pdf", links[0].URL)
	assert.Equal(t, "general_operations", links[0].Category)

	assert.Equal(t, "https://example.org/docs/b.docx", links[1].URL)
	assert.Equal(t, "anti_corruption", links[1].Category)

	assert.Equal(t, "anti_corruption", links[2].Category)
}

func TestResolveShareLink(t *testing.T) {
	resolved, err := resolveShareLink("https://drive.google.com/file/d/abc123/view")
	require.NoError(t, err)
	assert.Equal(t, "https://drive.google.com/uc?export=download&id=abc123", resolved)

	_, err = resolveShareLink("https://drive.google.com/drive/folders/xyz")
	assert.ErrorIs(t, err, ragerr.ErrUnknownShareLink)
}

func TestIsShareHost(t *testing.T) {
	assert.True(t, isShareHost("https://drive.google.com/file/d/abc/view"))
	assert.True(t, isShareHost("https://docs.google.com/forms/d/xyz"))
	assert.False(t, isShareHost("https://example.org/a.pdf"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Order_ A", sanitizeFilename("Order: A"))
	assert.Equal(t, "a b", sanitizeFilename("a   b"))
	long := sanitizeFilename(repeatWordsForTest("x", 500))
	assert.LessOrEqual(t, len([]rune(long)), 200)
}

func repeatWordsForTest(word string, n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += word
	}
	return s
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, domain.LanguageUkrainian, detectLanguage("Наказ про порядок"))
	assert.Equal(t, domain.LanguageEnglish, detectLanguage("Order on procedure"))
}

func TestSniffExtension(t *testing.T) {
	assert.Equal(t, ".pdf", sniffExtension([]byte("%PDF-1.4 rest")))
	assert.Equal(t, ".docx", sniffExtension([]byte("PK\x03\x04rest")))
	assert.Equal(t, "", sniffExtension([]byte("plain text")))
}
