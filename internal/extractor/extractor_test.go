package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/uni-regulations/rag-core/internal/domain"
)

func TestNormalize_CollapsesBlankLinesAndSpaces(t *testing.T) {
	input := "A  \n\n\n\nB"
	assert.Equal(t, "A\n\nB", normalize(input))
}

func TestNormalize_TrimsEdges(t *testing.T) {
	assert.Equal(t, "hello", normalize("  \n hello \n  "))
}

func TestNormalize_CollapsesHorizontalSpaces(t *testing.T) {
	assert.Equal(t, "a b c", normalize("a    b\tc"))
}

func TestExtract_UnknownType(t *testing.T) {
	e := New()
	_, err := e.Extract(domain.Document{Type: domain.DocumentUnknown}, []byte("anything"))
	assert.Error(t, err)
}
