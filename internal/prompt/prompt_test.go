package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-regulations/rag-core/internal/domain"
	"github.com/uni-regulations/rag-core/internal/ragerr"
)

// wordCounter is a trivial TokenCounter stand-in for tests: one token per
// whitespace-separated word.
type wordCounter struct{}

func (wordCounter) Count(text string) (int, error) {
	return len(strings.Fields(text)), nil
}

func TestValidateMessage(t *testing.T) {
	assert.NoError(t, ValidateMessage("hello"))
	assert.ErrorIs(t, ValidateMessage("   "), ragerr.ErrInvalidArgument)
	assert.ErrorIs(t, ValidateMessage(strings.Repeat("a", 2001)), ragerr.ErrInvalidArgument)
}

func TestBuildChatPrompt_RetainsAtLeastOneMessage(t *testing.T) {
	b := New(wordCounter{}, Config{ContextMaxTokens: 10, ReserveTokens: 5})
	history := []Message{
		{Role: "user", Content: strings.Repeat("word ", 20)},
		{Role: "assistant", Content: strings.Repeat("word ", 20)},
	}
	out, err := b.BuildChatPrompt(history, "hi")
	require.NoError(t, err)
	assert.Contains(t, out, "User: hi")
	assert.Contains(t, out, "Assistant:")
	assert.Contains(t, out, "Assistant: word")
}

func TestBuildChatPrompt_DropsFromFront(t *testing.T) {
	b := New(wordCounter{}, Config{ContextMaxTokens: 100, ReserveTokens: 90})
	history := []Message{
		{Role: "user", Content: "oldest"},
		{Role: "assistant", Content: strings.Repeat("word ", 15)},
	}
	out, err := b.BuildChatPrompt(history, "newest")
	require.NoError(t, err)
	assert.NotContains(t, out, "oldest")
}

func TestBuildGroundedPrompt(t *testing.T) {
	b := New(wordCounter{}, Config{})
	chunks := []domain.ScoredChunk{
		{Chunk: domain.Chunk{Text: "first chunk text"}},
		{Chunk: domain.Chunk{Text: "second chunk text"}},
	}
	out := b.BuildGroundedPrompt(chunks, "what is x?")
	assert.Contains(t, out, "[Source 1]:\nfirst chunk text")
	assert.Contains(t, out, "[Source 2]:\nsecond chunk text")
	assert.Contains(t, out, "Question: what is x?")
	assert.True(t, strings.Index(out, "[Source 1]") < strings.Index(out, "[Source 2]"))
}

func TestExtractResponse(t *testing.T) {
	assert.Equal(t, "the answer", ExtractResponse("Assistant: the answer\nUser: next question"))
	assert.Equal(t, "plain answer", ExtractResponse("  plain answer  "))
	assert.Equal(t, "answer", ExtractResponse("Bot: answer\nAssistant: ignored"))
}
