// Package prompt assembles chat and grounded-RAG prompts for the
// Generator, and cleans its raw completions, per spec.md §4.7.
//
// The chat-message and header formatting is new (grounded on the general
// pack convention every LLM-facing example follows: fmt.Sprintf-assembled
// role-labeled prompts, e.g. the teacher's own app/agent/agent.go). Token
// budget truncation is backed by the TokenCounter interface, whose
// tiktoken-go-based implementation lives in counter.go, itself grounded on
// agent.CountTokensLlama's tiktoken.EncodingForModel call.
package prompt

import (
	"fmt"
	"strings"

	"github.com/uni-regulations/rag-core/internal/domain"
	"github.com/uni-regulations/rag-core/internal/ports"
	"github.com/uni-regulations/rag-core/internal/ragerr"
)

const (
	defaultContextMax = 512
	defaultReserve    = 100
	maxMessageLength  = 2000
)

// Message is one turn of chat history.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Config holds PromptBuilder's token budget, per spec.md §4.7.
type Config struct {
	ContextMaxTokens int
	ReserveTokens    int
}

// Builder assembles and cleans prompts.
type Builder struct {
	counter ports.TokenCounter
	cfg     Config
}

// New constructs a Builder. Zero-valued Config fields fall back to the
// spec's literal defaults (512/100).
func New(counter ports.TokenCounter, cfg Config) *Builder {
	if cfg.ContextMaxTokens <= 0 {
		cfg.ContextMaxTokens = defaultContextMax
	}
	if cfg.ReserveTokens <= 0 {
		cfg.ReserveTokens = defaultReserve
	}
	return &Builder{counter: counter, cfg: cfg}
}

// ValidateMessage checks the non-empty, ≤2000-character-after-trim
// invariant spec.md §4.7 requires of a new user message.
func ValidateMessage(msg string) error {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		return fmt.Errorf("prompt: message is empty: %w", ragerr.ErrInvalidArgument)
	}
	if len([]rune(trimmed)) > maxMessageLength {
		return fmt.Errorf("prompt: message exceeds %d characters: %w", maxMessageLength, ragerr.ErrInvalidArgument)
	}
	return nil
}

// BuildChatPrompt assembles the no-retrieval-context chat prompt: history
// formatted as "User: {content}"/"Assistant: {content}" lines, truncated
// from the front to fit the token budget while always retaining the most
// recent message, followed by the new message and the generation cue.
func (b *Builder) BuildChatPrompt(history []Message, newMessage string) (string, error) {
	budget := b.cfg.ContextMaxTokens - b.cfg.ReserveTokens

	kept := history
	for len(kept) > 1 {
		text := formatHistory(kept) + "\nUser: " + newMessage + "\nAssistant:"
		tokens, err := b.counter.Count(text)
		if err != nil {
			return "", fmt.Errorf("prompt: count tokens: %w", err)
		}
		if tokens <= budget {
			break
		}
		kept = kept[1:]
	}

	prompt := formatHistory(kept)
	if prompt != "" {
		prompt += "\n"
	}
	prompt += "User: " + newMessage + "\nAssistant:"
	return prompt, nil
}

func formatHistory(messages []Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		label := "User"
		if m.Role == "assistant" {
			label = "Assistant"
		}
		lines = append(lines, label+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

// groundedHeader instructs the model to answer only from the provided
// sources. Wording is deliberately language-agnostic per spec.md §4.7.
const groundedHeader = "Answer the question using only the information in the sources below. If the sources do not contain the answer, say so."

// BuildGroundedPrompt assembles the RAG prompt: the grounded header, one
// numbered [Source i]: block per chunk in retrieval order, the question,
// and the generation cue.
func (b *Builder) BuildGroundedPrompt(chunks []domain.ScoredChunk, question string) string {
	var sb strings.Builder
	sb.WriteString(groundedHeader)
	sb.WriteString("\n\n")
	for i, sc := range chunks {
		fmt.Fprintf(&sb, "[Source %d]:\n%s\n\n", i+1, sc.Chunk.Text)
	}
	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\nAssistant:")
	return sb.String()
}

var rolePrefixes = []string{"Assistant:", "Bot:", "AI:", "GPT:"}

// ExtractResponse cleans a raw generation: truncates at the first "\nUser:"
// or "\nAssistant:" marker, strips a leading role prefix, and trims
// whitespace, per spec.md §4.7.
func ExtractResponse(raw string) string {
	text := raw
	if idx := strings.Index(text, "\nUser:"); idx >= 0 {
		text = text[:idx]
	}
	if idx := strings.Index(text, "\nAssistant:"); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	for _, prefix := range rolePrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimSpace(text[len(prefix):])
			break
		}
	}
	return text
}
