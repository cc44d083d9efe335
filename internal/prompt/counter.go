package prompt

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/uni-regulations/rag-core/internal/ports"
)

// TiktokenCounter implements ports.TokenCounter using a real BPE
// tokenizer, directly grounded on app/agent/agent.go's
// CountTokensLlama, which calls tiktoken.EncodingForModel("gpt-3.5-turbo")
// once and reuses it. This is deliberately a different accounting system
// from the chunker's char/3.5 estimate: the chunker must never call this
// counter, per §9 Design Notes.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter builds a counter for the given model name (an
// opaque tiktoken encoding identifier, e.g. "gpt-3.5-turbo").
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("prompt: load tiktoken encoding for %s: %w", model, err)
	}
	return &TiktokenCounter{enc: enc}, nil
}

var _ ports.TokenCounter = (*TiktokenCounter)(nil)

// Count returns the number of tokens text encodes to.
func (c *TiktokenCounter) Count(text string) (int, error) {
	tokens := c.enc.Encode(text, nil, nil)
	return len(tokens), nil
}
