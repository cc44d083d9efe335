// Package chunker splits extracted document text into overlapping,
// sentence-aligned Chunks. It is grounded on kxddry-rag-text-search's
// SentenceChunker for the overall emit-as-you-walk shape and on
// kk7453603-AIAssistent's chunking.Splitter for the overlap-as-step
// arithmetic, adapted here from sentence-count windows to the spec's
// token-budget windows (spec.md §4.3).
package chunker

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/uni-regulations/rag-core/internal/domain"
)

// Config holds the three tunables spec.md §4.3 names. Chunker owns no
// external dependency; its token estimate (char-length / 3.5) is the sole
// authority for token accounting inside this package and must stay stable
// across runs for the offline pipeline's idempotence property to hold.
type Config struct {
	TargetTokens   int
	OverlapTokens  int
	MinChunkTokens int
}

// Chunker splits Document text into Chunks per Config.
type Chunker struct {
	cfg      Config
	splitter *regexp.Regexp
}

// New constructs a Chunker. A zero or negative TargetTokens or
// MinChunkTokens falls back to 250 or 100; a negative OverlapTokens falls
// back to 50, while zero is kept and disables the overlap tail.
func New(cfg Config) *Chunker {
	if cfg.TargetTokens <= 0 {
		cfg.TargetTokens = 250
	}
	if cfg.OverlapTokens < 0 {
		cfg.OverlapTokens = 50
	}
	if cfg.MinChunkTokens <= 0 {
		cfg.MinChunkTokens = 100
	}
	return &Chunker{
		cfg: cfg,
		// Splits on '.', '!', '?' followed by whitespace. No language-
		// specific logic, per spec.
		splitter: regexp.MustCompile(`[^.!?]*[.!?](?:\s+|$)`),
	}
}

// EstimateTokens is the chunker's sole token-accounting authority: ceil of
// the rune count divided by 3.5.
func EstimateTokens(text string) int {
	n := len([]rune(text))
	if n == 0 {
		return 0
	}
	// ceil(n / 3.5) computed in integer arithmetic: ceil(2n / 7).
	return (2*n + 6) / 7
}

func splitSentences(text string, splitter *regexp.Regexp) []string {
	locs := splitter.FindAllStringIndex(text, -1)
	sentences := make([]string, 0, len(locs))
	consumed := 0
	for _, loc := range locs {
		// Text skipped between matches only holds terminators that are not
		// followed by whitespace ("3.5"), so it belongs to this sentence.
		t := strings.TrimSpace(text[consumed:loc[1]])
		consumed = loc[1]
		if t != "" {
			sentences = append(sentences, t)
		}
	}
	// Anything left over after the last terminator (no trailing
	// punctuation) is still a sentence.
	if consumed < len(text) {
		tail := strings.TrimSpace(text[consumed:])
		if tail != "" {
			sentences = append(sentences, tail)
		}
	}
	return sentences
}

// overlapTail returns the last n space-separated tokens of text, joined by
// single spaces. "Tokens" here means words (strings.Fields), distinct from
// the chunker's own char/3.5 token estimator, per the spec's explicit
// overlap-tail definition.
func overlapTail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[len(words)-n:], " ")
}

// Chunk splits doc.Text into Chunks. It guarantees at least one chunk for
// any document containing a sentence whose own text is at least
// MinChunkTokens; for pathological all-tiny-sentence input it may return
// zero chunks, which is a logged condition, not an error.
func (c *Chunker) Chunk(doc domain.Document, text string) []domain.Chunk {
	sentences := splitSentences(text, c.splitter)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []domain.Chunk
	var current strings.Builder
	currentTokens := 0
	idx := 0

	flush := func() {
		content := strings.TrimSpace(current.String())
		if content == "" {
			return
		}
		chunks = append(chunks, domain.Chunk{
			ChunkID:     chunkID(doc.ID, idx),
			DocumentID:  doc.ID,
			Text:        content,
			Tokens:      EstimateTokens(content),
			ChunkIndex:  idx,
			Category:    doc.Category,
			Language:    doc.Language,
			DocTitle:    doc.Title,
			DocFilename: doc.Filename,
			SourceURL:   doc.SourceURL,
		})
		idx++
	}

	for i, sentence := range sentences {
		isLast := i == len(sentences)-1

		if current.Len() == 0 {
			current.WriteString(sentence)
			currentTokens = EstimateTokens(sentence)
			if isLast {
				if currentTokens >= c.cfg.MinChunkTokens {
					flush()
				}
			}
			continue
		}

		if currentTokens+EstimateTokens(sentence) > c.cfg.TargetTokens {
			prev := current.String()
			flush()

			tail := overlapTail(prev, c.cfg.OverlapTokens)
			current.Reset()
			if tail != "" {
				current.WriteString(tail)
				current.WriteString(" ")
			}
			current.WriteString(sentence)
			currentTokens = EstimateTokens(current.String())

			if isLast && currentTokens >= c.cfg.MinChunkTokens {
				flush()
			}
			continue
		}

		current.WriteString(" ")
		current.WriteString(sentence)
		currentTokens = EstimateTokens(current.String())

		if isLast && currentTokens >= c.cfg.MinChunkTokens {
			flush()
		}
	}

	return chunks
}

func chunkID(documentID string, index int) string {
	return documentID + "_chunk_" + strconv.Itoa(index)
}
