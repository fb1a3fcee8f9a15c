package chunker

import (
	"strings"

	"warehouse-rag/internal/domain"
)

// TokenChunker splits document text into chunks bounded by a token budget.
// Tokens are whitespace-delimited words; line boundaries are preserved so a
// chunk never splits a rendered field in half. A single line longer than
// the budget is emitted as one whole over-budget chunk rather than broken
// mid-field. Chunking is deterministic: the same text always yields the
// same chunk sequence.
type TokenChunker struct {
	maxTokens int
}

var _ domain.Chunker = (*TokenChunker)(nil)

// NewTokenChunker creates a chunker with the given token budget.
func NewTokenChunker(maxTokens int) *TokenChunker {
	if maxTokens <= 0 {
		maxTokens = 400
	}
	return &TokenChunker{maxTokens: maxTokens}
}

// Chunk splits the document into sequentially indexed chunks, each tagged
// with the owning ProductID.
func (c *TokenChunker) Chunk(doc domain.DerivedDocument) ([]domain.Chunk, error) {
	text := strings.TrimSpace(doc.Text)
	if text == "" {
		return nil, nil
	}

	lines := strings.Split(text, "\n")
	var chunks []domain.Chunk
	var current []string
	tokens := 0
	idx := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, domain.Chunk{
			ProductID: doc.ProductID,
			Index:     idx,
			Text:      strings.Join(current, "\n"),
		})
		idx++
		current = nil
		tokens = 0
	}

	for _, line := range lines {
		n := len(strings.Fields(line))
		if tokens+n > c.maxTokens && len(current) > 0 {
			flush()
		}
		current = append(current, line)
		tokens += n
	}
	flush()

	return chunks, nil
}
