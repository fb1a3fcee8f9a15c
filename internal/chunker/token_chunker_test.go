package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-rag/internal/domain"
)

func TestChunk_SmallDocSingleChunk(t *testing.T) {
	c := NewTokenChunker(400)
	doc := domain.DerivedDocument{
		ProductID: 11023,
		Text:      "Product Information:\nProduct ID: 11023\nCurrent Stock: 7 units (CRITICAL LOW STOCK)",
	}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 11023, chunks[0].ProductID)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, doc.Text, chunks[0].Text)
}

func TestChunk_RespectsTokenBudget(t *testing.T) {
	c := NewTokenChunker(10)
	var lines []string
	for i := 0; i < 12; i++ {
		lines = append(lines, fmt.Sprintf("line %d has exactly five tokens", i))
	}
	doc := domain.DerivedDocument{ProductID: 1, Text: strings.Join(lines, "\n")}

	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
		assert.LessOrEqual(t, len(strings.Fields(ch.Text)), 10)
	}
	// No content may be lost across the split.
	assert.Equal(t, doc.Text, joinChunks(chunks))
}

func TestChunk_NeverSplitsALine(t *testing.T) {
	// A single line over budget still becomes one whole chunk, and it never
	// merges with neighboring lines.
	c := NewTokenChunker(3)
	doc := domain.DerivedDocument{ProductID: 1, Text: "short line\none two three four five six\ntail"}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "one two three four five six", chunks[1].Text)
}

func TestChunk_EmptyDoc(t *testing.T) {
	c := NewTokenChunker(400)
	chunks, err := c.Chunk(domain.DerivedDocument{ProductID: 1, Text: "  \n "})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunk_Deterministic(t *testing.T) {
	c := NewTokenChunker(5)
	doc := domain.DerivedDocument{
		ProductID: 42,
		Text:      "alpha beta gamma\ndelta epsilon zeta\neta theta iota kappa",
	}
	a, err := c.Chunk(doc)
	require.NoError(t, err)
	b, err := c.Chunk(doc)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func joinChunks(chunks []domain.Chunk) string {
	parts := make([]string, len(chunks))
	for i, ch := range chunks {
		parts[i] = ch.Text
	}
	return strings.Join(parts, "\n")
}
