// Package service couples the indexing loop and the query path around the
// shared record store. Consistency model: the index is eventually
// consistent with the store: a query racing a write may see the previous
// dataset version, bounded by the watcher's poll interval plus debounce.
package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"warehouse-rag/internal/domain"
	"warehouse-rag/internal/index"
	"warehouse-rag/internal/logger"
	"warehouse-rag/internal/overview"
	"warehouse-rag/internal/projector"
)

// noContextPlaceholder stands in when retrieval finds nothing, so the
// generation capability never receives an empty prompt body.
const noContextPlaceholder = "No inventory data found."

// contextSeparator delimits retrieved chunks inside the grounding context.
const contextSeparator = "\n\n---\n\n"

// Coordinator answers questions against the indexed inventory and keeps the
// index synchronized with the record store.
type Coordinator struct {
	store     domain.RecordStore
	chunker   domain.Chunker
	index     *index.Index
	generator domain.Generator
	topK      int
	refDate   func() time.Time

	mu      sync.RWMutex
	chunks  []domain.Chunk
	summary overview.Summary
}

// New creates a coordinator. refDate supplies the projector's reference
// date; pass nil for the wall clock.
func New(
	store domain.RecordStore,
	chunker domain.Chunker,
	ix *index.Index,
	generator domain.Generator,
	topK int,
	refDate func() time.Time,
) *Coordinator {
	if topK <= 0 {
		topK = 5
	}
	if refDate == nil {
		refDate = time.Now
	}
	return &Coordinator{
		store:     store,
		chunker:   chunker,
		index:     ix,
		generator: generator,
		topK:      topK,
		refDate:   refDate,
	}
}

// Reindex rebuilds the full embedding index from the current record set:
// load, project, chunk, embed, upsert. Reads the store only; never writes.
func (c *Coordinator) Reindex() error {
	records, err := c.store.Load()
	if err != nil {
		return err
	}
	docs := projector.ProjectAll(records, c.refDate())

	var chunks []domain.Chunk
	for _, doc := range docs {
		cs, err := c.chunker.Chunk(doc)
		if err != nil {
			return fmt.Errorf("chunk product %d: %w", doc.ProductID, err)
		}
		chunks = append(chunks, cs...)
	}

	if err := c.index.Rebuild(chunks); err != nil {
		return err
	}

	summary := overview.Summarize(docs)
	c.mu.Lock()
	c.chunks = chunks
	c.summary = summary
	c.mu.Unlock()

	logger.Info("reindexed: %s (%d chunks)", summary, len(chunks))
	return nil
}

// Run consumes watcher signals and re-indexes until the context is
// canceled. An inconsistent index triggers one forced rebuild on the next
// signal either way, so a failed pass self-heals.
func (c *Coordinator) Run(ctx context.Context, changes <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
			if err := c.index.CheckConsistency(); err != nil {
				logger.Warn("forcing full re-index: %v", err)
			}
			if err := c.Reindex(); err != nil {
				logger.Warn("re-index failed: %v", err)
			}
		}
	}
}

// Summary returns the overview computed by the most recent re-index.
func (c *Coordinator) Summary() overview.Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.summary
}

// Answer retrieves grounding context for the question, builds the prompt,
// and invokes the generation capability. Generation failures surface as
// ErrGenerationFailed and are not retried here.
func (c *Coordinator) Answer(ctx context.Context, question string) (domain.Query, error) {
	q := domain.Query{
		ID:       uuid.NewString(),
		Question: question,
	}
	logger.Debug("query %s: %q", q.ID, question)

	results, err := c.retrieve(question)
	if err != nil {
		return q, err
	}

	grounding := noContextPlaceholder
	if len(results) > 0 {
		parts := make([]string, len(results))
		for i, r := range results {
			parts[i] = r.Chunk.Text
		}
		grounding = strings.Join(parts, contextSeparator)
	}

	answer, err := c.generator.Generate(ctx, buildPrompt(grounding, question))
	if err != nil {
		return q, err
	}
	q.Answer = answer
	return q, nil
}

// retrieve runs the vector search, falling back to lexical overlap ranking
// when the question embeds to a zero vector (every token out-of-vocabulary)
// or nothing scores above zero.
func (c *Coordinator) retrieve(question string) ([]domain.SearchResult, error) {
	c.mu.RLock()
	empty := len(c.chunks) == 0
	c.mu.RUnlock()
	if empty {
		return nil, nil
	}
	results, err := c.index.Query(question, c.topK)
	if err != nil {
		return nil, err
	}
	useful := false
	for _, r := range results {
		if r.Score > 1e-9 {
			useful = true
			break
		}
	}
	if !useful {
		logger.Debug("vector search empty, using lexical fallback")
		return c.lexicalSearch(question), nil
	}
	return results, nil
}

func buildPrompt(grounding, question string) string {
	return fmt.Sprintf(`You are a warehouse management AI assistant. Use the following real-time inventory data to answer the query.

CURRENT INVENTORY DATA:
%s

USER QUERY: %s

Provide a helpful response that:
1. Directly answers the question with specific details (product IDs, names, stock levels)
2. Highlights urgent issues (low stock, expiring items)
3. Provides actionable recommendations
4. Uses exact numbers and dates from the data

RESPONSE:`, grounding, question)
}

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// lexicalSearch ranks chunks by token-set overlap (Ochiai coefficient).
func (c *Coordinator) lexicalSearch(question string) []domain.SearchResult {
	c.mu.RLock()
	chunks := c.chunks
	c.mu.RUnlock()

	qset := tokenSet(question)
	scored := make([]domain.SearchResult, len(chunks))
	for i, ch := range chunks {
		scored[i] = domain.SearchResult{Chunk: ch, Score: ochiai(qset, ch.Text)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	k := c.topK
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}

func tokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// ochiai is |A∩B| / sqrt(|A|·|B|) over token sets.
func ochiai(qset map[string]struct{}, text string) float64 {
	tset := tokenSet(text)
	if len(qset) == 0 || len(tset) == 0 {
		return 0
	}
	inter := 0
	for t := range tset {
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	return float64(inter) / (sqrtf(float64(len(qset))) * sqrtf(float64(len(tset))))
}

func sqrtf(x float64) float64 {
	if x <= 0 {
		return 0
	}
	z := x
	for i := 0; i < 8; i++ {
		z = 0.5 * (z + x/z)
	}
	return z
}
