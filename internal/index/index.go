// Package index maintains the embedding-searchable view of the inventory.
// The index is eventually consistent with the record store: a committed
// write becomes visible to queries only after the next debounced re-index
// pass, never mid-write.
package index

import (
	"fmt"
	"sync"

	"warehouse-rag/internal/domain"
	"warehouse-rag/internal/logger"
)

// Index couples an embedder with a vector store and tracks the chunk set it
// has indexed, so drift between the two can be detected and repaired.
//
// mu guards the embedder's mutable state as well as chunkCount: Prepare
// rewrites the embedder's vocabulary, so queries hold the read side while
// rebuilds hold the write side, and an embed never races a re-prepare.
type Index struct {
	embedder domain.Embedder
	store    domain.VectorStore

	mu         sync.RWMutex
	chunkCount int
}

// New creates an index over the given embedder and backing vector store.
func New(embedder domain.Embedder, store domain.VectorStore) *Index {
	return &Index{embedder: embedder, store: store}
}

// Rebuild replaces the entire index with the given chunk set. The embedder
// is re-prepared over the new corpus first, so local embedders track the
// current vocabulary.
func (ix *Index) Rebuild(chunks []domain.Chunk) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	// An empty dataset clears the index; queries then answer from the
	// no-data placeholder.
	if len(chunks) == 0 {
		if err := ix.store.Clear(); err != nil {
			return err
		}
		ix.chunkCount = 0
		return nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	if err := ix.embedder.Prepare(texts); err != nil {
		return fmt.Errorf("prepare embedder: %w", err)
	}

	vectors := make([][]float64, len(chunks))
	for i := range chunks {
		vec, err := ix.embedder.Embed(chunks[i].Text)
		if err != nil {
			return fmt.Errorf("embed chunk %d/%d for product %d: %w",
				chunks[i].Index, len(chunks), chunks[i].ProductID, err)
		}
		vectors[i] = vec
	}

	if err := ix.store.Init(ix.embedder.Dimension()); err != nil {
		return err
	}
	if err := ix.store.Upsert(chunks, vectors); err != nil {
		return err
	}
	ix.chunkCount = len(chunks)
	return nil
}

// Upsert embeds and stores the given chunks, replacing any prior vectors
// for the same products. Intended for incremental single-product refreshes
// between full rebuilds.
func (ix *Index) Upsert(chunks []domain.Chunk) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	prior, err := ix.store.Count()
	if err != nil {
		return err
	}
	vectors := make([][]float64, len(chunks))
	for i := range chunks {
		vec, err := ix.embedder.Embed(chunks[i].Text)
		if err != nil {
			return err
		}
		vectors[i] = vec
	}
	if err := ix.store.Upsert(chunks, vectors); err != nil {
		return err
	}
	after, err := ix.store.Count()
	if err != nil {
		return err
	}
	ix.chunkCount += after - prior
	return nil
}

// Remove drops all vectors for a given product.
func (ix *Index) Remove(productID int) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	prior, err := ix.store.Count()
	if err != nil {
		return err
	}
	if err := ix.store.Remove(productID); err != nil {
		return err
	}
	after, err := ix.store.Count()
	if err != nil {
		return err
	}
	ix.chunkCount -= prior - after
	return nil
}

// Query embeds the question with the same embedder used at index time and
// returns the k nearest chunks.
func (ix *Index) Query(text string, k int) ([]domain.SearchResult, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	vec, err := ix.embedder.Embed(text)
	if err != nil {
		return nil, err
	}
	return ix.store.Search(vec, k)
}

// CheckConsistency compares the stored vector count with the chunk count
// the index believes it holds. A mismatch is ErrIndexInconsistent; the
// coordinator responds with a forced full rebuild rather than partial
// repair.
func (ix *Index) CheckConsistency() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	stored, err := ix.store.Count()
	if err != nil {
		return err
	}
	if stored != ix.chunkCount {
		logger.Warn("index drift: %d vectors stored, %d chunks expected", stored, ix.chunkCount)
		return fmt.Errorf("%w: %d vectors vs %d chunks", domain.ErrIndexInconsistent, stored, ix.chunkCount)
	}
	return nil
}
