package index

import (
	"errors"
	"sort"
	"sync"

	"warehouse-rag/internal/domain"
)

// MemoryStore is an in-memory vector store using brute-force cosine
// similarity. Entries are owned per product: upserting chunks for a product
// first drops every prior entry with the same ProductID, so a superseded
// document version never pollutes retrieval results.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	entries   []memoryEntry
	nextSeq   int
}

type memoryEntry struct {
	chunk  domain.Chunk
	vector []float64
	seq    int
}

var _ domain.VectorStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory vector store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Init resets the store for vectors of the given dimension.
func (s *MemoryStore) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.entries = nil
	s.nextSeq = 0
	return nil
}

// Upsert stores one vector per chunk, replacing any prior vectors for the
// same ProductIDs.
func (s *MemoryStore) Upsert(chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	replaced := make(map[int]bool, len(chunks))
	for _, ch := range chunks {
		replaced[ch.ProductID] = true
	}
	kept := s.entries[:0]
	for _, e := range s.entries {
		if !replaced[e.chunk.ProductID] {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	for i := range chunks {
		s.entries = append(s.entries, memoryEntry{
			chunk:  chunks[i],
			vector: vectors[i],
			seq:    s.nextSeq,
		})
		s.nextSeq++
	}
	return nil
}

// Remove drops all vectors for a given product.
func (s *MemoryStore) Remove(productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.chunk.ProductID != productID {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

// Search returns the topK nearest chunks by cosine similarity. Score ties
// are broken by chunk insertion order.
func (s *MemoryStore) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	type scored struct {
		entry memoryEntry
		score float64
	}
	all := make([]scored, len(s.entries))
	for i, e := range s.entries {
		all[i] = scored{entry: e, score: dot(e.vector, vector)}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].entry.seq < all[j].entry.seq
	})
	if topK > len(all) {
		topK = len(all)
	}
	results := make([]domain.SearchResult, 0, topK)
	for _, sc := range all[:topK] {
		results = append(results, domain.SearchResult{Chunk: sc.entry.chunk, Score: sc.score})
	}
	return results, nil
}

// Count returns the number of stored vectors.
func (s *MemoryStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Clear drops all entries.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.nextSeq = 0
	return nil
}

// dot assumes L2-normalized vectors, making this cosine similarity.
func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
