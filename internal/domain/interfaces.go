package domain

import "context"

// Embedder converts free text into a numeric vector representation.
// The same embedder must be used at index time and query time so the vector
// spaces match. Implementations may require a preparation phase over the
// corpus (the local TF-IDF embedder does; remote embedders do not).
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}

// Chunker splits a derived document into chunks suitable for embedding.
// Chunking is deterministic: the same text always yields the same sequence.
type Chunker interface {
	Chunk(doc DerivedDocument) ([]Chunk, error)
}

// VectorStore persists chunk vectors and supports similarity search.
// Vectors are owned per product: upserting chunks for a product replaces any
// prior vectors for the same ProductID so stale entries never pollute results.
type VectorStore interface {
	Init(dimension int) error
	Upsert(chunks []Chunk, vectors [][]float64) error
	Remove(productID int) error
	Search(vector []float64, topK int) ([]SearchResult, error)
	Count() (int, error)
	Clear() error
}

// Generator produces an answer from a grounded prompt. It is treated as a
// black box; callers bound it with a context deadline.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RecordStore is the authoritative table of inventory records.
// ReplaceAll is the sole write primitive and must be atomic.
type RecordStore interface {
	Load() ([]InventoryRecord, error)
	ReplaceAll(records []InventoryRecord) error
	ApplyFieldUpdate(cmd UpdateCommand) (*UpdateResult, error)
}
