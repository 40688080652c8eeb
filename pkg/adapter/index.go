package adapter

import (
	"context"

	"github.com/hfguide/hfguide/pkg/model"
)

// VectorIndex is the persistent store of guideline chunks with approximate
// nearest-neighbor search. Implementations must reject inserts and searches
// before Load, and must not append any row of a batch whose dimensions
// disagree with the schema.
type VectorIndex interface {
	// Create (re)initializes an empty collection. If one already exists under
	// the configured name it is dropped first, so ingestion always starts
	// clean.
	Create(ctx context.Context) error

	// Load brings the collection into a searchable state. Required before
	// Insert and Search.
	Load(ctx context.Context) error

	// Insert appends chunks. The caller batches; implementations validate
	// every embedding dimension before appending anything.
	Insert(ctx context.Context, chunks []*model.GuidelineChunk) error

	// Flush durably commits pending inserts so subsequent searches observe
	// the data.
	Flush(ctx context.Context) error

	// Search returns up to topK entries ordered by ascending distance.
	// An empty loaded collection yields an empty slice, not an error.
	Search(ctx context.Context, embedding []float32, topK int) ([]*model.RetrievalResult, error)

	// Dimension returns the declared vector dimension.
	Dimension() int

	Close() error
}
