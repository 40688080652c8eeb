package adapter

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hfguide/hfguide/pkg/model"
)

// MemoryIndex is an exact, brute-force in-memory VectorIndex. It follows the
// same contract as the Milvus index (load before use, whole-batch dimension
// validation, ascending L2 distance, insertion-order tie break) and serves
// tests and local runs without a Milvus deployment.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	chunks    []*model.GuidelineChunk
	pending   []*model.GuidelineChunk
	loaded    bool
}

func NewMemoryIndex(dimension int) *MemoryIndex {
	return &MemoryIndex{dimension: dimension}
}

func (m *MemoryIndex) Create(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = nil
	m.pending = nil
	m.loaded = false
	return nil
}

func (m *MemoryIndex) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = true
	return nil
}

func (m *MemoryIndex) Insert(ctx context.Context, chunks []*model.GuidelineChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		return goerr.Wrap(model.ErrIndexNotLoaded, "insert before load")
	}

	// Validate the whole batch first; prior content must stay intact when a
	// bad embedding is rejected.
	for _, c := range chunks {
		if len(c.Embedding) != m.dimension {
			return goerr.Wrap(model.ErrDimensionMismatch, "rejecting batch",
				goerr.V("chunk_id", c.ID),
				goerr.V("want", m.dimension),
				goerr.V("got", len(c.Embedding)))
		}
	}

	m.pending = append(m.pending, chunks...)
	return nil
}

func (m *MemoryIndex) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, m.pending...)
	m.pending = nil
	return nil
}

func (m *MemoryIndex) Search(ctx context.Context, embedding []float32, topK int) ([]*model.RetrievalResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.loaded {
		return nil, goerr.Wrap(model.ErrIndexNotLoaded, "search before load")
	}
	if len(embedding) != m.dimension {
		return nil, goerr.Wrap(model.ErrDimensionMismatch, "query vector",
			goerr.V("want", m.dimension), goerr.V("got", len(embedding)))
	}
	if topK <= 0 || len(m.chunks) == 0 {
		return nil, nil
	}

	results := make([]*model.RetrievalResult, 0, len(m.chunks))
	for _, c := range m.chunks {
		results = append(results, &model.RetrievalResult{
			ChunkID: c.ID,
			Kind:    c.Kind,
			Text:    c.Text,
			Score:   l2Distance(embedding, c.Embedding),
		})
	}

	// Stable sort keeps insertion order for equal distances, so a frozen
	// index is deterministic.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})

	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

func (m *MemoryIndex) Dimension() int {
	return m.dimension
}

func (m *MemoryIndex) Close() error {
	return nil
}

// l2Distance returns the squared Euclidean distance. Milvus reports squared
// L2 as well, and the square preserves ordering.
func l2Distance(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
