package adapter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hfguide/hfguide/pkg/adapter"
	"github.com/hfguide/hfguide/pkg/model"
)

func newLoadedIndex(t *testing.T, dim int) *adapter.MemoryIndex {
	t.Helper()
	index := adapter.NewMemoryIndex(dim)
	gt.NoError(t, index.Create(context.Background()))
	gt.NoError(t, index.Load(context.Background()))
	return index
}

func chunk(id string, embedding ...float32) *model.GuidelineChunk {
	return &model.GuidelineChunk{
		ID:        id,
		Kind:      model.KindOfChunkID(id),
		Text:      "text of " + id,
		Embedding: embedding,
	}
}

func TestMemoryIndexRequiresLoad(t *testing.T) {
	ctx := context.Background()
	index := adapter.NewMemoryIndex(2)

	err := index.Insert(ctx, []*model.GuidelineChunk{chunk("chunk-0", 1, 0)})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrIndexNotLoaded))

	_, err = index.Search(ctx, []float32{1, 0}, 1)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrIndexNotLoaded))
}

func TestMemoryIndexRejectsBadDimension(t *testing.T) {
	ctx := context.Background()
	index := newLoadedIndex(t, 2)

	gt.NoError(t, index.Insert(ctx, []*model.GuidelineChunk{chunk("chunk-0", 0, 0)}))

	// One bad row rejects the whole batch, including its valid rows.
	err := index.Insert(ctx, []*model.GuidelineChunk{
		chunk("chunk-1", 1, 1),
		chunk("chunk-2", 1, 2, 3),
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrDimensionMismatch))

	gt.NoError(t, index.Flush(ctx))
	results, err := index.Search(ctx, []float32{0, 0}, 10)
	gt.NoError(t, err)
	gt.A(t, results).Length(1)
	gt.Equal(t, results[0].ChunkID, "chunk-0")
}

func TestMemoryIndexEmptySearch(t *testing.T) {
	ctx := context.Background()
	index := newLoadedIndex(t, 2)

	results, err := index.Search(ctx, []float32{1, 1}, 5)
	gt.NoError(t, err)
	gt.A(t, results).Length(0)
}

func TestMemoryIndexSelfRetrieval(t *testing.T) {
	ctx := context.Background()
	index := newLoadedIndex(t, 2)

	gt.NoError(t, index.Insert(ctx, []*model.GuidelineChunk{
		chunk("chunk-0", 0, 1),
		chunk("chunk-1", 1, 0),
		chunk("table-0", 5, 5),
	}))
	gt.NoError(t, index.Flush(ctx))

	results, err := index.Search(ctx, []float32{1, 0}, 2)
	gt.NoError(t, err)
	gt.A(t, results).Length(2)
	gt.Equal(t, results[0].ChunkID, "chunk-1")
	gt.Equal(t, results[0].Score, float32(0))
	gt.Equal(t, results[1].ChunkID, "chunk-0")
	gt.Equal(t, results[1].Kind, model.ChunkKindProse)
}

func TestMemoryIndexOrderingAndTopK(t *testing.T) {
	ctx := context.Background()
	index := newLoadedIndex(t, 1)

	gt.NoError(t, index.Insert(ctx, []*model.GuidelineChunk{
		chunk("chunk-0", 3),
		chunk("chunk-1", 1),
		chunk("chunk-2", 2),
	}))
	gt.NoError(t, index.Flush(ctx))

	// A larger topK must extend the smaller result, not reorder it.
	top2, err := index.Search(ctx, []float32{0}, 2)
	gt.NoError(t, err)
	top3, err := index.Search(ctx, []float32{0}, 3)
	gt.NoError(t, err)

	gt.A(t, top2).Length(2)
	gt.A(t, top3).Length(3)
	for i := range top2 {
		gt.Equal(t, top2[i].ChunkID, top3[i].ChunkID)
	}
	gt.Equal(t, top3[0].ChunkID, "chunk-1")
	gt.Equal(t, top3[2].ChunkID, "chunk-0")

	// topK beyond the corpus size returns everything.
	all, err := index.Search(ctx, []float32{0}, 100)
	gt.NoError(t, err)
	gt.A(t, all).Length(3)
}

func TestMemoryIndexTieBreak(t *testing.T) {
	ctx := context.Background()
	index := newLoadedIndex(t, 1)

	gt.NoError(t, index.Insert(ctx, []*model.GuidelineChunk{
		chunk("chunk-0", 1),
		chunk("chunk-1", 1),
	}))
	gt.NoError(t, index.Flush(ctx))

	// Equal distances keep insertion order.
	results, err := index.Search(ctx, []float32{0}, 2)
	gt.NoError(t, err)
	gt.Equal(t, results[0].ChunkID, "chunk-0")
	gt.Equal(t, results[1].ChunkID, "chunk-1")
}

func TestMemoryIndexUnflushedInvisible(t *testing.T) {
	ctx := context.Background()
	index := newLoadedIndex(t, 1)

	gt.NoError(t, index.Insert(ctx, []*model.GuidelineChunk{chunk("chunk-0", 1)}))

	results, err := index.Search(ctx, []float32{1}, 1)
	gt.NoError(t, err)
	gt.A(t, results).Length(0)

	gt.NoError(t, index.Flush(ctx))
	results, err = index.Search(ctx, []float32{1}, 1)
	gt.NoError(t, err)
	gt.A(t, results).Length(1)
}
