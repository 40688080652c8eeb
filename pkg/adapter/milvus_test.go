package adapter_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hfguide/hfguide/pkg/adapter"
	"github.com/hfguide/hfguide/pkg/model"
)

func setupMilvus(t *testing.T, dim int) *adapter.MilvusIndex {
	addr := os.Getenv("TEST_MILVUS_ADDR")
	if addr == "" {
		t.Skip("TEST_MILVUS_ADDR is not set")
	}

	index, err := adapter.NewMilvusIndex(context.Background(), adapter.MilvusConfig{
		Address:    addr,
		Collection: fmt.Sprintf("hfguide_test_%d", rand.Int63()),
		Dimension:  dim,
	})
	gt.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	return index
}

func TestMilvusRoundTrip(t *testing.T) {
	ctx := context.Background()
	index := setupMilvus(t, 4)

	gt.NoError(t, index.Create(ctx))
	gt.NoError(t, index.Load(ctx))

	gt.NoError(t, index.Insert(ctx, []*model.GuidelineChunk{
		{ID: "chunk-0", Kind: model.ChunkKindProse, Text: "prose passage", Embedding: []float32{1, 0, 0, 0}},
		{ID: "table-0", Kind: model.ChunkKindTable, Text: "table passage", Embedding: []float32{0, 1, 0, 0}},
	}))
	gt.NoError(t, index.Flush(ctx))

	results, err := index.Search(ctx, []float32{1, 0, 0, 0}, 2)
	gt.NoError(t, err)
	gt.A(t, results).Length(2)
	gt.Equal(t, results[0].ChunkID, "chunk-0")
	gt.Equal(t, results[0].Kind, model.ChunkKindProse)
	gt.Equal(t, results[1].Kind, model.ChunkKindTable)
}

func TestMilvusSearchBeforeLoad(t *testing.T) {
	index := setupMilvus(t, 4)

	_, err := index.Search(context.Background(), []float32{1, 0, 0, 0}, 1)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrIndexNotLoaded))
}

func TestMilvusRejectsBadDimension(t *testing.T) {
	ctx := context.Background()
	index := setupMilvus(t, 4)

	gt.NoError(t, index.Create(ctx))
	gt.NoError(t, index.Load(ctx))

	err := index.Insert(ctx, []*model.GuidelineChunk{
		{ID: "chunk-0", Text: "ok", Embedding: []float32{1, 0, 0, 0}},
		{ID: "chunk-1", Text: "bad", Embedding: []float32{1, 0}},
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrDimensionMismatch))
}
