package ingest_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"google.golang.org/genai"

	"github.com/hfguide/hfguide/pkg/adapter"
	"github.com/hfguide/hfguide/pkg/model"
	"github.com/hfguide/hfguide/pkg/usecase/ingest"
)

// mockGemini is a mock implementation of adapter.Gemini for testing
type mockGemini struct {
	generateFunc func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	embedFunc    func(ctx context.Context, texts []string) ([][]float32, error)
	dimension    int
	embedCalls   int
}

func (m *mockGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, contents, config)
	}
	return nil, errors.New("not implemented")
}

func (m *mockGemini) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.embedCalls++
	if m.embedFunc != nil {
		return m.embedFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, m.dimension)
	}
	return vectors, nil
}

func (m *mockGemini) Dimension() int {
	return m.dimension
}

func TestPipelineRun(t *testing.T) {
	ctx := context.Background()
	index := adapter.NewMemoryIndex(4)
	gemini := &mockGemini{dimension: 4}

	pipeline := ingest.New(gemini, index)
	stats, err := pipeline.Run(ctx, ingest.Source{
		Prose:  "Diuretics relieve congestion. Beta blockers reduce mortality. Monitor potassium closely.",
		Tables: []string{"Drug | Dose\nEnalapril | 2.5 mg", "NYHA | Description\nII | Slight limitation"},
	})
	gt.NoError(t, err)
	gt.Equal(t, stats.TableChunks, 2)

	results, err := index.Search(ctx, make([]float32, 4), 10)
	gt.NoError(t, err)
	gt.A(t, results).Longer(0)
}

func TestPipelineChunkIDs(t *testing.T) {
	ctx := context.Background()
	index := adapter.NewMemoryIndex(4)
	gemini := &mockGemini{dimension: 4}

	pipeline := ingest.New(gemini, index)
	_, err := pipeline.Run(ctx, ingest.Source{
		Prose:  "First fact about heart failure. Second fact about heart failure.",
		Tables: []string{"a table"},
	})
	gt.NoError(t, err)

	results, err := index.Search(ctx, make([]float32, 4), 10)
	gt.NoError(t, err)

	ids := map[string]model.ChunkKind{}
	for _, r := range results {
		ids[r.ChunkID] = r.Kind
	}
	gt.Equal(t, ids["table-0"], model.ChunkKindTable)
	gt.Equal(t, ids["chunk-0"], model.ChunkKindProse)
}

func TestPipelineSkipsEmptyTables(t *testing.T) {
	index := adapter.NewMemoryIndex(4)
	gemini := &mockGemini{dimension: 4}

	pipeline := ingest.New(gemini, index)
	stats, err := pipeline.Run(context.Background(), ingest.Source{
		Prose:  "One sentence.",
		Tables: []string{"  \n ", "real table"},
	})
	gt.NoError(t, err)
	gt.Equal(t, stats.TableChunks, 1)
}

func TestPipelineTruncatesLongText(t *testing.T) {
	ctx := context.Background()
	index := adapter.NewMemoryIndex(4)
	gemini := &mockGemini{dimension: 4}

	pipeline := ingest.New(gemini, index, ingest.WithMaxTextLength(100))
	_, err := pipeline.Run(ctx, ingest.Source{
		Tables: []string{strings.Repeat("x", 500)},
	})
	gt.NoError(t, err)

	results, err := index.Search(ctx, make([]float32, 4), 1)
	gt.NoError(t, err)
	gt.A(t, results).Length(1)
	gt.Equal(t, len(results[0].Text), 100)
}

func TestPipelineAbortsOnDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	index := adapter.NewMemoryIndex(8)
	gemini := &mockGemini{dimension: 4} // disagrees with the index schema

	pipeline := ingest.New(gemini, index)
	_, err := pipeline.Run(ctx, ingest.Source{
		Prose: "Some guideline sentence.",
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrDimensionMismatch))

	// Nothing may be committed from the failed run.
	results, err := index.Search(ctx, make([]float32, 8), 10)
	gt.NoError(t, err)
	gt.A(t, results).Length(0)
}

func TestPipelineAbortsOnEmbeddingError(t *testing.T) {
	index := adapter.NewMemoryIndex(4)
	gemini := &mockGemini{
		dimension: 4,
		embedFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, model.ErrEmbedding
		},
	}

	pipeline := ingest.New(gemini, index)
	_, err := pipeline.Run(context.Background(), ingest.Source{
		Prose: "Some guideline sentence.",
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrEmbedding))
}

func TestPipelineBatchesInserts(t *testing.T) {
	index := adapter.NewMemoryIndex(4)
	gemini := &mockGemini{dimension: 4}

	var sentences []string
	for range 7 {
		sentences = append(sentences, "Short fact.")
	}

	pipeline := ingest.New(gemini, index, ingest.WithBatchSize(3), ingest.WithChunker(ingest.NewChunker(5)))
	stats, err := pipeline.Run(context.Background(), ingest.Source{
		Prose: strings.Join(sentences, " "),
	})
	gt.NoError(t, err)
	gt.Equal(t, stats.ProseChunks, 7)
	gt.Equal(t, gemini.embedCalls, 3)
}
