package ingest

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hfguide/hfguide/pkg/adapter"
	"github.com/hfguide/hfguide/pkg/model"
	"github.com/hfguide/hfguide/pkg/utils/logging"
)

const (
	// DefaultBatchSize bounds peak memory and request payload per insert.
	DefaultBatchSize = 50

	// DefaultMaxTextLength leaves margin below the 65,535-char column limit.
	DefaultMaxTextLength = 65000
)

// Source carries the guideline material to ingest: raw prose (sentence
// chunked) and pre-extracted table text blocks (stored one chunk per table).
type Source struct {
	Prose  string
	Tables []string
}

// Stats summarizes one ingestion run.
type Stats struct {
	ProseChunks int
	TableChunks int
}

// Pipeline rebuilds the vector index from a guideline source. Ingestion is an
// exclusive maintenance operation: the collection is dropped and recreated,
// never incrementally updated.
type Pipeline struct {
	gemini  adapter.Gemini
	index   adapter.VectorIndex
	chunker *Chunker

	batchSize     int
	maxTextLength int
}

// Option is a functional option for Pipeline
type Option func(*Pipeline)

func WithChunker(c *Chunker) Option {
	return func(p *Pipeline) {
		p.chunker = c
	}
}

func WithBatchSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

func WithMaxTextLength(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxTextLength = n
		}
	}
}

func New(gemini adapter.Gemini, index adapter.VectorIndex, opts ...Option) *Pipeline {
	p := &Pipeline{
		gemini:        gemini,
		index:         index,
		chunker:       NewChunker(DefaultMaxChunkSize),
		batchSize:     DefaultBatchSize,
		maxTextLength: DefaultMaxTextLength,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run drops and recreates the index, then chunks, embeds, and stores the
// source. Tables are ingested first as whole-table chunks (table-<n>),
// followed by sentence-bounded prose chunks (chunk-<n>). Any error aborts the
// run; a partially populated index is never left behind as current.
func (p *Pipeline) Run(ctx context.Context, src Source) (*Stats, error) {
	logger := logging.From(ctx)

	if err := p.index.Create(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to create index")
	}
	if err := p.index.Load(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to load index")
	}

	stats := &Stats{}

	tables := p.buildChunks(model.ChunkKindTable, src.Tables)
	if err := p.store(ctx, tables); err != nil {
		return nil, err
	}
	stats.TableChunks = len(tables)

	sections := p.chunker.Split(CleanText(src.Prose))
	prose := p.buildChunks(model.ChunkKindProse, sections)
	if err := p.store(ctx, prose); err != nil {
		return nil, err
	}
	stats.ProseChunks = len(prose)

	if err := p.index.Flush(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to flush index")
	}

	logger.Info("ingestion completed",
		"table_chunks", stats.TableChunks,
		"prose_chunks", stats.ProseChunks,
	)

	return stats, nil
}

// buildChunks cleans, truncates, and assigns provenance-prefixed ids.
// Embeddings are attached later, batch by batch.
func (p *Pipeline) buildChunks(kind model.ChunkKind, texts []string) []*model.GuidelineChunk {
	var chunks []*model.GuidelineChunk
	for _, text := range texts {
		clean := CleanText(text)
		if clean == "" {
			continue
		}
		if len(clean) > p.maxTextLength {
			clean = clean[:p.maxTextLength]
		}
		chunks = append(chunks, &model.GuidelineChunk{
			ID:   model.NewChunkID(kind, len(chunks)),
			Kind: kind,
			Text: clean,
		})
	}
	return chunks
}

// store embeds and inserts chunks in batches.
func (p *Pipeline) store(ctx context.Context, chunks []*model.GuidelineChunk) error {
	for start := 0; start < len(chunks); start += p.batchSize {
		end := min(start+p.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := p.gemini.Embed(ctx, texts)
		if err != nil {
			return goerr.Wrap(err, "failed to embed batch", goerr.V("offset", start))
		}
		for i, c := range batch {
			c.Embedding = vectors[i]
		}

		if err := p.index.Insert(ctx, batch); err != nil {
			return goerr.Wrap(err, "failed to insert batch", goerr.V("offset", start))
		}
	}

	return nil
}
