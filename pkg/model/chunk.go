package model

import (
	"fmt"
	"strings"
)

// ChunkKind distinguishes prose chunks from whole-table chunks.
type ChunkKind string

const (
	ChunkKindProse ChunkKind = "prose"
	ChunkKindTable ChunkKind = "table"
)

// idPrefix returns the provenance prefix used in chunk IDs. The prefix is a
// documented contract of the stored id field; consumers should rely on Kind
// instead of parsing it back.
func (k ChunkKind) idPrefix() string {
	if k == ChunkKindTable {
		return "table"
	}
	return "chunk"
}

// NewChunkID builds the stored id for the n-th chunk of a kind, e.g.
// "chunk-12" or "table-3".
func NewChunkID(kind ChunkKind, n int) string {
	return fmt.Sprintf("%s-%d", kind.idPrefix(), n)
}

// KindOfChunkID derives the chunk kind from a stored id. Unknown prefixes are
// treated as prose.
func KindOfChunkID(id string) ChunkKind {
	if strings.HasPrefix(id, "table-") {
		return ChunkKindTable
	}
	return ChunkKindProse
}

// GuidelineChunk is one embedded unit of guideline text. Created during
// ingestion and immutable afterwards; the index is rebuilt wholesale rather
// than updated in place.
type GuidelineChunk struct {
	ID        string
	Kind      ChunkKind
	Text      string
	Embedding []float32
}

// RetrievalResult is a per-query search hit, ordered by ascending distance
// (lower score is more relevant). Not persisted.
type RetrievalResult struct {
	ChunkID string
	Kind    ChunkKind
	Text    string
	Score   float32
}
