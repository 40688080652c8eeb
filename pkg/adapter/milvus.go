package adapter

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/hfguide/hfguide/pkg/model"
)

const (
	fieldID        = "id"
	fieldText      = "text"
	fieldEmbedding = "embedding"

	maxIDLength   = 100
	maxTextLength = 65535
)

// MilvusConfig holds collection and index settings for the Milvus-backed
// vector index.
type MilvusConfig struct {
	Address    string
	Collection string
	Dimension  int
	MetricType string // L2 / IP / COSINE
	IndexType  string // IVF_FLAT / FLAT
	NList      int    // IVF cluster count
	NProbe     int    // clusters probed per search; higher trades latency for recall
}

// MilvusIndex implements VectorIndex on a Milvus collection with the schema
// id VARCHAR(100) pk / text VARCHAR(65535) / embedding FLOAT_VECTOR(dim).
type MilvusIndex struct {
	cli    client.Client
	cfg    MilvusConfig
	metric entity.MetricType
	loaded bool
}

// NewMilvusIndex connects to Milvus. The collection is not touched until
// Create or Load is called.
func NewMilvusIndex(ctx context.Context, cfg MilvusConfig) (*MilvusIndex, error) {
	if cfg.Collection == "" {
		return nil, goerr.New("collection name is required")
	}
	if cfg.Dimension <= 0 {
		return nil, goerr.New("invalid vector dimension", goerr.V("dimension", cfg.Dimension))
	}
	if cfg.NList <= 0 {
		cfg.NList = 64
	}
	if cfg.NProbe <= 0 {
		cfg.NProbe = 16
	}

	metric, err := parseMetricType(cfg.MetricType)
	if err != nil {
		return nil, err
	}

	cli, err := client.NewClient(ctx, client.Config{
		Address: cfg.Address,
		DialOptions: []grpc.DialOption{
			grpc.WithKeepaliveParams(keepalive.ClientParameters{
				Time:                30 * time.Second,
				Timeout:             10 * time.Second,
				PermitWithoutStream: true,
			}),
		},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to milvus", goerr.V("address", cfg.Address))
	}

	return &MilvusIndex{
		cli:    cli,
		cfg:    cfg,
		metric: metric,
	}, nil
}

func parseMetricType(s string) (entity.MetricType, error) {
	switch s {
	case "", "L2":
		return entity.L2, nil
	case "IP":
		return entity.IP, nil
	case "COSINE":
		return entity.COSINE, nil
	default:
		return "", goerr.New("unsupported metric type", goerr.V("metric", s))
	}
}

// Create drops any existing collection of the same name, then creates the
// schema and the vector index.
func (m *MilvusIndex) Create(ctx context.Context) error {
	exists, err := m.cli.HasCollection(ctx, m.cfg.Collection)
	if err != nil {
		return goerr.Wrap(err, "failed to check collection existence")
	}
	if exists {
		if err := m.cli.DropCollection(ctx, m.cfg.Collection); err != nil {
			return goerr.Wrap(err, "failed to drop existing collection", goerr.V("collection", m.cfg.Collection))
		}
		m.loaded = false
	}

	schema := entity.NewSchema().
		WithName(m.cfg.Collection).
		WithDescription("heart failure guideline chunks").
		WithField(entity.NewField().
			WithName(fieldID).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(maxIDLength).
			WithIsPrimaryKey(true)).
		WithField(entity.NewField().
			WithName(fieldText).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(maxTextLength)).
		WithField(entity.NewField().
			WithName(fieldEmbedding).
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(m.cfg.Dimension)))

	if err := m.cli.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return goerr.Wrap(err, "failed to create collection", goerr.V("collection", m.cfg.Collection))
	}

	idx, err := m.buildIndex()
	if err != nil {
		return err
	}
	if err := m.cli.CreateIndex(ctx, m.cfg.Collection, fieldEmbedding, idx, false); err != nil {
		return goerr.Wrap(err, "failed to create vector index")
	}

	return nil
}

func (m *MilvusIndex) buildIndex() (entity.Index, error) {
	switch m.cfg.IndexType {
	case "", "IVF_FLAT":
		idx, err := entity.NewIndexIvfFlat(m.metric, m.cfg.NList)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build IVF_FLAT index", goerr.V("nlist", m.cfg.NList))
		}
		return idx, nil
	case "FLAT":
		idx, err := entity.NewIndexFlat(m.metric)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build FLAT index")
		}
		return idx, nil
	default:
		return nil, goerr.New("unsupported index type", goerr.V("index_type", m.cfg.IndexType))
	}
}

// Load activates the collection for insert and search.
func (m *MilvusIndex) Load(ctx context.Context) error {
	if err := m.cli.LoadCollection(ctx, m.cfg.Collection, false); err != nil {
		return goerr.Wrap(err, "failed to load collection", goerr.V("collection", m.cfg.Collection))
	}
	m.loaded = true
	return nil
}

func (m *MilvusIndex) Insert(ctx context.Context, chunks []*model.GuidelineChunk) error {
	if !m.loaded {
		return goerr.Wrap(model.ErrIndexNotLoaded, "insert before load", goerr.V("collection", m.cfg.Collection))
	}
	if len(chunks) == 0 {
		return nil
	}

	// Validate the whole batch before sending anything so a bad embedding
	// cannot leave a partially inserted batch behind.
	for _, c := range chunks {
		if len(c.Embedding) != m.cfg.Dimension {
			return goerr.Wrap(model.ErrDimensionMismatch, "rejecting batch",
				goerr.V("chunk_id", c.ID),
				goerr.V("want", m.cfg.Dimension),
				goerr.V("got", len(c.Embedding)))
		}
	}

	ids := make([]string, len(chunks))
	texts := make([]string, len(chunks))
	vectors := make([][]float32, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
		texts[i] = c.Text
		vectors[i] = c.Embedding
	}

	_, err := m.cli.Insert(ctx, m.cfg.Collection, "",
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnVarChar(fieldText, texts),
		entity.NewColumnFloatVector(fieldEmbedding, m.cfg.Dimension, vectors),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert chunks", goerr.V("count", len(chunks)))
	}

	return nil
}

func (m *MilvusIndex) Flush(ctx context.Context) error {
	if err := m.cli.Flush(ctx, m.cfg.Collection, false); err != nil {
		return goerr.Wrap(err, "failed to flush collection", goerr.V("collection", m.cfg.Collection))
	}
	return nil
}

func (m *MilvusIndex) Search(ctx context.Context, embedding []float32, topK int) ([]*model.RetrievalResult, error) {
	if !m.loaded {
		return nil, goerr.Wrap(model.ErrIndexNotLoaded, "search before load", goerr.V("collection", m.cfg.Collection))
	}
	if len(embedding) != m.cfg.Dimension {
		return nil, goerr.Wrap(model.ErrDimensionMismatch, "query vector",
			goerr.V("want", m.cfg.Dimension), goerr.V("got", len(embedding)))
	}

	sp, err := entity.NewIndexIvfFlatSearchParam(m.cfg.NProbe)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build search params", goerr.V("nprobe", m.cfg.NProbe))
	}

	results, err := m.cli.Search(ctx, m.cfg.Collection, nil, "", []string{fieldText},
		[]entity.Vector{entity.FloatVector(embedding)}, fieldEmbedding, m.metric, topK, sp)
	if err != nil {
		return nil, goerr.Wrap(err, "search failed", goerr.V("collection", m.cfg.Collection))
	}

	var hits []*model.RetrievalResult
	for _, rs := range results {
		idCol, ok := rs.IDs.(*entity.ColumnVarChar)
		if !ok {
			return nil, goerr.New("unexpected id column type")
		}
		textCol, ok := rs.Fields.GetColumn(fieldText).(*entity.ColumnVarChar)
		if !ok {
			return nil, goerr.New("unexpected text column type")
		}

		for i := 0; i < rs.ResultCount; i++ {
			id := idCol.Data()[i]
			hits = append(hits, &model.RetrievalResult{
				ChunkID: id,
				Kind:    model.KindOfChunkID(id),
				Text:    textCol.Data()[i],
				Score:   rs.Scores[i],
			})
		}
	}

	return hits, nil
}

func (m *MilvusIndex) Dimension() int {
	return m.cfg.Dimension
}

func (m *MilvusIndex) Close() error {
	if err := m.cli.Close(); err != nil {
		return goerr.Wrap(err, "failed to close milvus client")
	}
	return nil
}
