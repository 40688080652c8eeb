package adapter

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"

	"github.com/hfguide/hfguide/pkg/model"
)

// maxEmbedInputLen is a defensive cap on text handed to the embedding model.
// Oversized inputs are silently truncated or rejected by most backends, so we
// truncate before encoding instead.
const maxEmbedInputLen = 8192

// Gemini is the inference surface used by the QA pipeline: text generation
// and batch embedding.
type Gemini interface {
	GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

type GeminiClient struct {
	client          *genai.Client
	generativeModel string
	embeddingModel  string
	dimension       int
}

type GeminiOption func(*GeminiClient)

func WithGenerativeModel(name string) GeminiOption {
	return func(g *GeminiClient) {
		g.generativeModel = name
	}
}

func WithEmbeddingModel(name string) GeminiOption {
	return func(g *GeminiClient) {
		g.embeddingModel = name
	}
}

// WithDimension sets the embedding output dimensionality. It must match the
// vector index schema.
func WithDimension(dim int) GeminiOption {
	return func(g *GeminiClient) {
		g.dimension = dim
	}
}

func NewGemini(ctx context.Context, projectID, location string, opts ...GeminiOption) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	g := &GeminiClient{
		client:          client,
		generativeModel: "gemini-2.5-flash",
		embeddingModel:  "gemini-embedding-001",
		dimension:       768,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *GeminiClient) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.generativeModel, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content")
	}
	return resp, nil
}

// Embed maps each text to a fixed-dimension vector. Same text and model yield
// the same vector; batch size does not affect the result.
func (g *GeminiClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, goerr.Wrap(model.ErrEmbedding, "no texts to embed")
	}

	contents := make([]*genai.Content, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, goerr.Wrap(model.ErrEmbedding, "empty text", goerr.V("index", i))
		}
		if len(text) > maxEmbedInputLen {
			text = text[:maxEmbedInputLen]
		}
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	dim := int32(g.dimension)
	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, goerr.Wrap(model.ErrEmbedding, "embed content call failed", goerr.V("cause", err.Error()))
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, goerr.Wrap(model.ErrEmbedding, "unexpected embedding count",
			goerr.V("want", len(texts)), goerr.V("got", len(resp.Embeddings)))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// Dimension returns the configured embedding dimensionality.
func (g *GeminiClient) Dimension() int {
	return g.dimension
}
