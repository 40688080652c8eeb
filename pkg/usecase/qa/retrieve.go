package qa

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hfguide/hfguide/pkg/model"
)

// Retrieve embeds the question and returns the topK nearest guideline chunks,
// ordered by ascending distance. The search call runs under the configured
// timeout with one retry.
func (u *UseCase) Retrieve(ctx context.Context, question string, topK int) ([]*model.RetrievalResult, error) {
	if topK <= 0 {
		topK = u.topK
	}

	vectors, err := u.gemini.Embed(ctx, []string{question})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed question")
	}

	results, err := callWithTimeout(ctx, u.searchTimeout, func(ctx context.Context) ([]*model.RetrievalResult, error) {
		return u.index.Search(ctx, vectors[0], topK)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "guideline search failed", goerr.V("top_k", topK))
	}

	return results, nil
}
