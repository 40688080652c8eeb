package qa

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hfguide/hfguide/pkg/adapter"
	"github.com/hfguide/hfguide/pkg/model"
	"github.com/hfguide/hfguide/pkg/repository"
)

const (
	// DefaultTopK is the number of guideline passages retrieved per question.
	DefaultTopK = 5

	defaultSearchTimeout    = 10 * time.Second
	defaultInferenceTimeout = 60 * time.Second
	retryBackoff            = 500 * time.Millisecond
)

// UseCase runs the question-answering pipeline: embed the query, search the
// guideline index, assemble grounding context from the patient record, and
// generate a role-shaped answer. It holds no per-request state and is safe
// for concurrent use over its read-only dependencies.
type UseCase struct {
	repo   repository.Repository
	gemini adapter.Gemini
	index  adapter.VectorIndex

	topK             int
	searchTimeout    time.Duration
	inferenceTimeout time.Duration
}

// Option is a functional option for UseCase
type Option func(*UseCase)

func WithTopK(k int) Option {
	return func(u *UseCase) {
		if k > 0 {
			u.topK = k
		}
	}
}

func WithSearchTimeout(d time.Duration) Option {
	return func(u *UseCase) {
		u.searchTimeout = d
	}
}

func WithInferenceTimeout(d time.Duration) Option {
	return func(u *UseCase) {
		u.inferenceTimeout = d
	}
}

func New(repo repository.Repository, gemini adapter.Gemini, index adapter.VectorIndex, opts ...Option) *UseCase {
	u := &UseCase{
		repo:             repo,
		gemini:           gemini,
		index:            index,
		topK:             DefaultTopK,
		searchTimeout:    defaultSearchTimeout,
		inferenceTimeout: defaultInferenceTimeout,
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

// callWithTimeout runs fn under a deadline. A timed-out call is retried once
// after a short backoff before model.ErrTimeout is surfaced; both network
// dependencies (vector store and model endpoint) can hang.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	run := func() (T, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return fn(callCtx)
	}

	result, err := run()
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		time.Sleep(retryBackoff)
		result, err = run()
	}
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		var zero T
		return zero, goerr.Wrap(model.ErrTimeout, "call exceeded budget", goerr.V("timeout", timeout))
	}

	return result, err
}
