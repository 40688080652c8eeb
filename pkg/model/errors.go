package model

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for the QA pipeline. Callers match them with errors.Is;
// wrapping sites attach context via goerr.V.
var (
	// ErrEmbedding indicates bad input to the embedding provider (empty text
	// or a backend rejection).
	ErrEmbedding = goerr.New("embedding failed")

	// ErrDimensionMismatch indicates an embedding whose length disagrees with
	// the index schema. Always a configuration bug: ingestion must abort.
	ErrDimensionMismatch = goerr.New("embedding dimension mismatch")

	// ErrIndexNotLoaded indicates a search or insert before the index has been
	// brought into a searchable state. Recoverable by calling Load first.
	ErrIndexNotLoaded = goerr.New("vector index not loaded")

	// ErrPatientNotFound indicates an upstream patient lookup miss. Terminal
	// for the request, no retry.
	ErrPatientNotFound = goerr.New("patient not found")

	// ErrInference indicates a failed language model call.
	ErrInference = goerr.New("inference failed")

	// ErrTimeout indicates a vector store or model call that exceeded its
	// budget, after the single retry allowance.
	ErrTimeout = goerr.New("operation timed out")
)
