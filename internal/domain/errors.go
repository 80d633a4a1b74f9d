package domain

import "errors"

var (
	// ErrNotFound signals a missing record.
	ErrNotFound = errors.New("not found")
	// ErrRetrieval signals a content store search failure.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrInvalidContentType signals an unknown content type token.
	ErrInvalidContentType = errors.New("invalid content type")
	// ErrInvalidRequest signals invalid request parameters.
	ErrInvalidRequest = errors.New("invalid request")
)
