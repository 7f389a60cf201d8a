package domain

import "errors"

var (
	// ErrInvalidArgument is returned for negative limits, unknown filter
	// fields and items that fail validation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmbedding is returned when the embedder fails or returns vectors
	// of the wrong shape. Nothing is stored when it occurs.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStoreUnavailable is returned when a persistent backend cannot be
	// opened, read or written.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrSchemeMismatch is returned when a persisted index was built with a
	// different embedding scheme than the one in use.
	ErrSchemeMismatch = errors.New("embedding scheme mismatch")
)
