package vectorstore

import (
	"context"

	"productrag/internal/domain"
)

// Scheme identifies how the vectors of a persisted index were produced.
type Scheme struct {
	Embedder  string
	Dimension int
}

// Entry is the unit of persistence: an indexed document together with
// the catalog item it was built from.
type Entry struct {
	Document domain.Document
	Item     domain.Item
}

// Storage persists documents between process runs.
//
// Init must be called once before any other method. It records the scheme
// on first use and fails with domain.ErrSchemeMismatch when a different
// scheme was recorded earlier.
type Storage interface {
	Init(ctx context.Context, scheme Scheme) error
	Load(ctx context.Context) ([]Entry, error)
	Upsert(ctx context.Context, entries []Entry) error
	Close() error
}
