// Package vectorstore implements the product document store: it embeds
// catalog items, indexes them for nearest-neighbor search with metadata
// filters and keeps a catalog cache for exact-id lookups.
//
// Distances are cosine distances scaled to [0, 1]: (1 - cos) / 2.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"productrag/internal/domain"
	"productrag/internal/vectorstore/memory"
)

// Filter restricts a query to documents whose metadata equals every given
// value. Supported keys are "category" and "brand".
type Filter map[string]string

// CategoryFilter is shorthand for a filter on the category field.
// An empty category means no filter.
func CategoryFilter(category string) Filter {
	if category == "" {
		return nil
	}
	return Filter{memory.FieldCategory: category}
}

// Store is a document store safe for concurrent use. Queries run in
// parallel; upserts exclude queries only while the index and catalog cache
// are swapped together.
type Store struct {
	embedder domain.Embedder
	opts     options
	log      *log.Logger

	// writeMu serializes upserts so storage and memory see the same order.
	writeMu sync.Mutex

	mu    sync.RWMutex
	index *memory.Index
	cache *catalogCache

	queries *lru.Cache[string, []float64]
}

// New creates a store around the given embedder. When a Storage option is
// supplied the persisted documents are loaded before New returns.
func New(ctx context.Context, embedder domain.Embedder, opts ...Option) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", domain.ErrInvalidArgument)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &Store{
		embedder: embedder,
		opts:     o,
		log:      o.logger,
		cache:    newCatalogCache(),
	}
	if o.queryCacheSize > 0 {
		c, err := lru.New[string, []float64](o.queryCacheSize)
		if err != nil {
			return nil, fmt.Errorf("%w: query cache: %v", domain.ErrInvalidArgument, err)
		}
		s.queries = c
	}
	if dim := embedder.Dimension(); dim > 0 {
		idx, err := memory.NewIndex(dim)
		if err != nil {
			return nil, err
		}
		s.index = idx
	}
	if o.storage != nil {
		if err := s.restore(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) restore(ctx context.Context) error {
	dim := s.embedder.Dimension()
	if dim <= 0 {
		return fmt.Errorf("%w: persistent stores need an embedder with a known dimension", domain.ErrInvalidArgument)
	}
	if err := s.opts.storage.Init(ctx, Scheme{Embedder: s.embedder.Name(), Dimension: dim}); err != nil {
		return err
	}
	entries, err := s.opts.storage.Load(ctx)
	if err != nil {
		return err
	}
	docs := make([]domain.Document, len(entries))
	for i, e := range entries {
		docs[i] = e.Document
	}
	if err := s.index.Upsert(docs); err != nil {
		return fmt.Errorf("%w: restoring index: %v", domain.ErrStoreUnavailable, err)
	}
	for _, e := range entries {
		s.cache.put(e.Item)
	}
	s.log.Info().Int("count", len(entries)).Str("embedder", s.embedder.Name()).Msg("restored persisted documents")
	return nil
}

// Upsert embeds and indexes items, replacing any prior entry with the same
// id. Either every item is applied or none is.
func (s *Store) Upsert(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	start := time.Now()
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.Text()
	}
	vectors, err := s.embedAll(ctx, texts)
	if err != nil {
		return err
	}

	entries := make([]Entry, len(items))
	docs := make([]domain.Document, len(items))
	for i, it := range items {
		it = it.Clone()
		docs[i] = domain.Document{
			ID:       it.ID,
			Vector:   vectors[i],
			Metadata: domain.MetadataOf(it),
			Text:     texts[i],
		}
		entries[i] = Entry{Document: docs[i], Item: it}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.ensureIndex(len(vectors[0])); err != nil {
		return err
	}
	if want := s.index.Dimension(); len(vectors[0]) != want {
		return fmt.Errorf("%w: embedder produced dimension %d, index expects %d", domain.ErrEmbedding, len(vectors[0]), want)
	}
	if s.opts.storage != nil {
		if err := s.opts.storage.Upsert(ctx, entries); err != nil {
			if errors.Is(err, domain.ErrStoreUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.index.Upsert(docs); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	for _, e := range entries {
		s.cache.put(e.Item)
	}
	s.log.Debug().Int("count", len(items)).Int("total", s.index.Len()).Dur("took", time.Since(start)).Msg("upserted documents")
	return nil
}

// ensureIndex lazily creates the index for embedders whose dimension is
// only known after the first call. Caller holds writeMu.
func (s *Store) ensureIndex(dim int) error {
	s.mu.RLock()
	ready := s.index != nil
	s.mu.RUnlock()
	if ready {
		return nil
	}
	idx, err := memory.NewIndex(dim)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	s.mu.Lock()
	s.index = idx
	s.mu.Unlock()
	return nil
}

// embedAll embeds texts in batches, several batches at a time. It fails if
// any batch fails or returns the wrong number of vectors.
func (s *Store) embedAll(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.parallel)
	for lo := 0; lo < len(texts); lo += s.opts.batchSize {
		hi := lo + s.opts.batchSize
		if hi > len(texts) {
			hi = len(texts)
		}
		g.Go(func() error {
			vecs, err := s.embedder.Embed(gctx, texts[lo:hi])
			if err != nil {
				return err
			}
			if len(vecs) != hi-lo {
				return fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), hi-lo)
			}
			copy(out[lo:hi], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, embedError(err)
	}
	dim := len(out[0])
	for i, v := range out {
		if len(v) == 0 || len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, want %d", domain.ErrEmbedding, i, len(v), dim)
		}
	}
	return out, nil
}

// embedError tags embedder failures with domain.ErrEmbedding. Cancellation
// is returned as is.
func embedError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrEmbedding) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
}

// Query returns the limit documents closest to text, ascending by distance
// with ties broken by id. An empty store or an unmatched filter yields an
// empty result.
func (s *Store) Query(ctx context.Context, text string, limit int, filter Filter) ([]domain.Hit, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative, got %d", domain.ErrInvalidArgument, limit)
	}
	if err := memory.ValidateFilter(filter); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	if limit == 0 || s.Count() == 0 {
		return nil, nil
	}
	vec, err := s.embedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	hits, err := s.index.Search(vec, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	s.log.Debug().Int("limit", limit).Int("hits", len(hits)).Str("category", filter[memory.FieldCategory]).Msg("query")
	return hits, nil
}

func (s *Store) embedQuery(ctx context.Context, text string) ([]float64, error) {
	if s.queries != nil {
		if v, ok := s.queries.Get(text); ok {
			return v, nil
		}
	}
	vecs, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, embedError(err)
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("%w: embedder returned %d vectors for 1 text", domain.ErrEmbedding, len(vecs))
	}
	if s.queries != nil {
		s.queries.Add(text, vecs[0])
	}
	return vecs[0], nil
}

// GetByID returns the cached item for id.
func (s *Store) GetByID(id string) (domain.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.get(id)
}

// GetAllCategories returns the distinct categories, sorted ascending.
func (s *Store) GetAllCategories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.categories()
}

// Count returns the number of distinct documents indexed.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return 0
	}
	return s.index.Len()
}

// Close releases the storage backend, if any.
func (s *Store) Close() error {
	if s.opts.storage == nil {
		return nil
	}
	return s.opts.storage.Close()
}
