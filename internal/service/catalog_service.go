package service

import (
	"context"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"productrag/internal/catalog"
	"productrag/internal/domain"
	"productrag/internal/logger"
	"productrag/internal/retriever"
	"productrag/internal/vectorstore"
)

// CatalogService ties the document store and retriever together for the
// command line and TUI front ends.
type CatalogService struct {
	store     *vectorstore.Store
	retriever *retriever.Retriever
	log       *log.Logger
}

func NewCatalogService(store *vectorstore.Store, r *retriever.Retriever, l *log.Logger) *CatalogService {
	if l == nil {
		l = logger.Discard()
	}
	return &CatalogService{store: store, retriever: r, log: l}
}

// Ingest indexes items and returns a one-line summary of the catalog.
func (s *CatalogService) Ingest(ctx context.Context, items []domain.Item) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("%w: no items to ingest", domain.ErrInvalidArgument)
	}
	start := time.Now()
	if err := s.store.Upsert(ctx, items); err != nil {
		return "", err
	}
	s.log.Info().Int("items", len(items)).Int("total", s.store.Count()).Dur("took", time.Since(start)).Msg("catalog indexed")
	return s.describe(), nil
}

// LoadSampleData indexes the built-in demo catalog.
func (s *CatalogService) LoadSampleData(ctx context.Context) (string, error) {
	return s.Ingest(ctx, catalog.SampleItems())
}

// LoadCatalog indexes the catalog file at path, or the demo catalog when
// path is empty.
func (s *CatalogService) LoadCatalog(ctx context.Context, path string) (string, error) {
	if path == "" {
		return s.LoadSampleData(ctx)
	}
	items, err := catalog.LoadFile(path)
	if err != nil {
		return "", err
	}
	return s.Ingest(ctx, items)
}

func (s *CatalogService) describe() string {
	return fmt.Sprintf("%d products in %d categories", s.store.Count(), len(s.store.GetAllCategories()))
}

// Describe summarises the indexed catalog in one line.
func (s *CatalogService) Describe() string { return s.describe() }

// Search returns up to topK records for query, optionally within category.
func (s *CatalogService) Search(ctx context.Context, query string, topK int, category string) ([]retriever.Record, error) {
	return s.retriever.Retrieve(ctx, query, topK, category)
}

// Details returns the full view of the item with the given id.
func (s *CatalogService) Details(id string) (retriever.Detail, bool) {
	return s.retriever.GetItemDetails(id)
}

// Categories lists catalog categories in ascending order.
func (s *CatalogService) Categories() []string {
	return s.retriever.GetCategories()
}

// Summary renders records for display.
func (s *CatalogService) Summary(records []retriever.Record) string {
	return retriever.FormatSummary(records)
}

// Count returns the number of indexed products.
func (s *CatalogService) Count() int { return s.store.Count() }

// Close releases the store.
func (s *CatalogService) Close() error { return s.store.Close() }
