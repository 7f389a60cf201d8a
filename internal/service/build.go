package service

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"productrag/internal/config"
	"productrag/internal/domain"
	"productrag/internal/embedding"
	"productrag/internal/retriever"
	"productrag/internal/vectorstore"
	"productrag/internal/vectorstore/badger"
	"productrag/internal/vectorstore/sqlite"
)

// Build assembles the service described by cfg. A store that holds no
// documents after opening is filled from the configured catalog.
func Build(ctx context.Context, cfg *config.AppConfig, l *log.Logger) (*CatalogService, error) {
	emb, err := embedding.New(cfg.Embedder)
	if err != nil {
		return nil, err
	}

	opts := []vectorstore.Option{
		vectorstore.WithLogger(l),
		vectorstore.WithQueryCache(cfg.VectorStore.QueryCacheSize),
		vectorstore.WithBatchSize(cfg.VectorStore.BatchSize),
	}
	if cfg.Embedder.OpenAI != nil && cfg.Embedder.OpenAI.BatchSize > 0 {
		opts = append(opts, vectorstore.WithBatchSize(cfg.Embedder.OpenAI.BatchSize))
	}

	var st vectorstore.Storage
	switch cfg.VectorStore.Type {
	case "memory", "":
	case "sqlite":
		st, err = sqlite.Open(cfg.VectorStore.PersistDirectory, cfg.VectorStore.Collection, l)
	case "badger":
		st, err = badger.Open(cfg.VectorStore.PersistDirectory, cfg.VectorStore.Collection, l)
	default:
		err = fmt.Errorf("%w: unknown vector store %q", domain.ErrInvalidArgument, cfg.VectorStore.Type)
	}
	if err != nil {
		return nil, err
	}
	if st != nil {
		opts = append(opts, vectorstore.WithStorage(st))
	}

	store, err := vectorstore.New(ctx, emb, opts...)
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, err
	}

	var ropts []retriever.Option
	ropts = append(ropts, retriever.WithLogger(l))
	if cfg.Retriever.Mode == "hybrid" {
		ropts = append(ropts, retriever.WithHybrid(cfg.Retriever.HybridAlpha))
	}
	svc := NewCatalogService(store, retriever.New(store, ropts...), l)

	if store.Count() == 0 {
		if _, err := svc.LoadCatalog(ctx, cfg.Catalog.Path); err != nil {
			svc.Close()
			return nil, err
		}
	}
	if l != nil {
		l.Debug().Str("embedder", emb.Name()).Str("store", cfg.VectorStore.Type).Str("mode", cfg.Retriever.Mode).Int("count", store.Count()).Msg("service ready")
	}
	return svc, nil
}
