package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productrag/internal/config"
	"productrag/internal/domain"
	"productrag/internal/embedding/hash"
	"productrag/internal/retriever"
	"productrag/internal/vectorstore"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Log:         config.LogConfig{Level: "error"},
		Embedder:    config.EmbedderConfig{Type: "hash", Dimension: 384},
		VectorStore: config.VectorStoreConfig{Type: "memory", Collection: "products", QueryCacheSize: 16, BatchSize: 4},
		Retriever:   config.RetrieverConfig{Mode: "hybrid", HybridAlpha: 0.5, TopK: 5},
	}
}

func TestBuildLoadsSampleCatalog(t *testing.T) {
	ctx := context.Background()
	svc, err := Build(ctx, testConfig(), nil)
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, 10, svc.Count())
	assert.Equal(t, "10 products in 6 categories", svc.Describe())

	recs, err := svc.Search(ctx, "wireless headphones", 3, "")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "prod-001", recs[0].ID)

	d, ok := svc.Details("prod-001")
	require.True(t, ok)
	assert.True(t, d.InStock)

	assert.Contains(t, svc.Categories(), "Footwear")
	assert.Contains(t, svc.Summary(recs), "1. **Wireless Bluetooth Headphones**")
}

func TestBuildPersistentStoresReopen(t *testing.T) {
	for _, typ := range []string{"sqlite", "badger"} {
		t.Run(typ, func(t *testing.T) {
			ctx := context.Background()
			cfg := testConfig()
			cfg.VectorStore.Type = typ
			cfg.VectorStore.PersistDirectory = t.TempDir()

			svc, err := Build(ctx, cfg, nil)
			require.NoError(t, err)
			_, err = svc.Ingest(ctx, []domain.Item{{ID: "extra-1", Name: "Desk Lamp", Category: "Home & Kitchen", Price: 45, StockQuantity: 2}})
			require.NoError(t, err)
			first, err := svc.Search(ctx, "lamp", 4, "")
			require.NoError(t, err)
			require.NoError(t, svc.Close())

			reopened, err := Build(ctx, cfg, nil)
			require.NoError(t, err)
			defer reopened.Close()
			assert.Equal(t, 11, reopened.Count())
			again, err := reopened.Search(ctx, "lamp", 4, "")
			require.NoError(t, err)
			assert.Equal(t, first, again)
		})
	}
}

func TestBuildSchemeMismatch(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.VectorStore.Type = "sqlite"
	cfg.VectorStore.PersistDirectory = t.TempDir()

	svc, err := Build(ctx, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	cfg.Embedder.Dimension = 64
	_, err = Build(ctx, cfg, nil)
	assert.ErrorIs(t, err, domain.ErrSchemeMismatch)
}

func TestBuildFromCatalogFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id":"k1","name":"Chef Knife","category":"Kitchen","price":60,"stock_quantity":1},
		{"id":"k2","name":"Cutting Board","category":"Kitchen","price":25,"stock_quantity":0}
	]`), 0o600))

	cfg := testConfig()
	cfg.Catalog.Path = path
	svc, err := Build(ctx, cfg, nil)
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, 2, svc.Count())
	assert.Equal(t, []string{"Kitchen"}, svc.Categories())
	d, ok := svc.Details("k2")
	require.True(t, ok)
	assert.False(t, d.InStock)
}

func TestBuildRejectsBadCatalog(t *testing.T) {
	cfg := testConfig()
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := Build(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestIngestEmpty(t *testing.T) {
	ctx := context.Background()
	store, err := vectorstore.New(ctx, hash.New(16))
	require.NoError(t, err)
	svc := NewCatalogService(store, retriever.New(store), nil)

	_, err = svc.Ingest(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	recs, err := svc.Search(ctx, "anything", 5, "")
	require.NoError(t, err)
	assert.Equal(t, retriever.NoResults, svc.Summary(recs))

	summary, err := svc.LoadSampleData(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10 products in 6 categories", summary)
}
