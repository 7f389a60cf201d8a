package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productrag/internal/domain"
	"productrag/internal/embedding/hash"
	"productrag/internal/vectorstore"
)

func sampleItems() []domain.Item {
	return []domain.Item{
		{
			ID: "a-1", Name: "Trail Shoes", Category: "Footwear", Price: 89.5, Currency: "USD",
			StockQuantity: 4, Brand: "Ridge",
			Attributes: map[string]domain.Value{"waterproof": domain.BoolValue(true), "weight_g": domain.NumberValue(310)},
		},
		{
			ID: "a-2", Name: "Camp Mug", Category: "Outdoor", Price: 12, Currency: "USD",
			Attributes: map[string]domain.Value{"material": domain.StringValue("enamel")},
		},
	}
}

func TestReopenRestoresDocuments(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	st, err := Open(dir, "products", nil)
	require.NoError(t, err)
	s, err := vectorstore.New(ctx, hash.New(48), vectorstore.WithStorage(st))
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, sampleItems()))
	// Upserting again must overwrite the stored record.
	require.NoError(t, s.Upsert(ctx, sampleItems()[:1]))
	before, err := s.Query(ctx, "shoes for hiking", 5, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	st, err = Open(dir, "products", nil)
	require.NoError(t, err)
	reopened, err := vectorstore.New(ctx, hash.New(48), vectorstore.WithStorage(st))
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 2, reopened.Count())
	after, err := reopened.Query(ctx, "shoes for hiking", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	for _, want := range sampleItems() {
		got, ok := reopened.GetByID(want.ID)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, []string{"Footwear", "Outdoor"}, reopened.GetAllCategories())
}

func TestSchemeMismatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	st, err := Open(dir, "products", nil)
	require.NoError(t, err)
	require.NoError(t, st.Init(ctx, vectorstore.Scheme{Embedder: hash.Name, Dimension: 48}))
	require.NoError(t, st.Close())

	st, err = Open(dir, "products", nil)
	require.NoError(t, err)
	defer st.Close()
	err = st.Init(ctx, vectorstore.Scheme{Embedder: hash.Name, Dimension: 64})
	assert.ErrorIs(t, err, domain.ErrSchemeMismatch)
}

func TestOpenRequiresDirectory(t *testing.T) {
	_, err := Open("", "products", nil)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

// failAfterCtx reports cancellation from its n-th Err call onwards.
type failAfterCtx struct {
	context.Context
	calls, n int
}

func (c *failAfterCtx) Err() error {
	c.calls++
	if c.calls >= c.n {
		return context.Canceled
	}
	return nil
}

func TestUpsertIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	emb := hash.New(16)

	items := append(sampleItems(),
		domain.Item{ID: "a-3", Name: "Head Lamp", Category: "Outdoor", Price: 20},
		domain.Item{ID: "a-4", Name: "Tent", Category: "Outdoor", Price: 240},
	)
	entries := make([]vectorstore.Entry, len(items))
	for i, it := range items {
		vecs, err := emb.Embed(ctx, []string{it.Text()})
		require.NoError(t, err)
		entries[i] = vectorstore.Entry{
			Document: domain.Document{ID: it.ID, Vector: vecs[0], Metadata: domain.MetadataOf(it), Text: it.Text()},
			Item:     it,
		}
	}

	st, err := Open(dir, "products", nil)
	require.NoError(t, err)
	require.NoError(t, st.Init(ctx, vectorstore.Scheme{Embedder: hash.Name, Dimension: 16}))

	err = st.Upsert(&failAfterCtx{Context: ctx, n: 3}, entries)
	assert.ErrorIs(t, err, context.Canceled)
	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
	require.NoError(t, st.Close())

	st, err = Open(dir, "products", nil)
	require.NoError(t, err)
	defer st.Close()
	loaded, err = st.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	require.NoError(t, st.Upsert(ctx, entries))
	loaded, err = st.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 4)
}
