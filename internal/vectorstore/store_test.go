package vectorstore_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productrag/internal/domain"
	"productrag/internal/embedding/hash"
	"productrag/internal/vectorstore"
)

func item(id, name, category, brand string, price float64) domain.Item {
	return domain.Item{
		ID:            id,
		Name:          name,
		Description:   name + " for everyday use",
		Category:      category,
		Price:         price,
		Currency:      "USD",
		StockQuantity: 10,
		Brand:         brand,
		Attributes:    map[string]domain.Value{"color": domain.StringValue("black")},
	}
}

func fixture() []domain.Item {
	return []domain.Item{
		item("p1", "Wireless Headphones", "Electronics", "SoundMax", 149.99),
		item("p2", "Fitness Watch", "Electronics", "FitTech", 199.99),
		item("p3", "Cotton T-Shirt", "Clothing", "EcoWear", 29.99),
		item("p4", "Water Bottle", "Home & Kitchen", "HydroLife", 34.99),
		item("p5", "Bluetooth Speaker", "Electronics", "SoundMax", 79.99),
	}
}

func newStore(t *testing.T, opts ...vectorstore.Option) *vectorstore.Store {
	t.Helper()
	s, err := vectorstore.New(context.Background(), hash.New(64), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func ids(hits []domain.Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.ID
	}
	return out
}

func TestUpsertCountAndIdempotence(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	assert.Equal(t, 0, s.Count())

	require.NoError(t, s.Upsert(ctx, fixture()))
	assert.Equal(t, 5, s.Count())

	require.NoError(t, s.Upsert(ctx, fixture()))
	assert.Equal(t, 5, s.Count())

	require.NoError(t, s.Upsert(ctx, nil))
	assert.Equal(t, 5, s.Count())
}

func TestGetByIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	items := fixture()
	require.NoError(t, s.Upsert(ctx, items))

	for _, want := range items {
		got, ok := s.GetByID(want.ID)
		require.True(t, ok, want.ID)
		assert.Equal(t, want, got)
	}

	_, ok := s.GetByID("missing")
	assert.False(t, ok)
}

func TestGetByIDReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Upsert(ctx, fixture()))

	got, _ := s.GetByID("p1")
	got.Attributes["color"] = domain.StringValue("red")
	got.Name = "changed"

	again, _ := s.GetByID("p1")
	assert.Equal(t, "Wireless Headphones", again.Name)
	assert.Equal(t, "black", again.Attributes["color"].String())
}

func TestUpsertReplacesItem(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Upsert(ctx, fixture()))

	moved := item("p3", "Cotton T-Shirt", "Sale", "EcoWear", 19.99)
	require.NoError(t, s.Upsert(ctx, []domain.Item{moved}))
	assert.Equal(t, 5, s.Count())

	got, ok := s.GetByID("p3")
	require.True(t, ok)
	assert.Equal(t, 19.99, got.Price)
	assert.Equal(t, []string{"Electronics", "Home & Kitchen", "Sale"}, s.GetAllCategories())

	hits, err := s.Query(ctx, "shirt", 10, vectorstore.CategoryFilter("Clothing"))
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestUpsertRejectsInvalidItems(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	bad := item("", "No ID", "Electronics", "", 1)
	err := s.Upsert(ctx, append(fixture(), bad))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, 0, s.Count())
}

func TestGetAllCategories(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	assert.Empty(t, s.GetAllCategories())
	require.NoError(t, s.Upsert(ctx, fixture()))
	assert.Equal(t, []string{"Clothing", "Electronics", "Home & Kitchen"}, s.GetAllCategories())
}

func TestQueryOrderingAndStability(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Upsert(ctx, fixture()))

	hits, err := s.Query(ctx, "wireless headphones", 5, nil)
	require.NoError(t, err)
	require.Len(t, hits, 5)
	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i-1].Distance, hits[i].Distance)
	}
	for _, h := range hits {
		assert.GreaterOrEqual(t, h.Distance, 0.0)
		assert.LessOrEqual(t, h.Distance, 1.0)
		assert.NotEmpty(t, h.Text)
	}

	again, err := s.Query(ctx, "wireless headphones", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, hits, again)
}

func TestQueryFilter(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Upsert(ctx, fixture()))

	hits, err := s.Query(ctx, "anything", 10, vectorstore.CategoryFilter("Electronics"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p2", "p5"}, ids(hits))
	for _, h := range hits {
		assert.Equal(t, "Electronics", h.Metadata.Category)
	}

	hits, err = s.Query(ctx, "anything", 10, vectorstore.Filter{"category": "Electronics", "brand": "SoundMax"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p5"}, ids(hits))

	hits, err = s.Query(ctx, "anything", 10, vectorstore.CategoryFilter("Garden"))
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestQueryLimits(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	hits, err := s.Query(ctx, "empty store", 5, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, s.Upsert(ctx, fixture()))

	hits, err = s.Query(ctx, "headphones", 0, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = s.Query(ctx, "headphones", 100, nil)
	require.NoError(t, err)
	assert.Len(t, hits, 5)

	hits, err = s.Query(ctx, "headphones", 2, nil)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	_, err = s.Query(ctx, "headphones", -1, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = s.Query(ctx, "headphones", 3, vectorstore.Filter{"color": "black"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

type failingEmbedder struct {
	inner domain.Embedder
	fail  bool
}

func (f *failingEmbedder) Name() string   { return f.inner.Name() }
func (f *failingEmbedder) Dimension() int { return f.inner.Dimension() }
func (f *failingEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if f.fail {
		return nil, errors.New("model offline")
	}
	return f.inner.Embed(ctx, texts)
}

func TestEmbedderFailureLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	emb := &failingEmbedder{inner: hash.New(32)}
	s, err := vectorstore.New(ctx, emb)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, fixture()[:2]))

	emb.fail = true
	err = s.Upsert(ctx, fixture())
	assert.ErrorIs(t, err, domain.ErrEmbedding)
	assert.Equal(t, 2, s.Count())
	_, ok := s.GetByID("p3")
	assert.False(t, ok)

	_, err = s.Query(ctx, "headphones", 3, nil)
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

type countingEmbedder struct {
	domain.Embedder
	mu    sync.Mutex
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.Embedder.Embed(ctx, texts)
}

func TestQueryCacheReusesEmbeddings(t *testing.T) {
	ctx := context.Background()
	emb := &countingEmbedder{Embedder: hash.New(32)}
	s, err := vectorstore.New(ctx, emb, vectorstore.WithQueryCache(8), vectorstore.WithBatchSize(100))
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, fixture()))
	require.Equal(t, 1, emb.calls)

	first, err := s.Query(ctx, "speaker", 3, nil)
	require.NoError(t, err)
	second, err := s.Query(ctx, "speaker", 3, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, emb.calls)

	_, err = s.Query(ctx, "watch", 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, emb.calls)
}

func TestBatchedEmbeddingMatchesSingleCall(t *testing.T) {
	ctx := context.Background()
	single := newStore(t, vectorstore.WithBatchSize(100))
	batched := newStore(t, vectorstore.WithBatchSize(2), vectorstore.WithParallelism(3))
	require.NoError(t, single.Upsert(ctx, fixture()))
	require.NoError(t, batched.Upsert(ctx, fixture()))

	a, err := single.Query(ctx, "fitness", 5, nil)
	require.NoError(t, err)
	b, err := batched.Query(ctx, "fitness", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

type brokenStorage struct {
	entries []vectorstore.Entry
	failOn  bool
}

func (b *brokenStorage) Init(context.Context, vectorstore.Scheme) error { return nil }
func (b *brokenStorage) Load(context.Context) ([]vectorstore.Entry, error) {
	return b.entries, nil
}
func (b *brokenStorage) Upsert(_ context.Context, entries []vectorstore.Entry) error {
	if b.failOn {
		return errors.New("disk full")
	}
	b.entries = append(b.entries, entries...)
	return nil
}
func (b *brokenStorage) Close() error { return nil }

func TestStorageFailureLeavesMemoryUnchanged(t *testing.T) {
	ctx := context.Background()
	st := &brokenStorage{}
	s := newStore(t, vectorstore.WithStorage(st))
	require.NoError(t, s.Upsert(ctx, fixture()[:1]))
	assert.Len(t, st.entries, 1)

	st.failOn = true
	err := s.Upsert(ctx, fixture()[1:])
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, 1, s.Count())
}

func TestStoreRestoresFromStorage(t *testing.T) {
	ctx := context.Background()
	st := &brokenStorage{}
	s := newStore(t, vectorstore.WithStorage(st))
	require.NoError(t, s.Upsert(ctx, fixture()))
	before, err := s.Query(ctx, "water", 5, nil)
	require.NoError(t, err)

	reopened := newStore(t, vectorstore.WithStorage(st))
	assert.Equal(t, 5, reopened.Count())
	after, err := reopened.Query(ctx, "water", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestConcurrentUpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Upsert(ctx, fixture()))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				it := item(fmt.Sprintf("w%d-%d", w, i), "Gadget", "Electronics", "Acme", 9.99)
				assert.NoError(t, s.Upsert(ctx, []domain.Item{it}))
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				hits, err := s.Query(ctx, "gadget", 5, vectorstore.CategoryFilter("Electronics"))
				assert.NoError(t, err)
				assert.LessOrEqual(t, len(hits), 5)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5+4*20, s.Count())
}

func TestCancelledContextIsNotAnEmbeddingFailure(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Upsert(context.Background(), fixture()[:2]))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Upsert(ctx, fixture())
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrEmbedding)
	assert.Equal(t, 2, s.Count())

	_, err = s.Query(ctx, "headphones", 3, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrEmbedding)
}
