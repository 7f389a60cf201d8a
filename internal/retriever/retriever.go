// Package retriever turns document store hits into product records for
// callers such as the CLI and TUI.
package retriever

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/phuslu/log"

	"productrag/internal/domain"
	"productrag/internal/logger"
	"productrag/internal/vectorstore"
)

// Searcher is the part of the document store the retriever needs.
type Searcher interface {
	Query(ctx context.Context, text string, limit int, filter vectorstore.Filter) ([]domain.Hit, error)
	GetByID(id string) (domain.Item, bool)
	GetAllCategories() []string
	Count() int
}

// Record is one retrieved product.
type Record struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Price          float64 `json:"price"`
	Brand          string  `json:"brand"`
	Description    string  `json:"description"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Detail is the full view of a single item.
type Detail struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	Description   string                  `json:"description"`
	Category      string                  `json:"category"`
	Price         float64                 `json:"price"`
	Currency      string                  `json:"currency"`
	StockQuantity int                     `json:"stock_quantity"`
	Brand         string                  `json:"brand"`
	Attributes    map[string]domain.Value `json:"attributes"`
	InStock       bool                    `json:"in_stock"`
}

// NoResults is the summary returned for an empty record list.
const NoResults = "No products found matching your query."

// DefaultHybridAlpha weights vector and lexical relevance equally.
const DefaultHybridAlpha = 0.5

// Retriever answers product queries against a Searcher.
type Retriever struct {
	store  Searcher
	hybrid bool
	alpha  float64
	log    *log.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithHybrid blends vector relevance with lexical overlap:
// alpha*vector + (1-alpha)*lexical. alpha is clamped to [0, 1].
func WithHybrid(alpha float64) Option {
	return func(r *Retriever) {
		r.hybrid = true
		r.alpha = min(max(alpha, 0), 1)
	}
}

// WithLogger sets the logger for retrieval events.
func WithLogger(l *log.Logger) Option {
	return func(r *Retriever) {
		if l != nil {
			r.log = l
		}
	}
}

func New(store Searcher, opts ...Option) *Retriever {
	r := &Retriever{store: store, alpha: DefaultHybridAlpha, log: logger.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Hybrid reports whether lexical blending is enabled.
func (r *Retriever) Hybrid() bool { return r.hybrid }

// Retrieve returns up to topK records for query, most relevant first.
// An empty category searches the whole catalog.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, category string) ([]Record, error) {
	if topK < 0 {
		return nil, fmt.Errorf("%w: top_k must not be negative, got %d", domain.ErrInvalidArgument, topK)
	}
	filter := vectorstore.CategoryFilter(category)
	if !r.hybrid {
		hits, err := r.store.Query(ctx, query, topK, filter)
		if err != nil {
			return nil, err
		}
		out := make([]Record, len(hits))
		for i, h := range hits {
			out[i] = toRecord(h, 1-h.Distance)
		}
		return out, nil
	}
	return r.retrieveHybrid(ctx, query, topK, filter)
}

func (r *Retriever) retrieveHybrid(ctx context.Context, query string, topK int, filter vectorstore.Filter) ([]Record, error) {
	if topK == 0 {
		return nil, nil
	}
	hits, err := r.store.Query(ctx, query, r.store.Count(), filter)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	qset := toTokenSet(query)
	lexical := make([]float64, len(hits))
	best := 0.0
	for i, h := range hits {
		lexical[i] = overlapOchiai(qset, h.Text)
		best = max(best, lexical[i])
	}

	out := make([]Record, len(hits))
	for i, h := range hits {
		lex := 0.0
		if best > 0 {
			lex = lexical[i] / best
		}
		out[i] = toRecord(h, r.alpha*(1-h.Distance)+(1-r.alpha)*lex)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RelevanceScore != out[j].RelevanceScore {
			return out[i].RelevanceScore > out[j].RelevanceScore
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > topK {
		out = out[:topK]
	}
	r.log.Debug().Int("candidates", len(hits)).Int("top_k", topK).Msg("hybrid retrieval")
	return out, nil
}

func toRecord(h domain.Hit, score float64) Record {
	return Record{
		ID:             h.ID,
		Name:           h.Metadata.Name,
		Category:       h.Metadata.Category,
		Price:          h.Metadata.Price,
		Brand:          h.Metadata.Brand,
		Description:    h.Text,
		RelevanceScore: score,
	}
}

// GetItemDetails returns the full item for id.
func (r *Retriever) GetItemDetails(id string) (Detail, bool) {
	it, ok := r.store.GetByID(id)
	if !ok {
		return Detail{}, false
	}
	return Detail{
		ID:            it.ID,
		Name:          it.Name,
		Description:   it.Description,
		Category:      it.Category,
		Price:         it.Price,
		Currency:      it.CurrencyOrDefault(),
		StockQuantity: it.StockQuantity,
		Brand:         it.Brand,
		Attributes:    it.Attributes,
		InStock:       it.InStock(),
	}, true
}

// GetCategories lists the catalog categories in ascending order.
func (r *Retriever) GetCategories() []string {
	return r.store.GetAllCategories()
}

// FormatSummary renders records as a numbered markdown list.
func FormatSummary(records []Record) string {
	if len(records) == 0 {
		return NoResults
	}
	var b strings.Builder
	b.WriteString("Found the following products:\n\n")
	for i, rec := range records {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, rec.Name)
		fmt.Fprintf(&b, "   - ID: %s\n", rec.ID)
		fmt.Fprintf(&b, "   - Category: %s\n", rec.Category)
		fmt.Fprintf(&b, "   - Price: $%.2f\n", rec.Price)
		if rec.Brand != "" {
			fmt.Fprintf(&b, "   - Brand: %s\n", rec.Brand)
		}
		fmt.Fprintf(&b, "   - Relevance: %.0f%%\n\n", rec.RelevanceScore*100)
	}
	return b.String()
}
