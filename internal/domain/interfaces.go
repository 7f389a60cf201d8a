package domain

import "context"

// Metadata is the denormalized subset of an item kept next to its vector
// for filtering and display.
type Metadata struct {
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	Brand         string  `json:"brand"`
	StockQuantity int     `json:"stock_quantity"`
}

// Document is the indexed form of a single catalog item.
type Document struct {
	ID       string
	Vector   []float64
	Metadata Metadata
	Text     string
}

// Hit is a raw nearest-neighbor match returned by a document store.
// Distance lies in [0, 1], lower is closer.
type Hit struct {
	ID       string
	Text     string
	Metadata Metadata
	Distance float64
}

// Embedder converts free text into fixed-dimension numeric vectors.
// Implementations must return exactly one vector per input text.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// MetadataOf derives the document metadata snapshot for an item.
func MetadataOf(it Item) Metadata {
	return Metadata{
		Name:          it.Name,
		Category:      it.Category,
		Price:         it.Price,
		Brand:         it.Brand,
		StockQuantity: it.StockQuantity,
	}
}
