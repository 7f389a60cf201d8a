// Package memory holds the brute-force vector index used by the document store.
//
// Documents live in dense row slots. Each filterable metadata value has a
// roaring bitmap of the rows carrying it, so filtered queries only score
// matching rows. The index is not safe for concurrent use; the owning store
// serializes access.
package memory

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"productrag/internal/domain"
)

// Filterable metadata fields.
const (
	FieldCategory = "category"
	FieldBrand    = "brand"
)

// Fields lists every metadata field that can appear in a filter.
var Fields = []string{FieldCategory, FieldBrand}

// Index is an in-memory brute-force index using cosine distance.
type Index struct {
	dimension int
	rows      []domain.Document
	byID      map[string]uint32
	postings  map[string]map[string]*roaring.Bitmap
	all       *roaring.Bitmap
}

// NewIndex creates an empty index for vectors of the given dimension.
func NewIndex(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, errors.New("invalid dimension")
	}
	idx := &Index{
		dimension: dimension,
		byID:      make(map[string]uint32),
		postings:  make(map[string]map[string]*roaring.Bitmap, len(Fields)),
		all:       roaring.New(),
	}
	for _, f := range Fields {
		idx.postings[f] = make(map[string]*roaring.Bitmap)
	}
	return idx, nil
}

// Dimension returns the vector dimension accepted by the index.
func (x *Index) Dimension() int { return x.dimension }

// Len returns the number of distinct documents.
func (x *Index) Len() int { return len(x.byID) }

// Upsert inserts documents or replaces those with an existing id.
// All vectors are checked before any document is applied.
func (x *Index) Upsert(docs []domain.Document) error {
	for _, d := range docs {
		if len(d.Vector) != x.dimension {
			return fmt.Errorf("vector dimension mismatch for %q: expected %d, got %d", d.ID, x.dimension, len(d.Vector))
		}
	}
	for _, d := range docs {
		row, exists := x.byID[d.ID]
		if exists {
			x.unpost(row, x.rows[row].Metadata)
			x.rows[row] = d
		} else {
			row = uint32(len(x.rows))
			x.rows = append(x.rows, d)
			x.byID[d.ID] = row
			x.all.Add(row)
		}
		x.post(row, d.Metadata)
	}
	return nil
}

// Get returns the stored document for id.
func (x *Index) Get(id string) (domain.Document, bool) {
	row, ok := x.byID[id]
	if !ok {
		return domain.Document{}, false
	}
	return x.rows[row], true
}

// Search returns up to limit hits ordered by ascending distance, ties by id.
// Filter values must all match (AND). Unknown fields are rejected.
func (x *Index) Search(vector []float64, limit int, filter map[string]string) ([]domain.Hit, error) {
	if len(vector) != x.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", x.dimension, len(vector))
	}
	candidates, err := x.candidates(filter)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || candidates.IsEmpty() {
		return nil, nil
	}
	qnorm := norm(vector)
	hits := make([]domain.Hit, 0, candidates.GetCardinality())
	it := candidates.Iterator()
	for it.HasNext() {
		d := x.rows[it.Next()]
		hits = append(hits, domain.Hit{
			ID:       d.ID,
			Text:     d.Text,
			Metadata: d.Metadata,
			Distance: CosineDistance(vector, qnorm, d.Vector),
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})
	if limit < len(hits) {
		hits = hits[:limit]
	}
	return hits, nil
}

// ValidateFilter rejects filters naming fields that are not indexed.
func ValidateFilter(filter map[string]string) error {
	for field := range filter {
		if !isField(field) {
			return fmt.Errorf("unknown filter field %q (supported: %v)", field, Fields)
		}
	}
	return nil
}

func (x *Index) candidates(filter map[string]string) (*roaring.Bitmap, error) {
	if err := ValidateFilter(filter); err != nil {
		return nil, err
	}
	out := x.all.Clone()
	for field, value := range filter {
		bm, ok := x.postings[field][value]
		if !ok {
			return roaring.New(), nil
		}
		out.And(bm)
	}
	return out, nil
}

func (x *Index) post(row uint32, md domain.Metadata) {
	for field, value := range fieldValues(md) {
		bm, ok := x.postings[field][value]
		if !ok {
			bm = roaring.New()
			x.postings[field][value] = bm
		}
		bm.Add(row)
	}
}

func (x *Index) unpost(row uint32, md domain.Metadata) {
	for field, value := range fieldValues(md) {
		if bm, ok := x.postings[field][value]; ok {
			bm.Remove(row)
			if bm.IsEmpty() {
				delete(x.postings[field], value)
			}
		}
	}
}

func fieldValues(md domain.Metadata) map[string]string {
	return map[string]string{FieldCategory: md.Category, FieldBrand: md.Brand}
}

func isField(name string) bool {
	for _, f := range Fields {
		if f == name {
			return true
		}
	}
	return false
}

// CosineDistance maps cosine similarity into [0, 1]: (1 - cos) / 2.
// qnorm is the precomputed L2 norm of q. A zero vector on either side
// counts as orthogonal.
func CosineDistance(q []float64, qnorm float64, v []float64) float64 {
	vn := norm(v)
	if qnorm == 0 || vn == 0 {
		return 0.5
	}
	cos := dot(q, v) / (qnorm * vn)
	// clamp rounding noise
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return (1 - cos) / 2
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(v []float64) float64 {
	return math.Sqrt(dot(v, v))
}
