// Package badger persists indexed documents in a Badger key-value store
// through badgerhold.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/phuslu/log"
	"github.com/timshannon/badgerhold/v4"

	"productrag/internal/domain"
	"productrag/internal/vectorstore"
)

const schemeKey = "scheme"

// Storage is a vectorstore.Storage backed by badgerhold.
type Storage struct {
	store  *badgerhold.Store
	path   string
	logger *log.Logger
}

var _ vectorstore.Storage = (*Storage)(nil)

// documentRecord is the persisted shape of one entry. Attribute values are
// flattened so the gob encoder sees only concrete types.
type documentRecord struct {
	ID       string
	Category string `badgerhold:"index"`
	Vector   []float64
	Text     string
	Item     itemRecord
}

type itemRecord struct {
	ID            string
	Name          string
	Description   string
	Category      string
	Price         float64
	Currency      string
	StockQuantity int
	Brand         string
	Attributes    []attributeRecord
}

type attributeRecord struct {
	Key    string
	Kind   domain.ValueKind
	String string
	Number float64
	Bool   bool
}

type schemeRecord struct {
	Embedder  string
	Dimension int
}

// Open opens (creating if needed) the badger directory <dir>/<collection>.
func Open(dir, collection string, logger *log.Logger) (*Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: badger storage needs a directory", domain.ErrStoreUnavailable)
	}
	if collection == "" {
		collection = "products"
	}
	path := filepath.Join(dir, collection)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating database directory: %v", domain.ErrStoreUnavailable, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("%w: opening badger database: %v", domain.ErrStoreUnavailable, err)
	}
	if logger != nil {
		logger.Debug().Str("path", path).Msg("opened badger storage")
	}
	return &Storage{store: store, path: path, logger: logger}, nil
}

// Path returns the database directory.
func (s *Storage) Path() string { return s.path }

func (s *Storage) Init(ctx context.Context, sc vectorstore.Scheme) error {
	var stored schemeRecord
	err := s.store.Get(schemeKey, &stored)
	switch {
	case errors.Is(err, badgerhold.ErrNotFound):
		if err := s.store.Insert(schemeKey, schemeRecord{Embedder: sc.Embedder, Dimension: sc.Dimension}); err != nil {
			return fmt.Errorf("%w: writing scheme: %v", domain.ErrStoreUnavailable, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("%w: reading scheme: %v", domain.ErrStoreUnavailable, err)
	}
	if stored.Embedder != sc.Embedder || stored.Dimension != sc.Dimension {
		return fmt.Errorf("%w: index built with %s/%d, embedder is %s/%d",
			domain.ErrSchemeMismatch, stored.Embedder, stored.Dimension, sc.Embedder, sc.Dimension)
	}
	return nil
}

func (s *Storage) Load(ctx context.Context) ([]vectorstore.Entry, error) {
	var records []documentRecord
	if err := s.store.Find(&records, nil); err != nil {
		return nil, fmt.Errorf("%w: loading documents: %v", domain.ErrStoreUnavailable, err)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	out := make([]vectorstore.Entry, len(records))
	for i, r := range records {
		item := r.Item.toItem()
		out[i] = vectorstore.Entry{
			Document: domain.Document{ID: r.ID, Vector: r.Vector, Metadata: domain.MetadataOf(item), Text: r.Text},
			Item:     item,
		}
	}
	return out, nil
}

// Upsert writes all entries in one badger transaction.
func (s *Storage) Upsert(ctx context.Context, entries []vectorstore.Entry) error {
	err := s.store.Badger().Update(func(tx *badgerdb.Txn) error {
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec := documentRecord{
				ID:       e.Document.ID,
				Category: e.Document.Metadata.Category,
				Vector:   e.Document.Vector,
				Text:     e.Document.Text,
				Item:     fromItem(e.Item),
			}
			if err := s.store.TxUpsert(tx, rec.ID, rec); err != nil {
				return fmt.Errorf("saving document %q: %w", rec.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

func fromItem(it domain.Item) itemRecord {
	r := itemRecord{
		ID:            it.ID,
		Name:          it.Name,
		Description:   it.Description,
		Category:      it.Category,
		Price:         it.Price,
		Currency:      it.Currency,
		StockQuantity: it.StockQuantity,
		Brand:         it.Brand,
	}
	for k, v := range it.Attributes {
		a := attributeRecord{Key: k, Kind: v.Kind()}
		switch x := v.Interface().(type) {
		case string:
			a.String = x
		case float64:
			a.Number = x
		case bool:
			a.Bool = x
		}
		r.Attributes = append(r.Attributes, a)
	}
	return r
}

func (r itemRecord) toItem() domain.Item {
	it := domain.Item{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Category:      r.Category,
		Price:         r.Price,
		Currency:      r.Currency,
		StockQuantity: r.StockQuantity,
		Brand:         r.Brand,
	}
	if len(r.Attributes) > 0 {
		it.Attributes = make(map[string]domain.Value, len(r.Attributes))
		for _, a := range r.Attributes {
			switch a.Kind {
			case domain.KindNumber:
				it.Attributes[a.Key] = domain.NumberValue(a.Number)
			case domain.KindBool:
				it.Attributes[a.Key] = domain.BoolValue(a.Bool)
			default:
				it.Attributes[a.Key] = domain.StringValue(a.String)
			}
		}
	}
	return it
}
