// Package sqlite persists indexed documents in a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/phuslu/log"
	_ "modernc.org/sqlite" // SQLite driver

	"productrag/internal/domain"
	"productrag/internal/vectorstore"
)

// Storage is a vectorstore.Storage backed by SQLite.
type Storage struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

var _ vectorstore.Storage = (*Storage)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS scheme (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS documents (
    id       TEXT PRIMARY KEY,
    category TEXT NOT NULL,
    brand    TEXT NOT NULL,
    vector   BLOB NOT NULL,
    text     TEXT NOT NULL,
    item     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_category ON documents(category);
`

// Open opens (creating if needed) <dir>/<collection>.db.
func Open(dir, collection string, logger *log.Logger) (*Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: sqlite storage needs a directory", domain.ErrStoreUnavailable)
	}
	if collection == "" {
		collection = "products"
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %v", domain.ErrStoreUnavailable, err)
	}
	path := filepath.Join(dir, collection+".db")
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", domain.ErrStoreUnavailable, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: opening database: %v", domain.ErrStoreUnavailable, err)
	}
	if logger != nil {
		logger.Debug().Str("path", path).Msg("opened sqlite storage")
	}
	return &Storage{db: db, path: path, logger: logger}, nil
}

// Path returns the database file path.
func (s *Storage) Path() string { return s.path }

func (s *Storage) Init(ctx context.Context, sc vectorstore.Scheme) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: running migrations: %v", domain.ErrStoreUnavailable, err)
	}
	stored, ok, err := s.readScheme(ctx)
	if err != nil {
		return err
	}
	if ok {
		if stored != sc {
			return fmt.Errorf("%w: index built with %s/%d, embedder is %s/%d",
				domain.ErrSchemeMismatch, stored.Embedder, stored.Dimension, sc.Embedder, sc.Dimension)
		}
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO scheme(key, value) VALUES ('embedder', ?), ('dimension', ?)`,
			sc.Embedder, strconv.Itoa(sc.Dimension)); err != nil {
			return err
		}
		return nil
	})
}

func (s *Storage) readScheme(ctx context.Context) (vectorstore.Scheme, bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM scheme`)
	if err != nil {
		return vectorstore.Scheme{}, false, fmt.Errorf("%w: reading scheme: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()
	var sc vectorstore.Scheme
	found := false
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return vectorstore.Scheme{}, false, fmt.Errorf("%w: reading scheme: %v", domain.ErrStoreUnavailable, err)
		}
		found = true
		switch k {
		case "embedder":
			sc.Embedder = v
		case "dimension":
			sc.Dimension, _ = strconv.Atoi(v)
		}
	}
	if err := rows.Err(); err != nil {
		return vectorstore.Scheme{}, false, fmt.Errorf("%w: reading scheme: %v", domain.ErrStoreUnavailable, err)
	}
	return sc, found, nil
}

func (s *Storage) Load(ctx context.Context) ([]vectorstore.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, vector, text, item FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: loading documents: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()
	var out []vectorstore.Entry
	for rows.Next() {
		var (
			id, text, itemJSON string
			blob               []byte
		)
		if err := rows.Scan(&id, &blob, &text, &itemJSON); err != nil {
			return nil, fmt.Errorf("%w: scanning document: %v", domain.ErrStoreUnavailable, err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("%w: document %q: %v", domain.ErrStoreUnavailable, id, err)
		}
		var item domain.Item
		if err := json.Unmarshal([]byte(itemJSON), &item); err != nil {
			return nil, fmt.Errorf("%w: document %q: %v", domain.ErrStoreUnavailable, id, err)
		}
		out = append(out, vectorstore.Entry{
			Document: domain.Document{ID: id, Vector: vec, Metadata: domain.MetadataOf(item), Text: text},
			Item:     item,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loading documents: %v", domain.ErrStoreUnavailable, err)
	}
	return out, nil
}

func (s *Storage) Upsert(ctx context.Context, entries []vectorstore.Entry) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO documents(id, category, brand, vector, text, item)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				category = excluded.category,
				brand    = excluded.brand,
				vector   = excluded.vector,
				text     = excluded.text,
				item     = excluded.item`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, e := range entries {
			itemJSON, err := json.Marshal(e.Item)
			if err != nil {
				return err
			}
			d := e.Document
			if _, err := stmt.ExecContext(ctx, d.ID, d.Metadata.Category, d.Metadata.Brand,
				encodeVector(d.Vector), d.Text, string(itemJSON)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: writing documents: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// encodeVector stores each component as a little-endian float64.
func encodeVector(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, errors.New("corrupt vector blob")
	}
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v, nil
}
