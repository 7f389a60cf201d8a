// Package hash implements a deterministic, dependency-free text embedder.
//
// Every output component is derived from a SHA-256 digest of the normalized
// text suffixed with the component index, so the same text always maps to
// the same vector. The vectors carry no semantic meaning.
package hash

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strconv"
	"strings"
)

// DefaultDimension is used when a non-positive dimension is requested.
const DefaultDimension = 384

// Name identifies this embedding scheme in persisted indexes.
const Name = "simple_hash_embedding"

// Embedder maps text to vectors in [-1, 1]^D.
type Embedder struct {
	dimension int
}

// New creates a hash embedder producing vectors of the given dimension.
func New(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{dimension: dimension}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return Name }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns one vector per text.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.vector(t)
	}
	return out, nil
}

// Normalize applies the text normalization used before hashing.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func (e *Embedder) vector(text string) []float64 {
	norm := Normalize(text)
	vec := make([]float64, e.dimension)
	buf := make([]byte, 0, len(norm)+8)
	for i := range vec {
		buf = append(buf[:0], norm...)
		buf = append(buf, '_')
		buf = strconv.AppendInt(buf, int64(i), 10)
		sum := sha256.Sum256(buf)
		u := binary.BigEndian.Uint32(sum[:4])
		vec[i] = float64(u)/math.MaxUint32*2 - 1
	}
	return vec
}
