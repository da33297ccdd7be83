// Package retrieval provides exact nearest-neighbour search over the
// knowledge base title embeddings.
package retrieval

import (
	"errors"
	"fmt"
	"sort"
)

// ErrVectorDimensionMismatch indicates a dimension mismatch.
var ErrVectorDimensionMismatch = errors.New("vector dimension mismatch")

// Neighbor is one search hit. Distance is the squared L2 distance.
type Neighbor struct {
	ID       int
	Distance float32
}

// FlatIndex is an exact, brute-force L2 index. It is immutable after
// construction and safe for concurrent reads.
type FlatIndex struct {
	dimension int
	vectors   [][]float32
}

// NewFlatIndex builds an index over vectors. Vector i gets ID i.
func NewFlatIndex(vectors [][]float32) (*FlatIndex, error) {
	idx := &FlatIndex{}
	if len(vectors) == 0 {
		return idx, nil
	}

	idx.dimension = len(vectors[0])
	idx.vectors = make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != idx.dimension {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d: %w", i, len(v), idx.dimension, ErrVectorDimensionMismatch)
		}
		cp := make([]float32, len(v))
		copy(cp, v)
		idx.vectors[i] = cp
	}
	return idx, nil
}

// Len returns the number of indexed vectors.
func (x *FlatIndex) Len() int {
	return len(x.vectors)
}

// Dimension returns the vector dimension, or 0 for an empty index.
func (x *FlatIndex) Dimension() int {
	return x.dimension
}

// Search returns the min(k, Len()) nearest vectors, nearest first. Equal
// distances keep insertion order.
func (x *FlatIndex) Search(query []float32, k int) ([]Neighbor, error) {
	if len(x.vectors) == 0 || k <= 0 {
		return []Neighbor{}, nil
	}
	if len(query) != x.dimension {
		return nil, fmt.Errorf("query has dimension %d, want %d: %w", len(query), x.dimension, ErrVectorDimensionMismatch)
	}

	results := make([]Neighbor, len(x.vectors))
	for i, v := range x.vectors {
		results[i] = Neighbor{ID: i, Distance: squaredL2(query, v)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
