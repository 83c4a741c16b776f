// Package vector holds the numeric representations shared by vectorizers and
// the ranker: feature spaces, sparse/dense row vectors and row-ordered matrices.
package vector

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/newsrec/internal/domain"
)

// Space identifies a fitted feature space. Two vectors are comparable only
// when they point at the same Space; a re-fit produces a new Space.
type Space struct {
	name string
	dim  int
}

// NewSpace creates a feature space with dim columns.
func NewSpace(name string, dim int) *Space {
	return &Space{name: name, dim: dim}
}

// Name returns the producing strategy name.
func (s *Space) Name() string { return s.name }

// Dim returns the number of features.
func (s *Space) Dim() int { return s.dim }

// Vector is a single row in a Space. Sparse vectors keep strictly ascending
// indices; dense vectors have nil indices and exactly Dim values.
type Vector struct {
	space   *Space
	indices []int
	values  []float64
	norm    float64
}

// Sparse creates a sparse vector. indices must be strictly ascending and within the space.
func Sparse(space *Space, indices []int, values []float64) (Vector, error) {
	if space == nil {
		return Vector{}, fmt.Errorf("sparse vector: nil space")
	}
	if len(indices) != len(values) {
		return Vector{}, fmt.Errorf("sparse vector: %d indices for %d values", len(indices), len(values))
	}
	for i, idx := range indices {
		if idx < 0 || idx >= space.dim {
			return Vector{}, fmt.Errorf("sparse vector: index %d out of range [0,%d)", idx, space.dim)
		}
		if i > 0 && idx <= indices[i-1] {
			return Vector{}, fmt.Errorf("sparse vector: indices not strictly ascending at %d", i)
		}
	}
	if indices == nil {
		indices = []int{}
	}
	return Vector{space: space, indices: indices, values: values, norm: l2(values)}, nil
}

// Dense creates a dense vector with exactly space.Dim() values.
func Dense(space *Space, values []float64) (Vector, error) {
	if space == nil {
		return Vector{}, fmt.Errorf("dense vector: nil space")
	}
	if len(values) != space.dim {
		return Vector{}, fmt.Errorf("dense vector: got %d values, space %q has %d dims: %w",
			len(values), space.name, space.dim, domain.ErrSpaceMismatch)
	}
	return Vector{space: space, values: values, norm: l2(values)}, nil
}

// FromFloat32 widens an embedding into a dense vector. A NaN or infinite
// component is reported as a provider error.
func FromFloat32(space *Space, values []float32) (Vector, error) {
	wide := make([]float64, len(values))
	for i, v := range values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Vector{}, fmt.Errorf("embedding component %d is %v: %w", i, v, domain.ErrEmbeddingProviderError)
		}
		wide[i] = f
	}
	return Dense(space, wide)
}

// Space returns the feature space.
func (v Vector) Space() *Space { return v.space }

// IsSparse reports whether v stores only non-zero features.
func (v Vector) IsSparse() bool { return v.indices != nil }

// Norm returns the Euclidean length.
func (v Vector) Norm() float64 { return v.norm }

// NNZ returns the number of stored features.
func (v Vector) NNZ() int { return len(v.values) }

// At returns the value of feature i.
func (v Vector) At(i int) float64 {
	if v.indices == nil {
		if i < 0 || i >= len(v.values) {
			return 0
		}
		return v.values[i]
	}
	j := sort.SearchInts(v.indices, i)
	if j < len(v.indices) && v.indices[j] == i {
		return v.values[j]
	}
	return 0
}

// Dot returns the inner product of two vectors of the same space.
func Dot(a, b Vector) (float64, error) {
	if a.space == nil || a.space != b.space {
		return 0, fmt.Errorf("dot %s·%s: %w", spaceName(a.space), spaceName(b.space), domain.ErrSpaceMismatch)
	}
	switch {
	case a.indices != nil && b.indices != nil:
		return dotSparse(a, b), nil
	case a.indices != nil:
		return dotSparseDense(a, b), nil
	case b.indices != nil:
		return dotSparseDense(b, a), nil
	default:
		sum := 0.0
		for i := range a.values {
			sum += a.values[i] * b.values[i]
		}
		return sum, nil
	}
}

// Cosine returns the cosine similarity clamped to [-1, 1]. A zero vector
// has similarity 0 with everything.
func Cosine(a, b Vector) (float64, error) {
	dot, err := Dot(a, b)
	if err != nil {
		return 0, err
	}
	if a.norm == 0 || b.norm == 0 {
		return 0, nil
	}
	return math.Max(-1, math.Min(1, dot/(a.norm*b.norm))), nil
}

func dotSparse(a, b Vector) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(a.indices) && j < len(b.indices) {
		switch {
		case a.indices[i] == b.indices[j]:
			sum += a.values[i] * b.values[j]
			i++
			j++
		case a.indices[i] < b.indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

func dotSparseDense(s, d Vector) float64 {
	sum := 0.0
	for k, idx := range s.indices {
		sum += s.values[k] * d.values[idx]
	}
	return sum
}

// l2 sums squares in ascending magnitude so that vectors holding the same
// multiset of values get bit-identical norms regardless of feature order.
func l2(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sq := make([]float64, len(values))
	for i, v := range values {
		sq[i] = v * v
	}
	sort.Float64s(sq)
	sum := 0.0
	for _, v := range sq {
		sum += v
	}
	return math.Sqrt(sum)
}

func spaceName(s *Space) string {
	if s == nil {
		return "<nil>"
	}
	return s.name
}

// Matrix is an immutable, row-ordered collection of vectors in one space.
// Row i always corresponds to the document with id i.
type Matrix struct {
	space *Space
	rows  []Vector
}

// NewMatrix creates a matrix; every row must belong to space.
func NewMatrix(space *Space, rows []Vector) (Matrix, error) {
	for i, r := range rows {
		if r.space != space {
			return Matrix{}, fmt.Errorf("matrix row %d: %w", i, domain.ErrSpaceMismatch)
		}
	}
	return Matrix{space: space, rows: rows}, nil
}

// Space returns the feature space.
func (m Matrix) Space() *Space { return m.space }

// Rows returns the number of rows.
func (m Matrix) Rows() int { return len(m.rows) }

// Row returns row i.
func (m Matrix) Row(i int) (Vector, error) {
	if i < 0 || i >= len(m.rows) {
		return Vector{}, fmt.Errorf("row %d out of range [0,%d)", i, len(m.rows))
	}
	return m.rows[i], nil
}
