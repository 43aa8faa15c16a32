// Package factors implements spec's ArrayFactors: a bundle of multiplicative
// factor arrays tagged with a DimIndices, supporting materialization into a
// full-rank array and in-place application to a caller-supplied array.
package factors

import (
	"fmt"

	"github.com/causalgo/ipf/internal/align"
	"github.com/causalgo/ipf/internal/dimidx"
	"github.com/causalgo/ipf/internal/ipferr"
	"github.com/causalgo/ipf/internal/ndarray"
)

// ArrayFactors pairs a DimIndices with one factor array per group, each
// in declared (possibly unsorted) axis order.
type ArrayFactors[F ndarray.Float] struct {
	di     *dimidx.DimIndices
	arrays []*ndarray.Array[F]
	size   []int
}

// FromArrays enforces the same shape-consistency policy as
// margins.FromArrays and builds an ArrayFactors.
func FromArrays[F ndarray.Float](arrays []*ndarray.Array[F], di *dimidx.DimIndices) (*ArrayFactors[F], error) {
	if len(arrays) != di.Count() {
		return nil, fmt.Errorf("%w: got %d arrays for %d factors", ipferr.ErrShapeMismatch, len(arrays), di.Count())
	}

	size := make([]int, di.Rank())
	seen := make([]bool, di.Rank())
	for j, arr := range arrays {
		group := di.Group(j)
		if arr.Rank() != len(group) {
			return nil, fmt.Errorf("%w: factor %d has rank %d, want %d (group %v)", ipferr.ErrShapeMismatch, j, arr.Rank(), len(group), group)
		}
		shape := arr.Shape()
		for i, ax := range group {
			if seen[ax] && size[ax] != shape[i] {
				return nil, fmt.Errorf("%w: axis %d reported as extent %d by an earlier factor and %d by factor %d", ipferr.ErrShapeMismatch, ax+1, size[ax], shape[i], j)
			}
			size[ax] = shape[i]
			seen[ax] = true
		}
	}
	for ax, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("%w: axis %d has no factor reporting its extent", ipferr.ErrShapeMismatch, ax+1)
		}
	}

	return &ArrayFactors[F]{di: di, arrays: append([]*ndarray.Array[F](nil), arrays...), size: size}, nil
}

// DimIndices returns the backing DimIndices.
func (f *ArrayFactors[F]) DimIndices() *dimidx.DimIndices { return f.di }

// Size returns the global per-axis extents.
func (f *ArrayFactors[F]) Size() []int { return append([]int(nil), f.size...) }

// Array returns the j-th factor array, in declared axis order.
func (f *ArrayFactors[F]) Array(j int) *ndarray.Array[F] { return f.arrays[j] }

// Arrays returns all factor arrays, in declared axis order.
func (f *ArrayFactors[F]) Arrays() []*ndarray.Array[F] {
	return append([]*ndarray.Array[F](nil), f.arrays...)
}

// universe is the ascending 0..D-1 axis-label order the engine and
// materialization both align against.
func (f *ArrayFactors[F]) universe() []int {
	u := make([]int, f.di.Rank())
	for i := range u {
		u[i] = i
	}
	return u
}

// Materialize allocates M = ones(size) and multiplies in each factor's
// full-rank broadcast view, in declared margin order.
func (f *ArrayFactors[F]) Materialize() (*ndarray.Array[F], error) {
	m := ndarray.Ones[F](f.size)
	if err := f.ApplyInPlace(m); err != nil {
		return nil, err
	}
	return m, nil
}

// ApplyInPlace multiplies every factor, as a full-rank broadcast view, into
// x in place. x's shape must equal Size(); this is the no-scratch path
// spec's §5 resource model names.
func (f *ArrayFactors[F]) ApplyInPlace(x *ndarray.Array[F]) error {
	shape := x.Shape()
	for i, d := range f.size {
		if shape[i] != d {
			return fmt.Errorf("%w: array has extent %d on axis %d, factors declare %d", ipferr.ErrShapeMismatch, shape[i], i+1, d)
		}
	}

	universe := f.universe()
	for j, arr := range f.arrays {
		aligned, err := align.Broadcast(arr, f.di.Group(j), universe)
		if err != nil {
			return fmt.Errorf("factors: aligning factor %d: %w", j, err)
		}
		if err := ndarray.MulElemInto(x, aligned); err != nil {
			return fmt.Errorf("factors: applying factor %d: %w", j, err)
		}
	}
	return nil
}
