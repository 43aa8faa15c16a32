// Package margins implements spec's ArrayMargins: a bundle of marginal-sum
// arrays tagged with a DimIndices, with construction-from-array and the
// scalar/overlap consistency checks and corrections the IPF engine relies
// on.
package margins

import (
	"fmt"

	"github.com/causalgo/ipf/internal/align"
	"github.com/causalgo/ipf/internal/dimidx"
	"github.com/causalgo/ipf/internal/ipferr"
	"github.com/causalgo/ipf/internal/ndarray"
	"gonum.org/v1/gonum/floats"
)

// ArrayMargins pairs a DimIndices with one marginal-sum array per group.
type ArrayMargins[F ndarray.Float] struct {
	di     *dimidx.DimIndices
	arrays []*ndarray.Array[F]
	size   []int // derived global shape, indexed by 0-based axis
}

// FromArrays validates shape-consistency (every axis reports the same
// extent across every margin that covers it) and builds an ArrayMargins.
func FromArrays[F ndarray.Float](arrays []*ndarray.Array[F], di *dimidx.DimIndices) (*ArrayMargins[F], error) {
	if len(arrays) != di.Count() {
		return nil, fmt.Errorf("%w: got %d arrays for %d margins", ipferr.ErrShapeMismatch, len(arrays), di.Count())
	}

	size := make([]int, di.Rank())
	seen := make([]bool, di.Rank())
	for j, arr := range arrays {
		group := di.Group(j)
		if arr.Rank() != len(group) {
			return nil, fmt.Errorf("%w: margin %d has rank %d, want %d (group %v)", ipferr.ErrShapeMismatch, j, arr.Rank(), len(group), group)
		}
		shape := arr.Shape()
		for i, ax := range group {
			if seen[ax] && size[ax] != shape[i] {
				return nil, fmt.Errorf("%w: axis %d reported as extent %d by an earlier margin and %d by margin %d", ipferr.ErrShapeMismatch, ax+1, size[ax], shape[i], j)
			}
			size[ax] = shape[i]
			seen[ax] = true
		}
	}
	for ax, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("%w: axis %d has no margin reporting its extent", ipferr.ErrShapeMismatch, ax+1)
		}
	}

	return &ArrayMargins[F]{di: di, arrays: append([]*ndarray.Array[F](nil), arrays...), size: size}, nil
}

// FromArraysDefault builds an ArrayMargins using DefaultFor to assign
// non-overlapping, traversal-order axis groups when the caller supplies no
// explicit DimIndices.
func FromArraysDefault[F ndarray.Float](arrays []*ndarray.Array[F]) (*ArrayMargins[F], error) {
	ranks := make([]int, len(arrays))
	for i, a := range arrays {
		ranks[i] = a.Rank()
	}
	di, err := dimidx.DefaultFor(ranks)
	if err != nil {
		return nil, err
	}
	return FromArrays(arrays, di)
}

// FromArray computes each margin A_j by summing x over the complement of
// S_j, preserving S_j's declared (possibly unsorted) axis order.
func FromArray[F ndarray.Float](x *ndarray.Array[F], di *dimidx.DimIndices) (*ArrayMargins[F], error) {
	if x.Rank() != di.Rank() {
		return nil, fmt.Errorf("%w: seed has rank %d, dim indices declare rank %d", ipferr.ErrShapeMismatch, x.Rank(), di.Rank())
	}
	arrays := make([]*ndarray.Array[F], di.Count())
	for j := 0; j < di.Count(); j++ {
		arrays[j] = x.SumAxes(di.Group(j))
	}
	return FromArrays(arrays, di)
}

// DimIndices returns the backing DimIndices.
func (m *ArrayMargins[F]) DimIndices() *dimidx.DimIndices { return m.di }

// Size returns the global per-axis extents derived from the margins.
func (m *ArrayMargins[F]) Size() []int { return append([]int(nil), m.size...) }

// Array returns the j-th margin array, in declared axis order.
func (m *ArrayMargins[F]) Array(j int) *ndarray.Array[F] { return m.arrays[j] }

// Arrays returns all margin arrays, in declared axis order.
func (m *ArrayMargins[F]) Arrays() []*ndarray.Array[F] {
	return append([]*ndarray.Array[F](nil), m.arrays...)
}

// ScalarConsistent reports whether max(sum(A_j)) - min(sum(A_j)) < tol.
func (m *ArrayMargins[F]) ScalarConsistent(tol F) bool {
	sums := m.sums()
	return floats.Max(sums)-floats.Min(sums) < float64(tol)
}

func (m *ArrayMargins[F]) sums() []float64 {
	sums := make([]float64, len(m.arrays))
	for j, a := range m.arrays {
		sums[j] = float64(a.Sum())
	}
	return sums
}

// ToProportions returns a new ArrayMargins where each A_j is divided by its
// own sum, so every margin now sums to 1.
func (m *ArrayMargins[F]) ToProportions() *ArrayMargins[F] {
	out := make([]*ndarray.Array[F], len(m.arrays))
	for j, a := range m.arrays {
		total := a.Sum()
		cl := a.Clone()
		raw := cl.Raw()
		for i := range raw {
			if total != 0 {
				raw[i] /= total
			}
		}
		out[j] = cl
	}
	return &ArrayMargins[F]{di: m.di, arrays: out, size: m.size}
}

// reduceOntoSubset reduces margin j onto the (ascending, canonical) subset
// T ⊆ S_j, returning an array ordered by T ascending.
func (m *ArrayMargins[F]) reduceOntoSubset(j int, t []int) *ndarray.Array[F] {
	group := m.di.Group(j)
	pos := make(map[int]int, len(group))
	for i, ax := range group {
		pos[ax] = i
	}
	keepPositions := make([]int, len(t))
	for i, ax := range t {
		keepPositions[i] = pos[ax]
	}
	return m.arrays[j].SumAxes(keepPositions)
}

// OverlapConsistent checks, for every shared axis subset T, that every
// margin covering T reduces onto T to the same (within tol) array.
func (m *ArrayMargins[F]) OverlapConsistent(tol F) bool {
	ok := true
	for _, t := range m.di.SharedSubsets() {
		participants := m.participantsFor(t)
		if len(participants) < 2 {
			continue
		}
		ref := m.reduceOntoSubset(participants[0], t)
		for _, j := range participants[1:] {
			red := m.reduceOntoSubset(j, t)
			if ndarray.MaxAbsDiff(ref, red) >= tol {
				ok = false
			}
		}
	}
	return ok
}

func (m *ArrayMargins[F]) participantsFor(t []int) []int {
	var js []int
	for j := 0; j < m.di.Count(); j++ {
		if m.di.Contains(j, t) {
			js = append(js, j)
		}
	}
	return js
}

// MakeOverlapConsistent returns a new ArrayMargins where, for every shared
// subset T, every participating margin has been rescaled along its
// complement-of-T-within-S_j so that its reduction onto T equals the
// arithmetic mean of all participants' reductions. Idempotent on already
// consistent input.
func (m *ArrayMargins[F]) MakeOverlapConsistent() *ArrayMargins[F] {
	out := make([]*ndarray.Array[F], len(m.arrays))
	for j, a := range m.arrays {
		out[j] = a.Clone()
	}

	for _, t := range m.di.SharedSubsets() {
		participants := m.participantsFor(t)
		if len(participants) < 2 {
			continue
		}

		reductions := make([]*ndarray.Array[F], len(participants))
		for i, j := range participants {
			reductions[i] = m.reduceOntoSubset(j, t)
		}
		mean := meanOf(reductions)

		for i, j := range participants {
			ratio, err := ndarray.DivElem(mean, reductions[i])
			if err != nil {
				continue
			}
			group := m.di.Group(j)
			aligned, err := align.Broadcast(ratio, t, group)
			if err != nil {
				continue
			}
			_ = ndarray.MulElemInto(out[j], aligned)
		}
	}

	return &ArrayMargins[F]{di: m.di, arrays: out, size: m.size}
}

func meanOf[F ndarray.Float](arrs []*ndarray.Array[F]) *ndarray.Array[F] {
	sum := arrs[0].Clone()
	raw := sum.Raw()
	for _, a := range arrs[1:] {
		other := a.Raw()
		for i := range raw {
			raw[i] += other[i]
		}
	}
	n := F(len(arrs))
	for i := range raw {
		raw[i] /= n
	}
	return sum
}
