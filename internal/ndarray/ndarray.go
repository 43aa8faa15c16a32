// Package ndarray provides a minimal N-dimensional array: shape, sum along a
// subset of axes, axis permutation, and broadcasting elementwise arithmetic.
// Data is stored flattened in row-major (C-contiguous) order, the same
// convention causalgo's internal/entropy.NDArray and internal/histogram use
// for their flattened probability arrays.
package ndarray

import "fmt"

// Float is the set of precisions the engine is parameterized over.
type Float interface {
	~float32 | ~float64
}

// Array is a flat, row-major, rank-D array of precision F.
type Array[F Float] struct {
	data  []F
	shape []int
}

// New allocates a zero-valued array with the given shape.
func New[F Float](shape []int) *Array[F] {
	n := size(shape)
	return &Array[F]{data: make([]F, n), shape: append([]int(nil), shape...)}
}

// FromSlice wraps data (row-major) with the given shape. data is used
// directly, not copied; len(data) must equal the product of shape.
func FromSlice[F Float](data []F, shape []int) (*Array[F], error) {
	if len(data) != size(shape) {
		return nil, fmt.Errorf("ndarray: data length %d does not match shape %v (size %d)", len(data), shape, size(shape))
	}
	return &Array[F]{data: data, shape: append([]int(nil), shape...)}, nil
}

// Ones allocates an array of the given shape filled with 1.
func Ones[F Float](shape []int) *Array[F] {
	a := New[F](shape)
	for i := range a.data {
		a.data[i] = 1
	}
	return a
}

func size(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Shape returns a copy of the array's dimensions.
func (a *Array[F]) Shape() []int {
	return append([]int(nil), a.shape...)
}

// Rank returns the number of axes.
func (a *Array[F]) Rank() int { return len(a.shape) }

// Len returns the total number of elements.
func (a *Array[F]) Len() int { return len(a.data) }

// Raw exposes the underlying flat row-major slice. Callers must not retain
// it across mutating calls on the array.
func (a *Array[F]) Raw() []F { return a.data }

// At returns the element at the given multi-index.
func (a *Array[F]) At(idx ...int) F {
	return a.data[flatIndex(a.shape, idx)]
}

// Set writes the element at the given multi-index.
func (a *Array[F]) Set(v F, idx ...int) {
	a.data[flatIndex(a.shape, idx)] = v
}

// Clone returns a deep copy.
func (a *Array[F]) Clone() *Array[F] {
	cp := make([]F, len(a.data))
	copy(cp, a.data)
	return &Array[F]{data: cp, shape: a.Shape()}
}

// Sum returns the sum of all elements.
func (a *Array[F]) Sum() F {
	var s F
	for _, v := range a.data {
		s += v
	}
	return s
}

// flatToMulti converts a flat index to a multi-index, row-major, matching
// causalgo's internal/entropy.flatToMultiIndex.
func flatToMulti(shape []int, flat int, out []int) {
	for i := len(shape) - 1; i >= 0; i-- {
		out[i] = flat % shape[i]
		flat /= shape[i]
	}
}

// flatIndex converts a multi-index to a flat index, row-major, matching
// causalgo's internal/entropy.multiToFlatIndex.
func flatIndex(shape, idx []int) int {
	flat := 0
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		flat += idx[i] * stride
		stride *= shape[i]
	}
	return flat
}

// SumAxes marginalizes the array, keeping the axes named in keep (in the
// given order, which need not be sorted) and summing over every other axis.
// This generalizes causalgo's internal/entropy.marginalize, which already
// preserves the caller's keepAxes order rather than forcing sorted order —
// that property is exactly what spec's unordered-DimIndices groups need.
func (a *Array[F]) SumAxes(keep []int) *Array[F] {
	rank := len(a.shape)
	if len(keep) == rank {
		same := true
		for i, k := range keep {
			if k != i {
				same = false
				break
			}
		}
		if same {
			return a.Clone()
		}
	}

	outShape := make([]int, len(keep))
	for i, ax := range keep {
		outShape[i] = a.shape[ax]
	}

	out := New[F](outShape)
	multi := make([]int, rank)
	outMulti := make([]int, len(keep))

	total := len(a.data)
	for flat := 0; flat < total; flat++ {
		flatToMulti(a.shape, flat, multi)
		for i, ax := range keep {
			outMulti[i] = multi[ax]
		}
		outFlat := flatIndex(outShape, outMulti)
		out.data[outFlat] += a.data[flat]
	}
	return out
}

// Permute returns a new array selecting and reordering axes by order: the
// result's axis i holds the source's axis order[i]. When len(order) equals
// Rank() and order is a permutation of 0..Rank()-1 this is a full axis
// transpose; order may also name a strict subset of axes (each source axis
// must have been reduced to extent 1 if dropped, as in align.Squeeze),
// selecting and reordering just those.
func (a *Array[F]) Permute(order []int) *Array[F] {
	rank := len(a.shape)
	outShape := make([]int, len(order))
	for i, ax := range order {
		outShape[i] = a.shape[ax]
	}

	out := New[F](outShape)
	multi := make([]int, rank)
	outMulti := make([]int, len(order))

	total := len(a.data)
	for flat := 0; flat < total; flat++ {
		flatToMulti(a.shape, flat, multi)
		for i, ax := range order {
			outMulti[i] = multi[ax]
		}
		out.data[flatIndex(outShape, outMulti)] = a.data[flat]
	}
	return out
}

// Reshape returns a view-equivalent array with a new shape of the same
// total size; since Array is backed by a single flat slice this is a cheap
// relabeling that shares the underlying data.
func (a *Array[F]) Reshape(shape []int) (*Array[F], error) {
	if size(shape) != len(a.data) {
		return nil, fmt.Errorf("ndarray: cannot reshape size %d into shape %v (size %d)", len(a.data), shape, size(shape))
	}
	return &Array[F]{data: a.data, shape: append([]int(nil), shape...)}, nil
}

// broadcastShape computes the elementwise-broadcast shape of two equal-rank
// shapes: each axis must match or one side must be 1.
func broadcastShape(a, b []int) ([]int, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("ndarray: broadcast rank mismatch %d vs %d", len(a), len(b))
	}
	out := make([]int, len(a))
	for i := range a {
		switch {
		case a[i] == b[i]:
			out[i] = a[i]
		case a[i] == 1:
			out[i] = b[i]
		case b[i] == 1:
			out[i] = a[i]
		default:
			return nil, fmt.Errorf("ndarray: incompatible broadcast shapes %v vs %v at axis %d", a, b, i)
		}
	}
	return out, nil
}

func broadcastIndex(shape, outMulti []int) []int {
	idx := make([]int, len(shape))
	for i, d := range shape {
		if d == 1 {
			idx[i] = 0
		} else {
			idx[i] = outMulti[i]
		}
	}
	return idx
}

// elementwise applies op over the NumPy-style broadcast of a and b.
func elementwise[F Float](a, b *Array[F], op func(x, y F) F) (*Array[F], error) {
	outShape, err := broadcastShape(a.shape, b.shape)
	if err != nil {
		return nil, err
	}
	out := New[F](outShape)
	multi := make([]int, len(outShape))
	total := size(outShape)
	for flat := 0; flat < total; flat++ {
		flatToMulti(outShape, flat, multi)
		av := a.data[flatIndex(a.shape, broadcastIndex(a.shape, multi))]
		bv := b.data[flatIndex(b.shape, broadcastIndex(b.shape, multi))]
		out.data[flat] = op(av, bv)
	}
	return out, nil
}

// MulElem returns a ⊙ b with NumPy-style size-1-axis broadcasting.
func MulElem[F Float](a, b *Array[F]) (*Array[F], error) {
	return elementwise(a, b, func(x, y F) F { return x * y })
}

// DivElem returns a ⊘ b with NumPy-style size-1-axis broadcasting. Entries
// where both a and b are zero propagate to 0 (0/0 → 0), matching spec's
// tie-break for a zero seed marginal paired with a zero target.
func DivElem[F Float](a, b *Array[F]) (*Array[F], error) {
	return elementwise(a, b, func(x, y F) F {
		if x == 0 && y == 0 {
			return 0
		}
		return x / y
	})
}

// MulElemInto multiplies b (broadcast) into a in place; a's shape is the
// output shape and must already dominate b's (every axis of b is either
// equal to a's or 1). This is the no-scratch-allocation path ArrayFactors'
// apply-in-place semantics needs.
func MulElemInto[F Float](a, b *Array[F]) error {
	if len(a.shape) != len(b.shape) {
		return fmt.Errorf("ndarray: rank mismatch %d vs %d", len(a.shape), len(b.shape))
	}
	for i := range a.shape {
		if b.shape[i] != 1 && b.shape[i] != a.shape[i] {
			return fmt.Errorf("ndarray: shape %v cannot broadcast into %v at axis %d", b.shape, a.shape, i)
		}
	}
	multi := make([]int, len(a.shape))
	for flat := range a.data {
		flatToMulti(a.shape, flat, multi)
		bv := b.data[flatIndex(b.shape, broadcastIndex(b.shape, multi))]
		a.data[flat] *= bv
	}
	return nil
}

// MaxAbsDiff returns max(|a_i - b_i|) over equal-length, equal-shape a, b.
func MaxAbsDiff[F Float](a, b *Array[F]) F {
	var m F
	for i := range a.data {
		d := a.data[i] - b.data[i]
		if d < 0 {
			d = -d
		}
		if d > m {
			m = d
		}
	}
	return m
}

// ScaleAxes multiplies a's elements in place by ratio, broadcasting ratio
// across every axis on which it has extent 1 (its other extents must equal
// a's). It performs the same operation as MulElemInto.
func ScaleAxes[F Float](a *Array[F], ratio *Array[F]) error {
	return MulElemInto(a, ratio)
}
