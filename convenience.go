package ipf

import (
	"fmt"

	"github.com/causalgo/ipf/internal/dimidx"
	"github.com/causalgo/ipf/internal/factors"
	"github.com/causalgo/ipf/internal/margins"
	"github.com/causalgo/ipf/internal/ndarray"
	"gonum.org/v1/gonum/mat"
)

// FitVectors wraps a flat list of 1-D targets into an ArrayMargins using
// the default one-axis-per-margin DimIndices, then runs Fit.
func FitVectors[F ndarray.Float](x *ndarray.Array[F], vectors [][]F, opts Options[F]) (*factors.ArrayFactors[F], Report, error) {
	arrays := make([]*ndarray.Array[F], len(vectors))
	for i, v := range vectors {
		arr, err := ndarray.FromSlice(append([]F(nil), v...), []int{len(v)})
		if err != nil {
			return nil, Report{}, fmt.Errorf("ipf: vector %d: %w", i, err)
		}
		arrays[i] = arr
	}
	mar, err := margins.FromArraysDefault(arrays)
	if err != nil {
		return nil, Report{}, err
	}
	return Fit(x, mar, opts)
}

// FitMargins runs Fit against mar using an all-ones seed of the inferred
// shape and the same element type as the margins.
func FitMargins[F ndarray.Float](mar *margins.ArrayMargins[F], opts Options[F]) (*factors.ArrayFactors[F], Report, error) {
	seed := ndarray.Ones[F](mar.Size())
	return Fit(seed, mar, opts)
}

// FitVectorsOnly composes FitVectors and FitMargins: an all-ones seed
// sized from the vectors, fit against the vectors as 1-D targets.
func FitVectorsOnly[F ndarray.Float](vectors [][]F, opts Options[F]) (*factors.ArrayFactors[F], Report, error) {
	ranks := make([]int, len(vectors))
	arrays := make([]*ndarray.Array[F], len(vectors))
	for i, v := range vectors {
		ranks[i] = 1
		arr, err := ndarray.FromSlice(append([]F(nil), v...), []int{len(v)})
		if err != nil {
			return nil, Report{}, fmt.Errorf("ipf: vector %d: %w", i, err)
		}
		arrays[i] = arr
	}
	di, err := dimidx.DefaultFor(ranks)
	if err != nil {
		return nil, Report{}, err
	}
	mar, err := margins.FromArrays(arrays, di)
	if err != nil {
		return nil, Report{}, err
	}
	return FitMargins(mar, opts)
}

// FromDense is a 2-axis convenience wrapper over the classic row/column RAS
// use case, accepting a gonum mat.Dense seed matrix and two 1-D marginal
// target vectors, grounded in causalgo's internal/varselect.Fit(x
// *mat.Dense) and internal/comparison's mat.Dense-based test generators.
// It is sugar over FitVectors; it does not change engine semantics.
func FromDense(x *mat.Dense, rowTargets, colTargets []float64, opts Options[float64]) (*factors.ArrayFactors[float64], Report, error) {
	if x == nil {
		return nil, Report{}, fmt.Errorf("ipf: nil seed matrix")
	}
	rows, cols := x.Dims()
	if rows != len(rowTargets) {
		return nil, Report{}, fmt.Errorf("ipf: seed has %d rows, rowTargets has %d entries", rows, len(rowTargets))
	}
	if cols != len(colTargets) {
		return nil, Report{}, fmt.Errorf("ipf: seed has %d cols, colTargets has %d entries", cols, len(colTargets))
	}

	data := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data[i*cols+j] = x.At(i, j)
		}
	}
	seed, err := ndarray.FromSlice(data, []int{rows, cols})
	if err != nil {
		return nil, Report{}, err
	}

	return FitVectors(seed, [][]float64{rowTargets, colTargets}, opts)
}
