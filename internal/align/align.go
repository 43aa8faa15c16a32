// Package align implements spec's alignment / broadcast layer: reshaping a
// lower-rank array, tagged with the axis labels it was built over, into a
// broadcast-compatible view over an arbitrary ordered universe of axis
// labels (inserting size-1 axes for labels the array doesn't carry).
//
// The same routine serves two call sites: the IPF engine aligns margins and
// factors to the seed's full D-rank, ascending-label universe; ArrayMargins
// uses it internally (with a group's own declared, possibly unsorted, axis
// order as the universe) to broadcast an overlap-consistency ratio back
// across a margin's complement axes.
package align

import (
	"fmt"

	"github.com/causalgo/ipf/internal/ndarray"
)

// Broadcast reshapes a, whose axis i carries label labels[i] (in whatever
// order a physically stores them), into a rank-len(universe) array ordered
// exactly as universe, with size 1 along every universe position whose
// label is not in labels.
//
// len(labels) must equal a.Rank(), and labels must be a subset of universe.
func Broadcast[F ndarray.Float](a *ndarray.Array[F], labels []int, universe []int) (*ndarray.Array[F], error) {
	if a.Rank() != len(labels) {
		return nil, fmt.Errorf("align: array rank %d does not match %d labels", a.Rank(), len(labels))
	}

	posInA := make(map[int]int, len(labels))
	for i, lbl := range labels {
		posInA[lbl] = i
	}

	// Order a's existing axes to match their relative order of appearance
	// in universe, then reshape in the missing size-1 axes.
	permOrder := make([]int, 0, len(labels))
	fullShape := make([]int, len(universe))
	aShape := a.Shape()
	for k, lbl := range universe {
		if p, ok := posInA[lbl]; ok {
			permOrder = append(permOrder, p)
			fullShape[k] = aShape[p]
		} else {
			fullShape[k] = 1
		}
	}
	if len(permOrder) != len(labels) {
		return nil, fmt.Errorf("align: labels %v are not a subset of universe %v", labels, universe)
	}

	permuted := a.Permute(permOrder)
	out, err := permuted.Reshape(fullShape)
	if err != nil {
		return nil, fmt.Errorf("align: %w", err)
	}
	return out, nil
}

// Squeeze is the inverse direction used when returning results to callers:
// it reduces a rank-len(universe) broadcast-aligned array back down to the
// len(labels)-rank array ordered exactly as labels (dropping every
// universe axis not in labels, which must all have extent 1).
func Squeeze[F ndarray.Float](a *ndarray.Array[F], labels []int, universe []int) (*ndarray.Array[F], error) {
	posInUniverse := make(map[int]int, len(universe))
	for k, lbl := range universe {
		posInUniverse[lbl] = k
	}

	shape := a.Shape()
	keepPositions := make([]int, len(labels))
	outShape := make([]int, len(labels))
	for i, lbl := range labels {
		k, ok := posInUniverse[lbl]
		if !ok {
			return nil, fmt.Errorf("align: label %d not present in universe %v", lbl, universe)
		}
		keepPositions[i] = k
		outShape[i] = shape[k]
	}

	squeezed := a.Permute(keepPositions)
	out, err := squeezed.Reshape(outShape)
	if err != nil {
		return nil, fmt.Errorf("align: %w", err)
	}
	return out, nil
}
