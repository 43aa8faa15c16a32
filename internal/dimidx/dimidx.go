// Package dimidx declares and validates which subset of a seed array's axes
// each margin or factor in an IPF problem ranges over.
package dimidx

import (
	"fmt"
	"sort"

	"github.com/causalgo/ipf/internal/ipferr"
)

// RawGroup is a single margin/factor's axis declaration: either one axis, or
// several, given as 1-based labels in the caller's preferred internal order.
type RawGroup = []int

// DimIndices is an ordered list of axis-label groups, one per margin/factor.
// It is immutable once built.
type DimIndices struct {
	groups [][]int // 0-based internally; groups[j] is S_j in declared order
	rank   int
}

// Build validates and constructs a DimIndices from raw groups. Each element
// of raw may be a single 1-based axis label or a slice of them; singleton
// ints are promoted to length-1 groups. Axis labels are 1-based in raw (to
// match spec's 1..D convention) and stored 0-based internally.
func Build(raw ...interface{}) (*DimIndices, error) {
	groups := make([][]int, 0, len(raw))
	for j, item := range raw {
		var g []int
		switch v := item.(type) {
		case int:
			g = []int{v}
		case []int:
			g = append([]int(nil), v...)
		default:
			return nil, fmt.Errorf("%w: group %d has unsupported type %T, want int or []int", ipferr.ErrInvalidDimIndices, j, item)
		}
		if len(g) == 0 {
			return nil, fmt.Errorf("%w: group %d is empty", ipferr.ErrInvalidDimIndices, j)
		}
		seen := make(map[int]bool, len(g))
		zero := make([]int, len(g))
		for i, label := range g {
			if label < 1 {
				return nil, fmt.Errorf("%w: group %d has non-positive axis label %d", ipferr.ErrInvalidDimIndices, j, label)
			}
			if seen[label] {
				return nil, fmt.Errorf("%w: group %d repeats axis label %d", ipferr.ErrInvalidDimIndices, j, label)
			}
			seen[label] = true
			zero[i] = label - 1
		}
		groups = append(groups, zero)
	}

	if err := checkDistinctSets(groups); err != nil {
		return nil, err
	}

	rank := 0
	present := make(map[int]bool)
	for _, g := range groups {
		for _, ax := range g {
			present[ax] = true
			if ax+1 > rank {
				rank = ax + 1
			}
		}
	}
	var missing []int
	for d := 0; d < rank; d++ {
		if !present[d] {
			missing = append(missing, d+1)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: axes %v are not covered by any group", ipferr.ErrInvalidDimIndices, missing)
	}

	return &DimIndices{groups: groups, rank: rank}, nil
}

func checkDistinctSets(groups [][]int) error {
	seenSets := make(map[string][]int, len(groups))
	for j, g := range groups {
		key := setKey(g)
		if prev, ok := seenSets[key]; ok {
			return fmt.Errorf("%w: group %d and earlier group %v are identical sets of axes", ipferr.ErrInvalidDimIndices, j, prev)
		}
		seenSets[key] = g
	}
	return nil
}

func setKey(g []int) string {
	sorted := append([]int(nil), g...)
	sort.Ints(sorted)
	key := ""
	for _, v := range sorted {
		key += fmt.Sprintf("%d,", v)
	}
	return key
}

// DefaultFor builds a DimIndices assuming non-overlapping axes assigned in
// traversal order: the j-th entry of ranks (the rank of the j-th margin
// array) contributes that many consecutive axes starting after the
// previous group.
func DefaultFor(ranks []int) (*DimIndices, error) {
	groups := make([][]int, len(ranks))
	axis := 0
	for j, r := range ranks {
		if r <= 0 {
			return nil, fmt.Errorf("%w: margin %d has non-positive rank %d", ipferr.ErrInvalidDimIndices, j, r)
		}
		g := make([]int, r)
		for i := 0; i < r; i++ {
			g[i] = axis
			axis++
		}
		groups[j] = g
	}
	return &DimIndices{groups: groups, rank: axis}, nil
}

// Rank returns D, the total number of axes in the system.
func (d *DimIndices) Rank() int { return d.rank }

// Count returns J, the number of margins/factors.
func (d *DimIndices) Count() int { return len(d.groups) }

// Group returns S_j, the 0-based axis labels of the j-th margin, in
// declared order.
func (d *DimIndices) Group(j int) []int {
	return append([]int(nil), d.groups[j]...)
}

// Sorted reports whether S_j is already in ascending order.
func (d *DimIndices) Sorted(j int) bool {
	g := d.groups[j]
	for i := 1; i < len(g); i++ {
		if g[i] < g[i-1] {
			return false
		}
	}
	return true
}

// SortPerm returns the permutation that sorts S_j ascending, i.e. applying
// it to S_j yields Sort(S_j); applying it to an array labelled by S_j
// reorders its axes to ascending-label order.
func (d *DimIndices) SortPerm(j int) []int {
	g := d.groups[j]
	perm := make([]int, len(g))
	for i := range perm {
		perm[i] = i
	}
	sort.Slice(perm, func(a, b int) bool { return g[perm[a]] < g[perm[b]] })
	return perm
}

// InversePerm returns the permutation that undoes perm.
func InversePerm(perm []int) []int {
	inv := make([]int, len(perm))
	for i, p := range perm {
		inv[p] = i
	}
	return inv
}

// SortedGroup returns S_j sorted ascending.
func (d *DimIndices) SortedGroup(j int) []int {
	g := d.Group(j)
	sort.Ints(g)
	return g
}

// Complement returns the axes in {0..Rank()-1} not in S_j, ascending.
func (d *DimIndices) Complement(j int) []int {
	in := make(map[int]bool, len(d.groups[j]))
	for _, ax := range d.groups[j] {
		in[ax] = true
	}
	comp := make([]int, 0, d.rank-len(d.groups[j]))
	for ax := 0; ax < d.rank; ax++ {
		if !in[ax] {
			comp = append(comp, ax)
		}
	}
	return comp
}

// SharedSubsets returns the union of every singleton {d} for d in 0..rank-1
// together with every non-empty pairwise intersection S_i ∩ S_j (i<j),
// deduplicated, each as a sorted ascending slice.
func (d *DimIndices) SharedSubsets() [][]int {
	seen := make(map[string][]int)
	add := func(s []int) {
		if len(s) == 0 {
			return
		}
		sorted := append([]int(nil), s...)
		sort.Ints(sorted)
		seen[setKey(sorted)] = sorted
	}

	for ax := 0; ax < d.rank; ax++ {
		add([]int{ax})
	}

	for i := 0; i < len(d.groups); i++ {
		for j := i + 1; j < len(d.groups); j++ {
			add(intersect(d.groups[i], d.groups[j]))
		}
	}

	out := make([][]int, 0, len(seen))
	for _, s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(a, b int) bool {
		if len(out[a]) != len(out[b]) {
			return len(out[a]) < len(out[b])
		}
		for i := range out[a] {
			if out[a][i] != out[b][i] {
				return out[a][i] < out[b][i]
			}
		}
		return false
	})
	return out
}

func intersect(a, b []int) []int {
	set := make(map[int]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	var out []int
	for _, v := range b {
		if set[v] {
			out = append(out, v)
		}
	}
	return out
}

// Contains reports whether subset T is entirely contained in S_j.
func (d *DimIndices) Contains(j int, subset []int) bool {
	set := make(map[int]bool, len(d.groups[j]))
	for _, ax := range d.groups[j] {
		set[ax] = true
	}
	for _, ax := range subset {
		if !set[ax] {
			return false
		}
	}
	return true
}
