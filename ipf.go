// Package ipf implements multidimensional iterative proportional fitting
// (IPF), also known as RAS, raking, or matrix scaling: given a non-negative
// seed array and a set of target marginal sums over (possibly overlapping)
// subsets of its axes, it computes rank-1-per-margin factor arrays whose
// product, applied elementwise to the seed, matches the targets.
package ipf

import (
	"fmt"

	"github.com/causalgo/ipf/internal/align"
	"github.com/causalgo/ipf/internal/factors"
	"github.com/causalgo/ipf/internal/ipferr"
	"github.com/causalgo/ipf/internal/margins"
	"github.com/causalgo/ipf/internal/ndarray"
)

// Report describes the outcome of a Fit call: whether the fixed point
// converged, how many iterations it took, the final convergence criterion,
// and whether soft-consistency adjustments fired. Supplements (does not
// replace) the logging sink — a caller shouldn't have to parse logs to
// learn whether normalization happened.
type Report struct {
	Converged     bool
	Iterations    int
	Crit          float64
	Normalized    bool
	OverlapForced bool
	// History is the per-iteration convergence criterion, in iteration
	// order; useful for ipfplot.Convergence.
	History []float64
}

// Fit runs the IPF fixed-point iteration for seed x against target mar,
// returning the fitted ArrayFactors and a Report of how the fit went.
func Fit[F ndarray.Float](x *ndarray.Array[F], mar *margins.ArrayMargins[F], opts Options[F]) (*factors.ArrayFactors[F], Report, error) {
	log := opts.logger()
	di := mar.DimIndices()

	if opts.MaxIter < 0 {
		return nil, Report{}, fmt.Errorf("%w: MaxIter %d is negative", ipferr.ErrInvalidOption, opts.MaxIter)
	}

	if x.Rank() != di.Rank() {
		return nil, Report{}, fmt.Errorf("%w: seed rank %d, dim indices rank %d", ipferr.ErrShapeMismatch, x.Rank(), di.Rank())
	}
	xShape := x.Shape()
	marSize := mar.Size()
	for i := range xShape {
		if xShape[i] != marSize[i] {
			return nil, Report{}, fmt.Errorf("%w: seed extent %d on axis %d, margins declare %d", ipferr.ErrShapeMismatch, xShape[i], i+1, marSize[i])
		}
	}

	tol := opts.effectiveTol()
	report := Report{}

	seed := x
	if !mar.ScalarConsistent(tol) {
		total := seed.Sum()
		normalizedSeed := seed.Clone()
		raw := normalizedSeed.Raw()
		for i := range raw {
			if total != 0 {
				raw[i] /= total
			}
		}
		seed = normalizedSeed
		mar = mar.ToProportions()
		report.Normalized = true
		log.ProportionsNormalized()
	}

	if !mar.OverlapConsistent(tol) {
		if !opts.ForceConsistency {
			return nil, Report{}, fmt.Errorf("%w: margins disagree on a shared axis subset; set ForceConsistency to average them", ipferr.ErrInconsistentOverlap)
		}
		mar = mar.MakeOverlapConsistent()
		report.OverlapForced = true
		log.OverlapForced(di.SharedSubsets())
	}

	universe := ascending(di.Rank())
	j := di.Count()

	alignedTarget := make([]*ndarray.Array[F], j)
	alignedF := make([]*ndarray.Array[F], j)
	for k := 0; k < j; k++ {
		group := di.Group(k)
		target, err := align.Broadcast(mar.Array(k), group, universe)
		if err != nil {
			return nil, Report{}, fmt.Errorf("ipf: aligning target %d: %w", k, err)
		}
		alignedTarget[k] = target

		m0Reduced := seed.SumAxes(group)
		m0, err := align.Broadcast(m0Reduced, group, universe)
		if err != nil {
			return nil, Report{}, fmt.Errorf("ipf: aligning seed margin %d: %w", k, err)
		}

		f0, err := divideChecked(target, m0, k)
		if err != nil {
			return nil, Report{}, err
		}
		alignedF[k] = f0
	}

	if opts.MaxIter > 0 {
		for iter := 1; iter <= opts.MaxIter; iter++ {
			prev := make([]*ndarray.Array[F], j)
			for k := range alignedF {
				prev[k] = alignedF[k].Clone()
			}

			for k := 0; k < j; k++ {
				p := seed.Clone()
				for other := 0; other < j; other++ {
					if other == k {
						continue
					}
					if err := ndarray.MulElemInto(p, alignedF[other]); err != nil {
						return nil, Report{}, fmt.Errorf("ipf: multiplying factor %d into working array: %w", other, err)
					}
				}

				group := di.Group(k)
				mReduced := p.SumAxes(group)
				mAligned, err := align.Broadcast(mReduced, group, universe)
				if err != nil {
					return nil, Report{}, fmt.Errorf("ipf: aligning margin %d: %w", k, err)
				}

				newF, err := divideChecked(alignedTarget[k], mAligned, k)
				if err != nil {
					return nil, Report{}, err
				}
				alignedF[k] = newF
			}

			var crit F
			for k := 0; k < j; k++ {
				d := ndarray.MaxAbsDiff(alignedF[k], prev[k])
				if d > crit {
					crit = d
				}
			}
			report.Iterations = iter
			report.Crit = float64(crit)
			report.History = append(report.History, float64(crit))

			if crit < tol {
				report.Converged = true
				break
			}
		}

		if report.Converged {
			log.Converged(report.Iterations)
		} else {
			log.NotConverged(report.Iterations, report.Crit)
		}
	}

	outArrays := make([]*ndarray.Array[F], j)
	for k := 0; k < j; k++ {
		squeezed, err := align.Squeeze(alignedF[k], di.Group(k), universe)
		if err != nil {
			return nil, Report{}, fmt.Errorf("ipf: squeezing factor %d: %w", k, err)
		}
		outArrays[k] = squeezed
	}

	af, err := factors.FromArrays(outArrays, di)
	if err != nil {
		return nil, Report{}, err
	}
	return af, report, nil
}

// divideChecked computes target/denom elementwise over two identically
// shaped, fully-aligned arrays, applying spec's zero-marginal tie-breaks:
// 0/0 propagates to 0 (this entry does not contribute); a zero denom with a
// non-zero target is a hard DegenerateSeed error naming the offending
// margin.
func divideChecked[F ndarray.Float](target, denom *ndarray.Array[F], marginIdx int) (*ndarray.Array[F], error) {
	t := target.Raw()
	d := denom.Raw()
	out := ndarray.New[F](target.Shape())
	o := out.Raw()
	for i := range t {
		switch {
		case d[i] == 0 && t[i] == 0:
			o[i] = 0
		case d[i] == 0:
			return nil, fmt.Errorf("%w: margin %d has a zero seed marginal where the target is non-zero", ipferr.ErrDegenerateSeed, marginIdx)
		default:
			o[i] = t[i] / d[i]
		}
	}
	return out, nil
}

func ascending(n int) []int {
	u := make([]int, n)
	for i := range u {
		u[i] = i
	}
	return u
}
