// Package seedbuild constructs an IPF seed array from raw continuous
// samples by binning them into an N-dimensional histogram, adapted from
// causalgo's internal/histogram.NewNDHistogram. Where that package stopped
// at a normalized probability distribution, this one stops one step
// earlier and hands back a raw (but smoothed, strictly positive) count
// array, since IPF normalizes the seed itself when the targets call for
// it.
package seedbuild

import (
	"fmt"
	"math"

	"github.com/causalgo/ipf/internal/ndarray"
)

const (
	// smoothingFactor is added to each bin to avoid zero cells. Matches
	// the Python reference implementation: hist += 1e-14.
	smoothingFactor = 1e-14

	minBins = 1
	maxBins = 10000
)

// FromSamples bins data (samples in rows, variables in columns) into an
// N-dimensional count array, one axis per variable, with bins[i] bins for
// variable i's observed [min, max] range. Every cell is smoothed by
// +1e-14, so the result is always a valid, strictly positive IPF seed.
//
// Example:
//
//	data := [][]float64{{0.1, 0.5}, {0.3, 0.7}, {0.9, 0.2}}
//	seed, err := seedbuild.FromSamples(data, []int{2, 2})
func FromSamples(data [][]float64, bins []int) (*ndarray.Array[float64], error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("seedbuild: data cannot be empty")
	}
	nVars := len(data[0])
	if nVars == 0 {
		return nil, fmt.Errorf("seedbuild: data must have at least one variable")
	}
	if len(bins) != nVars {
		return nil, fmt.Errorf("seedbuild: bins length (%d) must match number of variables (%d)", len(bins), nVars)
	}
	for i, sample := range data {
		if len(sample) != nVars {
			return nil, fmt.Errorf("seedbuild: sample %d has length %d, expected %d", i, len(sample), nVars)
		}
	}
	for i, b := range bins {
		if b < minBins {
			return nil, fmt.Errorf("seedbuild: bins[%d] = %d is less than minimum %d", i, b, minBins)
		}
		if b > maxBins {
			return nil, fmt.Errorf("seedbuild: bins[%d] = %d exceeds maximum %d", i, b, maxBins)
		}
	}

	minVals := make([]float64, nVars)
	maxVals := make([]float64, nVars)
	for j := 0; j < nVars; j++ {
		minVals[j] = math.Inf(1)
		maxVals[j] = math.Inf(-1)
	}
	for _, sample := range data {
		for j, val := range sample {
			if math.IsNaN(val) || math.IsInf(val, 0) {
				continue
			}
			if val < minVals[j] {
				minVals[j] = val
			}
			if val > maxVals[j] {
				maxVals[j] = val
			}
		}
	}
	for j := 0; j < nVars; j++ {
		if math.IsInf(minVals[j], 0) || math.IsInf(maxVals[j], 0) {
			return nil, fmt.Errorf("seedbuild: variable %d has no valid (non-NaN, non-Inf) values", j)
		}
		if minVals[j] == maxVals[j] {
			maxVals[j] += 1e-10
		}
	}

	seed := ndarray.New[float64](bins)
	binIdx := make([]int, nVars)
sample:
	for _, row := range data {
		for j, val := range row {
			if math.IsNaN(val) || math.IsInf(val, 0) {
				continue sample
			}
			normalized := (val - minVals[j]) / (maxVals[j] - minVals[j])
			idx := int(normalized * float64(bins[j]))
			if idx >= bins[j] {
				idx = bins[j] - 1
			}
			binIdx[j] = idx
		}
		seed.Set(seed.At(binIdx...)+1, binIdx...)
	}

	raw := seed.Raw()
	total := 0.0
	for i := range raw {
		raw[i] += smoothingFactor
		total += raw[i]
	}
	if total <= float64(len(raw))*smoothingFactor {
		return nil, fmt.Errorf("seedbuild: all samples were invalid (NaN or Inf)")
	}

	return seed, nil
}
