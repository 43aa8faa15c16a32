// Package matio loads IPF seed arrays and marginal target vectors from
// MATLAB .mat files, adapted from causalgo's pkg/matdata. It uses
// github.com/scigolib/matlab for native Go parsing of MAT-files (v5 and
// v7.3/HDF5) without a CGo dependency.
package matio

import (
	"fmt"
	"os"

	"github.com/causalgo/ipf/internal/ndarray"
	"github.com/scigolib/matlab"
)

// MatFile wraps a MATLAB file for convenient data extraction.
type MatFile struct {
	file    *matlab.MatFile
	closeFn func() error
}

// Open opens a MATLAB .mat file for reading. Supports both v5
// (MATLAB 5-7.2) and v7.3 (HDF5) formats.
func Open(path string) (*MatFile, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is caller-provided intentionally
	if err != nil {
		return nil, fmt.Errorf("matio: failed to open file: %w", err)
	}

	matFile, err := matlab.Open(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("matio: failed to parse MAT file: %w", err)
	}

	return &MatFile{file: matFile, closeFn: f.Close}, nil
}

// Close releases resources associated with the MAT file.
func (m *MatFile) Close() error {
	if m.closeFn != nil {
		return m.closeFn()
	}
	return nil
}

// Variables returns the names of all variables in the file.
func (m *MatFile) Variables() []string {
	return m.file.GetVariableNames()
}

// HasVariable reports whether a variable exists in the file.
func (m *MatFile) HasVariable(name string) bool {
	return m.file.HasVariable(name)
}

// GetFloat64 returns a variable as a flat []float64, in MATLAB's native
// column-major element order.
func (m *MatFile) GetFloat64(name string) ([]float64, error) {
	v := m.file.GetVariable(name)
	if v == nil {
		return nil, fmt.Errorf("matio: variable %q not found", name)
	}
	data, err := v.GetFloat64Array()
	if err != nil {
		return nil, fmt.Errorf("matio: cannot convert %q to float64: %w", name, err)
	}
	return data, nil
}

// GetFloat64WithDims returns a variable's flat data (column-major) along
// with its MATLAB dimensions.
func (m *MatFile) GetFloat64WithDims(name string) ([]float64, []int, error) {
	v := m.file.GetVariable(name)
	if v == nil {
		return nil, nil, fmt.Errorf("matio: variable %q not found", name)
	}
	data, err := v.GetFloat64Array()
	if err != nil {
		return nil, nil, fmt.Errorf("matio: cannot convert %q to float64: %w", name, err)
	}
	return data, v.Dimensions, nil
}

// LoadSeed loads an N-dimensional numeric array variable from a MAT-file
// as an IPF seed, converting MATLAB's column-major storage to the
// row-major layout internal/ndarray uses.
func LoadSeed(path, varName string) (*ndarray.Array[float64], error) {
	mf, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = mf.Close() }()

	data, dims, err := mf.GetFloat64WithDims(varName)
	if err != nil {
		return nil, err
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("matio: %q has no dimensions", varName)
	}

	rowMajor := columnMajorToRowMajor(data, dims)
	return ndarray.FromSlice(rowMajor, dims)
}

// LoadTargets loads one or more 1-D numeric variables from a MAT-file, in
// the order requested, for use as FitVectors marginal targets.
func LoadTargets(path string, varNames ...string) ([][]float64, error) {
	if len(varNames) == 0 {
		return nil, fmt.Errorf("matio: no variable names specified")
	}

	mf, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = mf.Close() }()

	out := make([][]float64, len(varNames))
	for i, name := range varNames {
		v, err := mf.GetFloat64(name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// columnMajorToRowMajor re-strides a flat array stored in MATLAB's
// column-major order (first index varies fastest) into the row-major
// order internal/ndarray requires (last index varies fastest),
// generalizing matdata.GetMatrix's 2-D transpose to arbitrary rank.
func columnMajorToRowMajor(data []float64, dims []int) []float64 {
	n := len(data)
	out := make([]float64, n)

	rowStride := make([]int, len(dims))
	s := 1
	for i := len(dims) - 1; i >= 0; i-- {
		rowStride[i] = s
		s *= dims[i]
	}

	idx := make([]int, len(dims))
	for flat := 0; flat < n; flat++ {
		rem := flat
		for i := range dims {
			idx[i] = rem % dims[i]
			rem /= dims[i]
		}
		rowFlat := 0
		for i := range dims {
			rowFlat += idx[i] * rowStride[i]
		}
		out[rowFlat] = data[flat]
	}
	return out
}
