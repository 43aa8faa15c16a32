package ipf

import (
	"math"
	"testing"

	"github.com/causalgo/ipf/internal/dimidx"
	"github.com/causalgo/ipf/internal/ipflog"
	"github.com/causalgo/ipf/internal/margins"
	"github.com/causalgo/ipf/internal/ndarray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options[float64] {
	o := DefaultOptions[float64]()
	o.Logger = ipflog.Noop()
	return o
}

// Scenario 1 from spec: two-axis integer seed with a known reference value.
func TestFitVectors_TwoAxisIntegerSeed(t *testing.T) {
	x, err := ndarray.FromSlice([]float64{
		40, 30, 20, 10,
		35, 50, 100, 75,
		30, 80, 70, 120,
		20, 30, 40, 50,
	}, []int{4, 4})
	require.NoError(t, err)

	u := []float64{150, 300, 400, 150}
	v := []float64{200, 300, 400, 100}

	af, report, err := FitVectors(x, [][]float64{u, v}, testOptions())
	require.NoError(t, err)
	assert.True(t, report.Converged)

	z, err := af.Materialize()
	require.NoError(t, err)
	require.NoError(t, ndarray.MulElemInto(z, x))

	rowSums := z.SumAxes([]int{0})
	colSums := z.SumAxes([]int{1})
	for i, want := range u {
		assert.InDelta(t, want, rowSums.Raw()[i], 1e-6)
	}
	for i, want := range v {
		assert.InDelta(t, want, colSums.Raw()[i], 1e-6)
	}

	assert.InDelta(t, 64.5585, z.At(0, 0), 1e-3)
}

// Scenario 3: inconsistent scalar sums trigger proportion normalization.
func TestFitVectors_InconsistentScalarSumsTriggersProportions(t *testing.T) {
	x, err := ndarray.FromSlice([]float64{
		40, 30, 20, 10,
		35, 50, 100, 75,
		30, 80, 70, 120,
		20, 30, 40, 50,
	}, []int{4, 4})
	require.NoError(t, err)

	w := []float64{15, 30, 40, 15}
	v := []float64{200, 300, 400, 100}

	af, report, err := FitVectors(x, [][]float64{w, v}, testOptions())
	require.NoError(t, err)
	assert.True(t, report.Normalized)
	assert.True(t, report.Converged)

	z, err := af.Materialize()
	require.NoError(t, err)
	require.NoError(t, ndarray.MulElemInto(z, x))

	total := z.Sum()
	wSum, vSum := sum(w), sum(v)

	rowSums := z.SumAxes([]int{0})
	for i, want := range w {
		assert.InDelta(t, want/wSum, rowSums.Raw()[i]/total, 1e-6)
	}
	colSums := z.SumAxes([]int{1})
	for i, want := range v {
		assert.InDelta(t, want/vSum, colSums.Raw()[i]/total, 1e-6)
	}
}

// Scenario 4: multidimensional margins with a shared axis.
func TestFit_MultidimensionalOverlappingMargins(t *testing.T) {
	di, err := dimidx.Build([]int{1, 3}, []int{2, 3})
	require.NoError(t, err)

	a13, err := ndarray.FromSlice([]float64{
		3, 3, 3, 3,
		3, 3, 3, 3,
	}, []int{2, 4})
	require.NoError(t, err)
	a23, err := ndarray.FromSlice([]float64{
		2, 2, 2, 2,
		2, 2, 2, 2,
		2, 2, 2, 2,
	}, []int{3, 4})
	require.NoError(t, err)

	mar, err := margins.FromArrays([]*ndarray.Array[float64]{a13, a23}, di)
	require.NoError(t, err)

	seed := ndarray.Ones[float64]([]int{2, 3, 4})
	af, report, err := Fit(seed, mar, testOptions())
	require.NoError(t, err)
	assert.True(t, report.Converged)

	z, err := af.Materialize()
	require.NoError(t, err)
	require.NoError(t, ndarray.MulElemInto(z, seed))

	got13 := z.SumAxes([]int{0, 2})
	for i, want := range a13.Raw() {
		assert.InDelta(t, want, got13.Raw()[i], 1e-6)
	}
	got23 := z.SumAxes([]int{1, 2})
	for i, want := range a23.Raw() {
		assert.InDelta(t, want, got23.Raw()[i], 1e-6)
	}
}

// Scenario 5: unordered DimIndices group preserves the declared axis order
// in the returned factor's shape.
func TestFit_UnorderedGroupPreservesDeclaredShape(t *testing.T) {
	di, err := dimidx.Build(1, []int{3, 2})
	require.NoError(t, err)

	seed := ndarray.Ones[float64]([]int{2, 3, 2})
	a1, _ := ndarray.FromSlice([]float64{6, 6}, []int{2})
	// target for [3,2]: shape (n3=2, n2=3)
	a2, _ := ndarray.FromSlice([]float64{2, 2, 2, 2, 2, 2}, []int{2, 3})

	mar, err := margins.FromArrays([]*ndarray.Array[float64]{a1, a2}, di)
	require.NoError(t, err)

	af, report, err := Fit(seed, mar, testOptions())
	require.NoError(t, err)
	assert.True(t, report.Converged)

	got := af.Array(1).Shape()
	assert.Equal(t, []int{2, 3}, got)
}

// Scenario 6: a zero seed marginal paired with a non-zero target is a hard
// DegenerateSeed error.
func TestFit_DegenerateSeed(t *testing.T) {
	x, err := ndarray.FromSlice([]float64{
		0, 0,
		1, 1,
	}, []int{2, 2})
	require.NoError(t, err)

	u := []float64{5, 2}
	v := []float64{3, 4}

	_, _, err = FitVectors(x, [][]float64{u, v}, testOptions())
	require.Error(t, err)
}

// Idempotence: fitting an already-satisfying (X, mar) converges within a
// couple of iterations.
func TestFit_Idempotence(t *testing.T) {
	x, err := ndarray.FromSlice([]float64{1, 2, 3, 4}, []int{2, 2})
	require.NoError(t, err)

	rowSums := x.SumAxes([]int{0}).Raw()
	colSums := x.SumAxes([]int{1}).Raw()

	_, report, err := FitVectors(x, [][]float64{rowSums, colSums}, testOptions())
	require.NoError(t, err)
	assert.LessOrEqual(t, report.Iterations, 2)
	assert.True(t, report.Converged)
}

// Boundary: max_iter = 0 returns the initialization factors without
// iterating.
func TestFit_MaxIterZeroReturnsInitFactors(t *testing.T) {
	x, err := ndarray.FromSlice([]float64{1, 2, 3, 4}, []int{2, 2})
	require.NoError(t, err)
	u := []float64{10, 20}
	v := []float64{12, 18}

	opts := testOptions()
	opts.MaxIter = 0
	af, report, err := FitVectors(x, [][]float64{u, v}, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Iterations)
	assert.False(t, report.Converged)
	assert.NotNil(t, af)
}

func sum(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s
}

func TestEpsilonClamp(t *testing.T) {
	assert.Greater(t, epsilon[float64](), 0.0)
	assert.Greater(t, float64(epsilon[float32]()), 0.0)
	assert.True(t, math.Abs(float64(epsilon[float32]())-float32Epsilon) < 1e-12)
}
