package margins

import (
	"testing"

	"github.com/causalgo/ipf/internal/dimidx"
	"github.com/causalgo/ipf/internal/ndarray"
)

func TestFromArrayAndScalarConsistency(t *testing.T) {
	x, _ := ndarray.FromSlice([]float64{
		40, 30, 20, 10,
		35, 50, 100, 75,
		30, 80, 70, 120,
		20, 30, 40, 50,
	}, []int{4, 4})

	di, err := dimidx.Build(1, 2)
	if err != nil {
		t.Fatalf("dimidx.Build: %v", err)
	}

	mar, err := FromArray(x, di)
	if err != nil {
		t.Fatalf("FromArray: %v", err)
	}

	if !mar.ScalarConsistent(1e-8) {
		t.Fatalf("expected row/col sums of the seed's own margins to be scalar consistent")
	}

	row := mar.Array(0).Raw()
	wantRow := []float64{100, 260, 300, 140}
	for i, w := range wantRow {
		if row[i] != w {
			t.Errorf("row margin %d = %v, want %v", i, row[i], w)
		}
	}
}

func TestScalarConsistentFalse(t *testing.T) {
	u, _ := ndarray.FromSlice([]float64{150, 300, 400, 150}, []int{4})
	v, _ := ndarray.FromSlice([]float64{200, 300, 400, 101}, []int{4})
	mar, err := FromArraysDefault([]*ndarray.Array[float64]{u, v})
	if err != nil {
		t.Fatalf("FromArraysDefault: %v", err)
	}
	if mar.ScalarConsistent(1e-8) {
		t.Fatalf("expected scalar inconsistency to be detected")
	}
	prop := mar.ToProportions()
	if !prop.ScalarConsistent(1e-8) {
		t.Fatalf("expected proportions to be scalar consistent")
	}
}

func TestOverlapConsistencyAndForcing(t *testing.T) {
	// Shape (2,3,4): two 2D margins sharing axis 3 but disagreeing on its
	// totals.
	di, err := dimidx.Build([]int{1, 3}, []int{2, 3})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	a13, _ := ndarray.FromSlice([]float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
	}, []int{2, 4})
	a23, _ := ndarray.FromSlice([]float64{
		10, 10, 10, 10,
		10, 10, 10, 10,
		10, 10, 10, 10,
	}, []int{3, 4})

	mar, err := FromArrays([]*ndarray.Array[float64]{a13, a23}, di)
	if err != nil {
		t.Fatalf("FromArrays: %v", err)
	}

	if mar.OverlapConsistent(1e-8) {
		t.Fatalf("expected overlap inconsistency: axis-3 totals are 6/8/10/12 vs 30/30/30/30")
	}

	forced := mar.MakeOverlapConsistent()
	if !forced.OverlapConsistent(1e-6) {
		t.Fatalf("expected MakeOverlapConsistent output to be overlap consistent")
	}

	// Idempotence.
	twice := forced.MakeOverlapConsistent()
	if !twice.OverlapConsistent(1e-6) {
		t.Fatalf("expected idempotent forcing to remain overlap consistent")
	}
}

func TestUnorderedGroupFromArray(t *testing.T) {
	// shape (2,3,2): DimIndices = [[1],[3,2]] (axis 3 before 2).
	x := ndarray.New[float64]([]int{2, 3, 2})
	raw := x.Raw()
	for i := range raw {
		raw[i] = float64(i + 1)
	}

	di, err := dimidx.Build(1, []int{3, 2})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	mar, err := FromArray(x, di)
	if err != nil {
		t.Fatalf("FromArray: %v", err)
	}

	got := mar.Array(1).Shape()
	want := []int{2, 3} // (n_3, n_2)
	if got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("margin 1 shape = %v, want %v", got, want)
	}
}
