package align

import (
	"testing"

	"github.com/causalgo/ipf/internal/ndarray"
)

func TestBroadcast(t *testing.T) {
	a, err := ndarray.FromSlice([]float64{1, 2, 3}, []int{3})
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}

	out, err := Broadcast(a, []int{1}, []int{0, 1})
	if err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if !shapeEq(out.Shape(), []int{1, 3}) {
		t.Fatalf("Shape() = %v, want [1 3]", out.Shape())
	}
	for i, v := range []float64{1, 2, 3} {
		if out.At(0, i) != v {
			t.Errorf("At(0,%d) = %v, want %v", i, out.At(0, i), v)
		}
	}
}

func TestBroadcast_LabelsNotSubset(t *testing.T) {
	a, _ := ndarray.FromSlice([]float64{1, 2}, []int{2})
	if _, err := Broadcast(a, []int{5}, []int{0, 1}); err == nil {
		t.Fatal("expected error for labels not in universe")
	}
}

func TestBroadcast_RankLabelMismatch(t *testing.T) {
	a, _ := ndarray.FromSlice([]float64{1, 2, 3, 4}, []int{2, 2})
	if _, err := Broadcast(a, []int{0}, []int{0, 1}); err == nil {
		t.Fatal("expected error for rank/labels mismatch")
	}
}

func TestSqueeze_RoundTripsBroadcast(t *testing.T) {
	a, err := ndarray.FromSlice([]float64{10, 20}, []int{2})
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	universe := []int{0, 1, 2}

	broadcasted, err := Broadcast(a, []int{1}, universe)
	if err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	squeezed, err := Squeeze(broadcasted, []int{1}, universe)
	if err != nil {
		t.Fatalf("Squeeze: %v", err)
	}
	if !shapeEq(squeezed.Shape(), []int{2}) {
		t.Fatalf("Shape() = %v, want [2]", squeezed.Shape())
	}
	for i, v := range []float64{10, 20} {
		if squeezed.At(i) != v {
			t.Errorf("At(%d) = %v, want %v", i, squeezed.At(i), v)
		}
	}
}

func TestSqueeze_UnorderedLabelsPreserveDeclaredOrder(t *testing.T) {
	// universe = [0,1,2]; a rank-2 slice over labels [2,1] should come back
	// with axis order (2,1), not the universe's ascending order.
	a, err := ndarray.FromSlice([]float64{1, 2, 3, 4, 5, 6}, []int{2, 3})
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	universe := []int{0, 1, 2}
	broadcasted, err := Broadcast(a, []int{1, 2}, universe)
	if err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	squeezed, err := Squeeze(broadcasted, []int{2, 1}, universe)
	if err != nil {
		t.Fatalf("Squeeze: %v", err)
	}
	if !shapeEq(squeezed.Shape(), []int{3, 2}) {
		t.Fatalf("Shape() = %v, want [3 2]", squeezed.Shape())
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			if squeezed.At(i, j) != a.At(j, i) {
				t.Errorf("At(%d,%d) = %v, want %v", i, j, squeezed.At(i, j), a.At(j, i))
			}
		}
	}
}

func TestSqueeze_LabelNotInUniverse(t *testing.T) {
	a := ndarray.Ones[float64]([]int{1, 2})
	if _, err := Squeeze(a, []int{9}, []int{0, 1}); err == nil {
		t.Fatal("expected error for label not in universe")
	}
}

func shapeEq(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
