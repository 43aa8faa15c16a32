package ndarray

import "testing"

func TestSumAxes(t *testing.T) {
	// 2x3 array: [[1,2,3],[4,5,6]]
	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, []int{2, 3})
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}

	tests := []struct {
		name string
		keep []int
		want []float64
	}{
		{"keep rows", []int{0}, []float64{6, 15}},
		{"keep cols", []int{1}, []float64{5, 7, 9}},
		{"keep both (identity)", []int{0, 1}, []float64{1, 2, 3, 4, 5, 6}},
		{"keep both reversed", []int{1, 0}, []float64{1, 4, 2, 5, 3, 6}},
		{"keep none (total)", []int{}, []float64{21}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.SumAxes(tt.keep)
			if got.Len() != len(tt.want) {
				t.Fatalf("len = %d, want %d", got.Len(), len(tt.want))
			}
			for i, w := range tt.want {
				if got.Raw()[i] != w {
					t.Errorf("element %d = %v, want %v", i, got.Raw()[i], w)
				}
			}
		})
	}
}

func TestPermute(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2, 3, 4, 5, 6}, []int{2, 3})
	p := a.Permute([]int{1, 0})
	if got, want := p.Shape(), []int{3, 2}; !shapeEq(got, want) {
		t.Fatalf("shape = %v, want %v", got, want)
	}
	want := []float64{1, 4, 2, 5, 3, 6}
	for i, w := range want {
		if p.Raw()[i] != w {
			t.Errorf("element %d = %v, want %v", i, p.Raw()[i], w)
		}
	}
}

func TestMulElemBroadcast(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2, 3, 4, 5, 6}, []int{2, 3})
	row, _ := FromSlice([]float64{10, 100}, []int{2, 1})

	out, err := MulElem(a, row)
	if err != nil {
		t.Fatalf("MulElem: %v", err)
	}
	want := []float64{10, 20, 30, 400, 500, 600}
	for i, w := range want {
		if out.Raw()[i] != w {
			t.Errorf("element %d = %v, want %v", i, out.Raw()[i], w)
		}
	}
}

func TestDivElemZeroOverZero(t *testing.T) {
	a, _ := FromSlice([]float64{0, 2}, []int{2})
	b, _ := FromSlice([]float64{0, 4}, []int{2})
	out, err := DivElem(a, b)
	if err != nil {
		t.Fatalf("DivElem: %v", err)
	}
	if out.Raw()[0] != 0 {
		t.Errorf("0/0 = %v, want 0", out.Raw()[0])
	}
	if out.Raw()[1] != 0.5 {
		t.Errorf("2/4 = %v, want 0.5", out.Raw()[1])
	}
}

func TestMulElemInto(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2, 3, 4, 5, 6}, []int{2, 3})
	row, _ := FromSlice([]float64{2, 3}, []int{2, 1})
	if err := MulElemInto(a, row); err != nil {
		t.Fatalf("MulElemInto: %v", err)
	}
	want := []float64{2, 4, 6, 12, 15, 18}
	for i, w := range want {
		if a.Raw()[i] != w {
			t.Errorf("element %d = %v, want %v", i, a.Raw()[i], w)
		}
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
