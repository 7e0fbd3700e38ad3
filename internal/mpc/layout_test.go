package mpc

import "testing"

func TestLayoutOffsets(t *testing.T) {
	l := NewLayout(10)

	if l.NumVars() != 10*6+9*2 {
		t.Errorf("NumVars = %d, want 78", l.NumVars())
	}
	if l.NumCons() != 60 {
		t.Errorf("NumCons = %d, want 60", l.NumCons())
	}

	wantStarts := [6]int{0, 10, 20, 30, 40, 50}
	if l.StateStarts() != wantStarts {
		t.Errorf("state starts = %v, want %v", l.StateStarts(), wantStarts)
	}
	if l.Delta != 60 {
		t.Errorf("delta start = %d, want 60", l.Delta)
	}
	if l.A != 69 {
		t.Errorf("a start = %d, want 69", l.A)
	}
}

func TestLayoutBlocksAreContiguous(t *testing.T) {
	for _, n := range []int{2, 5, 25} {
		l := NewLayout(n)
		starts := l.StateStarts()
		for i := 1; i < len(starts); i++ {
			if starts[i]-starts[i-1] != n {
				t.Errorf("N=%d: block %d not contiguous", n, i)
			}
		}
		if l.A-l.Delta != n-1 {
			t.Errorf("N=%d: steering block length %d, want %d", n, l.A-l.Delta, n-1)
		}
		if l.NumVars()-l.A != n-1 {
			t.Errorf("N=%d: accel block length %d, want %d", n, l.NumVars()-l.A, n-1)
		}
	}
}
