package ad

import (
	"math"
	"testing"
)

func TestVarSeedsUnitGradient(t *testing.T) {
	x := Var(3.0, 1, 3)

	if x.Val != 3.0 {
		t.Errorf("expected value 3.0, got %f", x.Val)
	}
	for i, g := range x.Grad {
		want := 0.0
		if i == 1 {
			want = 1.0
		}
		if g != want {
			t.Errorf("grad[%d] = %f, want %f", i, g, want)
		}
	}
}

func TestArithmeticDerivatives(t *testing.T) {
	// f(x, y) = x*y + x^2 at (2, 5): df/dx = y + 2x = 9, df/dy = x = 2
	vars := Seed([]float64{2, 5})
	x, y := vars[0], vars[1]

	f := x.Mul(y).Add(x.Sqr())

	if f.Val != 14 {
		t.Errorf("f = %f, want 14", f.Val)
	}
	if math.Abs(f.Grad[0]-9) > 1e-12 {
		t.Errorf("df/dx = %f, want 9", f.Grad[0])
	}
	if math.Abs(f.Grad[1]-2) > 1e-12 {
		t.Errorf("df/dy = %f, want 2", f.Grad[1])
	}
}

func TestDivDerivative(t *testing.T) {
	// f(x, y) = x/y at (1, 4): df/dx = 1/y = 0.25, df/dy = -x/y^2 = -0.0625
	vars := Seed([]float64{1, 4})
	f := vars[0].Div(vars[1])

	if math.Abs(f.Val-0.25) > 1e-12 {
		t.Errorf("f = %f, want 0.25", f.Val)
	}
	if math.Abs(f.Grad[0]-0.25) > 1e-12 {
		t.Errorf("df/dx = %f, want 0.25", f.Grad[0])
	}
	if math.Abs(f.Grad[1]+0.0625) > 1e-12 {
		t.Errorf("df/dy = %f, want -0.0625", f.Grad[1])
	}
}

func TestTranscendentals(t *testing.T) {
	tests := []struct {
		name     string
		f        func(Dual) Dual
		x        float64
		wantVal  float64
		wantGrad float64
	}{
		{"sin", Dual.Sin, 0.7, math.Sin(0.7), math.Cos(0.7)},
		{"cos", Dual.Cos, 0.7, math.Cos(0.7), -math.Sin(0.7)},
		{"atan", Dual.Atan, 1.3, math.Atan(1.3), 1 / (1 + 1.3*1.3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := tt.f(Var(tt.x, 0, 1))
			if math.Abs(y.Val-tt.wantVal) > 1e-12 {
				t.Errorf("value = %f, want %f", y.Val, tt.wantVal)
			}
			if math.Abs(y.Grad[0]-tt.wantGrad) > 1e-12 {
				t.Errorf("derivative = %f, want %f", y.Grad[0], tt.wantGrad)
			}
		})
	}
}

func TestConstantsHaveNilGradient(t *testing.T) {
	c := Const(2.5).Mul(Const(4)).Add(Const(1)).Sin()
	if c.Grad != nil {
		t.Error("pure-constant expression should carry no gradient")
	}

	// Mixing a constant in must not lose variable derivatives.
	x := Var(3, 0, 1)
	f := x.Mul(Const(2)).Shift(1)
	if f.Val != 7 {
		t.Errorf("f = %f, want 7", f.Val)
	}
	if f.Grad[0] != 2 {
		t.Errorf("df/dx = %f, want 2", f.Grad[0])
	}
}

func TestLiftEvaluatesWithoutGradients(t *testing.T) {
	vars := Lift([]float64{1, 2, 3})
	sum := Const(0)
	for _, v := range vars {
		sum = sum.Add(v.Sqr())
	}
	if sum.Val != 14 {
		t.Errorf("sum = %f, want 14", sum.Val)
	}
	if sum.Grad != nil {
		t.Error("lifted evaluation should stay gradient-free")
	}
}
