// Package ad implements vector forward-mode automatic differentiation.
//
// A [Dual] carries a value together with its partial derivatives with
// respect to a fixed set of independent variables. Building an
// expression from seeded duals yields the expression's gradient in a
// single pass, which is how the trajectory evaluator exposes exact
// derivatives to the solver without finite differencing.
package ad

import "math"

// Dual is a scalar with an attached gradient vector. A nil Grad means
// the gradient is identically zero (a constant), which keeps
// value-only evaluation passes cheap.
type Dual struct {
	Val  float64
	Grad []float64
}

// Const returns a dual with no derivative information.
func Const(v float64) Dual {
	return Dual{Val: v}
}

// Var returns the i-th of n independent variables with value v.
func Var(v float64, i, n int) Dual {
	g := make([]float64, n)
	g[i] = 1
	return Dual{Val: v, Grad: g}
}

// Seed lifts x into independent variables d[i] = Var(x[i], i, len(x)).
func Seed(x []float64) []Dual {
	d := make([]Dual, len(x))
	for i, v := range x {
		d[i] = Var(v, i, len(x))
	}
	return d
}

// Lift converts x into constants, for evaluation without derivatives.
func Lift(x []float64) []Dual {
	d := make([]Dual, len(x))
	for i, v := range x {
		d[i] = Const(v)
	}
	return d
}

func (a Dual) Add(b Dual) Dual {
	return Dual{Val: a.Val + b.Val, Grad: combine(a.Grad, 1, b.Grad, 1)}
}

func (a Dual) Sub(b Dual) Dual {
	return Dual{Val: a.Val - b.Val, Grad: combine(a.Grad, 1, b.Grad, -1)}
}

func (a Dual) Mul(b Dual) Dual {
	return Dual{Val: a.Val * b.Val, Grad: combine(a.Grad, b.Val, b.Grad, a.Val)}
}

func (a Dual) Div(b Dual) Dual {
	inv := 1 / b.Val
	return Dual{
		Val:  a.Val * inv,
		Grad: combine(a.Grad, inv, b.Grad, -a.Val*inv*inv),
	}
}

func (a Dual) Neg() Dual {
	return a.Scale(-1)
}

// Scale multiplies by a plain constant.
func (a Dual) Scale(c float64) Dual {
	return Dual{Val: c * a.Val, Grad: scaled(a.Grad, c)}
}

// Shift adds a plain constant.
func (a Dual) Shift(c float64) Dual {
	return Dual{Val: a.Val + c, Grad: scaled(a.Grad, 1)}
}

// Sqr returns a*a.
func (a Dual) Sqr() Dual {
	return Dual{Val: a.Val * a.Val, Grad: scaled(a.Grad, 2*a.Val)}
}

func (a Dual) Sin() Dual {
	return Dual{Val: math.Sin(a.Val), Grad: scaled(a.Grad, math.Cos(a.Val))}
}

func (a Dual) Cos() Dual {
	return Dual{Val: math.Cos(a.Val), Grad: scaled(a.Grad, -math.Sin(a.Val))}
}

func (a Dual) Atan() Dual {
	return Dual{Val: math.Atan(a.Val), Grad: scaled(a.Grad, 1/(1+a.Val*a.Val))}
}

// combine returns ca*a + cb*b elementwise, treating nil as zero.
func combine(a []float64, ca float64, b []float64, cb float64) []float64 {
	if a == nil && b == nil {
		return nil
	}
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]float64, n)
	for i := range a {
		out[i] = ca * a[i]
	}
	for i := range b {
		out[i] += cb * b[i]
	}
	return out
}

func scaled(g []float64, c float64) []float64 {
	if g == nil {
		return nil
	}
	out := make([]float64, len(g))
	for i, v := range g {
		out[i] = c * v
	}
	return out
}
