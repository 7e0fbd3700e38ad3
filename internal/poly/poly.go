// Package poly evaluates the cubic reference-path polynomial supplied
// by the localization frontend each control cycle.
package poly

import (
	"math"

	"github.com/san-kum/pathmpc/internal/ad"
)

// Poly holds polynomial coefficients in ascending order:
// f(x) = c[0] + c[1]*x + c[2]*x^2 + ...
type Poly []float64

// Eval returns f(x).
func (p Poly) Eval(x float64) float64 {
	y := 0.0
	for i := len(p) - 1; i >= 0; i-- {
		y = y*x + p[i]
	}
	return y
}

// Slope returns f'(x).
func (p Poly) Slope(x float64) float64 {
	d := 0.0
	for i := len(p) - 1; i >= 1; i-- {
		d = d*x + float64(i)*p[i]
	}
	return d
}

// Tangent returns the path's local heading atan(f'(x)).
func (p Poly) Tangent(x float64) float64 {
	return math.Atan(p.Slope(x))
}

// EvalDual is Eval over dual numbers, for use inside differentiated
// expressions. Coefficients are constants of the optimization.
func (p Poly) EvalDual(x ad.Dual) ad.Dual {
	y := ad.Const(0)
	for i := len(p) - 1; i >= 0; i-- {
		y = y.Mul(x).Shift(p[i])
	}
	return y
}

// TangentDual is Tangent over dual numbers.
func (p Poly) TangentDual(x ad.Dual) ad.Dual {
	d := ad.Const(0)
	for i := len(p) - 1; i >= 1; i-- {
		d = d.Mul(x).Shift(float64(i) * p[i])
	}
	return d.Atan()
}
