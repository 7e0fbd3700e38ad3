package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/san-kum/pathmpc/internal/ad"
)

// ErrBadProblem indicates a malformed problem the adapter refuses to
// run (mismatched dimensions, or constraint bounds it cannot express).
var ErrBadProblem = errors.New("solver: malformed problem")

// AugLag adapts equality-constrained problems onto gonum's
// unconstrained optimizers with an augmented-Lagrangian outer loop:
// each outer iteration minimizes
//
//	f(x) + sum(lambda_i*c_i(x)) + mu/2*sum(c_i(x)^2) + bound penalty
//
// with L-BFGS, then updates the multipliers. Derivatives come from
// the problem's dual-number evaluator, so no finite differencing is
// involved. The trajectory problem only produces equality constraints
// (CLower == CUpper), which is all this adapter accepts.
type AugLag struct {
	opts Options
}

// NewAugLag returns an adapter with the given options.
func NewAugLag(opts Options) *AugLag {
	if opts.Budget <= 0 {
		opts.Budget = DefaultOptions().Budget
	}
	if opts.FeasTol <= 0 {
		opts.FeasTol = DefaultOptions().FeasTol
	}
	if opts.GradTol <= 0 {
		opts.GradTol = DefaultOptions().GradTol
	}
	if opts.OuterIters <= 0 {
		opts.OuterIters = DefaultOptions().OuterIters
	}
	if opts.Penalty0 <= 0 {
		opts.Penalty0 = DefaultOptions().Penalty0
	}
	return &AugLag{opts: opts}
}

// Solve runs the outer loop until feasibility, infeasibility or the
// wall-clock budget. The returned error is non-nil only for problems
// the adapter cannot express; solver outcomes are reported through
// Solution.Status.
func (a *AugLag) Solve(ctx context.Context, p Problem) (Solution, error) {
	if err := validate(p); err != nil {
		return Solution{Status: NumericError}, err
	}

	n := len(p.X0)
	m := len(p.CLower)

	deadline := time.Now().Add(a.opts.Budget)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	x := make([]float64, n)
	copy(x, p.X0)

	lambda := make([]float64, m)
	mu := a.opts.Penalty0
	sawNaN := false
	timedOut := false

	// residuals maps constraint values onto their equality targets.
	residuals := func(cons []ad.Dual, out []float64) {
		for i, c := range cons {
			out[i] = c.Val - p.CLower[i]
		}
	}

	augmented := func(vars []ad.Dual) ad.Dual {
		cost, cons := p.Eval(vars)
		l := cost
		for i, c := range cons {
			r := c.Shift(-p.CLower[i])
			l = l.Add(r.Scale(lambda[i]))
			l = l.Add(r.Sqr().Scale(mu / 2))
		}
		// Smooth penalty keeps the iterates near the box; the final
		// point is projected exactly.
		for i, v := range vars {
			if lo := p.XLower[i]; lo > -unboundedCut {
				l = l.Add(hinge(v.Neg().Shift(lo)).Sqr().Scale(mu / 2))
			}
			if hi := p.XUpper[i]; hi < unboundedCut {
				l = l.Add(hinge(v.Shift(-hi)).Sqr().Scale(mu / 2))
			}
		}
		return l
	}

	inner := optimize.Problem{
		Func: func(xs []float64) float64 {
			v := augmented(ad.Lift(xs)).Val
			if math.IsNaN(v) {
				sawNaN = true
				return math.Inf(1)
			}
			return v
		},
		Grad: func(grad, xs []float64) {
			l := augmented(ad.Seed(xs))
			for i := range grad {
				g := 0.0
				if l.Grad != nil {
					g = l.Grad[i]
				}
				if math.IsNaN(g) || math.IsInf(g, 0) {
					sawNaN = true
					g = 0
				}
				grad[i] = g
			}
		},
	}

	viol := math.Inf(1)
	res := make([]float64, m)

	for outer := 0; outer < a.opts.OuterIters; outer++ {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			timedOut = true
			break
		}
		if ctx.Err() != nil {
			timedOut = true
			break
		}

		settings := &optimize.Settings{
			Runtime:           remaining,
			GradientThreshold: a.opts.GradTol,
		}

		result, err := optimize.Minimize(inner, x, settings, &optimize.LBFGS{})
		if result != nil && len(result.X) == n && allFinite(result.X) {
			copy(x, result.X)
		}
		// A non-nil err here is a line-search or evaluation
		// breakdown; the best point is kept and the final status
		// classification decides what it means.
		_ = err

		_, cons := p.Eval(ad.Lift(x))
		residuals(cons, res)
		viol = maxAbs(res)

		if viol <= a.opts.FeasTol {
			break
		}
		if result != nil && result.Status == optimize.RuntimeLimit {
			timedOut = true
			break
		}

		for i, r := range res {
			lambda[i] += mu * r
		}
		mu = math.Min(mu*10, 1e8)
	}

	project(x, p.XLower, p.XUpper)

	cost, cons := p.Eval(ad.Lift(x))
	residuals(cons, res)
	viol = maxAbs(res)

	sol := Solution{
		X:            x,
		Cost:         cost.Val,
		MaxViolation: viol,
	}

	switch {
	case viol <= a.opts.FeasTol && !math.IsNaN(cost.Val):
		sol.Status = Optimal
	case timedOut:
		sol.Status = TimeLimit
	case sawNaN || math.IsNaN(cost.Val) || math.IsNaN(viol):
		sol.Status = NumericError
	default:
		sol.Status = Infeasible
	}
	return sol, nil
}

// unboundedCut: bounds with magnitude beyond this are treated as open.
const unboundedCut = 1e18

func validate(p Problem) error {
	n := len(p.X0)
	if p.Eval == nil || n == 0 {
		return fmt.Errorf("%w: missing evaluator or empty guess", ErrBadProblem)
	}
	if len(p.XLower) != n || len(p.XUpper) != n {
		return fmt.Errorf("%w: variable bounds length %d/%d, want %d",
			ErrBadProblem, len(p.XLower), len(p.XUpper), n)
	}
	if len(p.CLower) != len(p.CUpper) {
		return fmt.Errorf("%w: constraint bounds length mismatch", ErrBadProblem)
	}
	for i := range p.CLower {
		if p.CLower[i] != p.CUpper[i] {
			return fmt.Errorf("%w: constraint %d is not an equality", ErrBadProblem, i)
		}
	}
	return nil
}

// hinge is max(0, d) with a zero derivative on the inactive side.
func hinge(d ad.Dual) ad.Dual {
	if d.Val <= 0 {
		return ad.Const(0)
	}
	return d
}

func project(x, lo, hi []float64) {
	for i := range x {
		if x[i] < lo[i] {
			x[i] = lo[i]
		}
		if x[i] > hi[i] {
			x[i] = hi[i]
		}
	}
}

func maxAbs(v []float64) float64 {
	m := 0.0
	for _, r := range v {
		if a := math.Abs(r); a > m || math.IsNaN(a) {
			m = a
		}
	}
	return m
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
