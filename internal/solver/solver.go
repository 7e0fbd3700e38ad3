// Package solver defines the boundary to the nonlinear-program solver
// and provides an adapter built on gonum's optimizers. The controller
// core only supplies a differentiable evaluator, bounds and an initial
// guess; everything iterative lives behind the Adapter interface.
package solver

import (
	"context"
	"time"

	"github.com/san-kum/pathmpc/internal/ad"
)

// EvalFunc evaluates the objective and the constraint vector at a
// point. Called with seeded duals it must propagate derivatives;
// called with lifted constants it must stay value-only. It is invoked
// many times per solve and must be free of side effects.
type EvalFunc func(vars []ad.Dual) (cost ad.Dual, cons []ad.Dual)

// Problem is one fully-assembled NLP instance.
type Problem struct {
	Eval   EvalFunc
	X0     []float64
	XLower []float64
	XUpper []float64
	CLower []float64
	CUpper []float64
}

// Status classifies how a solve terminated. Every solve reports
// exactly one of these; callers must map each to a defined action.
type Status int

const (
	// Optimal: converged to a feasible locally optimal point.
	Optimal Status = iota
	// TimeLimit: wall-clock budget expired; X holds the best point found.
	TimeLimit
	// Infeasible: constraint violation could not be driven to tolerance.
	Infeasible
	// NumericError: NaN/Inf surfaced during evaluation or line search.
	NumericError
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case TimeLimit:
		return "time_limit"
	case Infeasible:
		return "infeasible"
	case NumericError:
		return "numeric_error"
	default:
		return "unknown"
	}
}

// Solution is the terminal point of a solve.
type Solution struct {
	X            []float64
	Cost         float64
	MaxViolation float64
	Status       Status
}

// Adapter invokes an external iterative solver on a Problem. Solve
// blocks until convergence, infeasibility, the context deadline or
// the adapter's own budget, and always classifies the outcome.
type Adapter interface {
	Solve(ctx context.Context, p Problem) (Solution, error)
}

// Options are deployment tunables of the provided adapter, not part
// of the problem formulation.
type Options struct {
	// Budget is the wall-clock limit per solve.
	Budget time.Duration
	// FeasTol is the max constraint violation accepted as feasible.
	FeasTol float64
	// GradTol terminates inner iterations on small gradients.
	GradTol float64
	// OuterIters bounds the multiplier updates.
	OuterIters int
	// Penalty0 is the initial quadratic penalty weight.
	Penalty0 float64
}

// DefaultOptions matches the deployment defaults: half a second per
// cycle and a feasibility tolerance loose enough for control use.
func DefaultOptions() Options {
	return Options{
		Budget:     500 * time.Millisecond,
		FeasTol:    1e-4,
		GradTol:    1e-6,
		OuterIters: 12,
		Penalty0:   10,
	}
}
