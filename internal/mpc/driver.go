package mpc

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/pathmpc/internal/poly"
	"github.com/san-kum/pathmpc/internal/solver"
)

// Command is what one control cycle hands to the actuation layer: the
// first decided actuation pair and the predicted positions for
// telemetry. Only the first pair is ever applied; the rest of the
// horizon is recomputed next cycle.
type Command struct {
	Steering  float64
	Accel     float64
	Predicted []Point
	Cost      float64
	Status    solver.Status
}

// Controller runs one receding-horizon solve per call. It holds only
// immutable configuration; every call builds fresh bounds, a fresh
// evaluator and a fresh decision vector, so instances are safe to
// reuse across cycles.
type Controller struct {
	cfg    Config
	layout Layout
	solver solver.Adapter
}

// New builds a controller around an externally supplied solver.
func New(cfg Config, s solver.Adapter) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: nil solver adapter", ErrBadConfig)
	}
	return &Controller{cfg: cfg, layout: NewLayout(cfg.Horizon), solver: s}, nil
}

// Config returns the controller's configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// ComputeControl solves the horizon problem for the given state and
// reference polynomial and returns the command to apply. The mapping
// from solver status to command is total:
//
//   - Optimal: first actuation, validated and clamped.
//   - TimeLimit: the best point is used if it is feasible within
//     tolerance and its first actuation is finite; otherwise the safe
//     stop command is returned along with ErrNoSolution.
//   - Infeasible, NumericError: safe stop command plus ErrNoSolution.
//
// The safe stop command is zero steering, zero acceleration; the
// caller keeps cycling, so a transient failure costs one cycle of
// coasting rather than a stale actuation.
func (c *Controller) ComputeControl(ctx context.Context, state State, ref poly.Poly) (Command, error) {
	if !state.IsValid() {
		return Command{Status: solver.NumericError}, ErrBadState
	}

	l := c.layout
	b := AssembleBounds(c.cfg, state)
	eval := NewEvaluator(c.cfg, ref)

	// Cold start: all decision variables zero, every cycle.
	x0 := make([]float64, l.NumVars())

	sol, err := c.solver.Solve(ctx, solver.Problem{
		Eval:   eval.Eval,
		X0:     x0,
		XLower: b.XLower,
		XUpper: b.XUpper,
		CLower: b.CLower,
		CUpper: b.CUpper,
	})
	if err != nil {
		return Command{Status: sol.Status}, fmt.Errorf("mpc: solve failed: %w", err)
	}

	switch sol.Status {
	case solver.Optimal:
		cmd := c.extract(sol)
		if cmd.Status == solver.NumericError {
			return cmd, fmt.Errorf("%w: non-finite actuation in solution", ErrNoSolution)
		}
		return cmd, nil
	case solver.TimeLimit:
		if cmd, ok := c.usable(sol); ok {
			return cmd, nil
		}
		return safeStop(sol.Status), fmt.Errorf("%w: %v", ErrNoSolution, sol.Status)
	default:
		return safeStop(sol.Status), fmt.Errorf("%w: %v", ErrNoSolution, sol.Status)
	}
}

// extract pulls the first actuation and the predicted path out of a
// solution, guarding against non-finite values reaching the vehicle.
func (c *Controller) extract(sol solver.Solution) Command {
	l := c.layout
	u := Actuation{Steer: sol.X[l.Delta], Accel: sol.X[l.A]}
	if !finite(u.Steer) || !finite(u.Accel) {
		return safeStop(solver.NumericError)
	}
	u = c.cfg.ClampActuation(u)

	// Skip step 0 (the measurement) in the telemetry trace.
	pts := make([]Point, 0, l.N-1)
	for t := 1; t < l.N; t++ {
		x, y := sol.X[l.X+t], sol.X[l.Y+t]
		if !finite(x) || !finite(y) {
			break
		}
		pts = append(pts, Point{X: x, Y: y})
	}

	return Command{
		Steering:  u.Steer,
		Accel:     u.Accel,
		Predicted: pts,
		Cost:      sol.Cost,
		Status:    sol.Status,
	}
}

// usable decides whether a budget-limited point is still safe to
// apply: finite, inside the actuation box after clamping, and close
// enough to feasibility that the prediction means something.
func (c *Controller) usable(sol solver.Solution) (Command, bool) {
	if !finite(sol.MaxViolation) || sol.MaxViolation > feasibleEnough {
		return Command{}, false
	}
	cmd := c.extract(sol)
	if cmd.Status == solver.NumericError {
		return Command{}, false
	}
	cmd.Status = solver.TimeLimit
	return cmd, true
}

// feasibleEnough is the violation ceiling for accepting a truncated
// solve; beyond it the predicted trajectory no longer tracks the
// dynamics.
const feasibleEnough = 1e-2

func safeStop(st solver.Status) Command {
	return Command{Status: st}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
