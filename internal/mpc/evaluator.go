package mpc

import (
	"github.com/san-kum/pathmpc/internal/ad"
	"github.com/san-kum/pathmpc/internal/poly"
)

// Evaluator maps a full decision vector to a scalar cost and the
// dynamics residual vector. It captures the cycle's reference
// polynomial at construction and holds no mutable state, so one
// instance may be evaluated any number of times during a solve.
type Evaluator struct {
	layout Layout
	model  Model
	ref    poly.Poly
	w      Weights
	refV   float64
}

// NewEvaluator binds a configuration and this cycle's reference path.
func NewEvaluator(cfg Config, ref poly.Poly) *Evaluator {
	return &Evaluator{
		layout: NewLayout(cfg.Horizon),
		model:  Model{Lf: cfg.Lf, Dt: cfg.Dt},
		ref:    ref,
		w:      cfg.Weights,
		refV:   cfg.RefSpeed,
	}
}

// Layout exposes the offsets the evaluator assumes.
func (e *Evaluator) Layout() Layout {
	return e.layout
}

// Eval computes the cost and the N*6 residuals at vars. The first six
// residual slots are the decided step-0 state itself; their bounds pin
// them to the measured state. Slots for t >= 1 are the mismatch
// between the decided state and the model's one-step prediction and
// are bounded to zero.
func (e *Evaluator) Eval(vars []ad.Dual) (ad.Dual, []ad.Dual) {
	l := e.layout
	n := l.N

	cost := ad.Const(0)

	// Tracking and speed terms over the whole horizon.
	for t := 0; t < n; t++ {
		cost = cost.Add(vars[l.CTE+t].Sqr().Scale(e.w.CTE))
		cost = cost.Add(vars[l.EPsi+t].Sqr().Scale(e.w.EPsi))
		cost = cost.Add(vars[l.V+t].Shift(-e.refV).Sqr().Scale(e.w.Speed))
	}

	// Actuation magnitude over the N-1 control steps.
	for t := 0; t < n-1; t++ {
		cost = cost.Add(vars[l.Delta+t].Sqr().Scale(e.w.Steer))
		cost = cost.Add(vars[l.A+t].Sqr().Scale(e.w.Accel))
	}

	// Actuation change over the N-2 transitions.
	for t := 0; t < n-2; t++ {
		dDelta := vars[l.Delta+t+1].Sub(vars[l.Delta+t])
		dA := vars[l.A+t+1].Sub(vars[l.A+t])
		cost = cost.Add(dDelta.Sqr().Scale(e.w.SteerRate))
		cost = cost.Add(dA.Sqr().Scale(e.w.AccelRate))
	}

	cons := make([]ad.Dual, l.NumCons())

	// Step 0: identity residuals, pinned to the measurement by bounds.
	for _, start := range l.StateStarts() {
		cons[start] = vars[start]
	}

	for t := 1; t < n; t++ {
		s0 := dualState{
			x:    vars[l.X+t-1],
			y:    vars[l.Y+t-1],
			psi:  vars[l.Psi+t-1],
			v:    vars[l.V+t-1],
			cte:  vars[l.CTE+t-1],
			epsi: vars[l.EPsi+t-1],
		}
		pred := e.model.step(s0, vars[l.Delta+t-1], vars[l.A+t-1], e.ref)

		cons[l.X+t] = vars[l.X+t].Sub(pred.x)
		cons[l.Y+t] = vars[l.Y+t].Sub(pred.y)
		cons[l.Psi+t] = vars[l.Psi+t].Sub(pred.psi)
		cons[l.V+t] = vars[l.V+t].Sub(pred.v)
		cons[l.CTE+t] = vars[l.CTE+t].Sub(pred.cte)
		cons[l.EPsi+t] = vars[l.EPsi+t].Sub(pred.epsi)
	}

	return cost, cons
}
