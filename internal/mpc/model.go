package mpc

import (
	"github.com/san-kum/pathmpc/internal/ad"
	"github.com/san-kum/pathmpc/internal/poly"
)

// Model is the discrete kinematic bicycle approximation used for
// prediction. The negative sign on the steering terms matches the
// simulator frame the controller was tuned against.
type Model struct {
	Lf float64
	Dt float64
}

// dualState is one horizon step inside a differentiated expression.
type dualState struct {
	x, y, psi, v, cte, epsi ad.Dual
}

// step propagates a state one timestep under actuation (delta, a).
// Written over dual numbers so the same expression serves both plain
// prediction and derivative extraction.
func (m Model) step(s dualState, delta, a ad.Dual, ref poly.Poly) dualState {
	dt := m.Dt
	f := ref.EvalDual(s.x)
	psiDes := ref.TangentDual(s.x)

	// psi and epsi share the -v*delta/Lf turn-rate term.
	turn := s.v.Mul(delta).Scale(dt / m.Lf)

	return dualState{
		x:    s.x.Add(s.v.Mul(s.psi.Cos()).Scale(dt)),
		y:    s.y.Add(s.v.Mul(s.psi.Sin()).Scale(dt)),
		psi:  s.psi.Sub(turn),
		v:    s.v.Add(a.Scale(dt)),
		cte:  f.Sub(s.y).Add(s.v.Mul(s.epsi.Sin()).Scale(dt)),
		epsi: s.psi.Sub(psiDes).Sub(turn),
	}
}

// Step is the float64 form of the model, used by the plant-facing
// code and by tests.
func (m Model) Step(s State, u Actuation, ref poly.Poly) State {
	d := m.step(liftState(s), ad.Const(u.Steer), ad.Const(u.Accel), ref)
	return State{
		X:    d.x.Val,
		Y:    d.y.Val,
		Psi:  d.psi.Val,
		V:    d.v.Val,
		CTE:  d.cte.Val,
		EPsi: d.epsi.Val,
	}
}

func liftState(s State) dualState {
	return dualState{
		x:    ad.Const(s.X),
		y:    ad.Const(s.Y),
		psi:  ad.Const(s.Psi),
		v:    ad.Const(s.V),
		cte:  ad.Const(s.CTE),
		epsi: ad.Const(s.EPsi),
	}
}
