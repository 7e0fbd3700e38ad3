// Package integrators provides fixed-step integration schemes for the
// closed-loop simulator.
package integrators

import "github.com/san-kum/pathmpc/internal/sim"

// Euler is the forward Euler scheme. It matches the discretization the
// controller's prediction model uses, so plant and prediction agree
// exactly when the plant runs on Euler.
type Euler struct{}

func NewEuler() *Euler { return &Euler{} }

func (e *Euler) Step(dyn sim.Dynamics, x sim.State, u sim.Control, t, dt float64) sim.State {
	dx := dyn.Derivative(x, u, t)
	next := make(sim.State, len(x))
	for i := range x {
		next[i] = x[i] + dt*dx[i]
	}
	return next
}

func (e *Euler) Name() string { return "euler" }
