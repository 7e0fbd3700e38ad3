package integrators

import "github.com/san-kum/pathmpc/internal/sim"

// RK4 is the classic fourth-order Runge-Kutta scheme. The control is
// held constant across the step (zero-order hold).
type RK4 struct{}

func NewRK4() *RK4 { return &RK4{} }

func (r *RK4) Step(dyn sim.Dynamics, x sim.State, u sim.Control, t, dt float64) sim.State {
	n := len(x)

	k1 := dyn.Derivative(x, u, t)

	x2 := make(sim.State, n)
	for i := range x {
		x2[i] = x[i] + 0.5*dt*k1[i]
	}
	k2 := dyn.Derivative(x2, u, t+0.5*dt)

	x3 := make(sim.State, n)
	for i := range x {
		x3[i] = x[i] + 0.5*dt*k2[i]
	}
	k3 := dyn.Derivative(x3, u, t+0.5*dt)

	x4 := make(sim.State, n)
	for i := range x {
		x4[i] = x[i] + dt*k3[i]
	}
	k4 := dyn.Derivative(x4, u, t+dt)

	next := make(sim.State, n)
	for i := range x {
		next[i] = x[i] + dt/6.0*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return next
}

func (r *RK4) Name() string { return "rk4" }
