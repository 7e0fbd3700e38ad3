// Package vehicle provides the plant model used in closed-loop runs: a
// kinematic bicycle with state [x, y, psi, v] and control [steer, accel].
package vehicle

import (
	"math"

	"github.com/san-kum/pathmpc/internal/sim"
)

// Bicycle is the kinematic bicycle plant. Positive steering turns the
// heading in the negative direction, matching the controller's
// prediction model.
type Bicycle struct {
	// Lf is the distance from the center of mass to the front axle.
	Lf float64
}

func NewBicycle(lf float64) *Bicycle {
	return &Bicycle{Lf: lf}
}

func (b *Bicycle) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	psi, v := x[sim.IdxPsi], x[sim.IdxV]
	steer, accel := u[0], u[1]

	return sim.State{
		v * math.Cos(psi),
		v * math.Sin(psi),
		-v * steer / b.Lf,
		accel,
	}
}

func (b *Bicycle) StateDim() int   { return sim.PlantDim }
func (b *Bicycle) ControlDim() int { return 2 }
