package sim

import (
	"context"
	"time"

	"github.com/san-kum/pathmpc/internal/mpc"
	"github.com/san-kum/pathmpc/internal/poly"
)

// Plant state layout used by the tracker and the vehicle dynamics:
// [x, y, psi, v]. The tracking errors are derived from the reference
// path each cycle rather than carried as plant state.
const (
	IdxX = iota
	IdxY
	IdxPsi
	IdxV
	PlantDim
)

// Tracker adapts the mpc controller to the sim Controller interface:
// it derives cte and epsi from the reference polynomial, runs one
// receding-horizon solve and returns [steer, accel]. Solve failures
// already map to the safe stop command inside the driver; the tracker
// only counts them.
type Tracker struct {
	ctx  context.Context
	ctrl *mpc.Controller
	ref  poly.Poly

	last      mpc.Command
	failures  int
	cycles    int
	solveTime time.Duration
}

func NewTracker(ctx context.Context, ctrl *mpc.Controller, ref poly.Poly) *Tracker {
	return &Tracker{ctx: ctx, ctrl: ctrl, ref: ref}
}

// FullState widens a plant state with path-relative errors.
func (tr *Tracker) FullState(x State) mpc.State {
	return mpc.State{
		X:    x[IdxX],
		Y:    x[IdxY],
		Psi:  x[IdxPsi],
		V:    x[IdxV],
		CTE:  tr.ref.Eval(x[IdxX]) - x[IdxY],
		EPsi: x[IdxPsi] - tr.ref.Tangent(x[IdxX]),
	}
}

func (tr *Tracker) Compute(x State, t float64) Control {
	tr.cycles++

	start := time.Now()
	cmd, err := tr.ctrl.ComputeControl(tr.ctx, tr.FullState(x), tr.ref)
	tr.solveTime += time.Since(start)
	if err != nil {
		tr.failures++
	}
	tr.last = cmd

	return Control{cmd.Steering, cmd.Accel}
}

// LastCommand returns the most recent solve output, including the
// predicted trajectory for display.
func (tr *Tracker) LastCommand() mpc.Command {
	return tr.last
}

// Failures reports how many cycles fell back to the safe command.
func (tr *Tracker) Failures() int {
	return tr.failures
}

// Cycles reports how many solves ran.
func (tr *Tracker) Cycles() int {
	return tr.cycles
}

// MeanSolveTime is the average wall-clock cost of one control cycle.
func (tr *Tracker) MeanSolveTime() time.Duration {
	if tr.cycles == 0 {
		return 0
	}
	return tr.solveTime / time.Duration(tr.cycles)
}
