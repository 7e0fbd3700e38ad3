// Package mpc formulates the receding-horizon path-tracking problem:
// a kinematic bicycle [Model], the trajectory [Evaluator] producing
// cost and dynamics residuals over a flat decision vector ([Layout]),
// the bound assembly pinning step 0 to the measured [State], and the
// [Controller] driving one solve per control cycle.
//
// The numerics are deliberately split: everything here is a pure,
// differentiable description of the problem; the iterative solving
// lives behind the solver.Adapter boundary.
//
//	ctrl, _ := mpc.New(mpc.DefaultConfig(), solver.NewAugLag(solver.DefaultOptions()))
//	cmd, err := ctrl.ComputeControl(ctx, state, coeffs)
//
// Only cmd.Steering and cmd.Accel are applied; the predicted points
// exist for telemetry and the whole horizon is re-solved next cycle.
package mpc
