package mpc

import "math"

// Bounds are the box constraints of one solve: variable bounds plus
// the constraint-residual bounds that pin step 0 to the measurement.
type Bounds struct {
	XLower []float64
	XUpper []float64
	CLower []float64
	CUpper []float64
}

// unbounded stands in for +/- infinity on the free state variables.
const unbounded = 1.0e19

// AssembleBounds builds the bound vectors for the current state.
// State entries are free, steering is limited to the physical range
// scaled by Lf (the turn-rate terms divide by Lf), acceleration is
// normalized to [-1, 1]. Residual bounds are zero everywhere except
// the six step-0 slots, which carry the measured state on both sides.
func AssembleBounds(cfg Config, s State) Bounds {
	l := NewLayout(cfg.Horizon)

	b := Bounds{
		XLower: make([]float64, l.NumVars()),
		XUpper: make([]float64, l.NumVars()),
		CLower: make([]float64, l.NumCons()),
		CUpper: make([]float64, l.NumCons()),
	}

	for i := 0; i < l.Delta; i++ {
		b.XLower[i] = -unbounded
		b.XUpper[i] = unbounded
	}

	steer := cfg.MaxSteer * cfg.Lf
	for i := l.Delta; i < l.A; i++ {
		b.XLower[i] = -steer
		b.XUpper[i] = steer
	}
	for i := l.A; i < l.NumVars(); i++ {
		b.XLower[i] = -1
		b.XUpper[i] = 1
	}

	sv := s.Vector()
	for k, start := range l.StateStarts() {
		b.CLower[start] = sv[k]
		b.CUpper[start] = sv[k]
	}
	return b
}

// ClampActuation projects an actuation into the configured box, used
// as the final guard before a command leaves the controller.
func (c Config) ClampActuation(u Actuation) Actuation {
	steer := c.MaxSteer * c.Lf
	return Actuation{
		Steer: math.Max(-steer, math.Min(steer, u.Steer)),
		Accel: math.Max(-1, math.Min(1, u.Accel)),
	}
}
