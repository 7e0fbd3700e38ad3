package mpc

import (
	"errors"
	"fmt"
	"math"
)

// State is the vehicle snapshot handed in by localization each cycle,
// expressed in the same frame as the reference polynomial.
type State struct {
	X    float64 // position along the local frame
	Y    float64
	Psi  float64 // heading, radians
	V    float64 // speed
	CTE  float64 // cross-track error
	EPsi float64 // heading error
}

// Vector returns the state in decision-vector block order.
func (s State) Vector() [6]float64 {
	return [6]float64{s.X, s.Y, s.Psi, s.V, s.CTE, s.EPsi}
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s.Vector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Actuation is one steering/acceleration pair. Steering is radians
// (scaled by Lf in the decision vector, see Bounds), acceleration is
// normalized throttle/brake in [-1, 1].
type Actuation struct {
	Steer float64
	Accel float64
}

// Point is a predicted position for downstream telemetry.
type Point struct {
	X float64
	Y float64
}

// Weights are the relative cost priorities. Tracking terms dominate,
// speed keeping is the weakest, actuation terms discourage aggressive
// and jerky control.
type Weights struct {
	CTE       float64 `yaml:"cte"`
	EPsi      float64 `yaml:"epsi"`
	Speed     float64 `yaml:"speed"`
	Steer     float64 `yaml:"steer"`
	Accel     float64 `yaml:"accel"`
	SteerRate float64 `yaml:"steer_rate"`
	AccelRate float64 `yaml:"accel_rate"`
}

// Config collects every constant of one controller instance so that
// independently tuned controllers can coexist.
type Config struct {
	Horizon  int     `yaml:"horizon"` // planning steps N
	Dt       float64 `yaml:"dt"`      // step duration, seconds
	Lf       float64 `yaml:"lf"`      // front-axle to CoG distance
	RefSpeed float64 `yaml:"ref_speed"`
	MaxSteer float64 `yaml:"max_steer"` // physical steering limit, radians
	Weights  Weights `yaml:"weights"`
}

// DefaultConfig mirrors the tuning the controller was validated with.
func DefaultConfig() Config {
	return Config{
		Horizon:  10,
		Dt:       0.1,
		Lf:       2.67,
		RefSpeed: 40.0,
		MaxSteer: 0.436332, // 25 degrees
		Weights: Weights{
			CTE:       2000,
			EPsi:      2000,
			Speed:     1,
			Steer:     10,
			Accel:     10,
			SteerRate: 100,
			AccelRate: 10,
		},
	}
}

var (
	// ErrBadConfig indicates an unusable controller configuration.
	ErrBadConfig = errors.New("mpc: invalid configuration")

	// ErrBadState indicates a non-finite input state.
	ErrBadState = errors.New("mpc: state contains NaN or Inf")

	// ErrNoSolution indicates the solver produced nothing safe to apply.
	ErrNoSolution = errors.New("mpc: no usable solution")
)

// Validate rejects configurations the formulation cannot express.
func (c Config) Validate() error {
	switch {
	case c.Horizon < 2:
		return fmt.Errorf("%w: horizon %d, need at least 2 steps", ErrBadConfig, c.Horizon)
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt %f must be positive", ErrBadConfig, c.Dt)
	case c.Lf <= 0:
		return fmt.Errorf("%w: lf %f must be positive", ErrBadConfig, c.Lf)
	case c.MaxSteer <= 0:
		return fmt.Errorf("%w: max_steer %f must be positive", ErrBadConfig, c.MaxSteer)
	}
	return nil
}
