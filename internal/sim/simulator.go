// Package sim closes the loop around the controller: a plant model,
// an integrator and a controller are stepped together, with optional
// actuator latency, metrics and per-step observers.
package sim

import (
	"context"
	"fmt"
)

type Simulator struct {
	dyn        Dynamics
	integrator Integrator
	controller Controller
	metrics    []Metric
	observers  []Observer
}

func New(dyn Dynamics, integrator Integrator, controller Controller) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &Result{
		States:   make([]State, 0, steps+1),
		Controls: make([]Control, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	// Latency queue: commands wait LatencySteps cycles before the
	// plant sees them; until then the plant runs on zero actuation.
	queue := make([]Control, cfg.LatencySteps)
	for i := range queue {
		queue[i] = make(Control, s.dyn.ControlDim())
	}

	x := x0.Clone()
	t := 0.0

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		u := s.controller.Compute(x, t)

		applied := u
		if cfg.LatencySteps > 0 {
			applied = queue[0]
			queue = append(queue[1:], u)
		}

		for _, m := range s.metrics {
			m.Observe(x, applied, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, applied, t)
		}

		newX := s.integrator.Step(s.dyn, x, applied, t, cfg.Dt)

		if cfg.ValidateState && !newX.IsValid() {
			result.Errors = append(result.Errors,
				SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"})
			break
		}

		x = newX
		t += cfg.Dt

		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, applied)
		result.Times = append(result.Times, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.LatencySteps < 0 {
		return fmt.Errorf("latency steps must not be negative, got %d", cfg.LatencySteps)
	}
	return nil
}
