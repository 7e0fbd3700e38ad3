// Package config loads and saves controller and simulation settings.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pathmpc/internal/mpc"
	"github.com/san-kum/pathmpc/internal/solver"
)

type Config struct {
	Controller mpc.Config      `yaml:"controller"`
	Solver     SolverConfig    `yaml:"solver"`
	Sim        SimConfig       `yaml:"sim"`
	InitState  InitStateConfig `yaml:"init_state"`
	Path       []float64       `yaml:"path"` // cubic coefficients, ascending
}

type SolverConfig struct {
	BudgetMS   int     `yaml:"budget_ms"`
	FeasTol    float64 `yaml:"feas_tol"`
	OuterIters int     `yaml:"outer_iters"`
}

type SimConfig struct {
	Duration     float64 `yaml:"duration"`
	Integrator   string  `yaml:"integrator"`
	LatencySteps int     `yaml:"latency_steps"`
}

type InitStateConfig struct {
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Psi  float64 `yaml:"psi"`
	V    float64 `yaml:"v"`
	CTE  float64 `yaml:"cte"`
	EPsi float64 `yaml:"epsi"`
}

func DefaultConfig() *Config {
	return &Config{
		Controller: mpc.DefaultConfig(),
		Solver: SolverConfig{
			BudgetMS:   500,
			FeasTol:    1e-4,
			OuterIters: 12,
		},
		Sim: SimConfig{
			Duration:   10.0,
			Integrator: "rk4",
		},
		Path: []float64{0, 0, 0, 0},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Controller.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SolverOptions translates the file-level tunables into adapter options.
func (c *Config) SolverOptions() solver.Options {
	opts := solver.DefaultOptions()
	if c.Solver.BudgetMS > 0 {
		opts.Budget = time.Duration(c.Solver.BudgetMS) * time.Millisecond
	}
	if c.Solver.FeasTol > 0 {
		opts.FeasTol = c.Solver.FeasTol
	}
	if c.Solver.OuterIters > 0 {
		opts.OuterIters = c.Solver.OuterIters
	}
	return opts
}

// GetInitState assembles the starting vehicle state.
func (c *Config) GetInitState() mpc.State {
	return mpc.State{
		X:    c.InitState.X,
		Y:    c.InitState.Y,
		Psi:  c.InitState.Psi,
		V:    c.InitState.V,
		CTE:  c.InitState.CTE,
		EPsi: c.InitState.EPsi,
	}
}
