package config

import "github.com/san-kum/pathmpc/internal/mpc"

// Presets are ready-made closed-loop scenarios used by the CLI and in
// regression checks.
var Presets = map[string]*Config{
	"centerline": {
		Controller: defaultController(),
		Solver:     defaultSolver(),
		Sim:        SimConfig{Duration: 10, Integrator: "rk4"},
		InitState:  InitStateConfig{V: 20},
		Path:       []float64{0, 0, 0, 0},
	},
	"offset": {
		Controller: defaultController(),
		Solver:     defaultSolver(),
		Sim:        SimConfig{Duration: 10, Integrator: "rk4"},
		InitState:  InitStateConfig{V: 15, CTE: 1},
		Path:       []float64{1, 0, 0, 0},
	},
	"scurve": {
		Controller: defaultController(),
		Solver:     defaultSolver(),
		Sim:        SimConfig{Duration: 15, Integrator: "rk4"},
		InitState:  InitStateConfig{V: 12},
		Path:       []float64{0, 0.05, -0.002, 0.00003},
	},
	"latency": {
		Controller: defaultController(),
		Solver:     defaultSolver(),
		Sim:        SimConfig{Duration: 10, Integrator: "rk4", LatencySteps: 1},
		InitState:  InitStateConfig{V: 15, CTE: 1},
		Path:       []float64{1, 0, 0, 0},
	},
}

func defaultController() mpc.Config {
	return DefaultConfig().Controller
}

func defaultSolver() SolverConfig {
	return DefaultConfig().Solver
}

// GetPreset returns the named preset or nil.
func GetPreset(name string) *Config {
	return Presets[name]
}

// ListPresets returns the preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
