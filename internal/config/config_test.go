package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Controller.Validate(); err != nil {
		t.Fatalf("default controller config invalid: %v", err)
	}
	if cfg.Solver.BudgetMS != 500 {
		t.Errorf("default budget = %d ms, want 500", cfg.Solver.BudgetMS)
	}
	if len(cfg.Path) != 4 {
		t.Errorf("default path has %d coefficients, want 4", len(cfg.Path))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mpc.yaml")

	cfg := DefaultConfig()
	cfg.Controller.Horizon = 15
	cfg.Controller.Weights.CTE = 500
	cfg.InitState.V = 25
	cfg.Sim.LatencySteps = 1
	cfg.Path = []float64{1, 0.1, 0, 0}

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Controller.Horizon != 15 {
		t.Errorf("horizon = %d, want 15", loaded.Controller.Horizon)
	}
	if loaded.Controller.Weights.CTE != 500 {
		t.Errorf("cte weight = %f, want 500", loaded.Controller.Weights.CTE)
	}
	if loaded.InitState.V != 25 {
		t.Errorf("init v = %f, want 25", loaded.InitState.V)
	}
	if loaded.Sim.LatencySteps != 1 {
		t.Errorf("latency steps = %d, want 1", loaded.Sim.LatencySteps)
	}
	if len(loaded.Path) != 4 || loaded.Path[0] != 1 {
		t.Errorf("path = %v, want [1 0.1 0 0]", loaded.Path)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yaml")
	if err := os.WriteFile(path, []byte("sim:\n  duration: 3.5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sim.Duration != 3.5 {
		t.Errorf("duration = %f, want 3.5", cfg.Sim.Duration)
	}
	if cfg.Controller.Horizon != 10 {
		t.Errorf("horizon = %d, default 10 should survive", cfg.Controller.Horizon)
	}
}

func TestLoadRejectsInvalidController(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("controller:\n  horizon: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for horizon 1")
	}
}

func TestSolverOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Solver.BudgetMS = 250
	cfg.Solver.FeasTol = 1e-3

	opts := cfg.SolverOptions()
	if opts.Budget != 250*time.Millisecond {
		t.Errorf("budget = %v, want 250ms", opts.Budget)
	}
	if opts.FeasTol != 1e-3 {
		t.Errorf("feas tol = %g, want 1e-3", opts.FeasTol)
	}
}

func TestPresets(t *testing.T) {
	if GetPreset("no_such") != nil {
		t.Error("unknown preset should return nil")
	}

	for _, name := range ListPresets() {
		p := GetPreset(name)
		if p == nil {
			t.Fatalf("listed preset %q missing", name)
		}
		if err := p.Controller.Validate(); err != nil {
			t.Errorf("preset %q controller invalid: %v", name, err)
		}
		if len(p.Path) != 4 {
			t.Errorf("preset %q path has %d coefficients, want 4", name, len(p.Path))
		}
	}

	off := GetPreset("offset")
	if off.InitState.CTE != 1 {
		t.Errorf("offset preset cte = %f, want 1", off.InitState.CTE)
	}
	if GetPreset("latency").Sim.LatencySteps != 1 {
		t.Error("latency preset should delay commands one step")
	}
}
