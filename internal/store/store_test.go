package store

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/san-kum/pathmpc/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		States: []sim.State{
			{0, 0, 0, 10},
			{1, 0.1, 0.01, 10.1},
			{2, 0.3, 0.02, 10.2},
		},
		Controls: []sim.Control{
			{0.05, 0.5},
			{0.04, 0.5},
		},
		Times:   []float64{0, 0.1, 0.2},
		Metrics: map[string]float64{"tracking_rms": 0.2},
	}
}

func sampleMeta() RunMetadata {
	return RunMetadata{
		Scenario:   "offset",
		Dt:         0.1,
		Duration:   0.2,
		Horizon:    10,
		RefSpeed:   40,
		Integrator: "rk4",
		Path:       []float64{1, 0, 0, 0},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}

	runID, err := s.Save(sampleMeta(), sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	meta, err := s.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Scenario != "offset" {
		t.Errorf("scenario = %q, want offset", meta.Scenario)
	}
	if meta.Metrics["tracking_rms"] != 0.2 {
		t.Errorf("metrics not persisted: %v", meta.Metrics)
	}
	if meta.Horizon != 10 {
		t.Errorf("horizon = %d, want 10", meta.Horizon)
	}

	states, times, err := s.LoadStates(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 3 || len(times) != 3 {
		t.Fatalf("got %d states %d times, want 3 each", len(states), len(times))
	}
	if len(states[0]) != sim.PlantDim {
		t.Errorf("state width = %d, want %d (control columns excluded)", len(states[0]), sim.PlantDim)
	}
	if states[2][0] != 2 {
		t.Errorf("last x = %f, want 2", states[2][0])
	}
	if times[1] != 0.1 {
		t.Errorf("times[1] = %f, want 0.1", times[1])
	}
}

func TestList(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}

	if runs, err := s.List(); err != nil || len(runs) != 0 {
		t.Fatalf("empty store: runs=%v err=%v", runs, err)
	}

	if _, err := s.Save(sampleMeta(), sampleResult()); err != nil {
		t.Fatal(err)
	}
	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].ID == "" {
		t.Error("listed run missing ID")
	}
}

func TestListMissingDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "never-created"))
	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("got %d runs from missing dir, want 0", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeExport(&buf, sampleMeta(), sampleResult()); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Steps != 3 {
		t.Errorf("steps = %d, want 3", data.Steps)
	}
	if len(data.Controls) != 2 {
		t.Errorf("controls = %d rows, want 2", len(data.Controls))
	}
	if data.Path[0] != 1 {
		t.Errorf("path = %v, want leading 1", data.Path)
	}
}
