package chart

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/pathmpc/internal/poly"
	"github.com/san-kum/pathmpc/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		States: []sim.State{
			{0, 0, 0, 10},
			{1, 0.4, 0.02, 10.1},
			{2, 0.8, 0.03, 10.2},
		},
		Controls: []sim.Control{
			{0.05, 0.5},
			{0.03, 0.4},
		},
		Times: []float64{0, 0.1, 0.2},
	}
}

func TestRenderProducesReport(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, "offset run", poly.Poly{1, 0, 0, 0}, sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	html := buf.String()
	for _, want := range []string{"driven", "reference", "cte", "steer", "accel", "offset run"} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRenderEmptyRun(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, "empty", poly.Poly{0, 0, 0, 0}, &sim.Result{})
	if err != nil {
		t.Fatalf("empty run should still render: %v", err)
	}
}
