package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/pathmpc/internal/poly"
	"github.com/san-kum/pathmpc/internal/sim"
)

func TestTrackingRMS(t *testing.T) {
	m := NewTrackingRMS(poly.Poly{0, 0, 0, 0})

	// Offsets 1 and -1 around the x axis: rms = 1.
	m.Observe(sim.State{0, 1, 0, 10}, sim.Control{0, 0}, 0)
	m.Observe(sim.State{1, -1, 0, 10}, sim.Control{0, 0}, 0.1)

	if math.Abs(m.Value()-1) > 1e-12 {
		t.Errorf("rms = %f, want 1", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("value after reset = %f, want 0", m.Value())
	}
}

func TestTrackingRMSFollowsPolynomial(t *testing.T) {
	m := NewTrackingRMS(poly.Poly{2, 1, 0, 0})

	// On the line y = 2 + x: zero error.
	m.Observe(sim.State{3, 5, 0, 10}, sim.Control{0, 0}, 0)
	if m.Value() != 0 {
		t.Errorf("rms = %f on the reference line, want 0", m.Value())
	}
}

func TestSpeedError(t *testing.T) {
	m := NewSpeedError(20)
	m.Observe(sim.State{0, 0, 0, 18}, nil, 0)
	m.Observe(sim.State{0, 0, 0, 24}, nil, 0.1)

	if math.Abs(m.Value()-3) > 1e-12 {
		t.Errorf("mean speed error = %f, want 3", m.Value())
	}
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	m.Observe(nil, sim.Control{0.2, -0.4}, 0)
	m.Observe(nil, sim.Control{-0.1, 0.3}, 0.1)

	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("effort = %f, want 0.5", m.Value())
	}
}

func TestSteerSmoothness(t *testing.T) {
	m := NewSteerSmoothness()
	m.Observe(nil, sim.Control{0.1, 0}, 0)
	m.Observe(nil, sim.Control{0.3, 0}, 0.1)
	m.Observe(nil, sim.Control{0.2, 0}, 0.2)

	// |0.3-0.1| and |0.2-0.3| average to 0.15.
	if math.Abs(m.Value()-0.15) > 1e-12 {
		t.Errorf("smoothness = %f, want 0.15", m.Value())
	}

	empty := NewSteerSmoothness()
	empty.Observe(nil, sim.Control{0.5, 0}, 0)
	if empty.Value() != 0 {
		t.Errorf("single sample should give 0, got %f", empty.Value())
	}
}
