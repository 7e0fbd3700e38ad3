package metrics

import (
	"math"

	"github.com/san-kum/pathmpc/internal/sim"
)

// ControlEffort is the mean absolute actuation magnitude across all
// control channels.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(x sim.State, u sim.Control, t float64) {
	for _, val := range u {
		c.sum += math.Abs(val)
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// SteerSmoothness is the mean absolute change in the steering channel
// between consecutive commands. Lower is smoother.
type SteerSmoothness struct {
	name    string
	prev    float64
	seen    bool
	sum     float64
	samples int
}

func NewSteerSmoothness() *SteerSmoothness {
	return &SteerSmoothness{
		name: "steer_smoothness",
	}
}

func (s *SteerSmoothness) Name() string {
	return s.name
}

func (s *SteerSmoothness) Observe(x sim.State, u sim.Control, t float64) {
	if len(u) == 0 {
		return
	}
	if s.seen {
		s.sum += math.Abs(u[0] - s.prev)
		s.samples++
	}
	s.prev = u[0]
	s.seen = true
}

func (s *SteerSmoothness) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *SteerSmoothness) Reset() {
	s.prev = 0
	s.seen = false
	s.sum = 0
	s.samples = 0
}
