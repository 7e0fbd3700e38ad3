// Package metrics provides scalar quality measures accumulated over a
// closed-loop run.
package metrics

import (
	"math"

	"github.com/san-kum/pathmpc/internal/poly"
	"github.com/san-kum/pathmpc/internal/sim"
)

// TrackingRMS is the root-mean-square cross-track error against the
// reference polynomial.
type TrackingRMS struct {
	name    string
	ref     poly.Poly
	sumSq   float64
	samples int
}

func NewTrackingRMS(ref poly.Poly) *TrackingRMS {
	return &TrackingRMS{
		name: "tracking_rms",
		ref:  ref,
	}
}

func (m *TrackingRMS) Name() string {
	return m.name
}

func (m *TrackingRMS) Observe(x sim.State, u sim.Control, t float64) {
	cte := m.ref.Eval(x[sim.IdxX]) - x[sim.IdxY]
	m.sumSq += cte * cte
	m.samples++
}

func (m *TrackingRMS) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.samples))
}

func (m *TrackingRMS) Reset() {
	m.sumSq = 0
	m.samples = 0
}

// SpeedError is the mean absolute deviation from the reference speed.
type SpeedError struct {
	name    string
	refV    float64
	sum     float64
	samples int
}

func NewSpeedError(refV float64) *SpeedError {
	return &SpeedError{
		name: "speed_error",
		refV: refV,
	}
}

func (m *SpeedError) Name() string {
	return m.name
}

func (m *SpeedError) Observe(x sim.State, u sim.Control, t float64) {
	m.sum += math.Abs(x[sim.IdxV] - m.refV)
	m.samples++
}

func (m *SpeedError) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *SpeedError) Reset() {
	m.sum = 0
	m.samples = 0
}
