package mpc

import (
	"math"
	"testing"

	"github.com/san-kum/pathmpc/internal/ad"
	"github.com/san-kum/pathmpc/internal/poly"
)

// rollout fills a decision vector with an exact model propagation from
// the initial state under the given actuation sequence.
func rollout(cfg Config, init State, ref poly.Poly, us []Actuation) []float64 {
	l := NewLayout(cfg.Horizon)
	m := Model{Lf: cfg.Lf, Dt: cfg.Dt}

	x := make([]float64, l.NumVars())
	s := init
	for t := 0; t < l.N; t++ {
		sv := s.Vector()
		for k, start := range l.StateStarts() {
			x[start+t] = sv[k]
		}
		if t < l.N-1 {
			x[l.Delta+t] = us[t].Steer
			x[l.A+t] = us[t].Accel
			s = m.Step(s, us[t], ref)
		}
	}
	return x
}

func TestResidualsZeroOnExactRollout(t *testing.T) {
	cfg := DefaultConfig()
	ref := poly.Poly{0.3, 0.1, -0.02, 0.001}
	init := State{X: 0, Y: 0.2, Psi: 0.05, V: 12, CTE: 0.1, EPsi: -0.03}

	us := make([]Actuation, cfg.Horizon-1)
	for i := range us {
		us[i] = Actuation{Steer: 0.01 * float64(i%3), Accel: 0.2}
	}

	vars := rollout(cfg, init, ref, us)
	e := NewEvaluator(cfg, ref)
	_, cons := e.Eval(ad.Lift(vars))

	l := e.Layout()
	sv := init.Vector()
	for k, start := range l.StateStarts() {
		if math.Abs(cons[start].Val-sv[k]) > 1e-12 {
			t.Errorf("step-0 residual %d = %f, want state value %f", k, cons[start].Val, sv[k])
		}
		for step := 1; step < l.N; step++ {
			if r := cons[start+step].Val; math.Abs(r) > 1e-9 {
				t.Errorf("residual block %d step %d = %g, want 0", k, step, r)
			}
		}
	}
}

func TestCostZeroOnPerfectTracking(t *testing.T) {
	cfg := DefaultConfig()
	ref := poly.Poly{0, 0, 0, 0}
	l := NewLayout(cfg.Horizon)

	// Vehicle exactly on the x-axis at reference speed, no actuation.
	vars := make([]float64, l.NumVars())
	for t := 0; t < l.N; t++ {
		vars[l.V+t] = cfg.RefSpeed
	}

	e := NewEvaluator(cfg, ref)
	cost, _ := e.Eval(ad.Lift(vars))
	if math.Abs(cost.Val) > 1e-9 {
		t.Errorf("cost = %g, want 0 for perfect tracking", cost.Val)
	}
}

func TestCostPenalizesTrackingError(t *testing.T) {
	cfg := DefaultConfig()
	ref := poly.Poly{0, 0, 0, 0}
	l := NewLayout(cfg.Horizon)
	e := NewEvaluator(cfg, ref)

	base := make([]float64, l.NumVars())
	for t := 0; t < l.N; t++ {
		base[l.V+t] = cfg.RefSpeed
	}

	withCTE := append([]float64(nil), base...)
	withCTE[l.CTE+3] = 0.5

	c0, _ := e.Eval(ad.Lift(base))
	c1, _ := e.Eval(ad.Lift(withCTE))

	want := cfg.Weights.CTE * 0.25
	if math.Abs((c1.Val-c0.Val)-want) > 1e-9 {
		t.Errorf("cte cost delta = %f, want %f", c1.Val-c0.Val, want)
	}
}

func TestCostPenalizesActuationChange(t *testing.T) {
	cfg := DefaultConfig()
	ref := poly.Poly{0, 0, 0, 0}
	l := NewLayout(cfg.Horizon)
	e := NewEvaluator(cfg, ref)

	base := make([]float64, l.NumVars())
	for t := 0; t < l.N; t++ {
		base[l.V+t] = cfg.RefSpeed
	}

	// Same total steering magnitude, once smooth and once jerky: the
	// rate term must make the jerky plan strictly more expensive.
	smooth := append([]float64(nil), base...)
	jerky := append([]float64(nil), base...)
	for t := 0; t < l.N-1; t++ {
		smooth[l.Delta+t] = 0.1
		if t%2 == 0 {
			jerky[l.Delta+t] = 0.2
		}
	}

	cs, _ := e.Eval(ad.Lift(smooth))
	cj, _ := e.Eval(ad.Lift(jerky))
	if cj.Val <= cs.Val {
		t.Errorf("jerky cost %f not above smooth cost %f", cj.Val, cs.Val)
	}
}

func TestEvalIsRepeatable(t *testing.T) {
	cfg := DefaultConfig()
	ref := poly.Poly{0.1, 0.2, 0, 0}
	e := NewEvaluator(cfg, ref)

	vars := make([]float64, NewLayout(cfg.Horizon).NumVars())
	for i := range vars {
		vars[i] = 0.01 * float64(i)
	}

	c1, r1 := e.Eval(ad.Lift(vars))
	c2, r2 := e.Eval(ad.Lift(vars))

	if c1.Val != c2.Val {
		t.Errorf("cost changed across evaluations: %f vs %f", c1.Val, c2.Val)
	}
	for i := range r1 {
		if r1[i].Val != r2[i].Val {
			t.Errorf("residual %d changed across evaluations", i)
		}
	}
}

func TestGradientMatchesFiniteDifference(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Horizon = 4
	ref := poly.Poly{0.2, 0.1, -0.05, 0.01}
	e := NewEvaluator(cfg, ref)
	l := e.Layout()

	vars := make([]float64, l.NumVars())
	for i := range vars {
		vars[i] = 0.1 + 0.03*float64(i%7)
	}

	cost, _ := e.Eval(ad.Seed(vars))

	const h = 1e-6
	for _, i := range []int{0, l.Psi + 1, l.CTE + 2, l.Delta, l.A + 1} {
		bumped := append([]float64(nil), vars...)
		bumped[i] += h
		cp, _ := e.Eval(ad.Lift(bumped))
		bumped[i] -= 2 * h
		cm, _ := e.Eval(ad.Lift(bumped))

		fd := (cp.Val - cm.Val) / (2 * h)
		if math.Abs(cost.Grad[i]-fd) > 1e-4*(1+math.Abs(fd)) {
			t.Errorf("d cost / d x[%d] = %f, finite difference %f", i, cost.Grad[i], fd)
		}
	}
}
