package mpc

// Layout fixes the flat ordering of the decision vector: six state
// blocks of length N followed by the steering and acceleration blocks
// of length N-1. The evaluator and the bounds assembler must agree on
// these offsets, so they are computed in exactly one place.
type Layout struct {
	N int

	X     int
	Y     int
	Psi   int
	V     int
	CTE   int
	EPsi  int
	Delta int
	A     int
}

// NewLayout computes block offsets for an N-step horizon.
func NewLayout(n int) Layout {
	l := Layout{N: n}
	l.X = 0
	l.Y = l.X + n
	l.Psi = l.Y + n
	l.V = l.Psi + n
	l.CTE = l.V + n
	l.EPsi = l.CTE + n
	l.Delta = l.EPsi + n
	l.A = l.Delta + n - 1
	return l
}

// NumVars is the decision-vector length N*6 + (N-1)*2.
func (l Layout) NumVars() int {
	return l.N*6 + (l.N-1)*2
}

// NumCons is the residual-vector length N*6.
func (l Layout) NumCons() int {
	return l.N * 6
}

// StateStarts lists the six state-block offsets in block order.
func (l Layout) StateStarts() [6]int {
	return [6]int{l.X, l.Y, l.Psi, l.V, l.CTE, l.EPsi}
}
