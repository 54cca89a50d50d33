package geom

import (
	"math"
)

// Tuple is a sequence of points indexed by state.
type Tuple []Point

func NewTuple(numStates int, p Point) Tuple {
	t := make(Tuple, numStates)
	for s := range t {
		t[s] = p
	}
	return t
}

func (t Tuple) Clone() Tuple {
	clone := make(Tuple, len(t))
	copy(clone, t)
	return clone
}

// Expectation is the componentwise expectation of t under probs.
func (t Tuple) Expectation(probs []float64) Point {
	var e Point
	for s, p := range probs {
		e = e.Add(t[s].Scale(p))
	}
	return e
}

// ExpectationAt is player's coordinate of the expectation of t under probs.
func (t Tuple) ExpectationAt(probs []float64, player int) float64 {
	e := 0.0
	for s, p := range probs {
		e += p * t[s].At(player)
	}
	return e
}

// AddScalar shifts every coordinate of every point by v.
func (t Tuple) AddScalar(v float64) Tuple {
	shifted := make(Tuple, len(t))
	for s, p := range t {
		shifted[s] = Point{p.X + v, p.Y + v}
	}
	return shifted
}

// StrictlyLessThan reports whether t's coordinate for player is strictly
// below u's in every state.
func (t Tuple) StrictlyLessThan(u Tuple, player int) bool {
	for s := range t {
		if t[s].At(player) >= u[s].At(player) {
			return false
		}
	}
	return true
}

// MaxMin returns the extremes of the given coordinate over t together with
// the indices where they occur.
func (t Tuple) MaxMin(player int) (max float64, maxIdx int, min float64, minIdx int) {
	max = math.Inf(-1)
	min = math.Inf(1)
	maxIdx, minIdx = -1, -1
	for i, p := range t {
		v := p.At(player)
		if v > max {
			max = v
			maxIdx = i
		}
		if v < min {
			min = v
			minIdx = i
		}
	}
	return max, maxIdx, min, minIdx
}

// TupleDistance is the sup-norm distance over states and coordinates.
func TupleDistance(a, b Tuple) float64 {
	d := 0.0
	for s := range a {
		d = math.Max(d, math.Abs(a[s].X-b[s].X))
		d = math.Max(d, math.Abs(a[s].Y-b[s].Y))
	}
	return d
}
