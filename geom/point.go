package geom

import (
	"math"
)

// Point is a payoff pair. X is player 0's payoff, Y is player 1's.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

func (p Point) Scale(k float64) Point {
	return Point{k * p.X, k * p.Y}
}

func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Normal is the clockwise rotated normal (y, -x).
func (p Point) Normal() Point {
	return Point{p.Y, -p.X}
}

func (p Point) RotateCCW(rad float64) Point {
	sin, cos := math.Sincos(rad)
	return Point{cos*p.X - sin*p.Y, sin*p.X + cos*p.Y}
}

// At returns the coordinate for the given player.
func (p Point) At(player int) float64 {
	if player == 0 {
		return p.X
	}
	return p.Y
}

func (p *Point) SetAt(player int, v float64) {
	if player == 0 {
		p.X = v
	} else {
		p.Y = v
	}
}

// Geq reports whether p dominates q componentwise within tol.
func (p Point) Geq(q Point, tol float64) bool {
	return p.X >= q.X-tol && p.Y >= q.Y-tol
}

func Distance(p, q Point) float64 {
	return p.Sub(q).Norm()
}

func Min(p, q Point) Point {
	return Point{math.Min(p.X, q.X), math.Min(p.Y, q.Y)}
}

func Max(p, q Point) Point {
	return Point{math.Max(p.X, q.X), math.Max(p.Y, q.Y)}
}

// Interpolate returns (1-alpha)*p + alpha*q.
func Interpolate(p, q Point, alpha float64) Point {
	return p.Scale(1 - alpha).Add(q.Scale(alpha))
}
