// Package action tracks, per (state, action profile), the minimum
// incentive compatible continuation payoff of each player and the
// extreme binding continuation segments that support the profile.
package action

import (
	"math"

	"github.com/sw965/egret/env"
	"github.com/sw965/egret/game"
	"github.com/sw965/egret/geom"
)

// Action is alive while the profile can still be supported. The solver
// trims it against half planes as the approximation shrinks and deletes
// it once its binding sets are empty and no feasible payoff is
// incentive compatible.
type Action struct {
	State   int
	Profile int

	// MinIC[i] is the lowest continuation payoff for player i that
	// deters every deviation, given the current threat tuple.
	// Unconstrained players carry -Inf.
	MinIC [2]float64

	// Points[i] is the committed binding continuation segment for
	// player i: empty or exactly two points, ordered descending in the
	// other player's coordinate. BndryDirs runs parallel to Points and
	// gives the direction of the frontier at each endpoint (zero when
	// unknown). Tuples runs parallel too and names the extreme-tuple
	// index each endpoint interpolates; -1 marks a synthesized corner.
	Points    [2]geom.Tuple
	BndryDirs [2]geom.Tuple
	Tuples    [2][]int
	Corner    bool

	trimmed          [2]geom.Tuple
	trimmedBndryDirs [2]geom.Tuple

	env env.Env
}

func New(e env.Env, state, profile int) *Action {
	return &Action{State: state, Profile: profile, env: e}
}

// CalculateMinIC recomputes MinIC for the players flagged in update.
func (a *Action) CalculateMinIC(g *game.Game, update [2]bool, threat geom.Tuple) {
	for player := 0; player < game.NumPlayers; player++ {
		if !update[player] {
			continue
		}
		if g.Unconstrained[player] {
			a.MinIC[player] = math.Inf(-1)
			continue
		}
		a.MinIC[player] = MinIC(g, a.State, a.Profile, player, threat)
	}
}

// MinIC is the maximum over player's deviations of the normalized
// deviation gain plus the expected threat after the deviation.
func MinIC(g *game.Game, state, profile, player int, threat geom.Tuple) float64 {
	actions := game.ProfileToVector(profile, g.NumActions[state])
	deviations := make([]int, len(actions))
	copy(deviations, actions)

	minIC := math.Inf(-1)
	for dev := 0; dev < g.NumActions[state][player]; dev++ {
		deviations[player] = dev
		devProfile := game.VectorToProfile(deviations, g.NumActions[state])

		gain := (1-g.Delta)/g.Delta*
			(g.Payoffs[state][devProfile].At(player)-g.Payoffs[state][profile].At(player)) +
			threat.ExpectationAt(g.Probabilities[state][devProfile], player)

		if gain > minIC {
			minIC = gain
		}
	}
	return minIC
}

// ResetTrimmedPoints seeds the working segments with the rays along each
// player's minimum IC payoff, clipped to the payoff bounding box.
// Unconstrained players have no binding constraint and get an empty
// segment.
func (a *Action) ResetTrimmedPoints(g *game.Game, lb, ub geom.Point) {
	for player := 0; player < game.NumPlayers; player++ {
		if g.Unconstrained[player] {
			a.trimmed[player] = nil
			a.trimmedBndryDirs[player] = nil
			a.Tuples[player] = nil
			continue
		}
		other := 1 - player

		near := geom.Point{X: a.MinIC[0], Y: a.MinIC[1]}
		near.SetAt(other, math.Max(a.MinIC[other], lb.At(other)))
		far := near
		far.SetAt(other, ub.At(other))

		a.trimmed[player] = geom.Tuple{far, near}
		a.trimmedBndryDirs[player] = geom.Tuple{{}, {}}
		a.Tuples[player] = []int{-1, -1}
	}
	a.Corner = false
}

// Trim clips both players' working segments against the half plane
// {x : x*dir <= level}.
func (a *Action) Trim(dir geom.Point, level float64) {
	for player := 0; player < game.NumPlayers; player++ {
		a.trimmed[player], a.trimmedBndryDirs[player] =
			geom.ClipSegment(dir, level, a.trimmed[player], a.trimmedBndryDirs[player],
				a.env.ICTol, a.env.IntersectTol)
	}
}

// CommitTrim publishes the working segments.
func (a *Action) CommitTrim() {
	for player := 0; player < game.NumPlayers; player++ {
		a.Points[player] = a.trimmed[player].Clone()
		a.BndryDirs[player] = a.trimmedBndryDirs[player].Clone()
		if len(a.Points[player]) == 0 {
			a.Tuples[player] = nil
		}
	}
}

// DistToTrimmed is the sup distance between the committed and working
// segments; 1 when their cardinalities differ.
func (a *Action) DistToTrimmed() float64 {
	dist := 0.0
	for player := 0; player < game.NumPlayers; player++ {
		if len(a.Points[player]) != len(a.trimmed[player]) {
			return 1.0
		}
		for k := range a.Points[player] {
			dist = math.Max(dist, math.Abs(a.Points[player][k].X-a.trimmed[player][k].X))
			dist = math.Max(dist, math.Abs(a.Points[player][k].Y-a.trimmed[player][k].Y))
		}
	}
	return dist
}

// IntersectRaySegment clips the committed segment of the given player
// against the clockwise ray through pivot along dir.
func (a *Action) IntersectRaySegment(pivot, dir geom.Point, player int) {
	a.Points[player], a.BndryDirs[player] =
		geom.IntersectRaySegment(pivot, dir, a.Points[player], a.BndryDirs[player],
			a.env.ICTol, a.env.IntersectTol)
	if len(a.Points[player]) == 0 {
		a.Tuples[player] = nil
	}
}

// HasBindingPayoffs reports whether either player's binding segment is
// non-empty.
func (a *Action) HasBindingPayoffs() bool {
	for player := 0; player < game.NumPlayers; player++ {
		if len(a.Points[player]) > 0 {
			return true
		}
	}
	return false
}

// Supportable reports whether the profile can still back some
// equilibrium payoff: either a binding segment survives, or the expected
// feasible continuation is itself incentive compatible.
func (a *Action) Supportable(expFeasible geom.Point) bool {
	if a.HasBindingPayoffs() {
		return true
	}
	return expFeasible.Geq(geom.Point{X: a.MinIC[0], Y: a.MinIC[1]}, a.env.ICTol)
}
