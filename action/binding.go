package action

import (
	"math"

	"github.com/sw965/egret/game"
	"github.com/sw965/egret/geom"
)

// CalculateBindingContinuations rebuilds the binding continuation
// segments from the trajectory of pivots recorded on the previous
// revolution. To be used after the threat tuple has risen for the
// players flagged in update.
//
// For each such player the history is walked in reverse from the newest
// tuple down to oldWest. Each consecutive pair of expected continuations
// is checked for a crossing of the player's minimum IC payoff; a flat
// along it contributes both endpoints. The walk stops once the tuple
// falls strictly below the threat tuple by more than half of
// PastThreatTol. Among the candidates, the extremes in the other
// player's coordinate form the segment; when the smaller extreme is not
// incentive compatible for the other player it is replaced by the corner
// at MinIC. The segment is finally clipped below the ray through the
// expected pivot along the current direction.
func (a *Action) CalculateBindingContinuations(g *game.Game, update [2]bool,
	history []geom.Tuple, oldWest int, threat, pivot geom.Tuple, dir geom.Point) {

	probs := g.Probabilities[a.State][a.Profile]

	var newPoints [2]geom.Tuple
	var newTuples [2][]int
	for player := 0; player < game.NumPlayers; player++ {
		if !update[player] || g.Unconstrained[player] {
			continue
		}

		a.Tuples[player] = nil
		a.Points[player] = nil
		a.BndryDirs[player] = nil

		nextPoint := history[len(history)-1].Expectation(probs)
		for idx := len(history) - 1; idx > oldWest; idx-- {
			point := nextPoint
			nextPoint = history[idx-1].Expectation(probs)

			gap := point.At(player) - nextPoint.At(player)
			switch {
			case math.Abs(gap) < a.env.FlatTol &&
				math.Abs(point.At(player)-a.MinIC[player]) < a.env.FlatTol:
				// A flat along the minimum IC payoff.
				newTuples[player] = append(newTuples[player], idx, idx-1)
				newPoints[player] = append(newPoints[player], point, nextPoint)
			case (point.At(player) <= a.MinIC[player] && a.MinIC[player] < nextPoint.At(player)) ||
				(point.At(player) >= a.MinIC[player] && a.MinIC[player] > nextPoint.At(player)):
				// The pair flanks the minimum IC payoff.
				alpha := (a.MinIC[player] - nextPoint.At(player)) / gap
				newTuples[player] = append(newTuples[player], idx)
				newPoints[player] = append(newPoints[player], geom.Interpolate(nextPoint, point, alpha))
			}

			// Stop once below the threat tuple, but only by more than
			// PastThreatTol/2.
			if history[idx].StrictlyLessThan(threat, player) &&
				!threat.StrictlyLessThan(history[idx].AddScalar(a.env.PastThreatTol/2), player) {
				break
			}
		}
	}

	for player := 0; player < game.NumPlayers; player++ {
		other := 1 - player
		switch {
		case update[player] && !g.Unconstrained[player]:
			if len(newPoints[player]) == 0 {
				continue
			}
			maxOther, maxIdx, minOther, minIdx := newPoints[player].MaxMin(other)
			if maxOther < a.MinIC[other] {
				// Not incentive compatible for the other player.
				continue
			}

			a.Points[player] = geom.Tuple{newPoints[player][maxIdx]}
			a.Tuples[player] = []int{newTuples[player][maxIdx]}
			if minOther < a.MinIC[other] {
				a.Points[player] = append(a.Points[player], geom.Point{X: a.MinIC[0], Y: a.MinIC[1]})
				a.Tuples[player] = append(a.Tuples[player], -1)
				a.Corner = true
			} else {
				a.Points[player] = append(a.Points[player], newPoints[player][minIdx])
				a.Tuples[player] = append(a.Tuples[player], newTuples[player][minIdx])
			}
			a.BndryDirs[player] = geom.Tuple{{}, {}}

			expPivot := pivot.Expectation(probs)
			a.IntersectRaySegment(expPivot, dir, player)

		case update[other] && len(a.Points[player]) > 0:
			// The other player's threat moved: re-check the existing
			// segment against their new minimum IC payoff.
			if a.Points[player][0].At(other) >= a.MinIC[other] {
				if a.Points[player][1].At(other) < a.MinIC[other] {
					a.Points[player][1] = geom.Point{X: a.MinIC[0], Y: a.MinIC[1]}
					a.Tuples[player][1] = -1
				}
			} else {
				a.Points[player] = nil
				a.Tuples[player] = nil
				a.BndryDirs[player] = nil
			}
		}
	}

	// The rebuilt segments are the new baseline for trimming.
	for player := 0; player < game.NumPlayers; player++ {
		a.trimmed[player] = a.Points[player].Clone()
		a.trimmedBndryDirs[player] = a.BndryDirs[player].Clone()
	}
}
