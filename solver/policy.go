package solver

import (
	"math"

	"github.com/sw965/egret/action"
	"github.com/sw965/egret/geom"
	"github.com/sw965/egret/solution"
)

// optimizePolicy runs policy iteration for one direction: in each state
// it scans the surviving actions for the candidate payoff with the
// highest level along dir, taking the non-binding Bellman image unless
// the action's best binding payoff lies strictly below it along dir, in
// which case the binding payoff is the candidate. It then resolves the
// non-binding states by Bellman iteration and demotes states whose
// non-binding payoff overshoots the best binding payoff.
//
// pivot, actionTuple and regimeTuple are updated in place. The returned
// slice gives, per state, the extreme-tuple index of the binding
// endpoint backing the pivot, or -1 for non-binding states and corners.
//
// States whose gap to the best binding payoff is at least delta times
// the maximum gap are switched to the binding regime together; switching
// them one at a time oscillates, so this rule is part of the method's
// contract, not a heuristic.
func (s *Solver) optimizePolicy(pivot geom.Tuple, actionTuple []*action.Action,
	regimeTuple []solution.Regime, dir geom.Point, actions [][]*action.Action) []int {

	numStates := s.g.NumStates
	delta := s.g.Delta

	newPivot := make(geom.Tuple, numStates)
	newActionTuple := make([]*action.Action, numStates)
	copy(newActionTuple, actionTuple)
	newRegimeTuple := make([]solution.Regime, numStates)
	copy(newRegimeTuple, regimeTuple)
	newConts := make([]int, numStates)
	conts := make([]int, numStates)

	bestAPSNotBinding := make([]bool, numStates)
	bestBindingPayoffs := make(geom.Tuple, numStates)
	bestBindingConts := make([]int, numStates)

	numPolicyIters := 0
	for {
		pivotError := 0.0

		for state := 0; state < numStates; state++ {
			bestLevel := math.Inf(-1)

			for _, ait := range actions[state] {
				payoff := s.g.Payoffs[state][ait.Profile]
				probs := s.g.Probabilities[state][ait.Profile]

				nonBinding := payoff.Scale(1 - delta).
					Add(pivot.Expectation(probs).Scale(delta))

				// Highest binding endpoint along dir.
				bestBindingPlayer, bestBindingPoint := -1, -1
				bestBindLvl := math.Inf(-1)
				for p := 0; p < 2; p++ {
					for k, pt := range ait.Points[p] {
						if lvl := pt.Dot(dir); lvl > bestBindLvl {
							bestBindLvl = lvl
							bestBindingPlayer = p
							bestBindingPoint = k
						}
					}
				}

				// No binding endpoint, or the frontier at the best one
				// still improves along dir: APS does not bind.
				apsNotBinding := bestBindingPlayer < 0 ||
					ait.BndryDirs[bestBindingPlayer][bestBindingPoint].Dot(dir) > 1e-8

				var bestAPS geom.Point
				if !apsNotBinding {
					bestAPS = payoff.Scale(1 - delta).
						Add(ait.Points[bestBindingPlayer][bestBindingPoint].Scale(delta))
				}

				if apsNotBinding || bestAPS.Dot(dir) > nonBinding.Dot(dir)-1e-7 {
					if nonBinding.Dot(dir) > bestLevel {
						bestLevel = nonBinding.Dot(dir)
						bestAPSNotBinding[state] = apsNotBinding
						if !apsNotBinding {
							bestBindingPayoffs[state] = bestAPS
							bestBindingConts[state] = ait.Tuples[bestBindingPlayer][bestBindingPoint]
						}
						newActionTuple[state] = ait
						newRegimeTuple[state] = solution.NonBinding
						newConts[state] = -1
						newPivot[state] = nonBinding
					}
				} else if bestAPS.Dot(dir) < nonBinding.Dot(dir)+1e-7 {
					if bestAPS.Dot(dir) > bestLevel {
						bestLevel = bestAPS.Dot(dir)
						newActionTuple[state] = ait
						newRegimeTuple[state] = solution.Binding
						newConts[state] = ait.Tuples[bestBindingPlayer][bestBindingPoint]
						newPivot[state] = bestAPS
					}
				}
			}

			pivotError = math.Max(pivotError, math.Abs(bestLevel-pivot[state].Dot(dir)))
		}

		copy(pivot, newPivot)
		copy(actionTuple, newActionTuple)
		copy(regimeTuple, newRegimeTuple)
		copy(conts, newConts)

		// Fix regimes: a non-binding state whose Bellman payoff
		// overshoots its best binding payoff is not attainable.
		for {
			s.policyToPayoffs(pivot, actionTuple, regimeTuple)

			gaps := make([]float64, numStates)
			maxGap := 0.0
			anyViolation := false
			for state := 0; state < numStates; state++ {
				if !bestAPSNotBinding[state] && regimeTuple[state] == solution.NonBinding {
					gaps[state] = pivot[state].Dot(dir) - bestBindingPayoffs[state].Dot(dir)
					if gaps[state] > maxGap {
						anyViolation = true
						maxGap = gaps[state]
					}
				}
			}
			if !anyViolation {
				break
			}
			for state := 0; state < numStates; state++ {
				if !bestAPSNotBinding[state] && regimeTuple[state] == solution.NonBinding &&
					gaps[state] >= delta*maxGap {
					pivot[state] = bestBindingPayoffs[state]
					regimeTuple[state] = solution.Binding
					conts[state] = bestBindingConts[state]
				}
			}
		}

		numPolicyIters++
		if pivotError <= s.env.PolicyIterTol {
			break
		}
		if numPolicyIters >= s.env.MaxPolicyIterations {
			s.log.Warn("maximum policy iterations reached",
				"dir_x", dir.X, "dir_y", dir.Y, "pivot_error", pivotError)
			break
		}
	}

	return conts
}

// policyToPayoffs resolves the non-binding states of a fixed policy to
// their Bellman fixed point. Binding states keep their pivot value.
func (s *Solver) policyToPayoffs(pivot geom.Tuple, actionTuple []*action.Action,
	regimeTuple []solution.Regime) {

	delta := s.g.Delta
	newPivot := pivot.Clone()

	passes := 0
	for {
		for state := range pivot {
			if regimeTuple[state] != solution.NonBinding {
				continue
			}
			ait := actionTuple[state]
			newPivot[state] = s.g.Payoffs[state][ait.Profile].Scale(1 - delta).
				Add(pivot.Expectation(s.g.Probabilities[state][ait.Profile]).Scale(delta))
		}
		gap := geom.TupleDistance(newPivot, pivot)
		copy(pivot, newPivot)

		passes++
		if gap <= s.env.UpdatePivotTol {
			break
		}
		if passes >= s.env.MaxUpdatePivotPasses {
			s.log.Warn("maximum pivot update passes reached", "gap", gap)
			break
		}
	}
}
