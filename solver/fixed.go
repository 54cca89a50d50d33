package solver

import (
	"fmt"
	"math"

	"github.com/sw965/egret/action"
	"github.com/sw965/egret/env"
	"github.com/sw965/egret/geom"
	"github.com/sw965/egret/solution"
)

// Solve refines the approximation along a fixed set of directions,
// uniform on the unit circle. The pencil sharpening subsystem: each
// revolution records the trajectory of the pivot, and when a player's
// threat rises, the binding continuations are recomputed from that
// trajectory before the actions are trimmed against the new levels.
func (s *Solver) Solve() (*solution.Solution, error) {
	numStates := s.g.NumStates
	numDir := 4 * ((s.env.NumDirections + 3) / 4)

	directions := make([]geom.Point, numDir)
	for dir := range directions {
		theta := 2 * math.Pi * float64(dir) / float64(numDir)
		directions[dir] = geom.Point{X: math.Cos(theta), Y: math.Sin(theta)}
	}
	levels := make([][]float64, numDir)
	for dir := range levels {
		levels[dir] = make([]float64, numStates)
	}

	lb, _ := s.g.PayoffBounds()
	threat := geom.NewTuple(numStates, lb)
	actions := s.initActions(threat)

	sol := &solution.Solution{}
	pivot := threat.Clone()
	feasible := threat.Clone()
	history := make([]geom.Tuple, 0, numDir)

	errorLevel := 1.0
	numIter := 0
	for ; errorLevel > s.env.ErrorTol && numIter < s.env.MaxIterations; numIter++ {
		actionTuple := make([]*action.Action, numStates)
		for state := range actionTuple {
			if len(actions[state]) == 0 {
				return sol, fmt.Errorf("%w: no surviving action in state %d", ErrNoFeasibleTuple, state)
			}
			actionTuple[state] = actions[state][0]
		}
		regimeTuple := make([]solution.Regime, numStates) // Binding

		iter := solution.Iteration{N: numIter, ThreatTuple: threat.Clone()}
		if s.env.StoreActions && s.env.StoreIterations != env.StoreNone {
			iter.Actions = snapshotActions(actions)
		}

		history = history[:0]
		errorLevel = 0
		for dir := range directions {
			conts := s.optimizePolicy(pivot, actionTuple, regimeTuple, directions[dir], actions)

			newLevels := make([]float64, numStates)
			for state := range newLevels {
				newLevels[state] = pivot[state].Dot(directions[dir])
				errorLevel = math.Max(errorLevel, math.Abs(newLevels[state]-levels[dir][state]))
			}
			levels[dir] = newLevels
			history = append(history, pivot.Clone())

			iter.Steps = append(iter.Steps, solution.Step{
				Actions:       profilesOf(actionTuple),
				Regimes:       append([]solution.Regime(nil), regimeTuple...),
				Pivot:         pivot.Clone(),
				Hyperplane:    solution.Hyperplane{Dir: directions[dir], Levels: newLevels},
				Continuations: conts,
			})
		}

		s.log.Info("iteration", "n", numIter, "error_level", errorLevel,
			"actions", actionCounts(actions))

		// Snapshot before the threat point and minimum IC payoffs move.
		s.store(sol, iter)

		if err := s.findFeasibleTuple(feasible, actions); err != nil {
			return sol, err
		}

		// The west and south levels bound the players from below.
		var updated [2]bool
		for state := 0; state < numStates; state++ {
			west := -levels[numDir/2][state]
			south := -levels[3*numDir/4][state]
			if west > threat[state].X {
				updated[0] = true
			}
			if south > threat[state].Y {
				updated[1] = true
			}
			threat[state] = geom.Point{X: west, Y: south}
		}

		lastDir := directions[numDir-1]
		for state := 0; state < numStates; state++ {
			kept := actions[state][:0]
			for _, ait := range actions[state] {
				ait.CalculateMinIC(s.g, [2]bool{true, true}, threat)
				if updated[0] || updated[1] {
					ait.CalculateBindingContinuations(s.g, updated, history, 0,
						threat, pivot, lastDir)
				}

				probs := s.g.Probabilities[state][ait.Profile]
				for dir := range directions {
					expLevel := 0.0
					for sp := 0; sp < numStates; sp++ {
						expLevel += probs[sp] * levels[dir][sp]
					}
					ait.Trim(directions[dir], expLevel)
				}
				ait.CommitTrim()

				if !ait.Supportable(feasible.Expectation(probs)) {
					continue
				}
				kept = append(kept, ait)
			}
			actions[state] = kept
		}
	}

	if errorLevel > s.env.ErrorTol {
		s.log.Warn("maximum iterations reached", "error_level", errorLevel)
	} else {
		s.log.Info("converged", "iterations", numIter, "error_level", errorLevel)
	}
	return sol, nil
}

func profilesOf(actionTuple []*action.Action) []int {
	profiles := make([]int, len(actionTuple))
	for state, ait := range actionTuple {
		profiles[state] = ait.Profile
	}
	return profiles
}
