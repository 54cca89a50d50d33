package solver

import (
	"fmt"
	"math"

	"github.com/sw965/egret/action"
	"github.com/sw965/egret/env"
	"github.com/sw965/egret/geom"
	"github.com/sw965/egret/solution"
)

// SolveEndogenous refines the approximation with directions generated by
// sensitivity analysis: starting due east, each step rotates the
// direction counter-clockwise to the first angle at which a different
// policy becomes weakly preferred, so the sweep visits exactly the
// corners of the current approximation. A revolution ends when the sweep
// passes due east again. As in Solve, the pivot trajectory of each
// revolution is recorded, and a rise in a player's threat triggers
// recomputation of the binding continuations from that trajectory.
func (s *Solver) SolveEndogenous() (*solution.Solution, error) {
	numStates := s.g.NumStates

	dueEast := geom.Point{X: 1}
	dueNorth := geom.Point{Y: 1}

	var directions []geom.Point
	var levels [][]float64

	lb, _ := s.g.PayoffBounds()
	threat := geom.NewTuple(numStates, lb)
	newThreat := threat.Clone()

	actions := s.initActions(threat)
	sol := &solution.Solution{}
	pivot := threat.Clone()
	feasible := threat.Clone()
	history := make([]geom.Tuple, 0, 64)

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

		var newDirections []geom.Point
		var newLevels [][]float64

		history = history[:0]
		currDir := dueEast
		for passEast := false; !passEast; {
			conts := s.optimizePolicy(pivot, actionTuple, regimeTuple, currDir, actions)

			bestLevel, ok := s.sensitivity(pivot, actionTuple, regimeTuple, currDir, actions)
			if !ok {
				return sol, fmt.Errorf("%w: at direction (%g,%g)",
					ErrNoAdmissibleDirection, currDir.X, currDir.Y)
			}

			normDir := currDir.Normal().Scale(-1)
			newDir := currDir.Add(normDir.Scale(bestLevel))
			newDir = newDir.Scale(1 / newDir.Norm())

			lvl := make([]float64, numStates)
			for state := range lvl {
				lvl[state] = pivot[state].Dot(newDir)
			}
			newDirections = append(newDirections, newDir)
			newLevels = append(newLevels, lvl)
			history = append(history, pivot.Clone())

			iter.Steps = append(iter.Steps, solution.Step{
				Actions:       profilesOf(actionTuple),
				Regimes:       append([]solution.Regime(nil), regimeTuple...),
				Pivot:         pivot.Clone(),
				Hyperplane:    solution.Hyperplane{Dir: newDir, Levels: lvl},
				Continuations: conts,
			})

			// Move the direction slightly to break ties on the next step.
			rotated := newDir.RotateCCW(math.Pi * 1e-3)

			switch {
			case currDir.Dot(dueNorth) > 0 && rotated.Dot(dueNorth) <= 0:
				// Passing due west: the pivot supports player 0's threat.
				for state := range newThreat {
					newThreat[state].X = pivot[state].X
				}
			case currDir.Dot(dueEast) < 0 && rotated.Dot(dueEast) >= 0:
				// Passing due south.
				for state := range newThreat {
					newThreat[state].Y = pivot[state].Y
				}
			case currDir.Dot(dueNorth) < 0 && rotated.Dot(dueNorth) >= 0:
				passEast = true
			}

			currDir = rotated
		}

		// Snapshot before the threat point and minimum IC payoffs move.
		s.store(sol, iter)

		// Distance between revolutions: nearest neighbour of each new
		// (direction, level) among the old ones. Asymmetric on purpose;
		// see the design notes.
		errorLevel = 0
		for i := range newDirections {
			minDist := math.Inf(1)
			for j := range directions {
				tmp := 0.0
				for state := 0; state < numStates; state++ {
					tmp = math.Max(tmp, math.Abs(levels[j][state]-newLevels[i][state]))
				}
				minDist = math.Min(minDist, geom.Distance(directions[j], newDirections[i])+tmp)
			}
			errorLevel = math.Max(errorLevel, minDist)
		}

		s.log.Info("iteration", "n", numIter, "error_level", errorLevel,
			"actions", actionCounts(actions), "num_directions", len(newDirections))

		if err := s.findFeasibleTuple(feasible, actions); err != nil {
			return sol, err
		}

		// Which players' threats rose this revolution.
		var updated [2]bool
		for state := range threat {
			if newThreat[state].X > threat[state].X {
				updated[0] = true
			}
			if newThreat[state].Y > threat[state].Y {
				updated[1] = true
			}
		}
		copy(threat, newThreat)
		directions = newDirections
		levels = newLevels

		lastDir := directions[len(directions)-1]
		for state := 0; state < numStates; state++ {
			kept := actions[state][:0]
			for _, ait := range actions[state] {
				ait.CalculateMinIC(s.g, [2]bool{true, true}, threat)
				if updated[0] || updated[1] {
					ait.CalculateBindingContinuations(s.g, updated, history, 0,
						threat, pivot, lastDir)
				}

				probs := s.g.Probabilities[state][ait.Profile]
				for j := range directions {
					expLevel := 0.0
					for sp := 0; sp < numStates; sp++ {
						expLevel += probs[sp] * levels[j][sp]
					}
					ait.Trim(directions[j], expLevel)
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
