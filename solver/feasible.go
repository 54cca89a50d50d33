package solver

import (
	"fmt"

	"github.com/sw965/egret/action"
	"github.com/sw965/egret/geom"
	"github.com/sw965/egret/solution"
)

// findFeasibleTuple updates feasible in place to a payoff tuple that is
// feasible for APS. In each state it prefers any action with a surviving
// binding continuation; states without one are resolved as a non-binding
// Bellman fixed point, advancing through the state's actions until the
// resulting tuple is incentive compatible for the chosen profiles.
func (s *Solver) findFeasibleTuple(feasible geom.Tuple, actions [][]*action.Action) error {
	delta := s.g.Delta
	numStates := s.g.NumStates

	actionIdx := make([]int, numStates)
	actionTuple := make([]*action.Action, numStates)
	regimeTuple := make([]solution.Regime, numStates) // Binding

	anyNonBinding := false
	for state := 0; state < numStates; state++ {
		if len(actions[state]) == 0 {
			return fmt.Errorf("%w: no surviving action in state %d", ErrNoFeasibleTuple, state)
		}

		found := false
		for _, ait := range actions[state] {
			for player := 0; player < 2 && !found; player++ {
				if len(ait.Points[player]) > 0 {
					feasible[state] = s.g.Payoffs[state][ait.Profile].Scale(1 - delta).
						Add(ait.Points[player][0].Scale(delta))
					found = true
				}
			}
			if found {
				break
			}
		}
		if !found {
			// Either no pure strategy equilibrium exists, or any
			// feasible tuple over the remaining actions is an APS
			// payoff. Fall back to a Bellman fixed point.
			regimeTuple[state] = solution.NonBinding
			actionTuple[state] = actions[state][0]
			anyNonBinding = true
		}
	}

	for notAllIC := anyNonBinding; notAllIC; {
		s.policyToPayoffs(feasible, actionTuple, regimeTuple)

		notAllIC = false
		for state := 0; state < numStates; state++ {
			if regimeTuple[state] != solution.NonBinding {
				continue
			}
			ait := actionTuple[state]
			exp := feasible.Expectation(s.g.Probabilities[state][ait.Profile])
			if exp.Geq(geom.Point{X: ait.MinIC[0], Y: ait.MinIC[1]}, 0) {
				continue
			}

			notAllIC = true
			actionIdx[state]++
			if actionIdx[state] >= len(actions[state]) {
				return fmt.Errorf("%w: exhausted actions in state %d", ErrNoFeasibleTuple, state)
			}
			actionTuple[state] = actions[state][actionIdx[state]]
		}
	}
	return nil
}
