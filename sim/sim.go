// Package sim replays an equilibrium from a solved game forward in time
// to estimate long run payoffs.
package sim

import (
	"fmt"
	"math/rand/v2"

	"github.com/sw965/egret/game"
	"github.com/sw965/egret/geom"
	"github.com/sw965/egret/solution"
	"github.com/sw965/omw/mathx/randx"
)

// Simulator walks the automaton implied by the final stored revolution:
// each period plays the current step's action profile, samples the next
// state from the transition kernel, and moves to the continuation step.
// Non-binding states continue on the same step; binding states jump to
// the recorded previous-revolution step, which coincides with the final
// revolution once the approximation has converged.
type Simulator struct {
	g    *game.Game
	iter *solution.Iteration

	weights [][][]float32
	longRun geom.Point
}

func New(g *game.Game, sol *solution.Solution) (*Simulator, error) {
	iter := sol.Last()
	if iter == nil || len(iter.Steps) == 0 {
		return nil, fmt.Errorf("solution stores no revolution to simulate")
	}

	weights := make([][][]float32, g.NumStates)
	for state := range weights {
		weights[state] = make([][]float32, g.ProfileCount(state))
		for profile := range weights[state] {
			row := make([]float32, g.NumStates)
			for sp, p := range g.Probabilities[state][profile] {
				row[sp] = float32(p)
			}
			weights[state][profile] = row
		}
	}

	return &Simulator{g: g, iter: iter, weights: weights}, nil
}

// NumSteps is the number of steps on the simulated revolution.
func (s *Simulator) NumSteps() int {
	return len(s.iter.Steps)
}

// ExtremeSteps returns the indices of the steps whose pivot in the given
// state is highest and lowest along dir.
func (s *Simulator) ExtremeSteps(state int, dir geom.Point) (best, worst int) {
	bestLvl, worstLvl := s.iter.Steps[0].Pivot[state].Dot(dir), s.iter.Steps[0].Pivot[state].Dot(dir)
	for k, step := range s.iter.Steps {
		lvl := step.Pivot[state].Dot(dir)
		if lvl > bestLvl {
			bestLvl = lvl
			best = k
		}
		if lvl < worstLvl {
			worstLvl = lvl
			worst = k
		}
	}
	return best, worst
}

// Simulate runs numSims passes of numPeriods periods each, starting in
// startState on the given step, and accumulates the discounted
// normalized payoffs averaged over the passes.
func (s *Simulator) Simulate(numSims, numPeriods, startState, startStep int, rng *rand.Rand) (geom.Point, error) {
	if startState < 0 || startState >= s.g.NumStates {
		return geom.Point{}, fmt.Errorf("start state %d out of range", startState)
	}
	if startStep < 0 || startStep >= len(s.iter.Steps) {
		return geom.Point{}, fmt.Errorf("start step %d out of range", startStep)
	}

	delta := s.g.Delta
	var total geom.Point
	for n := 0; n < numSims; n++ {
		state := startState
		stepIdx := startStep

		var v geom.Point
		weight := 1 - delta
		for t := 0; t < numPeriods; t++ {
			step := s.iter.Steps[stepIdx]
			profile := step.Actions[state]
			v = v.Add(s.g.Payoffs[state][profile].Scale(weight))
			weight *= delta

			if step.Regimes[state] == solution.Binding {
				if c := step.Continuations[state]; c >= 0 && c < len(s.iter.Steps) {
					stepIdx = c
				}
			}

			next, err := randx.IntByWeights(s.weights[state][profile], rng)
			if err != nil {
				return geom.Point{}, err
			}
			state = next
		}
		total = total.Add(v)
	}

	s.longRun = total.Scale(1 / float64(numSims))
	return s.longRun, nil
}

// LongRunPayoffs returns the result of the most recent Simulate call.
func (s *Simulator) LongRunPayoffs() geom.Point {
	return s.longRun
}
