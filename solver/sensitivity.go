package solver

import (
	"math"

	"github.com/sw965/egret/action"
	"github.com/sw965/egret/geom"
	"github.com/sw965/egret/solution"
)

// sensitivity finds the smallest non-negative weight t on the
// counter-clockwise normal of currDir at which some other (action,
// regime) pair becomes
// weakly preferred to the current policy, so that rotating past it would
// cut into the approximation. A candidate only counts if its regime is
// attainable in the indifferent direction: a non-binding candidate must
// not be dominated by a slideable binding endpoint, and a binding
// candidate must be weakly below the non-binding payoff there.
//
// The boolean result reports whether any admissible candidate exists.
func (s *Solver) sensitivity(pivot geom.Tuple, actionTuple []*action.Action,
	regimeTuple []solution.Regime, currDir geom.Point, actions [][]*action.Action) (float64, bool) {

	delta := s.g.Delta
	// The sweep rotates counter-clockwise, so candidates are weighed
	// against the counter-clockwise normal.
	normDir := currDir.Normal().Scale(-1)

	bestLevel := math.Inf(1)
	found := false

	for state := range actions {
		for _, ait := range actions[state] {
			payoff := s.g.Payoffs[state][ait.Profile]
			probs := s.g.Probabilities[state][ait.Profile]

			nonBinding := payoff.Scale(1 - delta).
				Add(pivot.Expectation(probs).Scale(delta))

			// Indifference level of the non-binding payoff:
			// pivot*(currDir+t*normDir) = nonBinding*(currDir+t*normDir).
			denom := normDir.Dot(nonBinding.Sub(pivot[state]))
			numer := pivot[state].Sub(nonBinding).Dot(currDir)
			if geom.Distance(pivot[state], nonBinding) > 1e-6 && math.Abs(denom) > 1e-10 {
				lvl := numer / denom
				if lvl < bestLevel && lvl > -1e-6 {
					indiffDir := currDir.Add(normDir.Scale(lvl))

					// Highest binding endpoint in the indifferent
					// direction, breaking near ties toward endpoints on
					// the counter-clockwise side.
					bestBindLvl := math.Inf(-1)
					bestBindingPlayer, bestBindingPoint := -1, 0
					for p := 0; p < 2; p++ {
						for k, pt := range ait.Points[p] {
							tmpLvl := pt.Dot(indiffDir)
							if tmpLvl > bestBindLvl ||
								(tmpLvl > bestBindLvl-1e-8 && pt.Dot(normDir) >= 0) {
								bestBindLvl = tmpLvl
								bestBindingPlayer = p
								bestBindingPoint = k
							}
						}
					}
					apsNotBinding := bestBindingPlayer < 0 ||
						ait.BndryDirs[bestBindingPlayer][bestBindingPoint].Dot(indiffDir) > 1e-6

					if apsNotBinding || bestBindLvl > nonBinding.Dot(indiffDir)-1e-10 {
						if (ait != actionTuple[state] && denom > 1e-6) ||
							(ait == actionTuple[state] && denom < -1e-6 &&
								regimeTuple[state] == solution.Binding) {
							bestLevel = lvl
							found = true
						}
					}
				}
			}

			// Indifference levels of the binding endpoints.
			for p := 0; p < 2; p++ {
				for _, pt := range ait.Points[p] {
					binding := payoff.Scale(1 - delta).Add(pt.Scale(delta))

					denom := normDir.Dot(binding.Sub(pivot[state]))
					numer := pivot[state].Sub(binding).Dot(currDir)
					if geom.Distance(pivot[state], binding) <= 1e-6 || math.Abs(denom) <= 1e-10 {
						continue
					}
					lvl := numer / denom
					if lvl >= bestLevel || lvl <= -1e-6 {
						continue
					}

					indiffDir := currDir.Add(normDir.Scale(lvl))
					if nonBinding.Dot(indiffDir) < binding.Dot(indiffDir)-1e-6 {
						continue
					}
					if (ait != actionTuple[state] && denom > 1e-6) ||
						(ait == actionTuple[state] &&
							((regimeTuple[state] == solution.NonBinding && denom < -1e-6) ||
								(regimeTuple[state] == solution.Binding && denom > 1e-6))) {
						bestLevel = lvl
						found = true
					}
				}
			}
		}
	}

	return math.Max(bestLevel, 0), found
}
