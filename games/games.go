// Package games builds the example games the solver is usually run on.
package games

import (
	"fmt"
	"math"

	"github.com/sw965/egret/game"
	"github.com/sw965/egret/geom"
)

// AbreuSannikov is the one-state 3x3 game from Abreu and Sannikov,
// with delta = 0.3.
func AbreuSannikov() (*game.Game, error) {
	x := []float64{18, 23, 11, 5, 12, 7, 2, 1, -3}
	y := []float64{11, 3, 2, 15, 6, -2, 5, 2, -13}

	payoffs := make([]geom.Point, len(x))
	probabilities := make([][]float64, len(x))
	for a := range payoffs {
		payoffs[a] = geom.Point{X: x[a], Y: y[a]}
		probabilities[a] = []float64{1}
	}

	return game.New(0.3,
		[][]int{{3, 3}},
		[][]geom.Point{payoffs},
		[][][]float64{probabilities})
}

// PrisonersDilemma is the repeated prisoner's dilemma with stage payoffs
// (3,3), (0,5), (5,0) and (1,1). Action 0 cooperates, action 1 defects.
func PrisonersDilemma(delta float64) (*game.Game, error) {
	payoffs := make([]geom.Point, 4)
	probabilities := make([][]float64, 4)
	for a := range payoffs {
		probabilities[a] = []float64{1}
	}
	cc, cd := 3.0, 0.0
	dc, dd := 5.0, 1.0
	payoffs[game.VectorToProfile([]int{0, 0}, []int{2, 2})] = geom.Point{X: cc, Y: cc}
	payoffs[game.VectorToProfile([]int{1, 0}, []int{2, 2})] = geom.Point{X: dc, Y: cd}
	payoffs[game.VectorToProfile([]int{0, 1}, []int{2, 2})] = geom.Point{X: cd, Y: dc}
	payoffs[game.VectorToProfile([]int{1, 1}, []int{2, 2})] = geom.Point{X: dd, Y: dd}

	return game.New(delta,
		[][]int{{2, 2}},
		[][]geom.Point{payoffs},
		[][][]float64{probabilities})
}

// EndowmentMode selects the quantity that persistence conditions on in
// the risk sharing model.
type EndowmentMode int

const (
	Consumption EndowmentMode = iota
	Endowment
)

// RiskSharing is a Kocherlakota style risk sharing game. States are
// endowment splits of a unit pie, actions are transfer levels on a grid
// of c2e levels per unit of endowment, and utility is the square root of
// consumption. With zero persistence the endowment is drawn i.i.d.
// uniform each period; with positive persistence the kernel mixes the
// uniform draw with the state nearest the conditioning quantity.
func RiskSharing(delta float64, numEndowments, c2e int, persistence float64, mode EndowmentMode) (*game.Game, error) {
	if numEndowments < 2 {
		return nil, fmt.Errorf("%w: need at least two endowment states", game.ErrInvalidInput)
	}
	if c2e < 1 {
		return nil, fmt.Errorf("%w: need at least one consumption level per unit", game.ErrInvalidInput)
	}
	if persistence < 0 || persistence > 1 {
		return nil, fmt.Errorf("%w: persistence %v outside [0,1]", game.ErrInvalidInput, persistence)
	}

	numStates := numEndowments
	share := func(s int) float64 { return float64(s) / float64(numEndowments-1) }

	u := func(c float64) float64 { return math.Sqrt(math.Max(c, 0)) }

	numActions := make([][]int, numStates)
	payoffs := make([][]geom.Point, numStates)
	probabilities := make([][][]float64, numStates)

	for s := 0; s < numStates; s++ {
		w0 := share(s)
		w1 := 1 - w0
		n0 := int(math.Round(w0*float64(c2e))) + 1
		n1 := int(math.Round(w1*float64(c2e))) + 1
		numActions[s] = []int{n0, n1}

		total := n0 * n1
		payoffs[s] = make([]geom.Point, total)
		probabilities[s] = make([][]float64, total)

		for a := 0; a < total; a++ {
			v := game.ProfileToVector(a, numActions[s])
			g0 := float64(v[0]) / float64(c2e)
			g1 := float64(v[1]) / float64(c2e)
			c0 := w0 - g0 + g1
			c1 := w1 - g1 + g0
			payoffs[s][a] = geom.Point{X: u(c0), Y: u(c1)}

			anchor := w0
			if mode == Consumption {
				anchor = c0
			}
			probabilities[s][a] = transitionRow(numStates, persistence, anchor, share)
		}
	}

	return game.New(delta, numActions, payoffs, probabilities)
}

func transitionRow(numStates int, persistence, anchor float64, share func(int) float64) []float64 {
	row := make([]float64, numStates)
	uniform := (1 - persistence) / float64(numStates)

	nearest := 0
	bestDist := math.Inf(1)
	for sp := 0; sp < numStates; sp++ {
		row[sp] = uniform
		if d := math.Abs(share(sp) - anchor); d < bestDist {
			bestDist = d
			nearest = sp
		}
	}
	row[nearest] += persistence
	return row
}
