package games_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sw965/egret/game"
	"github.com/sw965/egret/games"
	"github.com/sw965/egret/geom"
	"gonum.org/v1/gonum/floats"
)

func TestAbreuSannikov(t *testing.T) {
	g, err := games.AbreuSannikov()
	require.NoError(t, err)

	require.Equal(t, 0.3, g.Delta)
	require.Equal(t, 1, g.NumStates)
	require.Equal(t, 9, g.ProfileCount(0))
	require.Equal(t, geom.Point{X: 18, Y: 11}, g.Payoffs[0][0])
	require.Equal(t, geom.Point{X: -3, Y: -13}, g.Payoffs[0][8])

	lb, _ := g.PayoffBounds()
	require.Equal(t, geom.Point{X: -3, Y: -13}, lb)
}

func TestPrisonersDilemma(t *testing.T) {
	g, err := games.PrisonersDilemma(0.6)
	require.NoError(t, err)

	cc := game.VectorToProfile([]int{0, 0}, []int{2, 2})
	dd := game.VectorToProfile([]int{1, 1}, []int{2, 2})
	dc := game.VectorToProfile([]int{1, 0}, []int{2, 2})

	require.Equal(t, geom.Point{X: 3, Y: 3}, g.Payoffs[0][cc])
	require.Equal(t, geom.Point{X: 1, Y: 1}, g.Payoffs[0][dd])
	require.Equal(t, geom.Point{X: 5, Y: 0}, g.Payoffs[0][dc])
}

func TestRiskSharing(t *testing.T) {
	g, err := games.RiskSharing(0.7, 2, 5, 0, games.Consumption)
	require.NoError(t, err)

	require.Equal(t, 2, g.NumStates)
	// In state 0 player 0 owns nothing: one trivial transfer level,
	// six for the endowed player.
	require.Equal(t, []int{1, 6}, g.NumActions[0])
	require.Equal(t, []int{6, 1}, g.NumActions[1])

	// Full transfer hands over the whole pie.
	full := game.VectorToProfile([]int{0, 5}, g.NumActions[0])
	require.InDelta(t, 1.0, g.Payoffs[0][full].X, 1e-12)
	require.InDelta(t, 0.0, g.Payoffs[0][full].Y, 1e-12)

	// Zero persistence draws the endowment i.i.d. uniform.
	for s := 0; s < g.NumStates; s++ {
		for a := range g.Probabilities[s] {
			require.InDelta(t, 1.0, floats.Sum(g.Probabilities[s][a]), 1e-12)
			for _, p := range g.Probabilities[s][a] {
				require.InDelta(t, 0.5, p, 1e-12)
			}
		}
	}
}

func TestRiskSharingPersistence(t *testing.T) {
	g, err := games.RiskSharing(0.7, 3, 4, 0.5, games.Endowment)
	require.NoError(t, err)

	// Endowment mode anchors persistence on the current state.
	for s := 0; s < g.NumStates; s++ {
		for a := range g.Probabilities[s] {
			row := g.Probabilities[s][a]
			require.InDelta(t, 1.0, floats.Sum(row), 1e-12)
			for sp, p := range row {
				if sp == s {
					require.InDelta(t, 0.5/3+0.5, p, 1e-12)
				} else {
					require.InDelta(t, 0.5/3, p, 1e-12)
				}
			}
		}
	}
}

func TestRiskSharingValidation(t *testing.T) {
	_, err := games.RiskSharing(0.7, 1, 5, 0, games.Consumption)
	require.ErrorIs(t, err, game.ErrInvalidInput)

	_, err = games.RiskSharing(0.7, 2, 0, 0, games.Consumption)
	require.ErrorIs(t, err, game.ErrInvalidInput)

	_, err = games.RiskSharing(0.7, 2, 5, 1.5, games.Consumption)
	require.ErrorIs(t, err, game.ErrInvalidInput)
}
