package sim_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sw965/egret/game"
	"github.com/sw965/egret/games"
	"github.com/sw965/egret/geom"
	"github.com/sw965/egret/sim"
	"github.com/sw965/egret/solution"
)

// pdSolution hand-builds a revolution over the prisoner's dilemma:
// step 0 cooperates forever, step 1 defects forever, and step 2
// cooperates once before a binding jump to permanent defection.
func pdSolution(t *testing.T) (*game.Game, *solution.Solution) {
	t.Helper()
	g, err := games.PrisonersDilemma(0.6)
	require.NoError(t, err)

	cc := game.VectorToProfile([]int{0, 0}, []int{2, 2})
	dd := game.VectorToProfile([]int{1, 1}, []int{2, 2})

	sol := &solution.Solution{Iterations: []solution.Iteration{{
		N:           0,
		ThreatTuple: geom.Tuple{{X: 1, Y: 1}},
		Steps: []solution.Step{
			{
				Actions:       []int{cc},
				Regimes:       []solution.Regime{solution.NonBinding},
				Pivot:         geom.Tuple{{X: 3, Y: 3}},
				Hyperplane:    solution.Hyperplane{Dir: geom.Point{X: 1, Y: 1}, Levels: []float64{6}},
				Continuations: []int{-1},
			},
			{
				Actions:       []int{dd},
				Regimes:       []solution.Regime{solution.NonBinding},
				Pivot:         geom.Tuple{{X: 1, Y: 1}},
				Hyperplane:    solution.Hyperplane{Dir: geom.Point{X: -1, Y: -1}, Levels: []float64{-2}},
				Continuations: []int{-1},
			},
			{
				Actions:       []int{cc},
				Regimes:       []solution.Regime{solution.Binding},
				Pivot:         geom.Tuple{{X: 1.8, Y: 1.8}},
				Hyperplane:    solution.Hyperplane{Dir: geom.Point{X: 1, Y: -1}, Levels: []float64{0}},
				Continuations: []int{1},
			},
		},
	}}}
	return g, sol
}

func TestSimulateNonBinding(t *testing.T) {
	g, sol := pdSolution(t)
	s, err := sim.New(g, sol)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(1, 2))

	// Permanent cooperation is worth (3,3).
	payoffs, err := s.Simulate(10, 200, 0, 0, rng)
	require.NoError(t, err)
	require.InDelta(t, 3.0, payoffs.X, 1e-6)
	require.InDelta(t, 3.0, payoffs.Y, 1e-6)
	require.Equal(t, payoffs, s.LongRunPayoffs())

	// Permanent defection is worth (1,1).
	payoffs, err = s.Simulate(10, 200, 0, 1, rng)
	require.NoError(t, err)
	require.InDelta(t, 1.0, payoffs.X, 1e-6)
	require.InDelta(t, 1.0, payoffs.Y, 1e-6)
}

func TestSimulateBindingJump(t *testing.T) {
	g, sol := pdSolution(t)
	s, err := sim.New(g, sol)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(1, 2))

	// One period of cooperation, then defection forever:
	// (1-d)*3 + d*1 = 1.8 per player.
	payoffs, err := s.Simulate(5, 200, 0, 2, rng)
	require.NoError(t, err)
	require.InDelta(t, 1.8, payoffs.X, 1e-6)
	require.InDelta(t, 1.8, payoffs.Y, 1e-6)
}

func TestExtremeSteps(t *testing.T) {
	g, sol := pdSolution(t)
	s, err := sim.New(g, sol)
	require.NoError(t, err)
	require.Equal(t, 3, s.NumSteps())

	best, worst := s.ExtremeSteps(0, geom.Point{X: 1, Y: 1})
	require.Equal(t, 0, best)
	require.Equal(t, 1, worst)
}

func TestSimulateValidatesArguments(t *testing.T) {
	g, sol := pdSolution(t)
	s, err := sim.New(g, sol)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(1, 2))
	_, err = s.Simulate(1, 10, 5, 0, rng)
	require.Error(t, err)
	_, err = s.Simulate(1, 10, 0, 9, rng)
	require.Error(t, err)
}

func TestSimulatorRequiresSteps(t *testing.T) {
	g, err := games.PrisonersDilemma(0.6)
	require.NoError(t, err)
	_, err = sim.New(g, &solution.Solution{})
	require.Error(t, err)
}
