package action_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sw965/egret/action"
	"github.com/sw965/egret/env"
	"github.com/sw965/egret/game"
	"github.com/sw965/egret/games"
	"github.com/sw965/egret/geom"
)

var bothPlayers = [2]bool{true, true}

func TestMinICPrisonersDilemma(t *testing.T) {
	g, err := games.PrisonersDilemma(0.6)
	require.NoError(t, err)

	threat := geom.NewTuple(1, geom.Point{X: 1, Y: 1})

	// Cooperation: the profitable deviation is defecting for 5 instead
	// of 3, so the continuation must cover (1-d)/d*2 + 1.
	cc := game.VectorToProfile([]int{0, 0}, []int{2, 2})
	a := action.New(env.New(), 0, cc)
	a.CalculateMinIC(g, bothPlayers, threat)
	want := (1-0.6)/0.6*2 + 1
	require.InDelta(t, want, a.MinIC[0], 1e-12)
	require.InDelta(t, want, a.MinIC[1], 1e-12)

	// Mutual defection is a stage Nash equilibrium: no deviation gains,
	// so the threat itself is enough.
	dd := game.VectorToProfile([]int{1, 1}, []int{2, 2})
	b := action.New(env.New(), 0, dd)
	b.CalculateMinIC(g, bothPlayers, threat)
	require.InDelta(t, 1.0, b.MinIC[0], 1e-12)
	require.InDelta(t, 1.0, b.MinIC[1], 1e-12)
}

func TestMinICUnconstrained(t *testing.T) {
	payoffs := []geom.Point{{X: 1, Y: 1}}
	g, err := game.New(0.5, [][]int{{1, 1}}, [][]geom.Point{payoffs}, [][][]float64{{{1}}},
		game.WithUnconstrained([]bool{true, false}))
	require.NoError(t, err)

	a := action.New(env.New(), 0, 0)
	a.CalculateMinIC(g, bothPlayers, geom.NewTuple(1, geom.Point{}))
	require.True(t, math.IsInf(a.MinIC[0], -1))
	require.False(t, math.IsInf(a.MinIC[1], -1))
}

func TestResetAndCardinalTrims(t *testing.T) {
	g, err := games.PrisonersDilemma(0.6)
	require.NoError(t, err)
	lb, ub := g.PayoffBounds()

	threat := geom.NewTuple(1, geom.Point{X: 1, Y: 1})
	cc := game.VectorToProfile([]int{0, 0}, []int{2, 2})
	a := action.New(env.New(), 0, cc)
	a.CalculateMinIC(g, bothPlayers, threat)
	a.ResetTrimmedPoints(g, lb, ub)
	for _, dir := range []geom.Point{{X: 1}, {Y: 1}, {X: -1}, {Y: -1}} {
		a.Trim(dir, math.Max(dir.Dot(lb), dir.Dot(ub)))
	}
	a.CommitTrim()

	minIC := (1-0.6)/0.6*2 + 1 // 7/3
	// Player 0's binding segment runs along w0 = minIC from the top of
	// the payoff box down to the corner, descending in player 1's
	// coordinate.
	require.Len(t, a.Points[0], 2)
	require.InDelta(t, minIC, a.Points[0][0].X, 1e-9)
	require.InDelta(t, ub.Y, a.Points[0][0].Y, 1e-9)
	require.InDelta(t, minIC, a.Points[0][1].X, 1e-9)
	require.InDelta(t, minIC, a.Points[0][1].Y, 1e-9)
	require.Equal(t, []int{-1, -1}, a.Tuples[0])

	require.Len(t, a.Points[1], 2)
	require.InDelta(t, ub.X, a.Points[1][0].X, 1e-9)
	require.InDelta(t, minIC, a.Points[1][0].Y, 1e-9)
}

func TestTrimIdempotent(t *testing.T) {
	g, err := games.PrisonersDilemma(0.6)
	require.NoError(t, err)
	lb, ub := g.PayoffBounds()

	threat := geom.NewTuple(1, geom.Point{X: 1, Y: 1})
	a := action.New(env.New(), 0, 0)
	a.CalculateMinIC(g, bothPlayers, threat)
	a.ResetTrimmedPoints(g, lb, ub)
	for _, dir := range []geom.Point{{X: 1}, {Y: 1}, {X: -1}, {Y: -1}} {
		a.Trim(dir, math.Max(dir.Dot(lb), dir.Dot(ub)))
	}
	a.Trim(geom.Point{Y: 1}, 4)
	a.CommitTrim()
	once := [2]geom.Tuple{a.Points[0].Clone(), a.Points[1].Clone()}

	a.Trim(geom.Point{Y: 1}, 4)
	a.CommitTrim()
	require.Equal(t, 0.0, a.DistToTrimmed())
	for player := 0; player < 2; player++ {
		require.Len(t, a.Points[player], len(once[player]))
		for k := range once[player] {
			require.InDelta(t, once[player][k].X, a.Points[player][k].X, 1e-12)
			require.InDelta(t, once[player][k].Y, a.Points[player][k].Y, 1e-12)
		}
	}
}

func TestSupportable(t *testing.T) {
	g, err := games.PrisonersDilemma(0.6)
	require.NoError(t, err)

	a := action.New(env.New(), 0, 0)
	a.CalculateMinIC(g, bothPlayers, geom.NewTuple(1, geom.Point{X: 1, Y: 1}))

	// Empty binding sets: only an IC feasible payoff keeps it alive.
	require.False(t, a.HasBindingPayoffs())
	require.True(t, a.Supportable(geom.Point{X: 3, Y: 3}))
	require.False(t, a.Supportable(geom.Point{X: 1, Y: 1}))
}

// oneByOne builds a single-state game with one profile so that binding
// continuations can be driven by a hand-made pivot trajectory.
func oneByOne(t *testing.T) *game.Game {
	t.Helper()
	g, err := game.New(0.5, [][]int{{1, 1}},
		[][]geom.Point{{{X: 0, Y: 0}}}, [][][]float64{{{1}}})
	require.NoError(t, err)
	return g
}

func TestBindingContinuationsCrossing(t *testing.T) {
	g := oneByOne(t)
	threat := geom.NewTuple(1, geom.Point{X: -10, Y: -10})

	a := action.New(env.New(), 0, 0)
	a.CalculateMinIC(g, bothPlayers, geom.NewTuple(1, geom.Point{}))
	require.InDelta(t, 0.0, a.MinIC[0], 1e-12)

	// Trajectory crosses w0 = 0 between the two oldest tuples.
	history := []geom.Tuple{
		{{X: -1, Y: 1}},
		{{X: 1, Y: 2}},
		{{X: 2, Y: 1}},
	}
	pivot := geom.NewTuple(1, geom.Point{X: 5, Y: 5})
	a.CalculateBindingContinuations(g, [2]bool{true, false}, history, 0,
		threat, pivot, geom.Point{X: -1})

	require.Len(t, a.Points[0], 2)
	require.Len(t, a.Tuples[0], 2)
	// Both extremes collapse onto the interpolated crossing (0, 1.5).
	for k := 0; k < 2; k++ {
		require.InDelta(t, 0.0, a.Points[0][k].X, 1e-12)
		require.InDelta(t, 1.5, a.Points[0][k].Y, 1e-12)
		require.Equal(t, 1, a.Tuples[0][k])
	}
	require.Empty(t, a.Points[1])
}

func TestBindingContinuationsCorner(t *testing.T) {
	g := oneByOne(t)
	threat := geom.NewTuple(1, geom.Point{X: -10, Y: -10})

	a := action.New(env.New(), 0, 0)
	a.CalculateMinIC(g, bothPlayers, geom.NewTuple(1, geom.Point{}))
	a.MinIC = [2]float64{0, 1}

	// Two crossings of w0 = 0, at y = 2 and y = 0.5: the smaller one
	// violates player 1's minimum IC payoff and becomes the corner.
	history := []geom.Tuple{
		{{X: -1, Y: 0.5}},
		{{X: 1, Y: 0.5}},
		{{X: 1, Y: 2}},
		{{X: -1, Y: 2}},
	}
	pivot := geom.NewTuple(1, geom.Point{X: 5, Y: 5})
	a.CalculateBindingContinuations(g, [2]bool{true, false}, history, 0,
		threat, pivot, geom.Point{X: -1})

	require.Len(t, a.Points[0], 2)
	require.InDelta(t, 0.0, a.Points[0][0].X, 1e-12)
	require.InDelta(t, 2.0, a.Points[0][0].Y, 1e-12)
	require.Equal(t, geom.Point{X: 0, Y: 1}, a.Points[0][1])
	require.Equal(t, -1, a.Tuples[0][1])
	require.True(t, a.Corner)
}

func TestBindingContinuationsNotIC(t *testing.T) {
	g := oneByOne(t)
	threat := geom.NewTuple(1, geom.Point{X: -10, Y: -10})

	a := action.New(env.New(), 0, 0)
	a.CalculateMinIC(g, bothPlayers, geom.NewTuple(1, geom.Point{}))
	a.MinIC = [2]float64{0, 3}

	history := []geom.Tuple{
		{{X: -1, Y: 1}},
		{{X: 1, Y: 2}},
		{{X: 2, Y: 1}},
	}
	pivot := geom.NewTuple(1, geom.Point{X: 5, Y: 5})
	a.CalculateBindingContinuations(g, [2]bool{true, false}, history, 0,
		threat, pivot, geom.Point{X: -1})

	// Every candidate is below player 1's minimum IC payoff.
	require.Empty(t, a.Points[0])
	require.Empty(t, a.Tuples[0])
}
