// Package game describes a two-player stochastic game with perfect
// monitoring: a discount factor, finite states, finite per-player action
// sets, stage payoffs and a Markov transition kernel.
package game

import (
	"errors"
	"fmt"
	"math"

	"github.com/sw965/egret/geom"
	"gonum.org/v1/gonum/floats"
)

// ErrInvalidInput marks a malformed game rejected at construction.
var ErrInvalidInput = errors.New("invalid input")

const NumPlayers = 2

// ProbSumTol is the slack allowed when checking that transition
// probability rows sum to one.
const ProbSumTol = 1e-3

// Game is immutable once constructed; the solver relies on that.
type Game struct {
	Delta         float64        `json:"delta"`
	NumStates     int            `json:"num_states"`
	NumActions    [][]int        `json:"num_actions"`   // [state][player]
	Payoffs       [][]geom.Point `json:"payoffs"`       // [state][profile]
	Probabilities [][][]float64  `json:"probabilities"` // [state][profile][next state]
	EqActions     [][]bool       `json:"eq_actions"`    // profiles allowed on path
	Unconstrained []bool         `json:"unconstrained"` // skip IC for player i
}

// Option customizes construction.
type Option func(*Game)

// WithEqActions restricts the profiles that may be played on path.
// Deviations to excluded profiles are still considered for incentives.
func WithEqActions(eqActions [][]bool) Option {
	return func(g *Game) { g.EqActions = eqActions }
}

// WithUnconstrained disables the incentive constraint per player.
func WithUnconstrained(unconstrained []bool) Option {
	return func(g *Game) { g.Unconstrained = unconstrained }
}

func New(delta float64, numActions [][]int, payoffs [][]geom.Point, probabilities [][][]float64, opts ...Option) (*Game, error) {
	g := &Game{
		Delta:         delta,
		NumStates:     len(numActions),
		NumActions:    numActions,
		Payoffs:       payoffs,
		Probabilities: probabilities,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.EqActions == nil {
		g.EqActions = make([][]bool, g.NumStates)
		for s := range g.EqActions {
			g.EqActions[s] = make([]bool, g.ProfileCount(s))
			for a := range g.EqActions[s] {
				g.EqActions[s][a] = true
			}
		}
	}
	if g.Unconstrained == nil {
		g.Unconstrained = make([]bool, NumPlayers)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) Validate() error {
	if g.Delta <= 0 || g.Delta >= 1 {
		return fmt.Errorf("%w: delta %v outside (0,1)", ErrInvalidInput, g.Delta)
	}
	if g.NumStates < 1 {
		return fmt.Errorf("%w: need at least one state", ErrInvalidInput)
	}
	if len(g.NumActions) != g.NumStates || len(g.Payoffs) != g.NumStates ||
		len(g.Probabilities) != g.NumStates || len(g.EqActions) != g.NumStates {
		return fmt.Errorf("%w: per-state slices must all have length %d", ErrInvalidInput, g.NumStates)
	}
	if len(g.Unconstrained) != NumPlayers {
		return fmt.Errorf("%w: unconstrained must have length %d", ErrInvalidInput, NumPlayers)
	}

	for s := 0; s < g.NumStates; s++ {
		if len(g.NumActions[s]) != NumPlayers {
			return fmt.Errorf("%w: state %d needs action counts for %d players", ErrInvalidInput, s, NumPlayers)
		}
		for i, n := range g.NumActions[s] {
			if n < 1 {
				return fmt.Errorf("%w: player %d has no actions in state %d", ErrInvalidInput, i, s)
			}
		}

		total := g.ProfileCount(s)
		if len(g.Payoffs[s]) != total || len(g.Probabilities[s]) != total || len(g.EqActions[s]) != total {
			return fmt.Errorf("%w: state %d must cover all %d profiles", ErrInvalidInput, s, total)
		}

		for a, row := range g.Probabilities[s] {
			if len(row) != g.NumStates {
				return fmt.Errorf("%w: transition row (%d,%d) has length %d", ErrInvalidInput, s, a, len(row))
			}
			for _, p := range row {
				if p < 0 || math.IsNaN(p) {
					return fmt.Errorf("%w: negative transition probability at (%d,%d)", ErrInvalidInput, s, a)
				}
			}
			if sum := floats.Sum(row); math.Abs(sum-1) > ProbSumTol {
				return fmt.Errorf("%w: transition row (%d,%d) sums to %v", ErrInvalidInput, s, a, sum)
			}
		}

		anyOnPath := false
		for _, ok := range g.EqActions[s] {
			anyOnPath = anyOnPath || ok
		}
		if !anyOnPath {
			return fmt.Errorf("%w: state %d permits no on-path profile", ErrInvalidInput, s)
		}
	}
	return nil
}

// ProfileCount is the total number of action profiles in the state.
func (g *Game) ProfileCount(state int) int {
	total := 1
	for _, n := range g.NumActions[state] {
		total *= n
	}
	return total
}

// PayoffBounds returns componentwise lower and upper bounds over every
// state and profile.
func (g *Game) PayoffBounds() (lb, ub geom.Point) {
	lb = geom.Point{X: math.Inf(1), Y: math.Inf(1)}
	ub = geom.Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for s := range g.Payoffs {
		for _, p := range g.Payoffs[s] {
			lb = geom.Min(lb, p)
			ub = geom.Max(ub, p)
		}
	}
	return lb, ub
}
