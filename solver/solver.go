// Package solver computes the subgame perfect equilibrium payoff
// correspondence of a two-player stochastic game by refining an outer
// approximation: for each direction it runs policy iteration over the
// surviving actions to find the supported level, then uses the new
// levels to update threats and trim the actions' binding continuations.
package solver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/sw965/egret/action"
	"github.com/sw965/egret/env"
	"github.com/sw965/egret/game"
	"github.com/sw965/egret/geom"
	"github.com/sw965/egret/solution"
)

// ErrNoFeasibleTuple means no payoff tuple feasible for APS could be
// assembled from the surviving actions; the game has no equilibrium
// within the current approximation.
var ErrNoFeasibleTuple = errors.New("no feasible tuple")

// ErrNoAdmissibleDirection means the sensitivity step found no forward
// direction. Callers sweeping game parameters may catch it and treat the
// approximation as converged at a degenerate point.
var ErrNoAdmissibleDirection = errors.New("no admissible direction")

type Solver struct {
	env env.Env
	g   *game.Game

	log      *slog.Logger
	logClose io.Closer
}

func New(e env.Env, g *game.Game) (*Solver, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	s := &Solver{env: e, g: g}
	if e.LogFile == "" {
		s.log = slog.New(slog.DiscardHandler)
		return s, nil
	}

	f, err := os.OpenFile(e.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	s.log = slog.New(slog.NewJSONHandler(f, nil))
	s.logClose = f
	return s, nil
}

// Close releases the log file, if any.
func (s *Solver) Close() error {
	if s.logClose == nil {
		return nil
	}
	return s.logClose.Close()
}

var cardinals = [4]geom.Point{{X: 1}, {Y: 1}, {X: -1}, {Y: -1}}

// initActions builds one action per on-path profile, seeds the binding
// segments along the minimum IC payoffs and clips them to the payoff
// bounding box.
func (s *Solver) initActions(threat geom.Tuple) [][]*action.Action {
	lb, ub := s.g.PayoffBounds()
	update := [2]bool{true, true}

	actions := make([][]*action.Action, s.g.NumStates)
	for state := range actions {
		total := s.g.ProfileCount(state)
		for profile := 0; profile < total; profile++ {
			if !s.g.EqActions[state][profile] {
				continue
			}
			a := action.New(s.env, state, profile)
			a.CalculateMinIC(s.g, update, threat)
			a.ResetTrimmedPoints(s.g, lb, ub)
			for _, dir := range cardinals {
				level := math.Max(dir.Dot(lb), dir.Dot(ub))
				a.Trim(dir, level)
			}
			a.CommitTrim()
			actions[state] = append(actions[state], a)
		}
	}
	return actions
}

// snapshotActions copies the surviving actions into the iteration record.
func snapshotActions(actions [][]*action.Action) [][]solution.ActionRecord {
	records := make([][]solution.ActionRecord, len(actions))
	for state := range actions {
		records[state] = make([]solution.ActionRecord, 0, len(actions[state]))
		for _, a := range actions[state] {
			rec := solution.ActionRecord{
				Profile: a.Profile,
				MinIC:   a.MinIC,
				Corner:  a.Corner,
			}
			for player := 0; player < game.NumPlayers; player++ {
				rec.Points[player] = a.Points[player].Clone()
				rec.Tuples[player] = append([]int(nil), a.Tuples[player]...)
			}
			records[state] = append(records[state], rec)
		}
	}
	return records
}

// store appends or replaces the iteration snapshot according to the
// storage convention: StoreNone and StoreFinal retain the latest
// iteration only (StoreNone without action records), StoreAll retains
// every iteration.
func (s *Solver) store(sol *solution.Solution, iter solution.Iteration) {
	if s.env.StoreIterations == env.StoreAll {
		sol.Iterations = append(sol.Iterations, iter)
		return
	}
	if s.env.StoreIterations == env.StoreNone {
		iter.Actions = nil
	}
	if len(sol.Iterations) == 0 {
		sol.Iterations = append(sol.Iterations, iter)
	} else {
		sol.Iterations[len(sol.Iterations)-1] = iter
	}
}

func actionCounts(actions [][]*action.Action) []int {
	counts := make([]int, len(actions))
	for state := range actions {
		counts[state] = len(actions[state])
	}
	return counts
}
