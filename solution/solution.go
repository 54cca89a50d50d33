// Package solution holds the per-iteration output of a solve as a plain
// data tree: no pointers back into the solver, actions are identified by
// (state, profile) indices.
package solution

import (
	"github.com/sw965/egret/geom"
	"github.com/sw965/omw/encoding/jsonx"
)

// Regime records how a pivot coordinate was generated.
type Regime int

const (
	Binding Regime = iota
	NonBinding
)

func (r Regime) String() string {
	switch r {
	case Binding:
		return "binding"
	case NonBinding:
		return "non-binding"
	}
	return "unknown"
}

// Hyperplane is a direction together with the supported level per state.
type Hyperplane struct {
	Dir    geom.Point `json:"dir"`
	Levels []float64  `json:"levels"`
}

// Step is the outcome of one direction: the supporting action profile and
// regime per state, the pivot, and the hyperplane it supports.
// Continuations[s] is the previous-revolution step index backing a binding
// pivot in state s, or -1 when the state is non-binding or the endpoint
// was a synthesized corner.
type Step struct {
	Actions       []int      `json:"actions"`
	Regimes       []Regime   `json:"regimes"`
	Pivot         geom.Tuple `json:"pivot"`
	Hyperplane    Hyperplane `json:"hyperplane"`
	Continuations []int      `json:"continuations"`
}

// ActionRecord snapshots an action that survived into the iteration.
type ActionRecord struct {
	Profile int           `json:"profile"`
	MinIC   [2]float64    `json:"min_ic"`
	Points  [2]geom.Tuple `json:"points"`
	Tuples  [2][]int      `json:"tuples"`
	Corner  bool          `json:"corner"`
}

// Iteration is the snapshot taken at the end of one revolution, before
// the threat tuple and minimum IC payoffs are updated.
type Iteration struct {
	N           int              `json:"n"`
	ThreatTuple geom.Tuple       `json:"threat_tuple"`
	Actions     [][]ActionRecord `json:"actions,omitempty"` // per state
	Steps       []Step           `json:"steps"`
}

type Solution struct {
	Iterations []Iteration `json:"iterations"`
}

// Last returns the final iteration, or nil if none was stored.
func (s *Solution) Last() *Iteration {
	if len(s.Iterations) == 0 {
		return nil
	}
	return &s.Iterations[len(s.Iterations)-1]
}

func Save(s *Solution, path string) error {
	return jsonx.Save[Solution](*s, path)
}

func Load(path string) (*Solution, error) {
	s, err := jsonx.Load[Solution](path)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
