package solution_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sw965/egret/geom"
	"github.com/sw965/egret/solution"
)

func TestRegimeString(t *testing.T) {
	require.Equal(t, "binding", solution.Binding.String())
	require.Equal(t, "non-binding", solution.NonBinding.String())
}

func TestLast(t *testing.T) {
	var sol solution.Solution
	require.Nil(t, sol.Last())

	sol.Iterations = append(sol.Iterations, solution.Iteration{N: 0}, solution.Iteration{N: 7})
	require.Equal(t, 7, sol.Last().N)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	sol := &solution.Solution{
		Iterations: []solution.Iteration{{
			N:           3,
			ThreatTuple: geom.Tuple{{X: 1, Y: 2}},
			Steps: []solution.Step{{
				Actions:       []int{0},
				Regimes:       []solution.Regime{solution.NonBinding},
				Pivot:         geom.Tuple{{X: 3, Y: 3}},
				Hyperplane:    solution.Hyperplane{Dir: geom.Point{X: 1}, Levels: []float64{3}},
				Continuations: []int{-1},
			}},
		}},
	}

	path := filepath.Join(t.TempDir(), "solution.json")
	require.NoError(t, solution.Save(sol, path))
	loaded, err := solution.Load(path)
	require.NoError(t, err)
	require.Equal(t, sol, loaded)
}
