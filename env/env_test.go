package env_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sw965/egret/env"
)

func TestDefaults(t *testing.T) {
	e := env.New()
	require.Equal(t, 1e-8, e.ErrorTol)
	require.Equal(t, 1e-12, e.ICTol)
	require.Equal(t, 1e-12, e.IntersectTol)
	require.Equal(t, 1e-7, e.FlatTol)
	require.Equal(t, 1e-10, e.PastThreatTol)
	require.Equal(t, 1e-8, e.PolicyIterTol)
	require.Equal(t, 1e-10, e.UpdatePivotTol)
	require.Equal(t, 1000000, e.MaxIterations)
	require.Equal(t, 100, e.MaxPolicyIterations)
	require.Equal(t, 1000, e.MaxUpdatePivotPasses)
	require.Equal(t, env.StoreFinal, e.StoreIterations)
	require.True(t, e.StoreActions)
	require.NoError(t, e.Validate())
}

func TestFromYAMLOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	body := "error_tol: 1.0e-6\nnum_directions: 64\nstore_iterations: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	e, err := env.FromYAML(path)
	require.NoError(t, err)
	require.Equal(t, 1e-6, e.ErrorTol)
	require.Equal(t, 64, e.NumDirections)
	require.Equal(t, env.StoreAll, e.StoreIterations)
	// Untouched keys keep their defaults.
	require.Equal(t, 1e-12, e.ICTol)
	require.True(t, e.StoreActions)
}

func TestValidateRejectsBadValues(t *testing.T) {
	e := env.New()
	e.ErrorTol = 0
	require.Error(t, e.Validate())

	e = env.New()
	e.StoreIterations = 3
	require.Error(t, e.Validate())

	e = env.New()
	e.NumDirections = 2
	require.Error(t, e.Validate())
}
