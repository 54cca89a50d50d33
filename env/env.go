// Package env bundles the numeric tolerances, iteration caps and storage
// switches consumed by the solver.
package env

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Storage conventions for Env.StoreIterations.
const (
	StoreNone  = 0 // keep only the final revolution, without action records
	StoreFinal = 1 // keep only the final iteration
	StoreAll   = 2 // keep every iteration
)

type Env struct {
	ErrorTol             float64 `yaml:"error_tol"`
	ICTol                float64 `yaml:"ic_tol"`
	IntersectTol         float64 `yaml:"intersect_tol"`
	FlatTol              float64 `yaml:"flat_tol"`
	PastThreatTol        float64 `yaml:"past_threat_tol"`
	PolicyIterTol        float64 `yaml:"policy_iter_tol"`
	UpdatePivotTol       float64 `yaml:"update_pivot_tol"`
	MaxIterations        int     `yaml:"max_iterations"`
	MaxPolicyIterations  int     `yaml:"max_policy_iterations"`
	MaxUpdatePivotPasses int     `yaml:"max_update_pivot_passes"`
	StoreIterations      int     `yaml:"store_iterations"`
	StoreActions         bool    `yaml:"store_actions"`
	NumDirections        int     `yaml:"num_directions"`
	LogFile              string  `yaml:"log_file"`
}

func New() Env {
	return Env{
		ErrorTol:             1e-8,
		ICTol:                1e-12,
		IntersectTol:         1e-12,
		FlatTol:              1e-7,
		PastThreatTol:        1e-10,
		PolicyIterTol:        1e-8,
		UpdatePivotTol:       1e-10,
		MaxIterations:        1e6,
		MaxPolicyIterations:  1e2,
		MaxUpdatePivotPasses: 1e3,
		StoreIterations:      StoreFinal,
		StoreActions:         true,
		NumDirections:        200,
	}
}

// FromYAML starts from the defaults and overlays the keys present in the
// given file.
func FromYAML(path string) (Env, error) {
	e := New()
	b, err := os.ReadFile(path)
	if err != nil {
		return e, fmt.Errorf("read env: %w", err)
	}
	if err := yaml.Unmarshal(b, &e); err != nil {
		return e, fmt.Errorf("parse env: %w", err)
	}
	if err := e.Validate(); err != nil {
		return e, err
	}
	return e, nil
}

func (e Env) Validate() error {
	if e.ErrorTol <= 0 || e.PolicyIterTol <= 0 || e.UpdatePivotTol <= 0 {
		return fmt.Errorf("convergence tolerances must be positive")
	}
	if e.ICTol < 0 || e.IntersectTol < 0 || e.FlatTol < 0 || e.PastThreatTol < 0 {
		return fmt.Errorf("geometric tolerances must not be negative")
	}
	if e.MaxIterations < 1 || e.MaxPolicyIterations < 1 || e.MaxUpdatePivotPasses < 1 {
		return fmt.Errorf("iteration caps must be at least 1")
	}
	if e.StoreIterations < StoreNone || e.StoreIterations > StoreAll {
		return fmt.Errorf("store_iterations must be 0, 1 or 2")
	}
	if e.NumDirections < 4 {
		return fmt.Errorf("num_directions must be at least 4")
	}
	return nil
}
