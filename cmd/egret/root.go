package main

import (
	"fmt"
	"math/rand/v2"
	"strings"

	envcfg "github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/sw965/egret/env"
	"github.com/sw965/egret/game"
	"github.com/sw965/egret/games"
	"github.com/sw965/egret/geom"
	"github.com/sw965/egret/sim"
	"github.com/sw965/egret/solution"
	"github.com/sw965/egret/solver"
)

// processConfig overrides the solve parameters from the process
// environment, so batch runs can redirect logs without editing the
// parameter file.
type processConfig struct {
	EnvFile string `env:"EGRET_ENV"`
	LogFile string `env:"EGRET_LOG_FILE"`
}

func loadEnv(configPath string) (env.Env, error) {
	proc, err := envcfg.ParseAs[processConfig]()
	if err != nil {
		return env.Env{}, fmt.Errorf("parse process environment: %w", err)
	}

	if configPath == "" {
		configPath = proc.EnvFile
	}

	e := env.New()
	if configPath != "" {
		e, err = env.FromYAML(configPath)
		if err != nil {
			return env.Env{}, err
		}
	}
	if proc.LogFile != "" {
		e.LogFile = proc.LogFile
	}
	return e, nil
}

var rootCmd = &cobra.Command{
	Use:   "egret",
	Short: "Equilibrium payoff correspondences for two-player stochastic games",
}

func init() {
	rootCmd.AddCommand(solveCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(exampleCmd())
}

func solveCmd() *cobra.Command {
	var gamePath, outPath, configPath string
	var endogenous bool

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve a game and write the solution",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(configPath)
			if err != nil {
				return err
			}
			g, err := game.Load(gamePath)
			if err != nil {
				return err
			}

			s, err := solver.New(e, g)
			if err != nil {
				return err
			}
			defer s.Close()

			var sol *solution.Solution
			if endogenous {
				sol, err = s.SolveEndogenous()
			} else {
				sol, err = s.Solve()
			}
			if err != nil {
				return err
			}
			if err := solution.Save(sol, outPath); err != nil {
				return err
			}

			last := sol.Last()
			fmt.Fprintf(cmd.OutOrStdout(), "solved in %d stored iterations, %d steps on the final revolution\n",
				len(sol.Iterations), len(last.Steps))
			fmt.Fprintf(cmd.OutOrStdout(), "threat tuple: %v\n", last.ThreatTuple)
			return nil
		},
	}
	cmd.Flags().StringVar(&gamePath, "game", "game.json", "game file")
	cmd.Flags().StringVar(&outPath, "out", "solution.json", "solution file")
	cmd.Flags().StringVar(&configPath, "config", "", "solver parameter file (yaml)")
	cmd.Flags().BoolVar(&endogenous, "endogenous", false, "generate directions endogenously")
	return cmd
}

func simulateCmd() *cobra.Command {
	var gamePath, solnPath string
	var state, numSims, numPeriods int
	var worst bool
	var seed uint64

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Estimate long run payoffs of a solved equilibrium",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := game.Load(gamePath)
			if err != nil {
				return err
			}
			sol, err := solution.Load(solnPath)
			if err != nil {
				return err
			}

			simulator, err := sim.New(g, sol)
			if err != nil {
				return err
			}

			northEast := geom.Point{X: 1, Y: 1}
			best, worstStep := simulator.ExtremeSteps(state, northEast)
			step := best
			if worst {
				step = worstStep
			}

			rng := rand.New(rand.NewPCG(seed, seed))
			payoffs, err := simulator.Simulate(numSims, numPeriods, state, step, rng)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "long run payoffs: (%g, %g)\n", payoffs.X, payoffs.Y)
			return nil
		},
	}
	cmd.Flags().StringVar(&gamePath, "game", "game.json", "game file")
	cmd.Flags().StringVar(&solnPath, "solution", "solution.json", "solution file")
	cmd.Flags().IntVar(&state, "state", 0, "initial state")
	cmd.Flags().IntVar(&numSims, "sims", 1000, "number of simulations")
	cmd.Flags().IntVar(&numPeriods, "periods", 100000, "periods per simulation")
	cmd.Flags().BoolVar(&worst, "worst", false, "start from the worst equilibrium instead of the best")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "rng seed")
	return cmd
}

func exampleCmd() *cobra.Command {
	var name, outPath string
	var delta, persistence float64
	var numEndowments, c2e int

	cmd := &cobra.Command{
		Use:   "example",
		Short: "Write an example game to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			var g *game.Game
			var err error
			switch strings.ToLower(name) {
			case "abreusannikov":
				g, err = games.AbreuSannikov()
			case "pd":
				g, err = games.PrisonersDilemma(delta)
			case "risksharing":
				g, err = games.RiskSharing(delta, numEndowments, c2e, persistence, games.Consumption)
			default:
				return fmt.Errorf("unknown example %q", name)
			}
			if err != nil {
				return err
			}
			return game.Save(g, outPath)
		},
	}
	cmd.Flags().StringVar(&name, "name", "pd", "example name: abreusannikov, pd, risksharing")
	cmd.Flags().StringVar(&outPath, "out", "game.json", "output file")
	cmd.Flags().Float64Var(&delta, "delta", 0.6, "discount factor")
	cmd.Flags().Float64Var(&persistence, "persistence", 0, "endowment persistence")
	cmd.Flags().IntVar(&numEndowments, "endowments", 2, "number of endowment states")
	cmd.Flags().IntVar(&c2e, "c2e", 80, "consumption levels per unit endowment")
	return cmd
}
