package main

import (
	"fmt"
	"os"
	"time"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ALCarroll24/MeasurementLQG/communication/server"
	"github.com/ALCarroll24/MeasurementLQG/config"
	"github.com/ALCarroll24/MeasurementLQG/engine"
	"github.com/ALCarroll24/MeasurementLQG/experiments"
	"github.com/ALCarroll24/MeasurementLQG/sim"
)

var (
	configPath string
	savePath   string
	addr       string
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	root := &cobra.Command{
		Use:   "measurementlqg",
		Short: "MCTS measurement planner for a mobile sensing agent",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config")

	plan := &cobra.Command{
		Use:   "plan",
		Short: "Run planning cycles until the estimate converges",
		RunE:  runPlan,
	}
	plan.Flags().StringVar(&savePath, "save", "", "write the final tree dump to this file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the planner with the tree visualization server",
		RunE:  runServe,
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	experiment := &cobra.Command{
		Use:       "experiment [branch-factor|iterations]",
		Short:     "Run a planning benchmark and write CSV records",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"branch-factor", "iterations"},
		RunE:      runExperiment,
	}

	root.AddCommand(plan, serve, experiment)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildPlanner(hub *engine.Hub) (*sim.Env, *engine.Planner, config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, cfg, err
	}
	env, err := sim.NewEnv(cfg.EnvConfig())
	if err != nil {
		return nil, nil, cfg, err
	}
	return env, engine.NewPlanner(env, cfg.EngineConfig(), hub), cfg, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	env, planner, cfg, err := buildPlanner(nil)
	if err != nil {
		return err
	}

	output := termenv.NewOutput(os.Stdout)
	for cycle := 0; cycle < cfg.Sim.Cycles; cycle++ {
		if env.Done() {
			break
		}
		action, _, err := planner.PlanStep()
		if err != nil {
			return err
		}
		line := fmt.Sprintf("cycle %3d  trace %8.4f  action %+v", cycle+1, env.Trace(), action)
		fmt.Println(output.String(line).Foreground(output.Color("14")))
	}

	if env.Done() {
		fmt.Println(output.String("converged").Foreground(output.Color("10")).Bold())
	} else {
		fmt.Println(output.String("cycle budget exhausted").Foreground(output.Color("11")))
	}

	if savePath != "" {
		f, err := os.Create(savePath)
		if err != nil {
			return fmt.Errorf("failed to create tree dump: %w", err)
		}
		defer f.Close()
		if err := planner.SaveTree(f); err != nil {
			return err
		}
		log.Info().Msgf("tree dump written to %s", savePath)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	hub := engine.NewHub()
	env, planner, cfg, err := buildPlanner(hub)
	if err != nil {
		return err
	}

	listenAddr := cfg.Server.Addr
	if addr != "" {
		listenAddr = addr
	}

	go func() {
		completed, err := planner.Run(cfg.Sim.Cycles)
		if err != nil {
			log.Error().Err(err).Msg("planning aborted")
			return
		}
		log.Info().Msgf("planning finished after %d cycles, trace %.4f", completed, env.Trace())
	}()

	log.Info().Msgf("visualization server listening on %s", listenAddr)
	return server.NewVizServer(hub, planner.Resolve).Run(listenAddr)
}

func runExperiment(cmd *cobra.Command, args []string) error {
	switch args[0] {
	case "branch-factor":
		return experiments.RunBranchFactorExperiment()
	case "iterations":
		return experiments.RunIterationExperiment()
	default:
		return fmt.Errorf("unknown experiment %q", args[0])
	}
}
