package experiments

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ALCarroll24/MeasurementLQG/config"
	"github.com/ALCarroll24/MeasurementLQG/engine"
	"github.com/ALCarroll24/MeasurementLQG/experiments/metrics"
	"github.com/ALCarroll24/MeasurementLQG/meta"
	"github.com/ALCarroll24/MeasurementLQG/sim"
)

const (
	NumRuns   = 10 // Per planner config
	MaxCycles = 200
)

var branchFactorConfigs = []metrics.PlannerConfig{
	{ID: 1, BranchFactor: 2, LearnIterations: meta.LEARN_ITERATIONS, Exploration: meta.EXPLORATION_K},
	{ID: 2, BranchFactor: 4, LearnIterations: meta.LEARN_ITERATIONS, Exploration: meta.EXPLORATION_K},
	{ID: 3, BranchFactor: 8, LearnIterations: meta.LEARN_ITERATIONS, Exploration: meta.EXPLORATION_K},
	{ID: 4, BranchFactor: 16, LearnIterations: meta.LEARN_ITERATIONS, Exploration: meta.EXPLORATION_K},
}

var iterationConfigs = []metrics.PlannerConfig{
	{ID: 1, BranchFactor: meta.BRANCH_FACTOR, LearnIterations: 10, Exploration: meta.EXPLORATION_K},
	{ID: 2, BranchFactor: meta.BRANCH_FACTOR, LearnIterations: 50, Exploration: meta.EXPLORATION_K},
	{ID: 3, BranchFactor: meta.BRANCH_FACTOR, LearnIterations: 100, Exploration: meta.EXPLORATION_K},
	{ID: 4, BranchFactor: meta.BRANCH_FACTOR, LearnIterations: 500, Exploration: meta.EXPLORATION_K},
}

// RunBranchFactorExperiment measures how convergence speed responds to the
// number of actions expanded per node.
func RunBranchFactorExperiment() error {
	return runExperiment("branch_factor", branchFactorConfigs)
}

// RunIterationExperiment measures how convergence speed responds to the
// growth pass budget per cycle.
func RunIterationExperiment() error {
	return runExperiment("iterations", iterationConfigs)
}

func runExperiment(name string, configs []metrics.PlannerConfig) error {
	log.Info().Msgf("running %s experiment: %d configs x %d runs", name, len(configs), NumRuns)

	writer, err := metrics.NewWriter(name)
	if err != nil {
		return err
	}
	if err := writer.WritePlannerConfigs(configs); err != nil {
		return err
	}

	var records []metrics.CycleRecord
	for _, planner := range configs {
		for run := 0; run < NumRuns; run++ {
			runRecords, err := runPlanner(planner, run)
			if err != nil {
				return fmt.Errorf("config %d run %d: %w", planner.ID, run, err)
			}
			records = append(records, runRecords...)
			log.Info().Msgf("config %d run %d: converged in %d cycles", planner.ID, run, len(runRecords))
		}
	}

	return writer.WriteCycleRecords(records)
}

func runPlanner(plannerCfg metrics.PlannerConfig, run int) ([]metrics.CycleRecord, error) {
	cfg := config.Default()
	cfg.Sim.Seed = uint64(run + 1) // Vary the noise realization per run

	env, err := sim.NewEnv(cfg.EnvConfig())
	if err != nil {
		return nil, err
	}

	engineCfg := cfg.EngineConfig()
	engineCfg.BranchFactor = plannerCfg.BranchFactor
	engineCfg.LearnIterations = plannerCfg.LearnIterations
	engineCfg.Exploration = plannerCfg.Exploration
	engineCfg.CollectMetrics = true

	planner := engine.NewPlanner(env, engineCfg, nil)

	var records []metrics.CycleRecord
	for cycle := 0; cycle < MaxCycles && !env.Done(); cycle++ {
		_, metric, err := planner.PlanStep()
		if err != nil {
			return records, err
		}
		records = append(records, metrics.CycleRecord{
			Planner: plannerCfg.ID,
			Run:     run,
			CycleMetric: metrics.CycleMetric{
				Cycle:        cycle,
				Trace:        env.Trace(),
				SearchMetric: metric,
			},
		})
	}

	return records, nil
}
