package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ALCarroll24/MeasurementLQG/engine"
	"github.com/ALCarroll24/MeasurementLQG/meta"
	"github.com/ALCarroll24/MeasurementLQG/sim"
	"github.com/ALCarroll24/MeasurementLQG/world"
)

type PlannerConfig struct {
	Exploration          float64 `yaml:"exploration"`
	BranchFactor         int     `yaml:"branch_factor"`
	LearnIterations      int     `yaml:"learn_iterations"`
	Exhaustive           bool    `yaml:"exhaustive"`
	Stochastic           bool    `yaml:"stochastic"`
	Alpha                float64 `yaml:"alpha"`
	Beta                 float64 `yaml:"beta"`
	EvaluationMultiplier float64 `yaml:"evaluation_multiplier"`
	CollectMetrics       bool    `yaml:"collect_metrics"`
}

type VehicleConfig struct {
	Length         float64 `yaml:"length"`
	MaxVelocity    float64 `yaml:"max_velocity"`
	MaxSteeringDeg float64 `yaml:"max_steering_deg"`
	MaxRange       float64 `yaml:"max_range"`
	MaxBearingDeg  float64 `yaml:"max_bearing_deg"`
	UpdateRate     float64 `yaml:"update_rate"`
}

type SimConfig struct {
	AgentX           float64      `yaml:"agent_x"`
	AgentY           float64      `yaml:"agent_y"`
	AgentYawDeg      float64      `yaml:"agent_yaw_deg"`
	Corners          [][2]float64 `yaml:"corners"`
	InitialMean      []float64    `yaml:"initial_mean"`
	InitialVariance  float64      `yaml:"initial_variance"`
	MeasurementNoise float64      `yaml:"measurement_noise"`
	Horizon          int          `yaml:"horizon"`
	FinalCovTrace    float64      `yaml:"final_cov_trace"`
	VelocityOptions  int          `yaml:"velocity_options"`
	SteeringOptions  int          `yaml:"steering_options"`
	Continuous       bool         `yaml:"continuous"`
	Cycles           int          `yaml:"cycles"`
	Seed             uint64       `yaml:"seed"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	Planner PlannerConfig `yaml:"planner"`
	Vehicle VehicleConfig `yaml:"vehicle"`
	Sim     SimConfig     `yaml:"sim"`
	Server  ServerConfig  `yaml:"server"`
}

// Default mirrors the reference scenario: the object at (50, 50), the agent
// below it facing north.
func Default() Config {
	return Config{
		Planner: PlannerConfig{
			Exploration:          meta.EXPLORATION_K,
			BranchFactor:         meta.BRANCH_FACTOR,
			LearnIterations:      meta.LEARN_ITERATIONS,
			Alpha:                meta.EVAL_ALPHA,
			Beta:                 meta.EVAL_BETA,
			EvaluationMultiplier: meta.EVAL_MULTIPLIER,
		},
		Vehicle: VehicleConfig{
			Length:         4.0,
			MaxVelocity:    10.0,
			MaxSteeringDeg: 45.0,
			MaxRange:       20.0,
			MaxBearingDeg:  45.0,
			UpdateRate:     meta.UPDATE_RATE,
		},
		Sim: SimConfig{
			AgentX:      50.0,
			AgentY:      30.0,
			AgentYawDeg: 90.0,
			Corners: [][2]float64{
				{48, 48}, {52, 48}, {52, 52}, {48, 52},
			},
			InitialMean:      []float64{50, 50, 50, 50, 50, 50, 50, 50},
			InitialVariance:  8.0,
			MeasurementNoise: 4.0,
			Horizon:          meta.HORIZON,
			FinalCovTrace:    meta.FINAL_COV_TRACE,
			VelocityOptions:  meta.VELOCITY_OPTIONS,
			SteeringOptions:  meta.STEERING_OPTIONS,
			Cycles:           200,
			Seed:             1,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads a YAML config over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if math.Abs(c.Planner.Alpha+c.Planner.Beta-1) > 1e-9 {
		return fmt.Errorf("alpha (%v) and beta (%v) must sum to 1", c.Planner.Alpha, c.Planner.Beta)
	}
	if c.Planner.LearnIterations <= 0 {
		return fmt.Errorf("learn_iterations must be positive")
	}
	if len(c.Sim.Corners) != world.NumCorners {
		return fmt.Errorf("expected %d corners, got %d", world.NumCorners, len(c.Sim.Corners))
	}
	return nil
}

// EnvConfig assembles the simulation environment parameters.
func (c Config) EnvConfig() sim.EnvConfig {
	return sim.EnvConfig{
		Agent: world.AgentState{
			X:   c.Sim.AgentX,
			Y:   c.Sim.AgentY,
			Yaw: c.Sim.AgentYawDeg * math.Pi / 180,
		},
		Corners:          c.Sim.Corners,
		InitialMean:      c.Sim.InitialMean,
		InitialVariance:  c.Sim.InitialVariance,
		MeasurementNoise: c.Sim.MeasurementNoise,
		Vehicle: sim.Vehicle{
			Length:      c.Vehicle.Length,
			MaxVelocity: c.Vehicle.MaxVelocity,
			MaxSteering: c.Vehicle.MaxSteeringDeg * math.Pi / 180,
		},
		Sensor: sim.Sensor{
			MaxRange:   c.Vehicle.MaxRange,
			MaxBearing: c.Vehicle.MaxBearingDeg * math.Pi / 180,
		},
		Period:          1 / c.Vehicle.UpdateRate,
		Horizon:         c.Sim.Horizon,
		FinalTrace:      c.Sim.FinalCovTrace,
		VelocityOptions: c.Sim.VelocityOptions,
		SteeringOptions: c.Sim.SteeringOptions,
		Continuous:      c.Sim.Continuous,
		Seed:            c.Sim.Seed,
	}
}

// EngineConfig assembles the planner parameters.
func (c Config) EngineConfig() engine.Config {
	return engine.Config{
		LearnIterations: c.Planner.LearnIterations,
		Exploration:     c.Planner.Exploration,
		BranchFactor:    c.Planner.BranchFactor,
		Exhaustive:      c.Planner.Exhaustive,
		Stochastic:      c.Planner.Stochastic,
		Evaluate:        world.NewCoverageEvaluate(c.Planner.Alpha, c.Planner.Beta, c.Planner.EvaluationMultiplier),
		CollectMetrics:  c.Planner.CollectMetrics,
	}
}
