package sim

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/ALCarroll24/MeasurementLQG/meta"
	"github.com/ALCarroll24/MeasurementLQG/utils"
	"github.com/ALCarroll24/MeasurementLQG/world"
)

// EnvConfig parameterizes the measurement environment.
type EnvConfig struct {
	Agent   world.AgentState
	Corners [][2]float64 // Ground-truth object corner positions

	InitialMean      []float64 // Prior corner estimate, len 2*NumCorners
	InitialVariance  float64
	MeasurementNoise float64

	Vehicle Vehicle
	Sensor  Sensor

	Period     float64
	Horizon    int
	FinalTrace float64

	VelocityOptions int
	SteeringOptions int
	Continuous      bool // Continuous-uniform sampling instead of the discrete grid

	Seed uint64
}

// Env is the forward model for the measurement planning problem: a vehicle
// observing a stationary object whose corner geometry is tracked by a static
// Kalman filter. It implements the planner's environment port and also holds
// the live (non-simulated) agent and estimator state for the outer loop.
type Env struct {
	cfg    EnvConfig
	filter *Filter
	agent  world.AgentState
	rng    *rand.Rand
}

func NewEnv(cfg EnvConfig) (*Env, error) {
	if len(cfg.Corners) != world.NumCorners {
		return nil, fmt.Errorf("expected %d object corners, got %d", world.NumCorners, len(cfg.Corners))
	}
	if len(cfg.InitialMean) != 2*world.NumCorners {
		return nil, fmt.Errorf("expected prior mean of length %d, got %d", 2*world.NumCorners, len(cfg.InitialMean))
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = meta.HORIZON
	}
	if cfg.FinalTrace <= 0 {
		cfg.FinalTrace = meta.FINAL_COV_TRACE
	}
	if cfg.Period <= 0 {
		cfg.Period = 1.0 / meta.UPDATE_RATE
	}
	if cfg.VelocityOptions <= 0 {
		cfg.VelocityOptions = meta.VELOCITY_OPTIONS
	}
	if cfg.SteeringOptions <= 0 {
		cfg.SteeringOptions = meta.STEERING_OPTIONS
	}

	return &Env{
		cfg:    cfg,
		filter: NewFilter(cfg.InitialMean, cfg.InitialVariance, cfg.MeasurementNoise),
		agent:  cfg.Agent,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Observe snapshots the live state as the planner's initial observation.
func (e *Env) Observe() world.Observation {
	return world.Observation{
		Agent:   e.agent,
		Mean:    e.filter.Mean(),
		Cov:     e.filter.Cov(),
		Horizon: 0,
	}
}

// Agent returns the live vehicle pose.
func (e *Env) Agent() world.AgentState {
	return e.agent
}

// Trace returns the live covariance trace.
func (e *Env) Trace() float64 {
	obs := e.Observe()
	return obs.Trace()
}

// Done reports whether the live estimate has converged below the target
// trace.
func (e *Env) Done() bool {
	return e.Trace() < e.cfg.FinalTrace
}

// Step simulates one control period from the given state: vehicle kinematics,
// corner visibility, and a measurement update on the estimator. The reward is
// the negative covariance trace; the episode ends when the trace converges or
// the horizon runs out. The live state is untouched.
func (e *Env) Step(s world.State, a world.Action) (world.State, float64, bool, error) {
	obs, ok := s.(world.Observation)
	if !ok {
		return nil, 0, false, fmt.Errorf("unexpected state type %T", s)
	}
	control, ok := a.(world.Control)
	if !ok {
		return nil, 0, false, fmt.Errorf("unexpected action type %T", a)
	}

	next := obs.Clone()
	next.Horizon++
	next.Agent = e.cfg.Vehicle.Step(obs.Agent, control, e.cfg.Period)

	visible := e.cfg.Sensor.VisibleCorners(next.Agent, e.cfg.Corners)
	mean, cov, err := e.filter.Simulate(next.Mean, next.Cov, e.cfg.Corners, visible)
	if err != nil {
		return nil, 0, false, err
	}
	next.Mean = mean
	next.Cov = cov

	trace := next.Trace()
	reward := -trace
	done := trace < e.cfg.FinalTrace
	if !done && next.Horizon == e.cfg.Horizon-1 {
		done = true
	}

	return next, reward, done, nil
}

// SampleAction draws a control input, either uniformly from the continuous
// input ranges or uniformly from the discretized grid.
func (e *Env) SampleAction() world.Action {
	if e.cfg.Continuous {
		return world.Control{
			Velocity: e.rng.Float64() * e.cfg.Vehicle.MaxVelocity,
			Steering: (2*e.rng.Float64() - 1) * e.cfg.Vehicle.MaxSteering,
		}
	}

	velocities := utils.Linspace(0, e.cfg.Vehicle.MaxVelocity, e.cfg.VelocityOptions)
	steerings := utils.Linspace(-e.cfg.Vehicle.MaxSteering, e.cfg.Vehicle.MaxSteering, e.cfg.SteeringOptions)
	return world.Control{
		Velocity: velocities[e.rng.Intn(len(velocities))],
		Steering: steerings[e.rng.Intn(len(steerings))],
	}
}

// AllActions enumerates the discrete action grid for exhaustive branching,
// or nil when sampling is continuous.
func (e *Env) AllActions() []world.Action {
	if e.cfg.Continuous {
		return nil
	}

	velocities := utils.Linspace(0, e.cfg.Vehicle.MaxVelocity, e.cfg.VelocityOptions)
	steerings := utils.Linspace(-e.cfg.Vehicle.MaxSteering, e.cfg.Vehicle.MaxSteering, e.cfg.SteeringOptions)
	actions := make([]world.Action, 0, len(velocities)*len(steerings))
	for _, v := range velocities {
		for _, s := range steerings {
			actions = append(actions, world.Control{Velocity: v, Steering: s})
		}
	}
	return actions
}

// Apply commits a chosen action to the live state: the vehicle moves and a
// noisy observation of the visible corners updates the live estimator.
func (e *Env) Apply(a world.Action) error {
	control, ok := a.(world.Control)
	if !ok {
		return fmt.Errorf("unexpected action type %T", a)
	}

	e.agent = e.cfg.Vehicle.Step(e.agent, control, e.cfg.Period)

	visible := e.cfg.Sensor.VisibleCorners(e.agent, e.cfg.Corners)
	if len(visible) == 0 {
		return nil
	}

	stddev := math.Sqrt(e.cfg.MeasurementNoise)
	measured := make([][2]float64, len(e.cfg.Corners))
	for _, i := range visible {
		measured[i][0] = e.cfg.Corners[i][0] + e.rng.NormFloat64()*stddev
		measured[i][1] = e.cfg.Corners[i][1] + e.rng.NormFloat64()*stddev
	}
	return e.filter.Update(measured, visible)
}
