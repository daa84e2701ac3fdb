package engine

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ALCarroll24/MeasurementLQG/experiments/metrics"
	"github.com/ALCarroll24/MeasurementLQG/searcher"
	"github.com/ALCarroll24/MeasurementLQG/sim"
	"github.com/ALCarroll24/MeasurementLQG/world"
)

// Config holds the per-cycle search parameters.
type Config struct {
	LearnIterations int
	Exploration     float64
	BranchFactor    int
	Exhaustive      bool
	Stochastic      bool
	Evaluate        world.Evaluate
	CollectMetrics  bool
}

// NodeView is a value copy of a decision node for external inspection. Live
// node references never leave the planner.
type NodeView struct {
	Position         [2]float64 `json:"position"`
	Yaw              float64    `json:"yaw"`
	TimeStep         int        `json:"time_step"`
	Visits           int        `json:"visits"`
	Reward           float64    `json:"reward"`
	EvaluationReward float64    `json:"evaluation_reward"`
	Trace            float64    `json:"trace"`
	Final            bool       `json:"final"`
}

// Planner runs the plan-act loop: observe, grow a fresh tree, extract the
// best action, apply it for real, publish the tree snapshot, repeat. The
// tree lives for exactly one cycle.
type Planner struct {
	env *sim.Env
	cfg Config
	hub *Hub

	mu         sync.Mutex // guards current against external lookups during growth
	current    *searcher.MCTS
	lastAction world.Action
	cycle      int
}

func NewPlanner(env *sim.Env, cfg Config, hub *Hub) *Planner {
	if cfg.LearnIterations <= 0 {
		panic("must specify learn iterations")
	}
	return &Planner{env: env, cfg: cfg, hub: hub}
}

// Run executes planning cycles until the estimate converges or the cycle
// budget runs out. Returns the number of cycles completed.
func (p *Planner) Run(cycles int) (int, error) {
	for i := 0; i < cycles; i++ {
		if p.env.Done() {
			log.Info().Msgf("covariance trace %.4f converged after %d cycles", p.env.Trace(), i)
			return i, nil
		}
		if _, _, err := p.PlanStep(); err != nil {
			return i, err
		}
	}
	return cycles, nil
}

// PlanStep runs one full planning cycle and returns the applied action.
func (p *Planner) PlanStep() (world.Action, metrics.SearchMetric, error) {
	p.mu.Lock()
	obs := p.env.Observe()

	options := []searcher.Option{
		searcher.WithExploration(p.cfg.Exploration),
		searcher.WithBranchFactor(p.cfg.BranchFactor),
		searcher.WithEvaluationFn(p.cfg.Evaluate),
	}
	if p.cfg.Exhaustive {
		options = append(options, searcher.WithExhaustiveExpansion())
	}
	if p.cfg.Stochastic {
		options = append(options, searcher.WithStochasticOutcomes())
	}
	if p.cfg.CollectMetrics {
		options = append(options, searcher.WithMetrics())
	}

	m, err := searcher.NewMCTS(obs, p.env, world.HashObservation, world.HashControl, options...)
	if err != nil {
		p.mu.Unlock()
		return nil, metrics.SearchMetric{}, err
	}

	metric, err := m.Learn(p.cfg.LearnIterations)
	if err != nil {
		p.mu.Unlock()
		return nil, metric, fmt.Errorf("planning cycle %d: %w", p.cycle, err)
	}

	action, err := m.BestAction()
	if err != nil {
		p.mu.Unlock()
		return nil, metric, fmt.Errorf("planning cycle %d: %w", p.cycle, err)
	}

	records := m.Export(world.ProjectObservation)
	p.current = m
	p.lastAction = action
	p.cycle++
	cycle := p.cycle
	p.mu.Unlock()

	if err := p.env.Apply(action); err != nil {
		return nil, metric, fmt.Errorf("applying action: %w", err)
	}

	trace := p.env.Trace()
	log.Info().Msgf("cycle %d: %d passes, %d nodes exported, trace %.4f", cycle, metric.Passes, len(records), trace)

	if p.hub != nil {
		p.hub.Publish(Snapshot{
			ID:          uuid.NewString(),
			Cycle:       cycle,
			Exploration: m.Exploration(),
			Nodes:       records,
			Decision:    action,
			Trace:       trace,
			CreatedAt:   time.Now().UTC(),
		})
	}

	return action, metric, nil
}

// Cycle returns the number of completed planning cycles.
func (p *Planner) Cycle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cycle
}

// SaveTree serializes the most recent tree and its chosen action for
// offline inspection.
func (p *Planner) SaveTree(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return fmt.Errorf("no planning cycle has completed")
	}
	return p.current.Save(w, world.ProjectObservation, p.lastAction)
}

// Resolve looks an externally selected node up in the most recent tree and
// returns an inspection copy.
func (p *Planner) Resolve(key world.StateKey) (NodeView, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return NodeView{}, fmt.Errorf("%w: no planning cycle has completed", searcher.ErrNodeNotFound)
	}
	node, err := p.current.GetNode(key)
	if err != nil {
		return NodeView{}, err
	}

	obs, ok := node.State.(world.Observation)
	if !ok {
		return NodeView{}, fmt.Errorf("unexpected state type %T", node.State)
	}
	return NodeView{
		Position:         [2]float64{obs.Agent.X, obs.Agent.Y},
		Yaw:              obs.Agent.Yaw,
		TimeStep:         obs.Horizon,
		Visits:           node.Visits,
		Reward:           node.Reward,
		EvaluationReward: node.EvaluationReward,
		Trace:            obs.Trace(),
		Final:            node.Final,
	}, nil
}
