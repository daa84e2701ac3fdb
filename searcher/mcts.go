package searcher

import (
	"fmt"
	"math"

	"github.com/ALCarroll24/MeasurementLQG/experiments/metrics"
	"github.com/ALCarroll24/MeasurementLQG/meta"
	"github.com/ALCarroll24/MeasurementLQG/world"
)

type Option func(m *MCTS)

// MCTS grows a search tree over the environment's forward model, one
// planning cycle per instance: build from the current observation, Learn,
// extract the best action, discard.
type MCTS struct {
	env        world.Environment
	hashState  world.HashState
	hashAction world.HashAction

	exploration   float64
	branchFactor  int
	exhaustive    bool
	deterministic bool
	evaluate      world.Evaluate
	metrics       metrics.Collector

	root *DecisionNode
}

// WithExploration sets the UCB exploration constant K.
func WithExploration(k float64) Option {
	return func(m *MCTS) {
		if k >= 0 {
			m.exploration = k
		}
	}
}

// WithBranchFactor sets how many actions are sampled when a node is first
// expanded.
func WithBranchFactor(b int) Option {
	return func(m *MCTS) {
		if b > 0 {
			m.branchFactor = b
		}
	}
}

// WithExhaustiveExpansion expands every action from the environment's finite
// action set instead of sampling branchFactor of them.
func WithExhaustiveExpansion() Option {
	return func(m *MCTS) {
		m.exhaustive = true
	}
}

// WithStochasticOutcomes makes selection re-sample action outcomes through
// the environment instead of descending into the single known child.
func WithStochasticOutcomes() Option {
	return func(m *MCTS) {
		m.deterministic = false
	}
}

func WithEvaluationFn(evaluate world.Evaluate) Option {
	return func(m *MCTS) {
		if evaluate != nil {
			m.evaluate = evaluate
		}
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

// NewMCTS roots a fresh tree at the given observation. The environment and
// both hash adapters are required; the initial state must be hashable.
func NewMCTS(initial world.State, env world.Environment, hashState world.HashState, hashAction world.HashAction, options ...Option) (*MCTS, error) {
	if env == nil || hashState == nil || hashAction == nil {
		panic("environment and hash adapters are required")
	}

	m := &MCTS{ // Default values
		env:           env,
		hashState:     hashState,
		hashAction:    hashAction,
		exploration:   meta.EXPLORATION_K,
		branchFactor:  meta.BRANCH_FACTOR,
		deterministic: true,
		evaluate:      world.EvaluateCoverage,
		metrics:       metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}

	key, err := hashState(initial)
	if err != nil {
		return nil, fmt.Errorf("hashing initial state: %w", err)
	}
	m.root = newDecisionNode(initial, key, nil, false)

	return m, nil
}

// Root exposes the tree root. External readers must not hold it across
// growth passes; the Export snapshot is the cross-thread-safe view.
func (m *MCTS) Root() *DecisionNode {
	return m.root
}

// Exploration returns the UCB exploration constant K.
func (m *MCTS) Exploration() float64 {
	return m.exploration
}

// Learn runs n sequential growth passes. An environment or hashing failure
// aborts the remaining passes; completed passes keep their statistics and
// the tree stays structurally valid.
func (m *MCTS) Learn(n int) (metrics.SearchMetric, error) {
	m.metrics.Start(m.branchFactor, m.exploration)
	for i := 0; i < n; i++ {
		if err := m.grow(); err != nil {
			return m.metrics.Complete(), fmt.Errorf("growth pass %d: %w", i+1, err)
		}
		m.metrics.AddPass()
	}
	return m.metrics.Complete(), nil
}

// grow runs one selection, expansion, evaluation, backpropagation pass.
func (m *MCTS) grow() error {
	node := m.root

	// Selection: descend by UCB until a terminal or unexpanded node
	for !node.Final && len(node.Children) > 0 {
		randomNode := m.selectChild(node)

		var child *DecisionNode
		if m.deterministic {
			// The outcome was already simulated at expansion
			child = randomNode.soleChild()
		} else {
			// Sample an outcome and dedup it onto the tree by state hash
			next, reward, done, err := m.env.Step(node.State, randomNode.Action)
			if err != nil {
				return err
			}
			key, err := m.hashState(next)
			if err != nil {
				return err
			}
			sampled, created := randomNode.addChild(key, newDecisionNode(next, key, randomNode, done))
			if !created {
				m.metrics.AddDedupHit()
			}
			sampled.Reward = reward
			randomNode.Reward = reward
			child = sampled
		}
		node = child
	}

	// Expansion: first visit to a non-terminal node grows its action branches
	if node.Visits == 0 && !node.Final {
		if m.exhaustive {
			actions := m.env.AllActions()
			if len(actions) == 0 {
				return fmt.Errorf("exhaustive expansion: environment has no finite action set")
			}
			for _, action := range actions {
				if err := m.expand(node, action); err != nil {
					return err
				}
			}
		} else {
			for i := 0; i < m.branchFactor; i++ {
				if err := m.expand(node, m.env.SampleAction()); err != nil {
					return err
				}
			}
		}
	}

	// The pass ends on this node: count the visit before evaluating so the
	// first visit triggers exactly one expansion and evaluation
	node.Visits++

	// Evaluation: closed-form heuristic instead of a random rollout
	node.EvaluationReward = m.evaluate(node.State)

	// Backpropagation: fold each ancestor's cached transition reward into
	// the running total on the way up
	running := node.EvaluationReward
	for !node.Root {
		randomNode := node.Parent
		running += randomNode.Reward
		randomNode.CumulativeReward += running
		randomNode.Visits++
		node = randomNode.Parent
		node.Visits++
	}

	return nil
}

// expand grows one action branch: action node, one environment step, and the
// resulting decision node deduplicated by state hash. Nothing links into the
// tree until the step and both hashes succeed, so a failed pass cannot leave
// an action node without its outcome.
func (m *MCTS) expand(node *DecisionNode, action world.Action) error {
	actionKey, err := m.hashAction(action)
	if err != nil {
		return err
	}
	next, reward, done, err := m.env.Step(node.State, action)
	if err != nil {
		return err
	}
	stateKey, err := m.hashState(next)
	if err != nil {
		return err
	}

	randomNode, _ := node.addChild(actionKey, newRandomNode(action, actionKey, node))
	child, created := randomNode.addChild(stateKey, newDecisionNode(next, stateKey, randomNode, done))
	if !created {
		m.metrics.AddDedupHit()
	}
	child.Reward = reward
	randomNode.Reward = reward

	m.metrics.AddExpansion()
	return nil
}

// selectChild picks the action branch maximizing UCB1. Unvisited children
// score +Inf so every expanded action is tried once before exploitation.
// Ties break to the lowest action key for reproducibility.
func (m *MCTS) selectChild(node *DecisionNode) *RandomNode {
	lnVisits := math.Log(float64(node.Visits))

	var best *RandomNode
	bestScore := math.Inf(-1)
	for key, child := range node.Children {
		score := ucb1(child.CumulativeReward, child.Visits, m.exploration, lnVisits)
		if best == nil || score > bestScore || (score == bestScore && key < best.Key) {
			best = child
			bestScore = score
		}
	}
	return best
}

// BestAction returns the root action with the highest mean reward. It fails
// if the root has no children or any child was never visited; the caller
// must run at least one growth pass per expanded action first. Ties break to
// the lowest action key.
func (m *MCTS) BestAction() (world.Action, error) {
	if len(m.root.Children) == 0 {
		return nil, ErrNoActions
	}

	var best *RandomNode
	bestMean := math.Inf(-1)
	for key, child := range m.root.Children {
		if child.Visits == 0 {
			return nil, fmt.Errorf("%w: action key %d", ErrUnvisitedChild, key)
		}
		mean := child.MeanReward()
		if best == nil || mean > bestMean || (mean == bestMean && key < best.Key) {
			best = child
			bestMean = mean
		}
	}
	return best.Action, nil
}
