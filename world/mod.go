package world

import "errors"

// TODO: interface should be defined in searcher package, any environment that
// aims to be searchable by the MCTS planner should implement this interface
// (i.e. searcher package is standalone, world package imports it, engine
// package imports both)

// State is an opaque planner state. The searcher never inspects it directly;
// it only passes it to the environment, the hash adapter and the evaluator.
type State any

// Action is an opaque control input, keyed for deduplication by HashAction.
type Action any

type StateKey uint64

type ActionKey uint64

// HashState reduces a state to a stable deduplication key. It must be pure:
// equal inputs always produce equal keys, and states the planner must
// distinguish must not collide.
type HashState func(State) (StateKey, error)

// HashAction reduces an action to a stable deduplication key under the same
// contract as HashState.
type HashAction func(Action) (ActionKey, error)

// Environment is the forward model the planner searches over. Step must not
// mutate the environment's own state; it simulates from the given state only.
type Environment interface {
	Step(state State, action Action) (next State, reward float64, done bool, err error)
	SampleAction() Action
	// AllActions returns the finite action set for exhaustive branching,
	// or nil if the action space is not enumerable.
	AllActions() []Action
}

// Evaluate scores a state with a closed-form heuristic. Higher is better.
type Evaluate func(State) float64

// Projector reports a renderable position and time step for a state, used by
// the tree export boundary.
type Projector func(State) (x, y float64, step int)

// ErrUnhashable reports a state or action the hash adapter cannot key.
var ErrUnhashable = errors.New("unhashable value")
