package searcher

import (
	"github.com/ALCarroll24/MeasurementLQG/world"
)

// DecisionNode represents a state at which an action must be chosen. Its
// children are the actions tried from this state, keyed by action hash.
type DecisionNode struct {
	State world.State
	Key   world.StateKey

	Visits           int
	Reward           float64 // Immediate reward attributed on creation
	EvaluationReward float64 // Cached heuristic value

	Final bool
	Root  bool

	Children map[world.ActionKey]*RandomNode
	Parent   *RandomNode // nil iff Root
}

func newDecisionNode(state world.State, key world.StateKey, parent *RandomNode, final bool) *DecisionNode {
	return &DecisionNode{
		State:    state,
		Key:      key,
		Final:    final,
		Root:     parent == nil,
		Children: make(map[world.ActionKey]*RandomNode),
		Parent:   parent,
	}
}

// addChild links a RandomNode under the given action key. If the key is
// already present the existing child is returned instead: node identity is
// the hash key, never value equality of the action.
func (d *DecisionNode) addChild(key world.ActionKey, child *RandomNode) (*RandomNode, bool) {
	if existing, ok := d.Children[key]; ok {
		return existing, false
	}
	d.Children[key] = child
	return child, true
}

// RandomNode represents a committed action awaiting its outcome. Under a
// deterministic environment it has exactly one child; stochastic outcomes
// accumulate one child per distinct state hash.
type RandomNode struct {
	Action world.Action
	Key    world.ActionKey

	Visits           int
	CumulativeReward float64 // Running backpropagated sum
	Reward           float64 // Cached transition reward

	Children map[world.StateKey]*DecisionNode
	Parent   *DecisionNode
}

func newRandomNode(action world.Action, key world.ActionKey, parent *DecisionNode) *RandomNode {
	return &RandomNode{
		Action:   action,
		Key:      key,
		Children: make(map[world.StateKey]*DecisionNode),
		Parent:   parent,
	}
}

// addChild links a DecisionNode under the given state key. A freshly
// simulated node whose key is already present is discarded in favor of the
// existing child, enforcing the dedup invariant.
func (r *RandomNode) addChild(key world.StateKey, child *DecisionNode) (*DecisionNode, bool) {
	if existing, ok := r.Children[key]; ok {
		return existing, false
	}
	r.Children[key] = child
	return child, true
}

// soleChild returns the single outcome of a deterministic action.
func (r *RandomNode) soleChild() *DecisionNode {
	for _, child := range r.Children {
		return child
	}
	return nil
}

// MeanReward is the node's current value estimate.
func (r *RandomNode) MeanReward() float64 {
	if r.Visits == 0 {
		panic("cannot compute mean reward: 0 visits")
	}
	return r.CumulativeReward / float64(r.Visits)
}
