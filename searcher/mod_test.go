package searcher

import (
	"fmt"

	"github.com/ALCarroll24/MeasurementLQG/world"
)

// Shared test doubles: a deterministic environment over integer-labelled
// states whose transitions follow next = 2*id + action + 1, so every
// root-to-node path gets a distinct state label.

type mockState struct {
	id   int
	step int
}

type mockAction struct {
	id int
}

func hashMockState(s world.State) (world.StateKey, error) {
	ms, ok := s.(mockState)
	if !ok {
		return 0, fmt.Errorf("%w: state type %T", world.ErrUnhashable, s)
	}
	return world.StateKey(ms.id), nil
}

func hashMockAction(a world.Action) (world.ActionKey, error) {
	ma, ok := a.(mockAction)
	if !ok || ma.id < 0 {
		return 0, fmt.Errorf("%w: action %v", world.ErrUnhashable, a)
	}
	return world.ActionKey(ma.id), nil
}

type mockEnv struct {
	rewards map[int]float64            // Reward by action id
	final   func(mockState) bool       // Termination predicate, nil means never
	stepFn  func(mockState, mockAction) (mockState, float64, bool, error)
	stepErr error
	samples []mockAction // SampleAction cycles through these
	next    int
	all     []world.Action
}

func (e *mockEnv) Step(s world.State, a world.Action) (world.State, float64, bool, error) {
	if e.stepErr != nil {
		return nil, 0, false, e.stepErr
	}
	ms := s.(mockState)
	ma := a.(mockAction)
	if e.stepFn != nil {
		return e.stepFn(ms, ma)
	}

	nextState := mockState{id: 2*ms.id + ma.id + 1, step: ms.step + 1}
	done := e.final != nil && e.final(nextState)
	return nextState, e.rewards[ma.id], done, nil
}

func (e *mockEnv) SampleAction() world.Action {
	a := e.samples[e.next%len(e.samples)]
	e.next++
	return a
}

func (e *mockEnv) AllActions() []world.Action {
	return e.all
}

func constantEvaluate(value float64) world.Evaluate {
	return func(world.State) float64 { return value }
}
