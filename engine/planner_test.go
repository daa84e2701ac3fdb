package engine

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ALCarroll24/MeasurementLQG/meta"
	"github.com/ALCarroll24/MeasurementLQG/searcher"
	"github.com/ALCarroll24/MeasurementLQG/sim"
	"github.com/ALCarroll24/MeasurementLQG/world"
)

func newTestSetup(t *testing.T, hub *Hub) (*sim.Env, *Planner) {
	t.Helper()
	env, err := sim.NewEnv(sim.EnvConfig{
		Agent:   world.AgentState{X: 50, Y: 30, Yaw: math.Pi / 2},
		Corners: [][2]float64{{48, 48}, {52, 48}, {52, 52}, {48, 52}},

		InitialMean:      []float64{50, 50, 50, 50, 50, 50, 50, 50},
		InitialVariance:  8,
		MeasurementNoise: 4,

		Vehicle: sim.Vehicle{Length: 4, MaxVelocity: 10, MaxSteering: math.Pi / 4},
		Sensor:  sim.Sensor{MaxRange: 20, MaxBearing: math.Pi / 4},

		Period:  0.05,
		Horizon: 10,
		Seed:    1,
	})
	require.NoError(t, err)

	planner := NewPlanner(env, Config{
		LearnIterations: 10,
		Exploration:     meta.EXPLORATION_K,
		BranchFactor:    2,
		Evaluate:        world.EvaluateCoverage,
	}, hub)
	return env, planner
}

func TestPlanStep(t *testing.T) {
	hub := NewHub()
	env, planner := newTestSetup(t, hub)

	rootObs := env.Observe()
	rootKey, err := world.HashObservation(rootObs)
	require.NoError(t, err)

	action, _, err := planner.PlanStep()
	require.NoError(t, err)
	require.IsType(t, world.Control{}, action)
	require.Equal(t, 1, planner.Cycle())

	t.Run("publishes a snapshot", func(t *testing.T) {
		snapshot, ok := hub.Latest()
		require.True(t, ok)
		require.NotEmpty(t, snapshot.ID)
		require.Equal(t, 1, snapshot.Cycle)
		require.NotEmpty(t, snapshot.Nodes)
		require.Equal(t, action, snapshot.Decision)
	})

	t.Run("resolves the tree root by hash", func(t *testing.T) {
		view, err := planner.Resolve(rootKey)
		require.NoError(t, err)
		require.Equal(t, [2]float64{50, 30}, view.Position)
		require.Equal(t, 0, view.TimeStep)
		require.Equal(t, 10, view.Visits)
	})

	t.Run("reports unknown hashes", func(t *testing.T) {
		_, err := planner.Resolve(world.StateKey(12345))
		require.ErrorIs(t, err, searcher.ErrNodeNotFound)
	})
}

func TestResolveBeforeFirstCycle(t *testing.T) {
	_, planner := newTestSetup(t, nil)

	_, err := planner.Resolve(world.StateKey(1))
	require.ErrorIs(t, err, searcher.ErrNodeNotFound)
}

func TestSaveTree(t *testing.T) {
	_, planner := newTestSetup(t, nil)

	t.Run("fails before the first cycle", func(t *testing.T) {
		require.Error(t, planner.SaveTree(&bytes.Buffer{}))
	})

	_, _, err := planner.PlanStep()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, planner.SaveTree(&buf))
	require.Contains(t, buf.String(), `"nodes"`)
}

func TestRun(t *testing.T) {
	_, planner := newTestSetup(t, nil)

	completed, err := planner.Run(3)
	require.NoError(t, err)
	require.Equal(t, 3, completed)
	require.Equal(t, 3, planner.Cycle())
}

func TestHubFanOut(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe()

	hub.Publish(Snapshot{ID: "a", Cycle: 1})
	got := <-ch
	require.Equal(t, "a", got.ID)

	t.Run("slow subscribers drop snapshots instead of blocking", func(t *testing.T) {
		hub.Publish(Snapshot{ID: "b", Cycle: 2})
		hub.Publish(Snapshot{ID: "c", Cycle: 3})

		latest, ok := hub.Latest()
		require.True(t, ok)
		require.Equal(t, "c", latest.ID)
	})

	hub.Unsubscribe(ch)
	buffered, open := <-ch // "b" was still buffered when the channel closed
	require.True(t, open)
	require.Equal(t, "b", buffered.ID)
	_, open = <-ch
	require.False(t, open)
}
