package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ALCarroll24/MeasurementLQG/world"
)

func TestVehicleStep(t *testing.T) {
	vehicle := Vehicle{Length: 4, MaxVelocity: 10, MaxSteering: math.Pi / 4}

	t.Run("drives straight along the heading", func(t *testing.T) {
		got := vehicle.Step(world.AgentState{X: 0, Y: 0, Yaw: 0}, world.Control{Velocity: 5}, 0.1)

		require.InDelta(t, 0.5, got.X, 1e-12)
		require.InDelta(t, 0, got.Y, 1e-12)
		require.InDelta(t, 0, got.Yaw, 1e-12)
	})

	t.Run("turns under steering", func(t *testing.T) {
		got := vehicle.Step(world.AgentState{}, world.Control{Velocity: 5, Steering: 0.2}, 0.1)

		require.Greater(t, got.Yaw, 0.0)
	})

	t.Run("saturates excessive inputs", func(t *testing.T) {
		capped := vehicle.Step(world.AgentState{}, world.Control{Velocity: 100}, 0.1)
		limit := vehicle.Step(world.AgentState{}, world.Control{Velocity: 10}, 0.1)

		require.InDelta(t, limit.X, capped.X, 1e-12, "Velocity above the limit should clamp")
	})

	t.Run("wraps the heading", func(t *testing.T) {
		got := vehicle.Step(world.AgentState{Yaw: math.Pi - 0.01}, world.Control{Velocity: 10, Steering: 0.7}, 1)

		require.GreaterOrEqual(t, got.Yaw, -math.Pi)
		require.Less(t, got.Yaw, math.Pi)
	})
}
