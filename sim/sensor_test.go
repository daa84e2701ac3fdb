package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ALCarroll24/MeasurementLQG/world"
)

func TestSensorVisibleCorners(t *testing.T) {
	sensor := Sensor{MaxRange: 20, MaxBearing: math.Pi / 4}
	corners := [][2]float64{
		{10, 0},  // Ahead, in range
		{100, 0}, // Ahead, out of range
		{-10, 0}, // Behind
		{10, 10}, // At the 45 degree cone edge
	}

	agent := world.AgentState{X: 0, Y: 0, Yaw: 0}
	visible := sensor.VisibleCorners(agent, corners)

	require.Contains(t, visible, 0, "Corner ahead within range should be visible")
	require.NotContains(t, visible, 1, "Corner beyond max range should be hidden")
	require.NotContains(t, visible, 2, "Corner behind the agent should be hidden")
	require.Contains(t, visible, 3, "Corner on the cone edge should be visible")

	t.Run("rotating away hides the target", func(t *testing.T) {
		turned := world.AgentState{X: 0, Y: 0, Yaw: math.Pi}
		require.NotContains(t, sensor.VisibleCorners(turned, corners), 0)
	})
}
