package sim

import (
	"math"

	"github.com/ALCarroll24/MeasurementLQG/utils"
	"github.com/ALCarroll24/MeasurementLQG/world"
)

// Sensor models the agent's field of view: a corner is observable when it is
// within range and within the bearing cone around the heading.
type Sensor struct {
	MaxRange   float64
	MaxBearing float64 // radians, half-cone
}

// VisibleCorners returns the indices of the corners observable from the
// given pose.
func (s Sensor) VisibleCorners(agent world.AgentState, corners [][2]float64) []int {
	var visible []int
	for i, corner := range corners {
		dx := corner[0] - agent.X
		dy := corner[1] - agent.Y
		if math.Hypot(dx, dy) > s.MaxRange {
			continue
		}
		bearing := utils.WrapAngle(math.Atan2(dy, dx) - agent.Yaw)
		if math.Abs(bearing) > s.MaxBearing {
			continue
		}
		visible = append(visible, i)
	}
	return visible
}
