package sim

import (
	"math"

	"github.com/ALCarroll24/MeasurementLQG/utils"
	"github.com/ALCarroll24/MeasurementLQG/world"
)

// Vehicle is a bicycle-model kinematic agent.
type Vehicle struct {
	Length      float64
	MaxVelocity float64
	MaxSteering float64 // radians
}

// Step integrates the pose one control period forward. Inputs saturate at
// the vehicle limits and the heading wraps into [-pi, pi).
func (v Vehicle) Step(s world.AgentState, c world.Control, dt float64) world.AgentState {
	velocity := utils.Saturate(c.Velocity, v.MaxVelocity)
	steering := utils.Saturate(c.Steering, v.MaxSteering)

	s.X += velocity * math.Cos(s.Yaw) * dt
	s.Y += velocity * math.Sin(s.Yaw) * dt
	s.Yaw = utils.WrapAngle(s.Yaw + (velocity/v.Length)*math.Tan(steering)*dt)
	return s
}
