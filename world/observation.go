package world

import (
	"gonum.org/v1/gonum/mat"
)

// AgentState is the vehicle pose: planar position and heading in radians.
type AgentState struct {
	X   float64
	Y   float64
	Yaw float64
}

// Control is the vehicle input: forward velocity and steering angle.
type Control struct {
	Velocity float64
	Steering float64
}

// Observation is the full planner state: the agent pose, the estimator's
// corner mean and covariance, and the index into the planning horizon.
type Observation struct {
	Agent   AgentState
	Mean    *mat.VecDense
	Cov     *mat.SymDense
	Horizon int
}

// NumCorners is the number of object corners tracked by the estimator. The
// mean vector interleaves their coordinates as (x0, y0, x1, y1, ...).
const NumCorners = 4

// Corner returns the i-th estimated corner position.
func (o Observation) Corner(i int) (x, y float64) {
	return o.Mean.AtVec(2 * i), o.Mean.AtVec(2*i + 1)
}

// CornerTrace returns the covariance trace attributed to the i-th corner,
// the sum of its two diagonal variance entries.
func (o Observation) CornerTrace(i int) float64 {
	return o.Cov.At(2*i, 2*i) + o.Cov.At(2*i+1, 2*i+1)
}

// Trace returns the full covariance trace, the planner's uncertainty measure.
func (o Observation) Trace() float64 {
	return mat.Trace(o.Cov)
}

// Clone deep-copies the observation so forward simulation never aliases the
// estimator matrices of its parent state.
func (o Observation) Clone() Observation {
	mean := mat.NewVecDense(o.Mean.Len(), nil)
	mean.CopyVec(o.Mean)
	cov := mat.NewSymDense(o.Cov.SymmetricDim(), nil)
	cov.CopySym(o.Cov)
	return Observation{Agent: o.Agent, Mean: mean, Cov: cov, Horizon: o.Horizon}
}

// ProjectObservation adapts Observation to the export boundary's Projector.
func ProjectObservation(s State) (x, y float64, step int) {
	obs, ok := s.(Observation)
	if !ok {
		return 0, 0, 0
	}
	return obs.Agent.X, obs.Agent.Y, obs.Horizon
}
