package world

import (
	"math"

	"github.com/ALCarroll24/MeasurementLQG/meta"
	"github.com/ALCarroll24/MeasurementLQG/utils"
)

// NewCoverageEvaluate builds the closed-form evaluation heuristic: a convex
// combination (alpha + beta = 1) of covariance-weighted squared distance and
// relative bearing from the agent to each estimated corner. Corners with high
// uncertainty dominate the score, so states that are close to and facing the
// uncertain corners evaluate higher. The result is negated and scaled by
// multiplier: distance and misalignment are punished.
func NewCoverageEvaluate(alpha, beta, multiplier float64) Evaluate {
	if math.Abs(alpha+beta-1) > 1e-9 {
		panic("evaluation weights alpha and beta must sum to 1")
	}

	return func(s State) float64 {
		obs, ok := s.(Observation)
		if !ok {
			panic("unexpected state type")
		}

		cumDist := 0.0
		cumBearing := 0.0
		for i := 0; i < NumCorners; i++ {
			cx, cy := obs.Corner(i)
			dx := cx - obs.Agent.X
			dy := cy - obs.Agent.Y

			squaredDist := dx*dx + dy*dy
			bearingDelta := math.Abs(utils.WrapAngle(math.Atan2(dy, dx) - obs.Agent.Yaw))

			normDist := utils.MinMaxNormalize(squaredDist, 0, meta.MAX_SQUARED_DISTANCE)
			normBearing := utils.MinMaxNormalize(bearingDelta, -math.Pi, math.Pi)

			trace := obs.CornerTrace(i)
			cumDist += trace * normDist
			cumBearing += trace * normBearing
		}

		return -multiplier * (alpha*cumDist + beta*cumBearing)
	}
}

// EvaluateCoverage is the default heuristic with the standard weights.
var EvaluateCoverage = NewCoverageEvaluate(meta.EVAL_ALPHA, meta.EVAL_BETA, meta.EVAL_MULTIPLIER)
