// meta/meta.go
package meta

import "math"

// EXPLORATION_K defines the UCB exploration constant.
var EXPLORATION_K = math.Pow(0.3, 5)

// LEARN_ITERATIONS defines the number of tree growth passes per planning cycle.
const LEARN_ITERATIONS = 100

// BRANCH_FACTOR defines the number of actions sampled on first visit to a node.
const BRANCH_FACTOR = 2

// HORIZON defines the length of the planning horizon.
const HORIZON = 30

// FINAL_COV_TRACE defines the covariance trace below which planning terminates.
const FINAL_COV_TRACE = 0.1

// EVAL_ALPHA and EVAL_BETA weight distance against bearing in the evaluation
// heuristic. They must sum to 1.
const (
	EVAL_ALPHA = 0.5
	EVAL_BETA  = 0.5
)

// EVAL_MULTIPLIER scales the evaluation heuristic output.
const EVAL_MULTIPLIER = 1.0

// MAX_SQUARED_DISTANCE bounds the squared corner distance normalization.
const MAX_SQUARED_DISTANCE = 2000.0

// VELOCITY_OPTIONS and STEERING_OPTIONS define the discrete action grid.
const (
	VELOCITY_OPTIONS = 5
	STEERING_OPTIONS = 5
)

// UPDATE_RATE defines the control loop frequency in Hz.
const UPDATE_RATE = 20.0
