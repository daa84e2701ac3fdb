package searcher

import (
	"errors"
	"math"
)

var (
	// ErrNoActions reports best-action extraction on a root with no
	// expanded children, i.e. before any growth pass ran.
	ErrNoActions = errors.New("root has no expanded actions")

	// ErrUnvisitedChild reports a mean-reward computation on a child with
	// zero visits. The caller did not run enough growth passes.
	ErrUnvisitedChild = errors.New("cannot compute mean reward of unvisited child")

	// ErrNodeNotFound reports a tree lookup that matched no node.
	ErrNodeNotFound = errors.New("node not found")
)

func ucb1(cumulative float64, visits int, k, lnParentVisits float64) float64 {
	// Prioritize unexplored nodes
	if visits == 0 {
		return math.Inf(1)
	}

	return cumulative/float64(visits) + k*math.Sqrt(lnParentVisits/float64(visits))
}
