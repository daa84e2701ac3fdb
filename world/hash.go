package world

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
)

// Quantization resolutions for the dedup keys. Coarse enough that a repeated
// deterministic transition lands on the same key, fine enough that poses the
// planner must distinguish do not merge.
const (
	positionResolution = 0.1  // meters
	angleResolution    = 0.01 // radians
	controlResolution  = 0.01
)

func quantize(value, resolution float64) int64 {
	return int64(math.Round(value / resolution))
}

// HashObservation keys an Observation by its quantized agent pose, horizon
// index and estimator mean.
func HashObservation(s State) (StateKey, error) {
	obs, ok := s.(Observation)
	if !ok {
		return 0, fmt.Errorf("%w: state type %T", ErrUnhashable, s)
	}

	hasher := fnv.New64a()

	// Hash agent pose
	binary.Write(hasher, binary.LittleEndian, quantize(obs.Agent.X, positionResolution))
	binary.Write(hasher, binary.LittleEndian, quantize(obs.Agent.Y, positionResolution))
	binary.Write(hasher, binary.LittleEndian, quantize(obs.Agent.Yaw, angleResolution))

	// Hash horizon index
	binary.Write(hasher, binary.LittleEndian, int64(obs.Horizon))

	// Hash estimator mean
	for i := 0; i < obs.Mean.Len(); i++ {
		binary.Write(hasher, binary.LittleEndian, quantize(obs.Mean.AtVec(i), positionResolution))
	}

	return StateKey(hasher.Sum64()), nil
}

// HashControl keys a Control by its quantized velocity and steering angle.
func HashControl(a Action) (ActionKey, error) {
	control, ok := a.(Control)
	if !ok {
		return 0, fmt.Errorf("%w: action type %T", ErrUnhashable, a)
	}

	hasher := fnv.New64a()
	binary.Write(hasher, binary.LittleEndian, quantize(control.Velocity, controlResolution))
	binary.Write(hasher, binary.LittleEndian, quantize(control.Steering, controlResolution))

	return ActionKey(hasher.Sum64()), nil
}
