package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAngle(t *testing.T) {
	require.InDelta(t, 0, WrapAngle(2*math.Pi), 1e-12)
	require.InDelta(t, -math.Pi, WrapAngle(math.Pi), 1e-12)
	require.InDelta(t, -math.Pi/2, WrapAngle(3*math.Pi/2), 1e-12)
	require.InDelta(t, 0.5, WrapAngle(0.5), 1e-12)
}

func TestSaturate(t *testing.T) {
	require.Equal(t, 10.0, Saturate(15, 10))
	require.Equal(t, -10.0, Saturate(-15, 10))
	require.Equal(t, 5.0, Saturate(5, 10))
}

func TestMinMaxNormalize(t *testing.T) {
	require.InDelta(t, 0.5, MinMaxNormalize(5, 0, 10), 1e-12)
	require.Equal(t, 0.0, MinMaxNormalize(-1, 0, 10), "Values below the bounds clamp to 0")
	require.Equal(t, 1.0, MinMaxNormalize(11, 0, 10), "Values above the bounds clamp to 1")
	require.Panics(t, func() { MinMaxNormalize(0, 5, 5) })
}

func TestLinspace(t *testing.T) {
	require.Equal(t, []float64{0, 2.5, 5, 7.5, 10}, Linspace(0, 10, 5))
	require.Equal(t, []float64{3}, Linspace(3, 7, 1))
}

func TestFindIndex(t *testing.T) {
	require.Equal(t, 1, FindIndex([]int{4, 7, 9}, 7))
	require.Equal(t, -1, FindIndex([]int{4, 7, 9}, 1))
}
