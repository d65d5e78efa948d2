package score

// Package score converts between the model's floating point output and the
// scaled integer form the proving engine commits to, and reconciles the two.

import "math"

// DefaultScale is the fixed-point denominator used when the configuration
// does not override it. Engines built against other model versions may use a
// different scale, which is why it is configurable end to end.
const DefaultScale = 1 << 26

// DefaultTolerance bounds the acceptable gap between the normalized committed
// score and the plaintext score.
const DefaultTolerance = 0.005

// ToFloat normalizes a scaled integer score back to the model's float range.
func ToFloat(scaled int64, scale float64) float64 {
	return float64(scaled) / scale
}

// ToScaled encodes a float score as the engine's scaled integer.
func ToScaled(f, scale float64) int64 {
	return int64(math.Round(f * scale))
}
