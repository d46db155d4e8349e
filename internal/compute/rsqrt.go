package compute

import "math"

// InvSqrt computes 1/sqrt(x) for positive x. The force kernels take it
// as a parameter so the exact and fast-approximate variants can be
// swapped without touching the accumulation logic.
type InvSqrt func(x float32) float32

// ExactInvSqrt rounds through float64, matching library precision.
func ExactInvSqrt(x float32) float32 {
	return float32(1.0 / math.Sqrt(float64(x)))
}

// FastInvSqrt is the float32 bit-shift approximation with one
// Newton-Raphson refinement. Relative error stays below about 2e-3,
// which the end-to-end accuracy check tolerates.
func FastInvSqrt(x float32) float32 {
	i := math.Float32bits(x)
	i = 0x5f3759df - i>>1
	y := math.Float32frombits(i)
	return y * (1.5 - 0.5*x*y*y)
}
