package vmath

import "math"

// Clamp limits v to [lo, hi], NaN collapses to lo
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates between a and b by t without clamping
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// EaseInOutQuad maps linear progress t in [0,1] onto a quadratic in/out curve
// Symmetric about t=0.5: f(t) + f(1-t) = 1
func EaseInOutQuad(t float64) float64 {
	t = Clamp(t, 0, 1)
	if t < 0.5 {
		return 2 * t * t
	}
	u := -2*t + 2
	return 1 - u*u/2
}
