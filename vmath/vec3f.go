package vmath

import (
	"math"
)

// Vec3F is a float64 3D vector in table space
// X and Z span the table plane, Y is height above the table surface
type Vec3F struct {
	X, Y, Z float64
}

func V3FAdd(a, b Vec3F) Vec3F {
	return Vec3F{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func V3FScale(v Vec3F, s float64) Vec3F {
	return Vec3F{v.X * s, v.Y * s, v.Z * s}
}

func V3FMagSq(v Vec3F) float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func V3FMag(v Vec3F) float64 {
	return math.Sqrt(V3FMagSq(v))
}

// V3FWithY returns v with its height replaced
func V3FWithY(v Vec3F, y float64) Vec3F {
	return Vec3F{v.X, y, v.Z}
}

// V3FDampDt applies frame-rate independent exponential damping: v * e^(-rate*dt)
func V3FDampDt(v Vec3F, rate, dt float64) Vec3F {
	if rate <= 0 || dt <= 0 {
		return v
	}
	return V3FScale(v, math.Exp(-rate*dt))
}

// ClampMagnitude2D limits the length of a table-plane vector (x, z)
// Zero-length input is returned unchanged
func ClampMagnitude2D(x, z, maxMag float64) (float64, float64) {
	speed := math.Sqrt(x*x + z*z)
	if speed <= maxMag || speed == 0 {
		return x, z
	}
	scale := maxMag / speed
	return x * scale, z * scale
}
