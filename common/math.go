package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used for "nearly zero" vector checks.
const Epsilon = 1e-4

var (
	Up      = mgl64.Vec3{0, 0, 1}
	Forward = mgl64.Vec3{1, 0, 0}
)

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FInterpTo moves current toward target at a rate proportional to the
// remaining distance. A non-positive speed snaps to the target.
func FInterpTo(current, target, dt, speed float64) float64 {
	if speed <= 0 {
		return target
	}
	dist := target - current
	if dist*dist < 1e-8 {
		return target
	}
	return current + dist*Clamp(dt*speed, 0, 1)
}

// VInterpTo is FInterpTo applied to a whole vector.
func VInterpTo(current, target mgl64.Vec3, dt, speed float64) mgl64.Vec3 {
	if speed <= 0 {
		return target
	}
	dist := target.Sub(current)
	if dist.LenSqr() < 1e-8 {
		return target
	}
	return current.Add(dist.Mul(Clamp(dt*speed, 0, 1)))
}

func NearlyZero(v mgl64.Vec3) bool {
	return v.LenSqr() <= Epsilon*Epsilon
}

// SafeNormal returns v normalized, or the zero vector when v is nearly zero.
func SafeNormal(v mgl64.Vec3) mgl64.Vec3 {
	if NearlyZero(v) {
		return mgl64.Vec3{}
	}
	return v.Normalize()
}

// Horizontal drops the Z component.
func Horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), v.Y(), 0}
}

// PlaneProject removes the component of v along the plane normal n.
func PlaneProject(v, n mgl64.Vec3) mgl64.Vec3 {
	n = SafeNormal(n)
	return v.Sub(n.Mul(v.Dot(n)))
}

// ClampMagnitude scales v down to max length, never up.
func ClampMagnitude(v mgl64.Vec3, max float64) mgl64.Vec3 {
	if max < 0 {
		max = 0
	}
	l := v.Len()
	if l <= max || l == 0 {
		return v
	}
	return v.Mul(max / l)
}

// UnwindDegrees maps an angle into (-180, 180].
func UnwindDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	return a
}
