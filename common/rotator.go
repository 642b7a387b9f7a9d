package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rotator is an orientation in degrees. Yaw turns about Z, pitch tilts the
// forward vector up, roll only affects the view.
type Rotator struct {
	Pitch float64
	Yaw   float64
	Roll  float64
}

// Forward returns the unit vector the rotator points along (roll ignored).
func (r Rotator) Forward() mgl64.Vec3 {
	p := mgl64.DegToRad(r.Pitch)
	y := mgl64.DegToRad(r.Yaw)
	cp := math.Cos(p)
	return mgl64.Vec3{cp * math.Cos(y), cp * math.Sin(y), math.Sin(p)}
}

// Right returns the horizontal right vector for the rotator's yaw.
func (r Rotator) Right() mgl64.Vec3 {
	y := mgl64.DegToRad(r.Yaw)
	return mgl64.Vec3{-math.Sin(y), math.Cos(y), 0}
}

// YawOnly returns the rotator with pitch and roll cleared.
func (r Rotator) YawOnly() Rotator {
	return Rotator{Yaw: r.Yaw}
}

// RotatorFromVector returns the pitch/yaw that points along v.
func RotatorFromVector(v mgl64.Vec3) Rotator {
	yaw := mgl64.RadToDeg(math.Atan2(v.Y(), v.X()))
	pitch := mgl64.RadToDeg(math.Atan2(v.Z(), math.Hypot(v.X(), v.Y())))
	return Rotator{Pitch: pitch, Yaw: yaw}
}

// RInterpTo interpolates each axis along the shortest arc.
func RInterpTo(current, target Rotator, dt, speed float64) Rotator {
	if speed <= 0 {
		return target
	}
	alpha := Clamp(dt*speed, 0, 1)
	step := func(c, t float64) float64 {
		d := UnwindDegrees(t - c)
		if math.Abs(d) < 1e-4 {
			return t
		}
		return UnwindDegrees(c + d*alpha)
	}
	return Rotator{
		Pitch: step(current.Pitch, target.Pitch),
		Yaw:   step(current.Yaw, target.Yaw),
		Roll:  step(current.Roll, target.Roll),
	}
}
