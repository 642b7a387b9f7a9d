package arena

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/temporaldash/traversal"
)

// DefaultHalfExtents is the player's collision box: a 42 unit radius and
// 96 unit half height, centered on the body position.
var DefaultHalfExtents = mgl64.Vec3{42, 42, 96}

// Body is a kinematic character body. It implements traversal.Integrator
// so a controller can shape its velocity directly; World.Step integrates it.
type Body struct {
	Pos         mgl64.Vec3
	Vel         mgl64.Vec3
	Mode        traversal.MovementMode
	HalfExtents mgl64.Vec3

	GravityScale        float64
	GroundFriction      float64
	BrakingDeceleration float64
	Grounded            bool
}

// NewBody returns a walking body at pos using the tuning's default
// friction, braking and gravity.
func NewBody(pos mgl64.Vec3, t traversal.Tuning) *Body {
	return &Body{
		Pos:                 pos,
		Mode:                traversal.MovementFalling,
		HalfExtents:         DefaultHalfExtents,
		GravityScale:        t.DefaultGravityScale,
		GroundFriction:      t.DefaultGroundFriction,
		BrakingDeceleration: t.DefaultBrakingDeceleration,
	}
}

// Bounds is the body's collision box.
func (b *Body) Bounds() Box {
	if b == nil {
		return Box{}
	}
	return BoxAt(b.Pos, b.HalfExtents)
}

func (b *Body) Position() mgl64.Vec3 {
	if b == nil {
		return mgl64.Vec3{}
	}
	return b.Pos
}

func (b *Body) Velocity() mgl64.Vec3 {
	if b == nil {
		return mgl64.Vec3{}
	}
	return b.Vel
}

func (b *Body) SetVelocity(v mgl64.Vec3) {
	if b == nil {
		return
	}
	b.Vel = v
}

func (b *Body) MovementMode() traversal.MovementMode {
	if b == nil {
		return traversal.MovementFalling
	}
	return b.Mode
}

// SetMovementMode switches modes. Walking without ground contact becomes
// falling right away.
func (b *Body) SetMovementMode(m traversal.MovementMode) {
	if b == nil {
		return
	}
	if m == traversal.MovementWalking && !b.Grounded {
		m = traversal.MovementFalling
	}
	b.Mode = m
}

func (b *Body) SetGravityScale(f float64) {
	if b != nil {
		b.GravityScale = f
	}
}

func (b *Body) SetGroundFriction(f float64) {
	if b != nil {
		b.GroundFriction = f
	}
}

func (b *Body) SetBrakingDeceleration(f float64) {
	if b != nil {
		b.BrakingDeceleration = f
	}
}

func (b *Body) IsGroundContact() bool {
	return b != nil && b.Grounded
}
