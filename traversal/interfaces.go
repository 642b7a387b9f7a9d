package traversal

import "github.com/go-gl/mathgl/mgl64"

// MovementMode mirrors the integrator's locomotion mode.
type MovementMode uint8

const (
	MovementWalking MovementMode = iota
	MovementFalling
	MovementFlying
)

func (m MovementMode) String() string {
	switch m {
	case MovementWalking:
		return "walking"
	case MovementFalling:
		return "falling"
	case MovementFlying:
		return "flying"
	default:
		return "unknown"
	}
}

// Integrator advances the character from its velocity every step and owns
// collision resolution. The controller only reads and writes its state.
type Integrator interface {
	Position() mgl64.Vec3
	Velocity() mgl64.Vec3
	SetVelocity(v mgl64.Vec3)
	MovementMode() MovementMode
	SetMovementMode(m MovementMode)
	SetGravityScale(f float64)
	SetGroundFriction(f float64)
	SetBrakingDeceleration(f float64)
	IsGroundContact() bool
}

// Actor identifies anything a ray can hit. Concrete capabilities are
// discovered through the interfaces below.
type Actor any

// Hit is the nearest blocking surface returned by a ray cast.
type Hit struct {
	Point mgl64.Vec3
	Actor Actor
}

// HitScanner answers synchronous ray queries. ignore is excluded from hits.
type HitScanner interface {
	CastRay(origin, dir mgl64.Vec3, maxRange float64, ignore Actor) (Hit, bool)
}

// Hookable is implemented by actors the hook can latch onto.
type Hookable interface {
	HookPoint() mgl64.Vec3
	CanBeHooked() bool
	OnHooked(by Actor)
	OnHookReleased(by Actor)
}

// Projectile marks actors that are always hookable where they were hit.
type Projectile interface {
	Projectile()
}

// Wall is the outward face of a wall-slide detection volume.
type Wall interface {
	InteractionNormal() mgl64.Vec3
}

// IsHookableTarget reports whether the hook may attach to actor.
func IsHookableTarget(actor Actor) bool {
	if actor == nil {
		return false
	}
	if _, ok := actor.(Projectile); ok {
		return true
	}
	if h, ok := actor.(Hookable); ok {
		return h.CanBeHooked()
	}
	return false
}
