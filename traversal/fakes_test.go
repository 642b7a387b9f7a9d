package traversal

import (
	"github.com/go-gl/mathgl/mgl64"
)

type fakeIntegrator struct {
	pos      mgl64.Vec3
	vel      mgl64.Vec3
	mode     MovementMode
	gravity  float64
	friction float64
	braking  float64
	grounded bool
}

func newGroundedIntegrator() *fakeIntegrator {
	return &fakeIntegrator{mode: MovementWalking, gravity: 1, friction: 8, braking: 2000, grounded: true}
}

func newAirborneIntegrator() *fakeIntegrator {
	return &fakeIntegrator{mode: MovementFalling, gravity: 1, friction: 8, braking: 2000}
}

func (f *fakeIntegrator) Position() mgl64.Vec3             { return f.pos }
func (f *fakeIntegrator) Velocity() mgl64.Vec3             { return f.vel }
func (f *fakeIntegrator) SetVelocity(v mgl64.Vec3)         { f.vel = v }
func (f *fakeIntegrator) MovementMode() MovementMode       { return f.mode }
func (f *fakeIntegrator) SetMovementMode(m MovementMode)   { f.mode = m }
func (f *fakeIntegrator) SetGravityScale(v float64)        { f.gravity = v }
func (f *fakeIntegrator) SetGroundFriction(v float64)      { f.friction = v }
func (f *fakeIntegrator) SetBrakingDeceleration(v float64) { f.braking = v }
func (f *fakeIntegrator) IsGroundContact() bool            { return f.grounded }

// step moves the body by its velocity with no collision or gravity.
func (f *fakeIntegrator) step(dt float64) {
	f.pos = f.pos.Add(f.vel.Mul(dt))
}

type fakeScanner struct {
	hit   Hit
	ok    bool
	casts int

	lastOrigin mgl64.Vec3
	lastDir    mgl64.Vec3
	lastIgnore Actor
}

func (s *fakeScanner) CastRay(origin, dir mgl64.Vec3, maxRange float64, ignore Actor) (Hit, bool) {
	s.casts++
	s.lastOrigin, s.lastDir, s.lastIgnore = origin, dir, ignore
	return s.hit, s.ok
}

type fakeHookable struct {
	point    mgl64.Vec3
	enabled  bool
	hooked   int
	released int
	by       Actor
}

func (h *fakeHookable) HookPoint() mgl64.Vec3 { return h.point }
func (h *fakeHookable) CanBeHooked() bool     { return h.enabled }
func (h *fakeHookable) OnHooked(by Actor) {
	h.hooked++
	h.by = by
}
func (h *fakeHookable) OnHookReleased(by Actor) { h.released++ }

type fakeProjectile struct{}

func (fakeProjectile) Projectile() {}

type fakeWall struct {
	normal mgl64.Vec3
}

func (w *fakeWall) InteractionNormal() mgl64.Vec3 { return w.normal }

func vecNear(a, b mgl64.Vec3, tol float64) bool {
	return a.Sub(b).Len() <= tol
}

func near(a, b, tol float64) bool {
	d := a - b
	return d <= tol && d >= -tol
}
