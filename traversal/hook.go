package traversal

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/temporaldash/common"
)

// HookStart fires the hook along the view direction. Nothing happens if
// already hooked, while dashing, without a ray scanner, or when the ray
// misses or hits something that cannot be hooked. An active wall slide is
// ended by a successful attach.
func (c *Controller) HookStart() {
	if c == nil || c.integ == nil || c.scanner == nil {
		return
	}
	if c.state.Active == ModifierHook || c.state.Active == ModifierDash {
		return
	}

	origin := c.integ.Position().Add(common.Up.Mul(c.tuning.EyeHeight))
	hit, ok := c.scanner.CastRay(origin, c.view.Forward(), c.tuning.HookMaxRange, c.self)
	if !ok || !IsHookableTarget(hit.Actor) {
		return
	}

	anchor := hit.Point
	target, _ := hit.Actor.(Hookable)
	if _, isProjectile := hit.Actor.(Projectile); !isProjectile && target != nil {
		anchor = target.HookPoint()
	}

	if c.state.Active == ModifierWallSlide {
		c.StopWallSliding()
	}

	grounded := c.integ.IsGroundContact()
	c.hook = hookLink{
		anchor:        anchor,
		maxRopeLength: anchor.Sub(c.integ.Position()).Len(),
		target:        target,
		tuning:        c.tuning,
	}

	c.integ.SetMovementMode(MovementFlying)
	c.integ.SetGravityScale(c.tuning.HookGravityScale)
	c.integ.SetGroundFriction(0)
	c.integ.SetBrakingDeceleration(0)
	if grounded && c.tuning.HookGroundLaunch > 0 {
		c.launch(common.Up.Mul(c.tuning.HookGroundLaunch), false, false)
	}

	c.setActive(ModifierHook)
	c.log.Debug("hook attached", "anchor", anchor, "rope", c.hook.maxRopeLength)
	if target != nil {
		target.OnHooked(c.self)
	}
}

// HookEnd releases the hook. Safe to call when not hooked.
func (c *Controller) HookEnd() {
	if c == nil || c.state.Active != ModifierHook {
		return
	}
	target := c.hook.target
	c.hook = hookLink{}
	c.setActive(ModifierNone)

	c.restoreDefaults()
	if c.integ != nil {
		c.integ.SetMovementMode(MovementWalking)
	}
	c.log.Debug("hook released")
	if target != nil {
		target.OnHookReleased(c.self)
	}
}

func (c *Controller) updateHook(dt float64) {
	toAnchor := c.hook.anchor.Sub(c.integ.Position())
	dist := toAnchor.Len()
	if dist < c.hook.tuning.HookMinDetachDistance {
		c.HookEnd()
		return
	}
	c.integ.SetVelocity(shapeHookVelocity(c.integ.Velocity(), toAnchor, c.hook.maxRopeLength, c.MovementInputVector(), c.hook.tuning, dt))
}

// shapeHookVelocity splits v into the part along the rope and the part
// across it. Outward speed is dropped past the rope length, the pull is
// added along the rope, steering is added across it and the result is
// clamped to the hook's top speed.
func shapeHookVelocity(v, toAnchor mgl64.Vec3, maxRope float64, steer mgl64.Vec3, t Tuning, dt float64) mgl64.Vec3 {
	dist := toAnchor.Len()
	if dist == 0 {
		return common.ClampMagnitude(v, t.HookMaxVelocity)
	}
	dir := toAnchor.Mul(1 / dist)

	along := v.Dot(dir)
	across := v.Sub(dir.Mul(along))

	if dist > maxRope && along < 0 {
		along = 0
	}
	along += t.HookPullStrength * dt

	// keep steering off the rope axis so it cannot stretch the rope
	steer = common.PlaneProject(steer, dir)
	across = across.Add(steer.Mul(t.HookSteeringInfluence * t.HookSteeringGain * dt))

	return common.ClampMagnitude(dir.Mul(along).Add(across), t.HookMaxVelocity)
}
