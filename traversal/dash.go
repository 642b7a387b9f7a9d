package traversal

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/temporaldash/common"
)

const (
	dashRampUpEnd   = 0.2
	dashRampDownBeg = 0.8
)

// DashStart dashes along the current movement input, or along the facing
// direction when there is none.
func (c *Controller) DashStart() {
	c.Dash(mgl64.Vec3{})
}

// Dash starts a dash toward dir. It is a no-op while dashing, while the
// cooldown runs, while another modifier is active, or without an
// integrator.
func (c *Controller) Dash(dir mgl64.Vec3) {
	if c == nil || c.integ == nil {
		return
	}
	if c.state.Active == ModifierDash || c.dashOnCooldown {
		return
	}
	if c.state.Active != ModifierNone {
		return
	}

	d := c.dashDirection(dir)
	duration := c.tuning.DashDuration
	c.dash = dashRun{
		direction: d,
		duration:  duration,
		target:    d.Mul(c.tuning.DashDistance / duration),
	}

	c.integ.SetGroundFriction(0)
	c.integ.SetBrakingDeceleration(0)
	c.integ.SetGravityScale(0)

	c.startDashCooldown()
	c.setActive(ModifierDash)
	c.log.Debug("dash started", "direction", d, "speed", c.tuning.DashDistance/duration)
}

// dashDirection picks the first candidate with a usable horizontal part.
// World forward terminates the chain so the result is never zero.
func (c *Controller) dashDirection(requested mgl64.Vec3) mgl64.Vec3 {
	candidates := [...]mgl64.Vec3{
		requested,
		c.MovementInputVector(),
		c.Facing().Forward(),
		common.Forward,
	}
	for _, cand := range candidates {
		h := common.Horizontal(cand)
		if !common.NearlyZero(h) {
			return h.Normalize()
		}
	}
	return common.Forward
}

func (c *Controller) startDashCooldown() {
	if c.tuning.DashCooldown <= 0 {
		return
	}
	c.cooldownGen++
	gen := c.cooldownGen
	c.dashOnCooldown = true

	h := TimerHandle{Owner: c, Name: "dash_cooldown"}
	current := func() bool { return c.cooldownGen == gen }
	expire := func() {
		if current() {
			c.dashOnCooldown = false
		}
	}
	if q, ok := c.timers.(*TaskQueue); ok {
		q.Schedule(h, c.tuning.DashCooldown, expire, current)
		return
	}
	c.timers.SetTimer(h, c.tuning.DashCooldown, expire)
}

// dashPhaseScale maps run progress to a fraction of the target speed:
// ramp up over the first fifth, cruise, then ramp down over the last fifth.
func dashPhaseScale(alpha float64) float64 {
	alpha = common.Clamp(alpha, 0, 1)
	switch {
	case alpha < dashRampUpEnd:
		return alpha / dashRampUpEnd
	case alpha < dashRampDownBeg:
		return 1
	default:
		return (1 - alpha) / (1 - dashRampDownBeg)
	}
}

func (c *Controller) updateDash(dt float64) {
	run := &c.dash
	run.elapsed += dt
	if run.elapsed >= run.duration-1e-9 {
		c.endDash()
		return
	}

	want := run.target.Mul(dashPhaseScale(run.elapsed / run.duration))
	v := c.integ.Velocity()
	h := common.VInterpTo(common.Horizontal(v), want, dt, c.tuning.DashInterpSpeed)
	c.integ.SetVelocity(mgl64.Vec3{h.X(), h.Y(), v.Z()})
}

func (c *Controller) endDash() {
	if c.state.Active != ModifierDash {
		return
	}
	c.dash = dashRun{}
	c.setActive(ModifierNone)
	c.restoreDefaults()
}
