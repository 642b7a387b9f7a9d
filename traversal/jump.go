package traversal

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/temporaldash/common"
)

// JumpStart handles a jump press. While wall sliding it becomes a wall
// jump. On the ground it is a normal jump. In the air it spends one jump
// from the budget, or does nothing once the budget is gone.
func (c *Controller) JumpStart() {
	if c == nil || c.integ == nil {
		return
	}

	switch {
	case c.state.Active == ModifierWallSlide:
		c.wallJump()
	case c.integ.IsGroundContact():
		c.launch(mgl64.Vec3{0, 0, c.tuning.JumpSpeed}, false, true)
		c.state.JumpCount = 1
		// the ground flag lags until the next integration step
		c.wasGrounded = true
		c.jumpHeld = true
		c.jumpHoldLeft = c.tuning.JumpHoldTime
		c.log.Debug("jump", "count", c.state.JumpCount)
	case c.state.JumpCount < c.tuning.MaxJumpCount:
		v := c.integ.Velocity()
		c.integ.SetVelocity(mgl64.Vec3{v.X(), v.Y(), 0})
		c.launch(common.Up.Mul(c.tuning.SecondJumpStrength), false, true)
		c.state.JumpCount++
		c.jumpHeld = false
		c.log.Debug("air jump", "count", c.state.JumpCount)
	}
}

// JumpEnd handles the jump release and cuts the hold boost short.
func (c *Controller) JumpEnd() {
	if c == nil {
		return
	}
	c.jumpHeld = false
	c.jumpHoldLeft = 0
}

// Landed resets the jump budget. Update calls it on the air to ground
// edge; hosts with their own landing events may call it directly.
func (c *Controller) Landed() {
	if c == nil {
		return
	}
	if c.state.JumpCount != 0 {
		c.log.Debug("landed", "jumps", c.state.JumpCount)
	}
	c.state.JumpCount = 0
	c.jumpHeld = false
	c.jumpHoldLeft = 0
}

func (c *Controller) detectLanding() {
	grounded := c.integ.IsGroundContact()
	if grounded && !c.wasGrounded {
		c.Landed()
	}
	c.wasGrounded = grounded
}

func (c *Controller) updateJumpHold(dt float64) {
	if !c.jumpHeld || c.jumpHoldLeft <= 0 {
		return
	}
	step := dt
	if step > c.jumpHoldLeft {
		step = c.jumpHoldLeft
	}
	c.jumpHoldLeft -= step
	v := c.integ.Velocity()
	if v.Z() <= 0 {
		c.jumpHeld = false
		return
	}
	v[2] += c.tuning.JumpHoldBoost * step
	c.integ.SetVelocity(v)
}
