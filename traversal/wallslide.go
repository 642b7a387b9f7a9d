package traversal

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/temporaldash/common"
)

// StartWallSliding begins sliding along wall. It does nothing for a nil
// wall, a wall without a usable normal, or while any modifier is active.
func (c *Controller) StartWallSliding(wall Wall) {
	if c == nil || c.integ == nil || wall == nil {
		return
	}
	if c.state.Active != ModifierNone {
		return
	}
	n := common.SafeNormal(wall.InteractionNormal())
	if common.NearlyZero(n) {
		return
	}

	c.wall = wallContact{wall: wall, normal: n, tuning: c.tuning}
	c.setActive(ModifierWallSlide)

	c.integ.SetMovementMode(MovementFlying)
	v := c.integ.Velocity()
	c.integ.SetVelocity(mgl64.Vec3{v.X(), v.Y(), 0})
}

// StopWallSliding ends any wall slide. Safe to call when not sliding.
func (c *Controller) StopWallSliding() {
	if c == nil || c.state.Active != ModifierWallSlide {
		return
	}
	c.wall = wallContact{}
	c.setActive(ModifierNone)
	if c.integ != nil {
		c.integ.SetMovementMode(MovementFalling)
	}
}

// StopWallSlidingOn ends the slide only if it is on wall. Volume exit
// events use it so leaving one wall does not cancel a slide on another.
func (c *Controller) StopWallSlidingOn(wall Wall) {
	if c == nil || c.state.Active != ModifierWallSlide || c.wall.wall != wall {
		return
	}
	c.StopWallSliding()
}

func (c *Controller) updateWallSlide(dt float64) {
	n, t := c.wall.normal, c.wall.tuning
	fwd := c.Facing().Forward()

	run := common.SafeNormal(common.PlaneProject(fwd, n))
	if common.NearlyZero(run) {
		run = c.wall.runDirection
	}
	if common.NearlyZero(run) {
		run = common.SafeNormal(common.Up.Cross(n))
	}
	c.wall.runDirection = run

	v := run.Mul(t.WallRunSpeed)
	v[2] -= t.WallGravity
	v = v.Add(n.Mul(-t.WallStickStrength * dt))
	c.integ.SetVelocity(v)

	target := common.RotatorFromVector(run)
	target.Pitch = 0
	turned := common.RInterpTo(common.Rotator{Yaw: c.view.Yaw}, target, dt, t.WallRotateSpeed)
	c.view.Yaw = turned.Yaw

	c.wall.targetRoll = wallRollFor(c.Facing().Forward(), n, t.WallRunCameraRoll)
}

// wallRollFor returns the camera roll for sliding with the given forward
// vector along a wall with normal n. The sign flips with the wall side.
func wallRollFor(fwd, n mgl64.Vec3, roll float64) float64 {
	wallRight := common.Up.Cross(n)
	if fwd.Dot(wallRight) > 0 {
		return -roll
	}
	return roll
}

// wallJump pushes away from the wall and up. The push away grows with the
// camera roll so a steeper tilt throws the character further out.
func (c *Controller) wallJump() {
	n, t := c.wall.normal, c.wall.tuning
	roll := c.wall.targetRoll
	if roll == 0 {
		roll = wallRollFor(c.Facing().Forward(), n, t.WallRunCameraRoll)
	}
	j := t.SecondJumpStrength

	v := c.integ.Velocity()
	c.integ.SetVelocity(mgl64.Vec3{v.X(), v.Y(), 0})

	push := n.Mul(j * 2 * math.Sin(mgl64.DegToRad(math.Abs(roll))))
	launch := push.Add(common.Up.Mul(j))

	c.StopWallSliding()
	c.launch(launch, false, true)
	c.state.JumpCount = 1
	c.log.Debug("wall jump", "launch", launch)
}
