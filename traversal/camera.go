package traversal

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/temporaldash/common"
)

// Look applies raw look input. The input is counter-rotated by the current
// view roll so screen up stays world up while the camera is tilted.
func (c *Controller) Look(x, y float64) {
	if c == nil {
		return
	}
	yaw, pitch := RemapLook(x, y, c.view.Roll)
	s := c.tuning.LookSensitivity
	c.view.Yaw = common.UnwindDegrees(c.view.Yaw + yaw*s)
	c.view.Pitch = common.Clamp(c.view.Pitch+pitch*s, c.tuning.ViewPitchMin, c.tuning.ViewPitchMax)
}

// RemapLook rotates look axes by roll degrees and returns the yaw and pitch
// deltas.
func RemapLook(x, y, roll float64) (yaw, pitch float64) {
	r := mgl64.DegToRad(roll)
	cr, sr := math.Cos(r), math.Sin(r)
	return x*cr - y*sr, x*sr + y*cr
}

// TargetRoll is the roll the camera is easing toward.
func (c *Controller) TargetRoll() float64 {
	if c == nil || c.state.Active != ModifierWallSlide {
		return 0
	}
	return c.wall.targetRoll
}

func (c *Controller) updateCameraRoll(dt float64) {
	c.view.Roll = common.FInterpTo(c.view.Roll, c.TargetRoll(), dt, c.tuning.CameraRollInterpSpeed)
}
