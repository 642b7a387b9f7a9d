package traversal

import (
	"io"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/temporaldash/common"
)

// Controller is the player's traversal state machine. It shapes the
// integrator's velocity every tick through at most one active modifier
// and keeps the jump budget and view rotation.
//
// A Controller is driven from a single simulation loop and is not safe for
// concurrent use.
type Controller struct {
	integ   Integrator
	scanner HitScanner
	timers  Timers
	queue   *TaskQueue
	log     *slog.Logger
	tuning  Tuning
	self    Actor

	state LocomotionState
	view  common.Rotator
	move  mgl64.Vec2

	dash dashRun
	hook hookLink
	wall wallContact

	dashOnCooldown bool
	cooldownGen    uint64

	jumpHeld     bool
	jumpHoldLeft float64
	wasGrounded  bool
}

type Option func(*Controller)

// WithHitScanner sets the ray query service used by the hook.
func WithHitScanner(s HitScanner) Option {
	return func(c *Controller) { c.scanner = s }
}

// WithTimers shares an external timer service. Without it the controller
// owns a TaskQueue and advances it from Update.
func WithTimers(t Timers) Option {
	return func(c *Controller) { c.timers = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

func WithTuning(t Tuning) Option {
	return func(c *Controller) { c.tuning = t.Normalize() }
}

// WithOwner sets the actor the controller acts for. It is passed to ray
// casts as the ignored actor and to hook notifications.
func WithOwner(self Actor) Option {
	return func(c *Controller) { c.self = self }
}

// NewController builds a controller around integ. A nil integrator is
// allowed; every operation is then a no-op.
func NewController(integ Integrator, opts ...Option) *Controller {
	c := &Controller{
		integ:  integ,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		tuning: DefaultTuning(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.timers == nil {
		c.queue = NewTaskQueue()
		c.timers = c.queue
	}
	if c.self == nil {
		c.self = c
	}
	if c.integ != nil {
		c.wasGrounded = c.integ.IsGroundContact()
	}
	return c
}

func (c *Controller) State() LocomotionState {
	if c == nil {
		return LocomotionState{}
	}
	return c.state
}

func (c *Controller) IsDashing() bool     { return c.State().IsDashing() }
func (c *Controller) IsHooked() bool      { return c.State().IsHooked() }
func (c *Controller) IsWallSliding() bool { return c.State().IsWallSliding() }
func (c *Controller) JumpCount() int      { return c.State().JumpCount }

// DashOnCooldown reports whether the dash cooldown is still running.
func (c *Controller) DashOnCooldown() bool {
	return c != nil && c.dashOnCooldown
}

func (c *Controller) Tuning() Tuning {
	if c == nil {
		return DefaultTuning()
	}
	return c.tuning
}

// SetTuning swaps constants on a live controller. An active modifier keeps
// running with the values it captured at activation.
func (c *Controller) SetTuning(t Tuning) {
	if c == nil {
		return
	}
	c.tuning = t.Normalize()
	c.log.Debug("traversal tuning updated")
}

// View returns the control rotation including the visual roll.
func (c *Controller) View() common.Rotator {
	if c == nil {
		return common.Rotator{}
	}
	return c.view
}

func (c *Controller) SetView(r common.Rotator) {
	if c == nil {
		return
	}
	r.Pitch = common.Clamp(r.Pitch, c.tuning.ViewPitchMin, c.tuning.ViewPitchMax)
	r.Yaw = common.UnwindDegrees(r.Yaw)
	c.view = r
}

// Facing is the character's body rotation, the view without pitch or roll.
func (c *Controller) Facing() common.Rotator {
	if c == nil {
		return common.Rotator{}
	}
	return c.view.YawOnly()
}

// HookAnchor returns the active anchor point.
func (c *Controller) HookAnchor() (mgl64.Vec3, bool) {
	if c == nil || c.state.Active != ModifierHook {
		return mgl64.Vec3{}, false
	}
	return c.hook.anchor, true
}

// WallNormal returns the normal of the wall being slid on.
func (c *Controller) WallNormal() (mgl64.Vec3, bool) {
	if c == nil || c.state.Active != ModifierWallSlide {
		return mgl64.Vec3{}, false
	}
	return c.wall.normal, true
}

// HandleInput applies one tick of player intent.
func (c *Controller) HandleInput(in Input) {
	if c == nil {
		return
	}
	c.Move(in.Move.X(), in.Move.Y())
	if in.Look != (mgl64.Vec2{}) {
		c.Look(in.Look.X(), in.Look.Y())
	}
	if in.JumpReleased {
		c.JumpEnd()
	}
	if in.HookReleased {
		c.HookEnd()
	}
	if in.DashPressed {
		c.DashStart()
	}
	if in.HookPressed {
		c.HookStart()
	}
	if in.JumpPressed {
		c.JumpStart()
	}
}

// Move stores the latest movement axes (x = right, y = forward).
func (c *Controller) Move(right, forward float64) {
	if c == nil {
		return
	}
	c.move = mgl64.Vec2{right, forward}
}

// MovementInputVector is the last movement input rotated into world space
// by the facing rotation. It is horizontal and not normalized.
func (c *Controller) MovementInputVector() mgl64.Vec3 {
	if c == nil {
		return mgl64.Vec3{}
	}
	f := c.Facing()
	v := f.Forward().Mul(c.move.Y()).Add(f.Right().Mul(c.move.X()))
	return common.Horizontal(v)
}

// Update advances the controller by dt seconds: timers, landing, the
// active modifier and then the camera roll.
func (c *Controller) Update(dt float64) {
	if c == nil || dt <= 0 {
		return
	}
	if c.queue != nil {
		c.queue.Advance(dt)
	}
	if c.integ == nil {
		return
	}

	c.detectLanding()

	switch c.state.Active {
	case ModifierDash:
		c.updateDash(dt)
	case ModifierHook:
		c.updateHook(dt)
	case ModifierWallSlide:
		c.updateWallSlide(dt)
	default:
		c.updateJumpHold(dt)
	}

	c.updateCameraRoll(dt)
}

func (c *Controller) setActive(m Modifier) {
	if c.state.Active == m {
		return
	}
	c.log.Debug("traversal modifier changed", "from", c.state.Active, "to", m)
	c.state.Active = m
}

func (c *Controller) restoreDefaults() {
	if c.integ == nil {
		return
	}
	c.integ.SetGroundFriction(c.tuning.DefaultGroundFriction)
	c.integ.SetBrakingDeceleration(c.tuning.DefaultBrakingDeceleration)
	c.integ.SetGravityScale(c.tuning.DefaultGravityScale)
}

// launch adds v to the current velocity, or replaces the horizontal or
// vertical part when the matching override is set. A walking character
// is switched to falling so the integrator does not snap it back down.
func (c *Controller) launch(v mgl64.Vec3, overrideXY, overrideZ bool) {
	if c.integ == nil {
		return
	}
	cur := c.integ.Velocity()
	if overrideXY {
		cur[0], cur[1] = v.X(), v.Y()
	} else {
		cur[0] += v.X()
		cur[1] += v.Y()
	}
	if overrideZ {
		cur[2] = v.Z()
	} else {
		cur[2] += v.Z()
	}
	c.integ.SetVelocity(cur)
	if c.integ.MovementMode() == MovementWalking {
		c.integ.SetMovementMode(MovementFalling)
	}
}
