package traversal

import "github.com/go-gl/mathgl/mgl64"

// Modifier is the movement override currently driving velocity. Only one
// can be active at a time.
type Modifier uint8

const (
	ModifierNone Modifier = iota
	ModifierDash
	ModifierHook
	ModifierWallSlide
)

func (m Modifier) String() string {
	switch m {
	case ModifierNone:
		return "none"
	case ModifierDash:
		return "dash"
	case ModifierHook:
		return "hook"
	case ModifierWallSlide:
		return "wall_slide"
	default:
		return "unknown"
	}
}

// LocomotionState is the externally visible traversal state.
type LocomotionState struct {
	Active    Modifier
	JumpCount int
}

func (s LocomotionState) IsDashing() bool     { return s.Active == ModifierDash }
func (s LocomotionState) IsHooked() bool      { return s.Active == ModifierHook }
func (s LocomotionState) IsWallSliding() bool { return s.Active == ModifierWallSlide }

// Input is one tick's worth of player intent. Axis values are the last
// value seen this tick; the booleans are edge events.
type Input struct {
	Move mgl64.Vec2 // x = right, y = forward
	Look mgl64.Vec2 // x = yaw, y = pitch (degrees)

	JumpPressed  bool
	JumpReleased bool
	DashPressed  bool
	HookPressed  bool
	HookReleased bool
}

type dashRun struct {
	direction mgl64.Vec3
	elapsed   float64
	duration  float64
	target    mgl64.Vec3
}

// hookLink and wallContact hold the tuning in force when the modifier
// started; a reload only reaches the next activation.
type hookLink struct {
	anchor        mgl64.Vec3
	maxRopeLength float64
	target        Hookable
	tuning        Tuning
}

type wallContact struct {
	wall         Wall
	normal       mgl64.Vec3
	runDirection mgl64.Vec3
	targetRoll   float64
	tuning       Tuning
}
