package traversal

import "github.com/milk9111/temporaldash/common"

// Tuning holds every traversal constant.
type Tuning struct {
	EyeHeight       float64 `yaml:"eye_height"`
	LookSensitivity float64 `yaml:"look_sensitivity"`
	ViewPitchMin    float64 `yaml:"view_pitch_min"`
	ViewPitchMax    float64 `yaml:"view_pitch_max"`

	DashDistance    float64 `yaml:"dash_distance"`
	DashDuration    float64 `yaml:"dash_duration"`
	DashCooldown    float64 `yaml:"dash_cooldown"`
	DashInterpSpeed float64 `yaml:"dash_interp_speed"`

	HookMaxRange          float64 `yaml:"hook_max_range"`
	HookPullStrength      float64 `yaml:"hook_pull_strength"`
	HookSteeringInfluence float64 `yaml:"hook_steering_influence"`
	HookSteeringGain      float64 `yaml:"hook_steering_gain"`
	HookMinDetachDistance float64 `yaml:"hook_min_detach_distance"`
	HookMaxVelocity       float64 `yaml:"hook_max_velocity"`
	HookGravityScale      float64 `yaml:"hook_gravity_scale"`
	HookGroundLaunch      float64 `yaml:"hook_ground_launch"`

	JumpSpeed          float64 `yaml:"jump_speed"`
	JumpHoldTime       float64 `yaml:"jump_hold_time"`
	JumpHoldBoost      float64 `yaml:"jump_hold_boost"`
	SecondJumpStrength float64 `yaml:"second_jump_strength"`
	MaxJumpCount       int     `yaml:"max_jump_count"`

	WallRunSpeed          float64 `yaml:"wall_run_speed"`
	WallGravity           float64 `yaml:"wall_gravity"`
	WallStickStrength     float64 `yaml:"wall_stick_strength"`
	WallRotateSpeed       float64 `yaml:"wall_rotate_speed"`
	WallRunCameraRoll     float64 `yaml:"wall_run_camera_roll"`
	CameraRollInterpSpeed float64 `yaml:"camera_roll_interp_speed"`

	DefaultGroundFriction      float64 `yaml:"default_ground_friction"`
	DefaultBrakingDeceleration float64 `yaml:"default_braking_deceleration"`
	DefaultGravityScale        float64 `yaml:"default_gravity_scale"`
}

// DefaultTuning returns the stock values the game ships with.
func DefaultTuning() Tuning {
	return Tuning{
		EyeHeight:       64,
		LookSensitivity: 1,
		ViewPitchMin:    -70,
		ViewPitchMax:    80,

		DashDistance:    600,
		DashDuration:    0.2,
		DashCooldown:    1,
		DashInterpSpeed: 30,

		HookMaxRange:          5000,
		HookPullStrength:      3000,
		HookSteeringInfluence: 0.3,
		HookSteeringGain:      800,
		HookMinDetachDistance: 150,
		HookMaxVelocity:       4000,
		HookGravityScale:      0.4,
		HookGroundLaunch:      500,

		JumpSpeed:          420,
		JumpHoldTime:       0.15,
		JumpHoldBoost:      900,
		SecondJumpStrength: 600,
		MaxJumpCount:       2,

		WallRunSpeed:          800,
		WallGravity:           150,
		WallStickStrength:     100,
		WallRotateSpeed:       10,
		WallRunCameraRoll:     15,
		CameraRollInterpSpeed: 10,

		DefaultGroundFriction:      8,
		DefaultBrakingDeceleration: 2000,
		DefaultGravityScale:        1,
	}
}

// Normalize resets non-positive required fields to their defaults and
// clamps the optional ones into range.
func (t Tuning) Normalize() Tuning {
	d := DefaultTuning()
	fill := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&t.EyeHeight, d.EyeHeight)
	fill(&t.LookSensitivity, d.LookSensitivity)
	fill(&t.DashDistance, d.DashDistance)
	fill(&t.DashDuration, d.DashDuration)
	fill(&t.HookMaxRange, d.HookMaxRange)
	fill(&t.HookPullStrength, d.HookPullStrength)
	fill(&t.HookSteeringGain, d.HookSteeringGain)
	fill(&t.HookMinDetachDistance, d.HookMinDetachDistance)
	fill(&t.HookMaxVelocity, d.HookMaxVelocity)
	fill(&t.JumpSpeed, d.JumpSpeed)
	fill(&t.SecondJumpStrength, d.SecondJumpStrength)
	fill(&t.WallRunSpeed, d.WallRunSpeed)
	fill(&t.DefaultGravityScale, d.DefaultGravityScale)

	t.ViewPitchMin = common.Clamp(t.ViewPitchMin, -90, 90)
	t.ViewPitchMax = common.Clamp(t.ViewPitchMax, -90, 90)
	if t.ViewPitchMax <= t.ViewPitchMin {
		t.ViewPitchMin, t.ViewPitchMax = d.ViewPitchMin, d.ViewPitchMax
	}
	if t.DashDuration < 0.01 {
		t.DashDuration = 0.01
	}
	if t.DashCooldown < 0 {
		t.DashCooldown = 0
	}
	if t.HookSteeringInfluence < 0 {
		t.HookSteeringInfluence = 0
	} else if t.HookSteeringInfluence > 1 {
		t.HookSteeringInfluence = 1
	}
	if t.HookGravityScale < 0 {
		t.HookGravityScale = 0
	}
	if t.MaxJumpCount <= 0 {
		t.MaxJumpCount = d.MaxJumpCount
	}
	for _, v := range []*float64{
		&t.DashInterpSpeed, &t.HookGroundLaunch, &t.JumpHoldTime, &t.JumpHoldBoost,
		&t.WallGravity, &t.WallStickStrength, &t.WallRotateSpeed, &t.WallRunCameraRoll,
		&t.CameraRollInterpSpeed, &t.DefaultGroundFriction, &t.DefaultBrakingDeceleration,
	} {
		if *v < 0 {
			*v = 0
		}
	}
	return t
}
