package arena

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/temporaldash/common"
	"github.com/milk9111/temporaldash/traversal"
)

const (
	groundProbe = 2.0
	skin        = 1e-6
)

// MoveParams are the default-movement constants the integrator applies
// when no traversal modifier overrides velocity.
type MoveParams struct {
	Gravity          float64 `yaml:"gravity"`
	MaxWalkSpeed     float64 `yaml:"max_walk_speed"`
	WalkAcceleration float64 `yaml:"walk_acceleration"`
	AirControl       float64 `yaml:"air_control"`
	TerminalSpeed    float64 `yaml:"terminal_speed"`
}

func DefaultMoveParams() MoveParams {
	return MoveParams{
		Gravity:          980,
		MaxWalkSpeed:     600,
		WalkAcceleration: 2048,
		AirControl:       0.35,
		TerminalSpeed:    4000,
	}
}

// StepResult reports what happened during one integration step.
type StepResult struct {
	Landed   bool
	Blocked  [3]bool
	Grounded bool
}

// Step advances b by dt: mode-specific acceleration from wish (a world
// space movement input, length at most 1), then an axis by axis sweep
// against the floor and solids. Flying bodies are integrated as is.
func (w *World) Step(b *Body, wish mgl64.Vec3, dt float64, p MoveParams) StepResult {
	var res StepResult
	if w == nil || b == nil || dt <= 0 {
		return res
	}
	wish = common.ClampMagnitude(common.Horizontal(wish), 1)

	if b.Mode == traversal.MovementWalking && !b.Grounded {
		b.Mode = traversal.MovementFalling
	}

	switch b.Mode {
	case traversal.MovementWalking:
		h := walkVelocity(common.Horizontal(b.Vel), wish, dt, b.GroundFriction, b.BrakingDeceleration, p)
		b.Vel = mgl64.Vec3{h.X(), h.Y(), math.Max(b.Vel.Z(), 0)}
	case traversal.MovementFalling:
		h := airVelocity(common.Horizontal(b.Vel), wish, dt, p)
		z := b.Vel.Z() - p.Gravity*b.GravityScale*dt
		if p.TerminalSpeed > 0 && z < -p.TerminalSpeed {
			z = -p.TerminalSpeed
		}
		b.Vel = mgl64.Vec3{h.X(), h.Y(), z}
	}

	for _, axis := range [...]int{0, 1, 2} {
		if w.moveAxis(b, axis, b.Vel[axis]*dt) {
			res.Blocked[axis] = true
			b.Vel[axis] = 0
		}
	}

	support, ok := w.support(b.Pos, b.HalfExtents)
	b.Grounded = ok && b.Vel.Z() <= 0
	if b.Grounded {
		b.Pos[2] = support + b.HalfExtents.Z()
	}
	if b.Grounded && b.Mode == traversal.MovementFalling {
		b.Mode = traversal.MovementWalking
		res.Landed = true
	}
	res.Grounded = b.Grounded
	return res
}

// walkVelocity turns toward the input with ground friction, accelerates up
// to the walk speed, and brakes to a stop without input. Speed above the
// walk speed is kept but never increased.
func walkVelocity(h, wish mgl64.Vec3, dt, friction, braking float64, p MoveParams) mgl64.Vec3 {
	speed := h.Len()
	if common.NearlyZero(wish) {
		if speed == 0 {
			return h
		}
		next := speed - (speed*friction+braking)*dt
		if next <= 0 {
			return mgl64.Vec3{}
		}
		return h.Mul(next / speed)
	}

	dir := common.SafeNormal(wish)
	h = h.Sub(h.Sub(dir.Mul(speed)).Mul(common.Clamp(dt*friction, 0, 1)))
	limit := p.MaxWalkSpeed * wish.Len()
	if speed < limit {
		return common.ClampMagnitude(h.Add(dir.Mul(p.WalkAcceleration*dt)), limit)
	}
	return common.ClampMagnitude(h, speed)
}

func airVelocity(h, wish mgl64.Vec3, dt float64, p MoveParams) mgl64.Vec3 {
	if common.NearlyZero(wish) || p.AirControl <= 0 {
		return h
	}
	limit := math.Max(h.Len(), p.MaxWalkSpeed)
	return common.ClampMagnitude(h.Add(wish.Mul(p.WalkAcceleration*p.AirControl*dt)), limit)
}

// moveAxis moves b along one axis and stops it at the first face it would
// cross. It reports whether the move was blocked.
func (w *World) moveAxis(b *Body, axis int, delta float64) bool {
	if delta == 0 {
		return false
	}
	half := b.HalfExtents
	from := b.Pos
	to := from
	to[axis] += delta

	blocked := false
	swept := BoxAt(from, half).Union(BoxAt(to, half))
	for _, idx := range w.Candidates(swept) {
		ex := w.solids[idx].Box.Expand(half)
		if !overlapsOtherAxes(ex, from, axis) {
			continue
		}
		if delta > 0 && from[axis] <= ex.Min[axis]+skin && to[axis] > ex.Min[axis] {
			to[axis] = ex.Min[axis]
			blocked = true
		} else if delta < 0 && from[axis] >= ex.Max[axis]-skin && to[axis] < ex.Max[axis] {
			to[axis] = ex.Max[axis]
			blocked = true
		}
	}

	if axis == 2 && delta < 0 {
		if floor := w.floorZ + half.Z(); from.Z() >= floor-skin && to.Z() < floor {
			to[2] = floor
			blocked = true
		}
	}

	b.Pos = to
	return blocked
}

func overlapsOtherAxes(b Box, p mgl64.Vec3, axis int) bool {
	for i := 0; i < 3; i++ {
		if i == axis {
			continue
		}
		if p[i] <= b.Min[i] || p[i] >= b.Max[i] {
			return false
		}
	}
	return true
}

// support returns the height of the surface a body at pos rests on: the
// floor or the top of a solid within the ground probe below its feet.
func (w *World) support(pos, half mgl64.Vec3) (float64, bool) {
	feet := pos.Z() - half.Z()
	best, found := math.Inf(-1), false
	if d := feet - w.floorZ; d <= groundProbe && d >= -groundProbe {
		best, found = w.floorZ, true
	}
	probe := Box{
		Min: mgl64.Vec3{pos.X() - half.X(), pos.Y() - half.Y(), feet - groundProbe},
		Max: mgl64.Vec3{pos.X() + half.X(), pos.Y() + half.Y(), feet + groundProbe},
	}
	for _, idx := range w.Candidates(probe) {
		top := w.solids[idx].Box
		if top.Max.Z() > feet+groundProbe || top.Max.Z() < feet-groundProbe {
			continue
		}
		if top.Max.X() <= probe.Min.X() || top.Min.X() >= probe.Max.X() ||
			top.Max.Y() <= probe.Min.Y() || top.Min.Y() >= probe.Max.Y() {
			continue
		}
		if top.Max.Z() > best {
			best, found = top.Max.Z(), true
		}
	}
	return best, found
}
