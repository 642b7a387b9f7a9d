package component

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/temporaldash/traversal"
)

// DefaultHookTargetRadius is the size of a hook target's trace sphere.
const DefaultHookTargetRadius = 50.0

// HookTarget is a point the hook can latch onto. It answers ray casts as a
// sphere around Position and implements traversal.Hookable.
type HookTarget struct {
	Name     string
	Position mgl64.Vec3
	// Yaw in degrees rotates Offset into world space.
	Yaw      float64
	Offset   mgl64.Vec3
	Radius   float64
	Hookable bool

	Hooks    int
	Releases int
	HookedBy traversal.Actor
}

var HookTargetComponent = NewComponent[HookTarget]()

func (h *HookTarget) HookPoint() mgl64.Vec3 {
	if h == nil {
		return mgl64.Vec3{}
	}
	rot := mgl64.Rotate3DZ(mgl64.DegToRad(h.Yaw))
	return h.Position.Add(rot.Mul3x1(h.Offset))
}

func (h *HookTarget) CanBeHooked() bool {
	return h != nil && h.Hookable
}

func (h *HookTarget) SetHookable(v bool) {
	if h != nil {
		h.Hookable = v
	}
}

func (h *HookTarget) OnHooked(by traversal.Actor) {
	if h == nil {
		return
	}
	h.Hooks++
	h.HookedBy = by
}

func (h *HookTarget) OnHookReleased(by traversal.Actor) {
	if h == nil {
		return
	}
	h.Releases++
	if h.HookedBy == by {
		h.HookedBy = nil
	}
}
