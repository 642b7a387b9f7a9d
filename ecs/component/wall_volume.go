package component

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/temporaldash/arena"
)

// WallVolume is a wall-slide detection box. Normal points out of the wall
// face the player slides along.
type WallVolume struct {
	Name   string
	Box    arena.Box
	Normal mgl64.Vec3

	// Occupants maps raw entity handles inside the box to whether a slide
	// was already started during this visit.
	Occupants map[uint64]bool
}

var WallVolumeComponent = NewComponent[WallVolume]()

func (v *WallVolume) InteractionNormal() mgl64.Vec3 {
	if v == nil {
		return mgl64.Vec3{}
	}
	return v.Normal
}
