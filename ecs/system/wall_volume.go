package system

import (
	"github.com/milk9111/temporaldash/arena"
	"github.com/milk9111/temporaldash/ecs"
	"github.com/milk9111/temporaldash/ecs/component"
)

// WallVolumeSystem tracks which bodies overlap each wall-slide volume.
// While inside and airborne a controller is asked to start sliding once
// per visit; a landing inside the volume grants another attempt. Leaving
// the volume or touching the ground stops a slide on that wall.
type WallVolumeSystem struct{}

func NewWallVolumeSystem() *WallVolumeSystem {
	return &WallVolumeSystem{}
}

func (s *WallVolumeSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	landed := make(map[ecs.Entity]bool)
	for _, ev := range w.Events().Pending() {
		if ev.Type != ecs.EventLanded {
			continue
		}
		if data, ok := ev.Data.(ecs.BodyEvent); ok {
			landed[data.Entity] = true
		}
	}

	ecs.ForEach(w, component.WallVolumeComponent.Kind(), func(we ecs.Entity, vol *component.WallVolume) {
		if vol.Occupants == nil {
			vol.Occupants = make(map[uint64]bool)
		}

		ecs.ForEach2(w, component.BodyComponent.Kind(), component.TraversalComponent.Kind(), func(e ecs.Entity, b *arena.Body, tr *component.Traversal) {
			key := uint64(e)
			started, inside := vol.Occupants[key]
			overlap := vol.Box.Overlaps(b.Bounds())

			switch {
			case overlap && !inside:
				started = false
				w.Events().Push(ecs.Event{Type: ecs.EventWallEnter, Data: ecs.WallEvent{Entity: e, Wall: we}})
			case !overlap && inside:
				delete(vol.Occupants, key)
				tr.Controller.StopWallSlidingOn(vol)
				w.Events().Push(ecs.Event{Type: ecs.EventWallExit, Data: ecs.WallEvent{Entity: e, Wall: we}})
				return
			case !overlap:
				return
			}

			if landed[e] {
				started = false
			}
			if b.IsGroundContact() {
				tr.Controller.StopWallSlidingOn(vol)
			}
			if !started && !b.IsGroundContact() && tr.Controller != nil && !tr.Controller.IsWallSliding() {
				tr.Controller.StartWallSliding(vol)
				started = tr.Controller.IsWallSliding()
			}
			vol.Occupants[key] = started
		})

		for key := range vol.Occupants {
			if !ecs.IsAlive(w, ecs.Entity(key)) {
				delete(vol.Occupants, key)
			}
		}
	})
}
