package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/temporaldash/arena"
	"github.com/milk9111/temporaldash/ecs"
	"github.com/milk9111/temporaldash/ecs/component"
)

// KinematicsSystem integrates every body against the arena. Bodies driven
// by a traversal controller use its movement input as the walk intent.
type KinematicsSystem struct{}

func NewKinematicsSystem() *KinematicsSystem {
	return &KinematicsSystem{}
}

func (s *KinematicsSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.DeltaTime()
	_, a, ok := ecs.First(w, component.ArenaComponent.Kind())
	if !ok || a.World == nil || dt <= 0 {
		return
	}

	ecs.ForEach(w, component.BodyComponent.Kind(), func(e ecs.Entity, b *arena.Body) {
		var wish mgl64.Vec3
		if tr, ok := ecs.Get(w, e, component.TraversalComponent.Kind()); ok && tr.Controller != nil {
			wish = tr.Controller.MovementInputVector()
		}
		res := a.World.Step(b, wish, dt, a.Params)
		if res.Landed {
			w.Events().Push(ecs.Event{Type: ecs.EventLanded, Data: ecs.BodyEvent{Entity: e}})
		}
	})
}
