package system

import (
	"github.com/milk9111/temporaldash/ecs"
	"github.com/milk9111/temporaldash/ecs/component"
)

// TraversalSystem advances the shared timers and then feeds each
// controller its pending input and one update step.
type TraversalSystem struct{}

func NewTraversalSystem() *TraversalSystem {
	return &TraversalSystem{}
}

func (s *TraversalSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.DeltaTime()
	if dt <= 0 {
		return
	}

	ecs.ForEach(w, component.TimersComponent.Kind(), func(_ ecs.Entity, t *component.Timers) {
		t.Queue.Advance(dt)
	})

	ecs.ForEach(w, component.TraversalComponent.Kind(), func(e ecs.Entity, tr *component.Traversal) {
		ctrl := tr.Controller
		if ctrl == nil {
			return
		}
		if in, ok := ecs.Get(w, e, component.InputComponent.Kind()); ok {
			ctrl.HandleInput(in.Consume())
		}
		ctrl.Update(dt)

		if m := ctrl.State().Active; m != tr.Last {
			w.Events().Push(ecs.Event{Type: ecs.EventModifierChanged, Data: ecs.ModifierEvent{
				Entity: e,
				From:   tr.Last.String(),
				To:     m.String(),
			}})
			tr.Last = m
		}
	})
}
