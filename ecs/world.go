package ecs

import (
	"fmt"

	"github.com/milk9111/temporaldash/ecs/component"
)

// World owns entities, their components and the simulation clock.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*SparseSet
	events   EventQueue

	tick uint64
	time float64
	dt   float64
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]*SparseSet)}
}

func CreateEntity(w *World) Entity {
	if w == nil {
		return 0
	}
	return w.entities.create()
}

// DestroyEntity removes every component of e and frees its id. It returns
// false when e was not alive.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		s.Remove(e.id())
	}
	return w.entities.destroy(e)
}

func IsAlive(w *World, e Entity) bool {
	return w != nil && w.entities.isAlive(e)
}

// Entities returns every live entity in id order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	return w.entities.all()
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// Tick is the number of completed scheduler steps.
func (w *World) Tick() uint64 {
	if w == nil {
		return 0
	}
	return w.tick
}

// Time is the simulated time in seconds.
func (w *World) Time() float64 {
	if w == nil {
		return 0
	}
	return w.time
}

// DeltaTime is the step length of the tick being simulated.
func (w *World) DeltaTime() float64 {
	if w == nil {
		return 0
	}
	return w.dt
}

func (w *World) advance(dt float64) {
	if dt < 0 {
		dt = 0
	}
	w.tick++
	w.dt = dt
	w.time += dt
}

func (w *World) store(id component.ComponentID, create bool) *SparseSet {
	if w.stores == nil {
		w.stores = make(map[component.ComponentID]*SparseSet)
	}
	s := w.stores[id]
	if s == nil && create {
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}

func (w *World) addComponent(e Entity, id component.ComponentID, value any) error {
	if w == nil || !w.entities.isAlive(e) {
		return fmt.Errorf("%w: %v", component.ErrEntityNotAlive, e)
	}
	if id == 0 {
		return component.ErrInvalidComponentKind
	}
	w.store(id, true).Set(e.id(), value)
	return nil
}

func (w *World) component(e Entity, id component.ComponentID) (any, bool) {
	if w == nil || !w.entities.isAlive(e) {
		return nil, false
	}
	s := w.store(id, false)
	if s == nil || !s.Has(e.id()) {
		return nil, false
	}
	return s.Get(e.id()), true
}

func (w *World) removeComponent(e Entity, id component.ComponentID) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	return w.store(id, false).Remove(e.id())
}
