package ecs

import "github.com/milk9111/temporaldash/ecs/component"

// Add attaches value to e, replacing any component of the same kind.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	return w.addComponent(e, kind.ID(), value)
}

func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	return w.removeComponent(e, kind.ID())
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	_, ok := w.component(e, kind.ID())
	return ok
}

func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	value, ok := w.component(e, kind.ID())
	if !ok {
		return nil, false
	}
	cast, ok := value.(*T)
	return cast, ok && cast != nil
}

// First returns the first live entity carrying kind.
func First[T any](w *World, kind component.ComponentKind[T]) (Entity, *T, bool) {
	if w == nil {
		return 0, nil, false
	}
	for _, id := range w.store(kind.ID(), false).entities() {
		e, ok := w.entities.current(id)
		if !ok {
			continue
		}
		if v, ok := Get(w, e, kind); ok {
			return e, v, true
		}
	}
	return 0, nil, false
}

func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	if w == nil || fn == nil {
		return
	}
	for _, e := range w.Query(kind.ID()) {
		if a, ok := Get(w, e, kind); ok {
			fn(e, a)
		}
	}
}

func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	if w == nil || fn == nil {
		return
	}
	for _, e := range w.Query(ka.ID(), kb.ID()) {
		a, okA := Get(w, e, ka)
		b, okB := Get(w, e, kb)
		if okA && okB {
			fn(e, a, b)
		}
	}
}
