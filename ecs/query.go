package ecs

import "github.com/milk9111/temporaldash/ecs/component"

// intersect returns ids present in every set, walking the smallest one.
func intersect(sets ...*SparseSet) []entityID {
	if len(sets) == 0 {
		return nil
	}
	smallest := sets[0]
	for _, s := range sets {
		if s == nil {
			return nil
		}
		if s.Len() < smallest.Len() {
			smallest = s
		}
	}
	var out []entityID
	for _, id := range smallest.entities() {
		ok := true
		for _, s := range sets {
			if s != smallest && !s.Has(id) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, id)
		}
	}
	return out
}

// Query returns the live entities that carry every listed component.
func (w *World) Query(ids ...component.ComponentID) []Entity {
	if w == nil || len(ids) == 0 {
		return nil
	}
	sets := make([]*SparseSet, 0, len(ids))
	for _, id := range ids {
		s := w.stores[id]
		if s == nil {
			return nil
		}
		sets = append(sets, s)
	}
	var out []Entity
	for _, id := range intersect(sets...) {
		if e, ok := w.entities.current(id); ok {
			out = append(out, e)
		}
	}
	return out
}
