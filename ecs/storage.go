package ecs

// entityStore tracks entity generations and free ids. Ids start at 1 so the
// zero Entity is never alive.
type entityStore struct {
	gen   []generation
	alive []bool
	free  []entityID
	count int
}

func (s *entityStore) create() Entity {
	if s == nil {
		return 0
	}
	var id entityID
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.gen = append(s.gen, 0)
		s.alive = append(s.alive, false)
		id = entityID(len(s.gen))
	}
	s.alive[id-1] = true
	s.count++
	return makeEntity(id, s.gen[id-1])
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	idx := e.id() - 1
	s.gen[idx]++
	s.alive[idx] = false
	s.free = append(s.free, e.id())
	s.count--
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	if s == nil {
		return false
	}
	id := e.id()
	if id == 0 || int(id) > len(s.gen) {
		return false
	}
	return s.alive[id-1] && s.gen[id-1] == e.generation()
}

// current returns the live handle for id, if any.
func (s *entityStore) current(id entityID) (Entity, bool) {
	if s == nil || id == 0 || int(id) > len(s.gen) || !s.alive[id-1] {
		return 0, false
	}
	return makeEntity(id, s.gen[id-1]), true
}

func (s *entityStore) all() []Entity {
	if s == nil || s.count == 0 {
		return nil
	}
	out := make([]Entity, 0, s.count)
	for i := range s.gen {
		if s.alive[i] {
			out = append(out, makeEntity(entityID(i+1), s.gen[i]))
		}
	}
	return out
}
