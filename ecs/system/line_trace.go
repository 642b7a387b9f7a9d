package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/temporaldash/arena"
	"github.com/milk9111/temporaldash/ecs"
	"github.com/milk9111/temporaldash/ecs/component"
	"github.com/milk9111/temporaldash/traversal"
)

// WorldScanner answers hook traces against an ECS world: the arena's static
// geometry plus hook target and projectile spheres.
type WorldScanner struct {
	world *ecs.World
}

func NewWorldScanner(w *ecs.World) *WorldScanner {
	return &WorldScanner{world: w}
}

// CastRay returns the nearest blocking hit along dir. Static solids are
// reported with a *arena.Solid actor and the floor with a nil actor.
func (s *WorldScanner) CastRay(origin, dir mgl64.Vec3, maxRange float64, ignore traversal.Actor) (traversal.Hit, bool) {
	if s == nil || s.world == nil || maxRange <= 0 {
		return traversal.Hit{}, false
	}
	l := dir.Len()
	if l < 1e-12 {
		return traversal.Hit{}, false
	}
	dir = dir.Mul(1 / l)

	best := maxRange
	var hit traversal.Hit
	found := false

	if _, a, ok := ecs.First(s.world, component.ArenaComponent.Kind()); ok && a.World != nil {
		if h, ok := a.World.CastRay(origin, dir, maxRange); ok {
			best = h.Distance
			hit = traversal.Hit{Point: h.Point, Actor: solidActor(a.World, h.Solid)}
			found = true
		}
	}

	consider := func(actor traversal.Actor, center mgl64.Vec3, radius float64) {
		if actor == ignore {
			return
		}
		d, ok := arena.RaySphere(origin, dir, center, radius, best)
		if !ok || (found && d >= best) {
			return
		}
		best = d
		hit = traversal.Hit{Point: origin.Add(dir.Mul(d)), Actor: actor}
		found = true
	}

	ecs.ForEach(s.world, component.HookTargetComponent.Kind(), func(_ ecs.Entity, t *component.HookTarget) {
		r := t.Radius
		if r <= 0 {
			r = component.DefaultHookTargetRadius
		}
		consider(t, t.Position, r)
	})
	ecs.ForEach(s.world, component.ProjectileComponent.Kind(), func(_ ecs.Entity, p *component.Projectile) {
		r := p.Radius
		if r <= 0 {
			r = component.DefaultProjectileRadius
		}
		consider(p, p.Position, r)
	})

	return hit, found
}

func solidActor(w *arena.World, idx int) traversal.Actor {
	solids := w.Solids()
	if idx < 0 || idx >= len(solids) {
		return nil
	}
	return &solids[idx]
}
