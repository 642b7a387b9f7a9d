package system

import (
	"github.com/milk9111/temporaldash/ecs"
	"github.com/milk9111/temporaldash/ecs/component"
)

// TTLSystem counts TTL components down by the tick's delta and destroys
// entities when they run out. Expired projectiles are reported as gone.
type TTLSystem struct{}

func NewTTLSystem() *TTLSystem {
	return &TTLSystem{}
}

func (s *TTLSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.DeltaTime()
	if dt <= 0 {
		return
	}

	ecs.ForEach(w, component.TTLComponent.Kind(), func(e ecs.Entity, ttl *component.TTL) {
		ttl.Seconds -= dt
		if ttl.Seconds > 0 {
			return
		}

		p, isProjectile := ecs.Get(w, e, component.ProjectileComponent.Kind())
		ecs.DestroyEntity(w, e)
		if isProjectile {
			w.Events().Push(ecs.Event{Type: ecs.EventProjectileGone, Data: ecs.ProjectileEvent{Projectile: e, Launcher: ecs.Entity(p.Launcher)}})
		}
	})
}
