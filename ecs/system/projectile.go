package system

import (
	"github.com/milk9111/temporaldash/common"
	"github.com/milk9111/temporaldash/ecs"
	"github.com/milk9111/temporaldash/ecs/component"
)

// ProjectileSystem fires launchers on their interval and moves projectiles
// ballistically until they hit static geometry. TTLSystem expires the rest.
type ProjectileSystem struct{}

func NewProjectileSystem() *ProjectileSystem {
	return &ProjectileSystem{}
}

func (s *ProjectileSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.DeltaTime()
	if dt <= 0 {
		return
	}
	_, a, hasArena := ecs.First(w, component.ArenaComponent.Kind())

	ecs.ForEach(w, component.ProjectileLauncherComponent.Kind(), func(e ecs.Entity, l *component.ProjectileLauncher) {
		if l.Interval <= 0 || l.Speed <= 0 {
			return
		}
		l.Cooldown -= dt
		if l.Cooldown > 0 {
			return
		}
		l.Cooldown += l.Interval
		dir := common.SafeNormal(l.Direction)
		if common.NearlyZero(dir) {
			return
		}

		p := ecs.CreateEntity(w)
		if err := ecs.Add(w, p, component.ProjectileComponent.Kind(), &component.Projectile{
			Position:     l.Origin,
			Velocity:     dir.Mul(l.Speed),
			Radius:       l.Radius,
			GravityScale: l.GravityScale,
			Launcher:     uint64(e),
		}); err != nil {
			ecs.DestroyEntity(w, p)
			return
		}
		if err := ecs.Add(w, p, component.TTLComponent.Kind(), &component.TTL{Seconds: l.TTL}); err != nil {
			ecs.DestroyEntity(w, p)
			return
		}
		l.Fired++
		w.Events().Push(ecs.Event{Type: ecs.EventProjectileFired, Data: ecs.ProjectileEvent{Projectile: p, Launcher: e}})
	})

	ecs.ForEach(w, component.ProjectileComponent.Kind(), func(e ecs.Entity, p *component.Projectile) {
		if hasArena && a.World != nil {
			p.Velocity[2] -= a.Params.Gravity * p.GravityScale * dt
		}
		step := p.Velocity.Mul(dt)
		hit := false
		if hasArena && a.World != nil {
			_, hit = a.World.CastRay(p.Position, step, step.Len())
		}
		p.Position = p.Position.Add(step)

		if hit {
			launcher := ecs.Entity(p.Launcher)
			ecs.DestroyEntity(w, e)
			w.Events().Push(ecs.Event{Type: ecs.EventProjectileGone, Data: ecs.ProjectileEvent{Projectile: e, Launcher: launcher}})
		}
	})
}
