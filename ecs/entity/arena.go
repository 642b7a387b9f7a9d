package entity

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/milk9111/temporaldash/arena"
	"github.com/milk9111/temporaldash/common"
	"github.com/milk9111/temporaldash/ecs"
	"github.com/milk9111/temporaldash/ecs/component"
	"github.com/milk9111/temporaldash/prefabs"
	"github.com/milk9111/temporaldash/traversal"
)

const defaultProjectileTTL = 3.0

// LoadArena reads an arena prefab and builds it into w.
func LoadArena(w *ecs.World, prefabPath string, logger *slog.Logger) (ecs.Entity, error) {
	spec, err := prefabs.LoadArena(prefabPath)
	if err != nil {
		return 0, err
	}
	return BuildArena(w, spec, logger)
}

// BuildArena creates the arena entity that owns the static geometry and the
// shared timers, plus one entity per wall volume, hook target and launcher.
func BuildArena(w *ecs.World, spec prefabs.ArenaSpec, logger *slog.Logger) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build arena: world is nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if _, _, ok := ecs.First(w, component.ArenaComponent.Kind()); ok {
		return 0, fmt.Errorf("build arena %q: world already has an arena", spec.Name)
	}

	solids := make([]arena.Solid, 0, len(spec.Solids))
	for _, s := range spec.Solids {
		solids = append(solids, arena.Solid{Name: s.Name, Box: s.Box()})
	}
	aw := arena.NewWorld(spec.FloorZ, solids, logger)

	level := ecs.CreateEntity(w)
	if err := ecs.Add(w, level, component.ArenaComponent.Kind(), &component.Arena{
		Name:   spec.Name,
		World:  aw,
		Params: spec.Movement,
		Spawn:  arena.Spawn{Position: spec.Spawn.Position.Vec(), Yaw: spec.Spawn.Yaw},
	}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, level, component.TimersComponent.Kind(), &component.Timers{Queue: traversal.NewTaskQueue()}); err != nil {
		return 0, err
	}

	for _, ws := range spec.Walls {
		box := ws.Box()
		normal := common.SafeNormal(ws.Normal.Vec())
		if !box.Valid() || common.NearlyZero(normal) {
			logger.Warn("arena: skipping wall volume", "name", ws.Name, "box", box, "normal", ws.Normal)
			continue
		}
		e := ecs.CreateEntity(w)
		if err := ecs.Add(w, e, component.WallVolumeComponent.Kind(), &component.WallVolume{
			Name:   ws.Name,
			Box:    box,
			Normal: normal,
		}); err != nil {
			return 0, fmt.Errorf("build arena %q: wall %q: %w", spec.Name, ws.Name, err)
		}
	}

	for _, hs := range spec.HookTargets {
		hookable := true
		if hs.Hookable != nil {
			hookable = *hs.Hookable
		}
		radius := hs.Radius
		if radius <= 0 {
			radius = component.DefaultHookTargetRadius
		}
		e := ecs.CreateEntity(w)
		if err := ecs.Add(w, e, component.HookTargetComponent.Kind(), &component.HookTarget{
			Name:     hs.Name,
			Position: hs.Position.Vec(),
			Yaw:      hs.Yaw,
			Offset:   hs.Offset.Vec(),
			Radius:   radius,
			Hookable: hookable,
		}); err != nil {
			return 0, fmt.Errorf("build arena %q: hook target %q: %w", spec.Name, hs.Name, err)
		}
	}

	for _, ls := range spec.Launchers {
		ttl := ls.TTL
		if ttl <= 0 {
			ttl = defaultProjectileTTL
		}
		radius := ls.Radius
		if radius <= 0 {
			radius = component.DefaultProjectileRadius
		}
		e := ecs.CreateEntity(w)
		if err := ecs.Add(w, e, component.ProjectileLauncherComponent.Kind(), &component.ProjectileLauncher{
			Name:         ls.Name,
			Origin:       ls.Origin.Vec(),
			Direction:    ls.Direction.Vec(),
			Speed:        ls.Speed,
			Interval:     ls.Interval,
			TTL:          ttl,
			Radius:       radius,
			GravityScale: ls.GravityScale,
			Cooldown:     ls.Delay,
		}); err != nil {
			return 0, fmt.Errorf("build arena %q: launcher %q: %w", spec.Name, ls.Name, err)
		}
	}

	logger.Info("arena built",
		"name", spec.Name,
		"solids", len(aw.Solids()),
		"walls", len(spec.Walls),
		"hook_targets", len(spec.HookTargets),
		"launchers", len(spec.Launchers),
	)
	return level, nil
}
