package entity

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/temporaldash/arena"
	"github.com/milk9111/temporaldash/common"
	"github.com/milk9111/temporaldash/ecs"
	"github.com/milk9111/temporaldash/ecs/component"
	"github.com/milk9111/temporaldash/ecs/system"
	"github.com/milk9111/temporaldash/prefabs"
	"github.com/milk9111/temporaldash/traversal"
)

var errNoBody = errors.New("traversal requires a body on the same entity")

type buildContext struct {
	PrefabPath string
	Logger     *slog.Logger
	Script     string
	Position   *mgl64.Vec3
}

// BuildOption adjusts a prefab while it is being built.
type BuildOption func(*buildContext)

func WithLogger(l *slog.Logger) BuildOption {
	return func(ctx *buildContext) {
		if l != nil {
			ctx.Logger = l
		}
	}
}

// WithScript replaces the prefab's scenario script.
func WithScript(path string) BuildOption {
	return func(ctx *buildContext) { ctx.Script = path }
}

// WithPosition places the body at p instead of the prefab or arena spawn.
func WithPosition(p mgl64.Vec3) BuildOption {
	return func(ctx *buildContext) { ctx.Position = &p }
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"player_tag": addPlayerTag,
	"input":      addInput,
	"body":       addBody,
	"traversal":  addTraversal,
	"script":     addScript,
}

var componentBuildOrder = []string{
	"player_tag",
	"input",
	"body",
	"traversal",
	"script",
}

// BuildEntity creates an entity from a prefab. Components are added in a
// fixed order so later builders can rely on earlier ones; the entity is
// destroyed again if any component fails.
func BuildEntity(w *ecs.World, prefabPath string, opts ...BuildOption) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	ctx := &buildContext{PrefabPath: prefabPath, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		if opt != nil {
			opt(ctx)
		}
	}

	e := ecs.CreateEntity(w)

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("build entity: %q: no builder for components %q", prefabPath, names)
	}

	ctx.Logger.Debug("entity built", "prefab", prefabPath, "name", spec.Name, "entity", e)
	return e, nil
}

func addPlayerTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
}

func addInput(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{})
}

func addBody(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.BodyComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode body spec: %w", err)
	}

	var pos mgl64.Vec3
	switch {
	case ctx.Position != nil:
		pos = *ctx.Position
	case spec.Position != nil:
		pos = spec.Position.Vec()
	default:
		if _, a, ok := ecs.First(w, component.ArenaComponent.Kind()); ok {
			pos = a.Spawn.Position
		}
	}

	b := arena.NewBody(pos, traversal.DefaultTuning())
	if spec.HalfExtents != nil {
		half := spec.HalfExtents.Vec()
		if half.X() <= 0 || half.Y() <= 0 || half.Z() <= 0 {
			return fmt.Errorf("body half extents must be positive, got %v", half)
		}
		b.HalfExtents = half
	}
	return ecs.Add(w, e, component.BodyComponent.Kind(), b)
}

func addTraversal(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	tuning, err := prefabs.DecodeComponentSpecOver(raw, traversal.DefaultTuning())
	if err != nil {
		return fmt.Errorf("decode traversal spec: %w", err)
	}
	tuning = tuning.Normalize()

	b, ok := ecs.Get(w, e, component.BodyComponent.Kind())
	if !ok {
		return errNoBody
	}
	b.GravityScale = tuning.DefaultGravityScale
	b.GroundFriction = tuning.DefaultGroundFriction
	b.BrakingDeceleration = tuning.DefaultBrakingDeceleration

	opts := []traversal.Option{
		traversal.WithHitScanner(system.NewWorldScanner(w)),
		traversal.WithTuning(tuning),
		traversal.WithLogger(ctx.Logger.With("entity", e)),
		traversal.WithOwner(b),
	}
	if _, t, ok := ecs.First(w, component.TimersComponent.Kind()); ok && t.Queue != nil {
		opts = append(opts, traversal.WithTimers(t.Queue))
	}
	ctrl := traversal.NewController(b, opts...)

	if _, a, ok := ecs.First(w, component.ArenaComponent.Kind()); ok {
		ctrl.SetView(common.Rotator{Yaw: a.Spawn.Yaw})
	}

	return ecs.Add(w, e, component.TraversalComponent.Kind(), &component.Traversal{Controller: ctrl})
}

func addScript(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.ScriptComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode script spec: %w", err)
	}
	path := spec.Path
	if ctx.Script != "" {
		path = ctx.Script
	}
	if path == "" {
		return nil
	}
	return ecs.Add(w, e, component.ScriptComponent.Kind(), &component.Script{Path: path})
}
