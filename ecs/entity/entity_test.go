package entity

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/temporaldash/arena"
	"github.com/milk9111/temporaldash/ecs"
	"github.com/milk9111/temporaldash/ecs/component"
	"github.com/milk9111/temporaldash/ecs/system"
	"github.com/milk9111/temporaldash/prefabs"
	"github.com/milk9111/temporaldash/trace"
	"github.com/milk9111/temporaldash/traversal"
)

type frameSink struct {
	frames []trace.Frame
}

func (s *frameSink) WriteFrame(f trace.Frame) error {
	s.frames = append(s.frames, f)
	return nil
}

func loadCourtyard(t *testing.T) *ecs.World {
	t.Helper()
	w := ecs.NewWorld()
	if _, err := LoadArena(w, "arena.yaml", nil); err != nil {
		t.Fatalf("load arena: %v", err)
	}
	return w
}

func TestLoadArena(t *testing.T) {
	w := loadCourtyard(t)

	_, a, ok := ecs.First(w, component.ArenaComponent.Kind())
	if !ok || a.Name != "courtyard" || len(a.World.Solids()) != 3 {
		t.Fatalf("unexpected arena %+v", a)
	}
	if a.Spawn.Position != (mgl64.Vec3{0, 0, 96}) {
		t.Fatalf("unexpected spawn %v", a.Spawn.Position)
	}
	if _, timers, ok := ecs.First(w, component.TimersComponent.Kind()); !ok || timers.Queue == nil {
		t.Fatalf("expected shared timers on the arena entity")
	}

	walls := 0
	ecs.ForEach(w, component.WallVolumeComponent.Kind(), func(_ ecs.Entity, v *component.WallVolume) {
		walls++
		if v.Normal != (mgl64.Vec3{0, -1, 0}) {
			t.Fatalf("unexpected wall normal %v", v.Normal)
		}
	})
	if walls != 1 {
		t.Fatalf("expected one wall volume, got %d", walls)
	}

	targets := map[string]*component.HookTarget{}
	ecs.ForEach(w, component.HookTargetComponent.Kind(), func(_ ecs.Entity, h *component.HookTarget) {
		targets[h.Name] = h
	})
	if len(targets) != 2 {
		t.Fatalf("expected two hook targets, got %d", len(targets))
	}
	if ring := targets["pillar_ring"]; !ring.Hookable || ring.HookPoint() != (mgl64.Vec3{1400, 0, 880}) {
		t.Fatalf("unexpected pillar ring %+v", ring)
	}
	if locked := targets["locked_ring"]; locked.Hookable || locked.Radius != component.DefaultHookTargetRadius {
		t.Fatalf("unexpected locked ring %+v", locked)
	}

	_, l, ok := ecs.First(w, component.ProjectileLauncherComponent.Kind())
	if !ok || l.Name != "south_turret" || l.Cooldown != 0.5 || l.TTL != 3 {
		t.Fatalf("unexpected launcher %+v", l)
	}

	if _, err := LoadArena(w, "arena.yaml", nil); err == nil {
		t.Fatalf("expected a second arena to be rejected")
	}
}

func TestBuildArenaSkipsBadWalls(t *testing.T) {
	w := ecs.NewWorld()
	spec := prefabs.ArenaSpec{
		Name:     "bad_walls",
		Movement: arena.DefaultMoveParams(),
		Walls: []prefabs.WallSpec{
			{BoxSpec: prefabs.BoxSpec{Name: "flat", Min: prefabs.Vec3{0, 0, 0}, Max: prefabs.Vec3{10, 0, 10}}, Normal: prefabs.Vec3{0, -1, 0}},
			{BoxSpec: prefabs.BoxSpec{Name: "no_normal", Min: prefabs.Vec3{0, 0, 0}, Max: prefabs.Vec3{10, 10, 10}}},
			{BoxSpec: prefabs.BoxSpec{Name: "good", Min: prefabs.Vec3{0, 0, 0}, Max: prefabs.Vec3{10, 10, 10}}, Normal: prefabs.Vec3{0, -2, 0}},
		},
		HookTargets: []prefabs.HookTargetSpec{{Name: "ring"}},
	}
	if _, err := BuildArena(w, spec, nil); err != nil {
		t.Fatal(err)
	}

	var names []string
	ecs.ForEach(w, component.WallVolumeComponent.Kind(), func(_ ecs.Entity, v *component.WallVolume) {
		names = append(names, v.Name)
		if v.Normal != (mgl64.Vec3{0, -1, 0}) {
			t.Fatalf("expected a normalized wall normal, got %v", v.Normal)
		}
	})
	if len(names) != 1 || names[0] != "good" {
		t.Fatalf("expected only the good wall, got %v", names)
	}

	_, ring, ok := ecs.First(w, component.HookTargetComponent.Kind())
	if !ok || !ring.Hookable || ring.Radius != component.DefaultHookTargetRadius {
		t.Fatalf("hook targets should default to hookable with the stock radius, got %+v", ring)
	}
}

func TestNewPlayer(t *testing.T) {
	w := loadCourtyard(t)
	e, err := NewPlayer(w)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}

	if !ecs.Has(w, e, component.PlayerTagComponent.Kind()) || !ecs.Has(w, e, component.InputComponent.Kind()) {
		t.Fatalf("expected player tag and input")
	}
	b, ok := ecs.Get(w, e, component.BodyComponent.Kind())
	if !ok || b.Pos != (mgl64.Vec3{0, 0, 96}) || b.HalfExtents != arena.DefaultHalfExtents {
		t.Fatalf("expected the body at the arena spawn, got %+v", b)
	}
	tr, ok := ecs.Get(w, e, component.TraversalComponent.Kind())
	if !ok || tr.Controller == nil {
		t.Fatalf("expected a traversal controller")
	}
	if tr.Controller.Tuning() != traversal.DefaultTuning() {
		t.Fatalf("player prefab tuning should match the stock tuning")
	}
	sc, ok := ecs.Get(w, e, component.ScriptComponent.Kind())
	if !ok || sc.Path != "tour.tengo" {
		t.Fatalf("expected the tour script, got %+v", sc)
	}

	// the dash cooldown lives on the arena's shared queue
	_, timers, _ := ecs.First(w, component.TimersComponent.Kind())
	tr.Controller.DashStart()
	if !tr.Controller.DashOnCooldown() {
		t.Fatalf("expected the dash to start its cooldown")
	}
	timers.Queue.Advance(tr.Controller.Tuning().DashCooldown + 0.01)
	if tr.Controller.DashOnCooldown() {
		t.Fatalf("advancing the shared queue should end the cooldown")
	}
}

func TestNewPlayerOptions(t *testing.T) {
	w := loadCourtyard(t)
	pos := mgl64.Vec3{-1000, -400, 500}
	e, err := NewPlayer(w, WithScript("idle.tengo"), WithPosition(pos))
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	b, _ := ecs.Get(w, e, component.BodyComponent.Kind())
	if b.Pos != pos {
		t.Fatalf("expected the position override, got %v", b.Pos)
	}
	sc, _ := ecs.Get(w, e, component.ScriptComponent.Kind())
	if sc.Path != "idle.tengo" {
		t.Fatalf("expected the script override, got %q", sc.Path)
	}
}

func TestNewPlayerWithoutArena(t *testing.T) {
	w := ecs.NewWorld()
	e, err := NewPlayer(w)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	b, _ := ecs.Get(w, e, component.BodyComponent.Kind())
	if b.Pos != (mgl64.Vec3{}) {
		t.Fatalf("expected the origin without an arena, got %v", b.Pos)
	}
}

func TestBuildEntityErrors(t *testing.T) {
	if _, err := BuildEntity(nil, PlayerPrefab); err == nil {
		t.Fatalf("expected an error for a nil world")
	}
	w := ecs.NewWorld()
	if _, err := BuildEntity(w, "missing.yaml"); err == nil {
		t.Fatalf("expected an error for a missing prefab")
	}
	if n := len(ecs.Entities(w)); n != 0 {
		t.Fatalf("failed builds must not leave entities, got %d", n)
	}
}

func TestTourScenario(t *testing.T) {
	w := loadCourtyard(t)
	e, err := NewPlayer(w)
	if err != nil {
		t.Fatal(err)
	}
	sink := &frameSink{}
	sched := ecs.NewScheduler(
		system.NewScriptInputSystem(),
		system.NewTraversalSystem(),
		system.NewKinematicsSystem(),
		system.NewWallVolumeSystem(),
		system.NewProjectileSystem(),
		system.NewTTLSystem(),
		system.NewTraceSystem(nil, sink),
	)

	sc, _ := ecs.Get(w, e, component.ScriptComponent.Kind())
	tr, _ := ecs.Get(w, e, component.TraversalComponent.Kind())
	body, _ := ecs.Get(w, e, component.BodyComponent.Kind())

	ticks := 0
	wallJumps := 0
	for ; ticks < 1900 && !sc.Done; ticks++ {
		wasSliding := tr.Controller.IsWallSliding()
		sched.Step(w, 1.0/60)
		if !wasSliding || tr.Controller.IsWallSliding() {
			continue
		}
		// pushed off along the wall normal and up, with one jump spent
		if body.Vel.Y() < -100 && body.Vel.Z() > 0 && tr.Controller.JumpCount() == 1 {
			wallJumps++
		}
	}
	if !sc.Done {
		t.Fatalf("the tour script should run to completion")
	}

	sum := trace.Summarize(sink.frames)
	if sum.Frames != ticks {
		t.Fatalf("expected one frame per tick, got %d for %d ticks", sum.Frames, ticks)
	}
	if sum.Activations["dash"] == 0 || sum.Activations["hook"] == 0 {
		t.Fatalf("expected the tour to dash and hook, got %v", sum.Activations)
	}
	if sum.Activations["wall_slide"] == 0 {
		t.Fatalf("expected the tour to wall slide, got %v", sum.Activations)
	}
	if wallJumps != 1 {
		t.Fatalf("expected one wall jump, got %d", wallJumps)
	}
	if sum.Jumps < 2 || sum.Landings == 0 {
		t.Fatalf("expected jumps and landings, got %+v", sum)
	}

	hooks := 0
	ecs.ForEach(w, component.HookTargetComponent.Kind(), func(_ ecs.Entity, h *component.HookTarget) {
		if h.Name == "pillar_ring" {
			hooks = h.Hooks
		}
	})
	if hooks == 0 {
		t.Fatalf("expected the pillar ring to record the hook")
	}
}
