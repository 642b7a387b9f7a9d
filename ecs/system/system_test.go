package system

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/temporaldash/arena"
	"github.com/milk9111/temporaldash/ecs"
	"github.com/milk9111/temporaldash/ecs/component"
	"github.com/milk9111/temporaldash/trace"
	"github.com/milk9111/temporaldash/traversal"
)

const testDT = 1.0 / 60

type memorySink struct {
	frames []trace.Frame
}

func (s *memorySink) WriteFrame(f trace.Frame) error {
	s.frames = append(s.frames, f)
	return nil
}

// eventRecorder keeps every event type seen, in order.
type eventRecorder struct {
	seen []ecs.Event
}

func (r *eventRecorder) Update(w *ecs.World) {
	r.seen = append(r.seen, w.Events().Pending()...)
}

func (r *eventRecorder) count(typ string) int {
	n := 0
	for _, ev := range r.seen {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

type harness struct {
	w      *ecs.World
	queue  *traversal.TaskQueue
	sched  *ecs.Scheduler
	sink   *memorySink
	events *eventRecorder
	script *ScriptInputSystem
}

func newHarness(t *testing.T, solids []arena.Solid, scriptOpts ...ScriptOption) *harness {
	t.Helper()
	w := ecs.NewWorld()
	level := ecs.CreateEntity(w)
	if err := ecs.Add(w, level, component.ArenaComponent.Kind(), &component.Arena{
		Name:   "test",
		World:  arena.NewWorld(0, solids, nil),
		Params: arena.DefaultMoveParams(),
	}); err != nil {
		t.Fatal(err)
	}
	queue := traversal.NewTaskQueue()
	if err := ecs.Add(w, level, component.TimersComponent.Kind(), &component.Timers{Queue: queue}); err != nil {
		t.Fatal(err)
	}

	h := &harness{
		w:      w,
		queue:  queue,
		sink:   &memorySink{},
		events: &eventRecorder{},
		script: NewScriptInputSystem(scriptOpts...),
	}
	h.sched = ecs.NewScheduler(
		h.script,
		NewTraversalSystem(),
		NewKinematicsSystem(),
		NewWallVolumeSystem(),
		NewProjectileSystem(),
		NewTTLSystem(),
		h.events,
		NewTraceSystem(nil, h.sink),
	)
	return h
}

func (h *harness) addPlayer(t *testing.T, pos mgl64.Vec3) (ecs.Entity, *arena.Body, *traversal.Controller) {
	t.Helper()
	e := ecs.CreateEntity(h.w)
	b := arena.NewBody(pos, traversal.DefaultTuning())
	ctrl := traversal.NewController(b,
		traversal.WithHitScanner(NewWorldScanner(h.w)),
		traversal.WithTimers(h.queue),
		traversal.WithOwner(b),
	)
	for _, err := range []error{
		ecs.Add(h.w, e, component.BodyComponent.Kind(), b),
		ecs.Add(h.w, e, component.TraversalComponent.Kind(), &component.Traversal{Controller: ctrl}),
		ecs.Add(h.w, e, component.InputComponent.Kind(), &component.Input{}),
		ecs.Add(h.w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{}),
	} {
		if err != nil {
			t.Fatal(err)
		}
	}
	return e, b, ctrl
}

func (h *harness) input(t *testing.T, e ecs.Entity) *component.Input {
	t.Helper()
	in, ok := ecs.Get(h.w, e, component.InputComponent.Kind())
	if !ok {
		t.Fatalf("entity %v has no input", e)
	}
	return in
}

func (h *harness) step(n int) {
	for i := 0; i < n; i++ {
		h.sched.Step(h.w, testDT)
	}
}

func TestWorldScannerNearestHit(t *testing.T) {
	h := newHarness(t, []arena.Solid{
		{Name: "pillar", Box: arena.Box{Min: mgl64.Vec3{500, -100, 0}, Max: mgl64.Vec3{700, 100, 800}}},
	})
	target := &component.HookTarget{Name: "ring", Position: mgl64.Vec3{300, 0, 100}, Radius: 50, Hookable: true}
	te := ecs.CreateEntity(h.w)
	if err := ecs.Add(h.w, te, component.HookTargetComponent.Kind(), target); err != nil {
		t.Fatal(err)
	}
	s := NewWorldScanner(h.w)
	origin := mgl64.Vec3{0, 0, 100}

	hit, ok := s.CastRay(origin, mgl64.Vec3{2, 0, 0}, 5000, nil)
	if !ok || hit.Actor != traversal.Actor(target) || math.Abs(hit.Point.X()-250) > 1e-9 {
		t.Fatalf("expected the ring at x=250, got %+v ok=%v", hit, ok)
	}

	hit, ok = s.CastRay(origin, mgl64.Vec3{1, 0, 0}, 5000, target)
	solid, isSolid := hit.Actor.(*arena.Solid)
	if !ok || !isSolid || solid.Name != "pillar" || math.Abs(hit.Point.X()-500) > 1e-9 {
		t.Fatalf("ignoring the ring should hit the pillar, got %+v ok=%v", hit, ok)
	}
	if traversal.IsHookableTarget(hit.Actor) {
		t.Fatalf("static solids are not hookable")
	}

	pe := ecs.CreateEntity(h.w)
	proj := &component.Projectile{Position: mgl64.Vec3{100, 0, 100}, Radius: 10}
	if err := ecs.Add(h.w, pe, component.ProjectileComponent.Kind(), proj); err != nil {
		t.Fatal(err)
	}
	hit, ok = s.CastRay(origin, mgl64.Vec3{1, 0, 0}, 5000, nil)
	if !ok || hit.Actor != traversal.Actor(proj) || !traversal.IsHookableTarget(hit.Actor) {
		t.Fatalf("expected the projectile first, got %+v ok=%v", hit, ok)
	}

	hit, ok = s.CastRay(origin, mgl64.Vec3{0, 0, -1}, 5000, nil)
	if !ok || hit.Actor != nil || math.Abs(hit.Point.Z()) > 1e-9 {
		t.Fatalf("expected a floor hit without an actor, got %+v ok=%v", hit, ok)
	}

	if _, ok := s.CastRay(origin, mgl64.Vec3{0, 1, 0}, 5000, nil); ok {
		t.Fatalf("expected a miss into open space")
	}
}

func TestFallAndLandEmitsEvent(t *testing.T) {
	h := newHarness(t, nil)
	e, b, ctrl := h.addPlayer(t, mgl64.Vec3{0, 0, 300})

	for i := 0; i < 120 && h.events.count(ecs.EventLanded) == 0; i++ {
		h.step(1)
	}
	if h.events.count(ecs.EventLanded) != 1 {
		t.Fatalf("expected one landing, got %d", h.events.count(ecs.EventLanded))
	}
	if b.Mode != traversal.MovementWalking || ctrl.JumpCount() != 0 {
		t.Fatalf("expected walking with a fresh jump budget, got %v jumps=%d", b.Mode, ctrl.JumpCount())
	}

	last := h.sink.frames[len(h.sink.frames)-1]
	if last.Entity != uint64(e) || len(last.Events) != 1 || last.Events[0] != ecs.EventLanded {
		t.Fatalf("expected the landing frame to carry the event, got %+v", last)
	}
}

func TestJumpThroughInput(t *testing.T) {
	h := newHarness(t, nil)
	e, b, ctrl := h.addPlayer(t, mgl64.Vec3{0, 0, 96})
	h.step(1)
	if !b.Grounded {
		t.Fatalf("expected to start grounded, pos %v", b.Pos)
	}

	in := h.input(t, e)
	in.Intent.JumpPressed = true
	in.Intent.Move = mgl64.Vec2{0, 1}
	h.step(1)

	if ctrl.JumpCount() != 1 || b.Mode != traversal.MovementFalling || b.Vel.Z() <= 0 {
		t.Fatalf("expected a jump, got count=%d mode=%v vel=%v", ctrl.JumpCount(), b.Mode, b.Vel)
	}
	if in.Intent.JumpPressed {
		t.Fatalf("edge input should be consumed")
	}
	if in.Intent.Move != (mgl64.Vec2{0, 1}) {
		t.Fatalf("move axes should persist, got %v", in.Intent.Move)
	}
}

func TestDashCooldownRunsOnSharedTimers(t *testing.T) {
	h := newHarness(t, nil)
	e, b, ctrl := h.addPlayer(t, mgl64.Vec3{0, 0, 96})
	h.step(1)

	h.input(t, e).Intent.DashPressed = true
	h.step(1)
	if !ctrl.IsDashing() || !ctrl.DashOnCooldown() {
		t.Fatalf("expected an active dash on cooldown")
	}

	h.step(20)
	if ctrl.IsDashing() {
		t.Fatalf("dash should have finished")
	}
	if b.GroundFriction != traversal.DefaultTuning().DefaultGroundFriction {
		t.Fatalf("expected friction restored, got %v", b.GroundFriction)
	}
	if !ctrl.DashOnCooldown() {
		t.Fatalf("cooldown should still be running")
	}

	h.step(60)
	if ctrl.DashOnCooldown() {
		t.Fatalf("cooldown should have expired on the shared queue")
	}
	if h.events.count(ecs.EventModifierChanged) != 2 {
		t.Fatalf("expected dash start and end events, got %d", h.events.count(ecs.EventModifierChanged))
	}
}

func TestHookAttachesToTarget(t *testing.T) {
	h := newHarness(t, nil)
	e, _, ctrl := h.addPlayer(t, mgl64.Vec3{0, 0, 96})
	target := &component.HookTarget{Name: "ring", Position: mgl64.Vec3{1000, 0, 160}, Offset: mgl64.Vec3{0, 0, -20}, Radius: 50, Hookable: true}
	te := ecs.CreateEntity(h.w)
	if err := ecs.Add(h.w, te, component.HookTargetComponent.Kind(), target); err != nil {
		t.Fatal(err)
	}
	h.step(1)

	h.input(t, e).Intent.HookPressed = true
	h.step(1)
	anchor, ok := ctrl.HookAnchor()
	if !ok || target.Hooks != 1 {
		t.Fatalf("expected to hook the ring, hooked=%v hooks=%d", ok, target.Hooks)
	}
	if anchor != target.HookPoint() {
		t.Fatalf("expected the offset hook point %v, got %v", target.HookPoint(), anchor)
	}
	last := h.sink.frames[len(h.sink.frames)-1]
	if last.Modifier != "hook" || last.HookAnchor == nil {
		t.Fatalf("expected the trace to show the hook, got %+v", last)
	}

	h.input(t, e).Intent.HookReleased = true
	h.step(1)
	if ctrl.IsHooked() || target.Releases != 1 || target.HookedBy != nil {
		t.Fatalf("expected a clean release, hooked=%v releases=%d", ctrl.IsHooked(), target.Releases)
	}

	target.SetHookable(false)
	h.input(t, e).Intent.HookPressed = true
	h.step(1)
	if ctrl.IsHooked() || target.Hooks != 1 {
		t.Fatalf("disabled target must not be hooked")
	}
}

func addWall(t *testing.T, w *ecs.World, box arena.Box, normal mgl64.Vec3) *component.WallVolume {
	t.Helper()
	vol := &component.WallVolume{Name: "wall", Box: box, Normal: normal}
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.WallVolumeComponent.Kind(), vol); err != nil {
		t.Fatal(err)
	}
	return vol
}

func TestWallVolumeEnterAndExit(t *testing.T) {
	h := newHarness(t, nil)
	addWall(t, h.w, arena.Box{Min: mgl64.Vec3{-5000, 100, 0}, Max: mgl64.Vec3{5000, 200, 2000}}, mgl64.Vec3{0, -1, 0})
	e, b, ctrl := h.addPlayer(t, mgl64.Vec3{0, 150, 800})

	h.step(1)
	if !ctrl.IsWallSliding() || h.events.count(ecs.EventWallEnter) != 1 {
		t.Fatalf("expected to start sliding on entry, sliding=%v", ctrl.IsWallSliding())
	}
	if n, _ := ctrl.WallNormal(); n != (mgl64.Vec3{0, -1, 0}) {
		t.Fatalf("unexpected wall normal %v", n)
	}

	// wall jump pushes away without sticking again while still inside
	h.input(t, e).Intent.JumpPressed = true
	h.step(1)
	if ctrl.IsWallSliding() {
		t.Fatalf("wall jump should not re-attach during the same visit")
	}
	if b.Vel.Z() <= 0 || ctrl.JumpCount() != 1 {
		t.Fatalf("expected an upward wall jump, vel=%v count=%d", b.Vel, ctrl.JumpCount())
	}

	b.Pos = mgl64.Vec3{0, -2000, 800}
	h.step(1)
	if h.events.count(ecs.EventWallExit) != 1 {
		t.Fatalf("expected an exit event")
	}

	b.Pos = mgl64.Vec3{0, 150, 800}
	h.step(1)
	if !ctrl.IsWallSliding() || h.events.count(ecs.EventWallEnter) != 2 {
		t.Fatalf("expected a new visit to slide again")
	}
	b.Pos = mgl64.Vec3{0, -2000, 800}
	h.step(1)
	if ctrl.IsWallSliding() {
		t.Fatalf("leaving the volume should stop the slide")
	}
}

func TestWallSlideEndsOnGround(t *testing.T) {
	h := newHarness(t, nil)
	addWall(t, h.w, arena.Box{Min: mgl64.Vec3{-5000, 100, 0}, Max: mgl64.Vec3{5000, 200, 2000}}, mgl64.Vec3{0, -1, 0})
	_, b, ctrl := h.addPlayer(t, mgl64.Vec3{0, 150, 100})

	h.step(1)
	if !ctrl.IsWallSliding() {
		t.Fatalf("expected to start sliding just above the floor")
	}
	h.step(3)
	if ctrl.IsWallSliding() || b.Mode != traversal.MovementWalking {
		t.Fatalf("touching the floor should end the slide, sliding=%v mode=%v", ctrl.IsWallSliding(), b.Mode)
	}
}

func TestWallVolumeSkipsGroundedEntry(t *testing.T) {
	h := newHarness(t, nil)
	addWall(t, h.w, arena.Box{Min: mgl64.Vec3{-5000, 100, 0}, Max: mgl64.Vec3{5000, 200, 2000}}, mgl64.Vec3{0, -1, 0})
	e, _, ctrl := h.addPlayer(t, mgl64.Vec3{0, 150, 96})

	h.step(2)
	if ctrl.IsWallSliding() {
		t.Fatalf("walking into the volume should not start a slide")
	}

	h.input(t, e).Intent.JumpPressed = true
	h.step(2)
	if !ctrl.IsWallSliding() {
		t.Fatalf("jumping inside the volume should start the slide")
	}
}

func TestProjectileLifecycle(t *testing.T) {
	h := newHarness(t, []arena.Solid{
		{Name: "block", Box: arena.Box{Min: mgl64.Vec3{500, -100, 0}, Max: mgl64.Vec3{700, 100, 1000}}},
	})
	open := &component.ProjectileLauncher{Name: "open", Origin: mgl64.Vec3{0, 0, 500}, Direction: mgl64.Vec3{0, 1, 0}, Speed: 100, Interval: 10, TTL: 0.5}
	walled := &component.ProjectileLauncher{Name: "walled", Origin: mgl64.Vec3{0, 0, 500}, Direction: mgl64.Vec3{1, 0, 0}, Speed: 6000, Interval: 10, TTL: 5}
	for _, l := range []*component.ProjectileLauncher{open, walled} {
		if err := ecs.Add(h.w, ecs.CreateEntity(h.w), component.ProjectileLauncherComponent.Kind(), l); err != nil {
			t.Fatal(err)
		}
	}

	h.step(1)
	if open.Fired != 1 || walled.Fired != 1 || h.events.count(ecs.EventProjectileFired) != 2 {
		t.Fatalf("expected both launchers to fire once")
	}
	var alive []*component.Projectile
	ecs.ForEach(h.w, component.ProjectileComponent.Kind(), func(_ ecs.Entity, p *component.Projectile) {
		alive = append(alive, p)
	})
	if len(alive) != 2 {
		t.Fatalf("expected two live projectiles, got %d", len(alive))
	}

	h.step(10)
	if h.events.count(ecs.EventProjectileGone) != 1 {
		t.Fatalf("the fast projectile should have hit the block, gone=%d", h.events.count(ecs.EventProjectileGone))
	}

	h.step(30)
	if h.events.count(ecs.EventProjectileGone) != 2 {
		t.Fatalf("the slow projectile should have expired")
	}
	if _, _, ok := ecs.First(h.w, component.ProjectileComponent.Kind()); ok {
		t.Fatalf("expected no projectiles left")
	}
	if open.Fired != 1 {
		t.Fatalf("launcher interval not respected, fired %d", open.Fired)
	}
}

func TestTTLExpiresEntities(t *testing.T) {
	h := newHarness(t, nil)

	plain := ecs.CreateEntity(h.w)
	if err := ecs.Add(h.w, plain, component.TTLComponent.Kind(), &component.TTL{Seconds: 0.1}); err != nil {
		t.Fatal(err)
	}
	launcher := ecs.CreateEntity(h.w)
	proj := ecs.CreateEntity(h.w)
	if err := ecs.Add(h.w, proj, component.ProjectileComponent.Kind(), &component.Projectile{Position: mgl64.Vec3{0, 0, 5000}, Launcher: uint64(launcher)}); err != nil {
		t.Fatal(err)
	}
	if err := ecs.Add(h.w, proj, component.TTLComponent.Kind(), &component.TTL{Seconds: 0.25}); err != nil {
		t.Fatal(err)
	}

	h.step(3)
	if !ecs.IsAlive(h.w, plain) || !ecs.IsAlive(h.w, proj) {
		t.Fatalf("nothing should expire early")
	}
	h.step(4)
	if ecs.IsAlive(h.w, plain) {
		t.Fatalf("expected the plain entity to expire")
	}
	if h.events.count(ecs.EventProjectileGone) != 0 {
		t.Fatalf("only projectiles report as gone")
	}

	h.step(10)
	if ecs.IsAlive(h.w, proj) {
		t.Fatalf("expected the projectile to expire")
	}
	var gone []ecs.ProjectileEvent
	for _, ev := range h.events.seen {
		if data, ok := ev.Data.(ecs.ProjectileEvent); ok && ev.Type == ecs.EventProjectileGone {
			gone = append(gone, data)
		}
	}
	if len(gone) != 1 || gone[0].Projectile != proj || gone[0].Launcher != launcher {
		t.Fatalf("expected one gone event naming the launcher, got %+v", gone)
	}
}

func TestScriptInputDrivesController(t *testing.T) {
	src := `
start := func(engine, state) {
	state.updates = 0
}

update := func(engine, state, tick) {
	state.updates += 1
	engine.move(0, 1)
	if tick == 3 {
		engine.jump()
	}
	if tick == 4 {
		engine.set_view(0, 90)
	}
	if tick >= 6 {
		engine.done()
	}
}
`
	loads := 0
	h := newHarness(t, nil, WithScriptLoader(func(path string) ([]byte, error) {
		loads++
		return []byte(src), nil
	}))
	e, b, ctrl := h.addPlayer(t, mgl64.Vec3{0, 0, 96})
	sc := &component.Script{Path: "inline.tengo"}
	if err := ecs.Add(h.w, e, component.ScriptComponent.Kind(), sc); err != nil {
		t.Fatal(err)
	}

	h.step(3)
	if ctrl.JumpCount() != 1 {
		t.Fatalf("expected the script to jump on tick 3, count=%d", ctrl.JumpCount())
	}
	if b.Pos.X() <= 0 {
		t.Fatalf("expected to move forward, pos %v", b.Pos)
	}
	h.step(1)
	if math.Abs(ctrl.View().Yaw-90) > 1e-9 {
		t.Fatalf("expected set_view to turn the player, yaw %v", ctrl.View().Yaw)
	}

	h.step(5)
	if !sc.Done {
		t.Fatalf("expected the script to finish")
	}
	rt := h.script.cache[e]
	if rt == nil || rt.failed {
		t.Fatalf("script runtime failed")
	}
	if n := rt.state.Value["updates"]; n.String() != "6" {
		t.Fatalf("expected 6 updates before done, got %v", n)
	}
	if loads != 1 {
		t.Fatalf("expected the script to compile once, loaded %d times", loads)
	}

	h.script.Reload()
	if len(h.script.cache) != 0 {
		t.Fatalf("reload should drop compiled scripts")
	}
}

func TestScriptErrors(t *testing.T) {
	cases := []struct {
		name     string
		src      string
		wantDone bool
	}{
		{"compile_error", "update := func(engine, state, tick) { engine.move( }", true},
		{"missing_start", "update := func(engine, state, tick) {}", true},
		{"runtime_error", "start := func(engine, state) {}\nupdate := func(engine, state, tick) { engine.missing() }", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, nil, WithScriptLoader(func(string) ([]byte, error) { return []byte(tc.src), nil }))
			e, _, _ := h.addPlayer(t, mgl64.Vec3{0, 0, 96})
			sc := &component.Script{Path: "bad.tengo"}
			if err := ecs.Add(h.w, e, component.ScriptComponent.Kind(), sc); err != nil {
				t.Fatal(err)
			}
			h.step(3)
			if sc.Done != tc.wantDone {
				t.Fatalf("expected done=%v, got %v", tc.wantDone, sc.Done)
			}
			if !tc.wantDone {
				if rt := h.script.cache[e]; rt == nil || !rt.failed {
					t.Fatalf("expected the runtime to be marked failed")
				}
			}
		})
	}
}

func TestBundledScriptsRun(t *testing.T) {
	for _, name := range []string{"tour.tengo", "idle.tengo", "dash_loop.tengo"} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, nil)
			e, _, _ := h.addPlayer(t, mgl64.Vec3{0, 0, 96})
			if err := ecs.Add(h.w, e, component.ScriptComponent.Kind(), &component.Script{Path: name}); err != nil {
				t.Fatal(err)
			}
			h.step(10)
			rt := h.script.cache[e]
			if rt == nil || rt.failed {
				t.Fatalf("bundled script %s failed to run", name)
			}
		})
	}
}

func TestTraceFramePerTraversalEntity(t *testing.T) {
	h := newHarness(t, nil)
	e1, _, _ := h.addPlayer(t, mgl64.Vec3{0, 0, 96})
	e2, _, _ := h.addPlayer(t, mgl64.Vec3{500, 0, 96})
	h.step(2)

	if len(h.sink.frames) != 4 {
		t.Fatalf("expected 2 frames per tick, got %d", len(h.sink.frames))
	}
	seen := map[uint64]int{}
	for _, f := range h.sink.frames {
		seen[f.Entity]++
		if f.Modifier != "none" || f.Mode == "" {
			t.Fatalf("unexpected frame %+v", f)
		}
	}
	if seen[uint64(e1)] != 2 || seen[uint64(e2)] != 2 {
		t.Fatalf("unexpected frame distribution %v", seen)
	}
	if h.sink.frames[3].Tick != 2 || math.Abs(h.sink.frames[3].Time-2*testDT) > 1e-12 {
		t.Fatalf("unexpected clock in %+v", h.sink.frames[3])
	}
}
