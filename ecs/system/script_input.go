package system

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/temporaldash/arena"
	"github.com/milk9111/temporaldash/common"
	"github.com/milk9111/temporaldash/ecs"
	"github.com/milk9111/temporaldash/ecs/component"
	"github.com/milk9111/temporaldash/prefabs"
)

// Scenario scripts define start(engine, state) and update(engine, state, tick).
const scenarioDispatchScript = `
if __phase == "start" {
	start(__engine, __state)
} else if __phase == "update" {
	update(__engine, __state, __tick)
}
`

type scriptRuntime struct {
	path     string
	compiled *tengo.Compiled
	state    *tengo.Map
	started  bool
	failed   bool
}

// ScriptInputSystem runs each entity's scenario script once per tick. The
// script writes the entity's Input through the engine functions.
type ScriptInputSystem struct {
	log   *slog.Logger
	load  func(path string) ([]byte, error)
	cache map[ecs.Entity]*scriptRuntime
}

type ScriptOption func(*ScriptInputSystem)

// WithScriptLoader replaces prefabs.LoadScript as the script source.
func WithScriptLoader(load func(path string) ([]byte, error)) ScriptOption {
	return func(s *ScriptInputSystem) {
		if load != nil {
			s.load = load
		}
	}
}

func WithScriptLogger(l *slog.Logger) ScriptOption {
	return func(s *ScriptInputSystem) {
		if l != nil {
			s.log = l
		}
	}
}

func NewScriptInputSystem(opts ...ScriptOption) *ScriptInputSystem {
	s := &ScriptInputSystem{
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		load:  prefabs.LoadScript,
		cache: make(map[ecs.Entity]*scriptRuntime),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Reload drops every compiled script so edited sources are picked up on
// the next tick. Script state starts over.
func (s *ScriptInputSystem) Reload() {
	if s == nil {
		return
	}
	s.cache = make(map[ecs.Entity]*scriptRuntime)
}

func (s *ScriptInputSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	for e := range s.cache {
		if !ecs.IsAlive(w, e) {
			delete(s.cache, e)
		}
	}

	ecs.ForEach2(w, component.ScriptComponent.Kind(), component.InputComponent.Kind(), func(e ecs.Entity, sc *component.Script, in *component.Input) {
		if sc.Done || strings.TrimSpace(sc.Path) == "" {
			return
		}

		rt, err := s.runtime(e, sc.Path)
		if err != nil {
			s.log.Error("script: load failed", "entity", e, "path", sc.Path, "err", err)
			sc.Done = true
			return
		}
		if rt.failed {
			return
		}

		ctx := &scriptContext{world: w, entity: e, script: sc, input: in, log: s.log}
		engine := buildScenarioEngine(ctx)

		if !rt.started {
			rt.started = true
			if err := rt.run("start", w.Tick(), engine); err != nil {
				rt.failed = true
				s.log.Error("script: start failed", "entity", e, "path", sc.Path, "err", err)
				return
			}
		}
		if err := rt.run("update", w.Tick(), engine); err != nil {
			rt.failed = true
			s.log.Error("script: update failed", "entity", e, "path", sc.Path, "err", err)
		}
	})
}

func (s *ScriptInputSystem) runtime(e ecs.Entity, path string) (*scriptRuntime, error) {
	if rt, ok := s.cache[e]; ok && rt != nil && rt.path == path {
		return rt, nil
	}

	src, err := s.load(path)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + scenarioDispatchScript))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__tick", 0)

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}

	rt := &scriptRuntime{
		path:     path,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
	s.cache[e] = rt
	return rt, nil
}

func (rt *scriptRuntime) run(phase string, tick uint64, engine *tengo.ImmutableMap) error {
	if rt == nil || rt.compiled == nil {
		return fmt.Errorf("nil script runtime")
	}
	if err := rt.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.state); err != nil {
		return err
	}
	if err := rt.compiled.Set("__tick", int64(tick)); err != nil {
		return err
	}
	return rt.compiled.Run()
}

type scriptContext struct {
	world  *ecs.World
	entity ecs.Entity
	script *component.Script
	input  *component.Input
	log    *slog.Logger
}

func (ctx *scriptContext) traversal() *component.Traversal {
	tr, ok := ecs.Get(ctx.world, ctx.entity, component.TraversalComponent.Kind())
	if !ok || tr.Controller == nil {
		return nil
	}
	return tr
}

func (ctx *scriptContext) body() *arena.Body {
	b, _ := ecs.Get(ctx.world, ctx.entity, component.BodyComponent.Kind())
	return b
}

func buildScenarioEngine(ctx *scriptContext) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["move"] = &tengo.UserFunction{Name: "move", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		ctx.input.Intent.Move = mgl64.Vec2{objectAsFloat(args[0]), objectAsFloat(args[1])}
		return tengo.TrueValue, nil
	}}

	values["look"] = &tengo.UserFunction{Name: "look", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		ctx.input.Intent.Look = ctx.input.Intent.Look.Add(mgl64.Vec2{objectAsFloat(args[0]), objectAsFloat(args[1])})
		return tengo.TrueValue, nil
	}}

	press := func(name string, set func(*component.Input)) {
		values[name] = &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
			set(ctx.input)
			return tengo.TrueValue, nil
		}}
	}
	press("jump", func(in *component.Input) { in.Intent.JumpPressed = true })
	press("release_jump", func(in *component.Input) { in.Intent.JumpReleased = true })
	press("dash", func(in *component.Input) { in.Intent.DashPressed = true })
	press("hook", func(in *component.Input) { in.Intent.HookPressed = true })
	press("release_hook", func(in *component.Input) { in.Intent.HookReleased = true })

	values["set_view"] = &tengo.UserFunction{Name: "set_view", Value: func(args ...tengo.Object) (tengo.Object, error) {
		tr := ctx.traversal()
		if tr == nil || len(args) < 2 {
			return tengo.FalseValue, nil
		}
		v := tr.Controller.View()
		v.Pitch, v.Yaw = objectAsFloat(args[0]), objectAsFloat(args[1])
		tr.Controller.SetView(v)
		return tengo.TrueValue, nil
	}}

	values["aim_at"] = &tengo.UserFunction{Name: "aim_at", Value: func(args ...tengo.Object) (tengo.Object, error) {
		tr, b := ctx.traversal(), ctx.body()
		if tr == nil || b == nil || len(args) < 3 {
			return tengo.FalseValue, nil
		}
		target := mgl64.Vec3{objectAsFloat(args[0]), objectAsFloat(args[1]), objectAsFloat(args[2])}
		eye := b.Pos.Add(common.Up.Mul(tr.Controller.Tuning().EyeHeight))
		dir := target.Sub(eye)
		if common.NearlyZero(dir) {
			return tengo.FalseValue, nil
		}
		r := common.RotatorFromVector(dir)
		r.Roll = tr.Controller.View().Roll
		tr.Controller.SetView(r)
		return tengo.TrueValue, nil
	}}

	values["state"] = &tengo.UserFunction{Name: "state", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return scenarioState(ctx), nil
	}}

	values["set_hookable"] = &tengo.UserFunction{Name: "set_hookable", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		enabled := !args[1].IsFalsy()
		found := false
		ecs.ForEach(ctx.world, component.HookTargetComponent.Kind(), func(_ ecs.Entity, t *component.HookTarget) {
			if t.Name == name {
				t.SetHookable(enabled)
				found = true
			}
		})
		if found {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["time"] = &tengo.UserFunction{Name: "time", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: ctx.world.Time()}, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		ctx.log.Info("script", "entity", ctx.entity, "path", ctx.script.Path, "msg", strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	values["done"] = &tengo.UserFunction{Name: "done", Value: func(args ...tengo.Object) (tengo.Object, error) {
		ctx.script.Done = true
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func scenarioState(ctx *scriptContext) tengo.Object {
	out := map[string]tengo.Object{
		"tick": &tengo.Int{Value: int64(ctx.world.Tick())},
		"time": &tengo.Float{Value: ctx.world.Time()},
	}
	if b := ctx.body(); b != nil {
		out["position"] = vecObject(b.Pos)
		out["velocity"] = vecObject(b.Vel)
		out["speed"] = &tengo.Float{Value: b.Vel.Len()}
		out["grounded"] = boolObject(b.Grounded)
		out["mode"] = &tengo.String{Value: b.Mode.String()}
	}
	if tr := ctx.traversal(); tr != nil {
		c := tr.Controller
		v := c.View()
		out["modifier"] = &tengo.String{Value: c.State().Active.String()}
		out["jump_count"] = &tengo.Int{Value: int64(c.JumpCount())}
		out["dash_on_cooldown"] = boolObject(c.DashOnCooldown())
		out["pitch"] = &tengo.Float{Value: v.Pitch}
		out["yaw"] = &tengo.Float{Value: v.Yaw}
		out["roll"] = &tengo.Float{Value: v.Roll}
	}
	return &tengo.ImmutableMap{Value: out}
}

func vecObject(v mgl64.Vec3) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{
		&tengo.Float{Value: v.X()},
		&tengo.Float{Value: v.Y()},
		&tengo.Float{Value: v.Z()},
	}}
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectAsFloat(obj tengo.Object) float64 {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value
	case *tengo.Int:
		return float64(v.Value)
	case *tengo.Bool:
		if v.IsFalsy() {
			return 0
		}
		return 1
	default:
		return 0
	}
}
