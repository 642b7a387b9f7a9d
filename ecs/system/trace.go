package system

import (
	"io"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/temporaldash/arena"
	"github.com/milk9111/temporaldash/ecs"
	"github.com/milk9111/temporaldash/ecs/component"
	"github.com/milk9111/temporaldash/trace"
)

// TraceSystem emits one frame per traversal entity each tick to every
// sink. It runs last so frames see the final state of the tick.
type TraceSystem struct {
	sinks  []trace.Sink
	log    *slog.Logger
	failed map[int]bool
}

func NewTraceSystem(logger *slog.Logger, sinks ...trace.Sink) *TraceSystem {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &TraceSystem{log: logger, failed: make(map[int]bool)}
	for _, sink := range sinks {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
	return s
}

func (s *TraceSystem) Update(w *ecs.World) {
	if w == nil || len(s.sinks) == 0 {
		return
	}

	events := make(map[ecs.Entity][]string)
	for _, ev := range w.Events().Pending() {
		if e, ok := eventEntity(ev); ok {
			events[e] = append(events[e], ev.Type)
		}
	}

	ecs.ForEach2(w, component.BodyComponent.Kind(), component.TraversalComponent.Kind(), func(e ecs.Entity, b *arena.Body, tr *component.Traversal) {
		f := BuildFrame(w, e, b, tr)
		f.Events = events[e]
		for i, sink := range s.sinks {
			if err := sink.WriteFrame(f); err != nil && !s.failed[i] {
				s.failed[i] = true
				s.log.Warn("trace: sink write failed", "sink", i, "err", err)
			}
		}
	})
}

// BuildFrame snapshots one traversal entity.
func BuildFrame(w *ecs.World, e ecs.Entity, b *arena.Body, tr *component.Traversal) trace.Frame {
	ctrl := tr.Controller
	view := ctrl.View()
	f := trace.Frame{
		Tick:           w.Tick(),
		Time:           w.Time(),
		Entity:         uint64(e),
		Position:       b.Pos,
		Velocity:       b.Vel,
		Speed:          b.Vel.Len(),
		Mode:           b.Mode.String(),
		Modifier:       ctrl.State().Active.String(),
		JumpCount:      ctrl.JumpCount(),
		Grounded:       b.Grounded,
		DashOnCooldown: ctrl.DashOnCooldown(),
		View:           [3]float64{view.Pitch, view.Yaw, view.Roll},
	}
	if p, ok := ctrl.HookAnchor(); ok {
		f.HookAnchor = vecPtr(p)
	}
	if n, ok := ctrl.WallNormal(); ok {
		f.WallNormal = vecPtr(n)
	}
	return f
}

func vecPtr(v mgl64.Vec3) *[3]float64 {
	out := [3]float64(v)
	return &out
}

func eventEntity(ev ecs.Event) (ecs.Entity, bool) {
	switch data := ev.Data.(type) {
	case ecs.BodyEvent:
		return data.Entity, true
	case ecs.WallEvent:
		return data.Entity, true
	case ecs.ModifierEvent:
		return data.Entity, true
	}
	return 0, false
}
