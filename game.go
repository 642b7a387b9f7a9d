package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/milk9111/temporaldash/ecs"
	"github.com/milk9111/temporaldash/ecs/component"
	"github.com/milk9111/temporaldash/ecs/entity"
	"github.com/milk9111/temporaldash/ecs/system"
	"github.com/milk9111/temporaldash/prefabs"
	"github.com/milk9111/temporaldash/trace"
)

const defaultStep = 1.0 / 60

// GameConfig selects the arena, scenario and frame sinks of a run.
type GameConfig struct {
	Arena    string
	Scenario string
	Step     float64
	Sinks    []trace.Sink
	Logger   *slog.Logger
}

// Game is the headless simulation: one arena, one scripted player and the
// system pipeline, stepped at a fixed rate.
type Game struct {
	world     *ecs.World
	scheduler *ecs.Scheduler
	scripts   *system.ScriptInputSystem
	player    ecs.Entity
	step      float64
	log       *slog.Logger
}

func NewGame(cfg GameConfig) (*Game, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	step := cfg.Step
	if step <= 0 {
		step = defaultStep
	}

	w := ecs.NewWorld()
	if _, err := entity.LoadArena(w, cfg.Arena, logger); err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	opts := []entity.BuildOption{entity.WithLogger(logger)}
	if cfg.Scenario != "" {
		opts = append(opts, entity.WithScript(cfg.Scenario))
	}
	player, err := entity.NewPlayer(w, opts...)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	scripts := system.NewScriptInputSystem(system.WithScriptLogger(logger))
	return &Game{
		world: w,
		scheduler: ecs.NewScheduler(
			scripts,
			system.NewTraversalSystem(),
			system.NewKinematicsSystem(),
			system.NewWallVolumeSystem(),
			system.NewProjectileSystem(),
			system.NewTTLSystem(),
			system.NewTraceSystem(logger, cfg.Sinks...),
		),
		scripts: scripts,
		player:  player,
		step:    step,
		log:     logger,
	}, nil
}

// Update advances the world by one fixed step.
func (g *Game) Update() error {
	if g == nil || g.world == nil {
		return fmt.Errorf("game: not initialized")
	}
	g.scheduler.Step(g.world, g.step)
	return nil
}

func (g *Game) Tick() uint64 {
	return g.world.Tick()
}

func (g *Game) Step() float64 {
	return g.step
}

// Done reports whether the player's scenario script has finished.
func (g *Game) Done() bool {
	sc, ok := ecs.Get(g.world, g.player, component.ScriptComponent.Kind())
	return !ok || sc.Done
}

// HandleFileChange applies an edited prefab file between ticks: player
// tuning is pushed into the live controller and script edits restart the
// scenario.
func (g *Game) HandleFileChange(path string) {
	switch {
	case prefabs.IsTuningFile(path, entity.PlayerPrefab):
		tuning, err := prefabs.LoadTuning(entity.PlayerPrefab)
		if err != nil {
			g.log.Warn("tuning reload failed", "path", path, "err", err)
			return
		}
		tr, ok := ecs.Get(g.world, g.player, component.TraversalComponent.Kind())
		if !ok || tr.Controller == nil {
			return
		}
		tr.Controller.SetTuning(tuning)
		g.log.Info("tuning reloaded", "path", path, "tick", g.world.Tick())
	case filepath.Ext(path) == ".tengo":
		if sc, ok := ecs.Get(g.world, g.player, component.ScriptComponent.Kind()); ok {
			sc.Done = false
		}
		g.scripts.Reload()
		g.log.Info("scripts reloaded", "path", path, "tick", g.world.Tick())
	default:
		g.log.Debug("ignoring prefab change", "path", path)
	}
}
