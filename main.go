package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/milk9111/temporaldash/prefabs"
	"github.com/milk9111/temporaldash/trace"
)

func main() {
	ticks := flag.Int("ticks", 0, "ticks to simulate (0 runs until the scenario finishes)")
	step := flag.Float64("dt", defaultStep, "fixed step in seconds")
	scenario := flag.String("scenario", "", "scenario script in prefabs/scripts (defaults to the player prefab's)")
	arenaName := flag.String("arena", "arena.yaml", "arena prefab")
	tracePath := flag.String("trace", "", "write a .jsonl.zst trace to this path")
	observe := flag.String("observe", "", "serve the live frame feed on this address at /ws")
	watch := flag.Bool("watch", false, "reload tuning and scripts from prefabs/ when they change")
	realtime := flag.Bool("realtime", false, "pace ticks to wall clock time")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger, runOptions{
		ticks:     *ticks,
		step:      *step,
		scenario:  *scenario,
		arena:     *arenaName,
		tracePath: *tracePath,
		observe:   *observe,
		watch:     *watch,
		realtime:  *realtime,
	}); err != nil {
		logger.Error("run failed", "err", err)
		os.Exit(1)
	}
}

type runOptions struct {
	ticks     int
	step      float64
	scenario  string
	arena     string
	tracePath string
	observe   string
	watch     bool
	realtime  bool
}

func run(logger *slog.Logger, opts runOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	totals := trace.NewSummarizer()
	sinks := []trace.Sink{totals}

	if opts.tracePath != "" {
		w, err := trace.Create(opts.tracePath)
		if err != nil {
			return err
		}
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("trace close failed", "err", err)
			}
			logger.Info("trace written", "path", opts.tracePath, "frames", w.Frames())
		}()
		sinks = append(sinks, w)
	}

	if opts.observe != "" {
		hub := trace.NewHub(logger)
		mux := http.NewServeMux()
		mux.Handle("/ws", hub.Handler())
		srv := &http.Server{Addr: opts.observe, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("observer server failed", "err", err)
			}
		}()
		defer func() {
			_ = hub.Close()
			shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdown)
		}()
		logger.Info("observer feed listening", "addr", opts.observe, "path", "/ws")
		sinks = append(sinks, hub)
	}

	game, err := NewGame(GameConfig{
		Arena:    opts.arena,
		Scenario: opts.scenario,
		Step:     opts.step,
		Sinks:    sinks,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	var changes <-chan string
	var watchErrs <-chan error
	if opts.watch {
		watcher, err := prefabs.NewWatcher("prefabs", "prefabs/scripts")
		if err != nil {
			return err
		}
		defer watcher.Close()
		changes, watchErrs = watcher.Events, watcher.Errors
		logger.Info("watching prefabs for changes")
	}

	var pace <-chan time.Time
	if opts.realtime {
		ticker := time.NewTicker(time.Duration(game.Step() * float64(time.Second)))
		defer ticker.Stop()
		pace = ticker.C
	}

loop:
	for opts.ticks <= 0 || game.Tick() < uint64(opts.ticks) {
		if opts.ticks <= 0 && game.Done() && !opts.watch {
			break
		}
		select {
		case <-ctx.Done():
			logger.Info("interrupted", "tick", game.Tick())
			break loop
		default:
		}

	drain:
		for {
			select {
			case path, ok := <-changes:
				if !ok {
					changes = nil
					continue
				}
				game.HandleFileChange(path)
			case err, ok := <-watchErrs:
				if !ok {
					watchErrs = nil
					continue
				}
				logger.Warn("watch error", "err", err)
			default:
				break drain
			}
		}

		if err := game.Update(); err != nil {
			return err
		}

		if pace != nil {
			select {
			case <-pace:
			case <-ctx.Done():
			}
		}
	}

	sum := totals.Summary()
	logger.Info("run finished",
		"ticks", game.Tick(),
		"duration", sum.Duration,
		"max_speed", sum.MaxSpeed,
		"jumps", sum.Jumps,
		"landings", sum.Landings,
		"activations", sum.Activations,
		"modifier_time", sum.ModifierTime,
	)
	return nil
}
