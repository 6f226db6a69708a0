// Command pond runs the evolutionary pond simulation headless, logging
// window statistics to CSV and recording the run in a SQLite journal.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tetch/pond/config"
	"github.com/tetch/pond/journal"
	"github.com/tetch/pond/telemetry"
	"github.com/tetch/pond/world"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs (empty = disabled)")
	journalPath := flag.String("journal", "", "SQLite journal path (empty = disabled)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config, -1 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	timeScale := flag.Float64("time-scale", 1, "Simulation time multiplier")
	logStats := flag.Bool("log-stats", true, "Log window stats via slog")
	dumpConfig := flag.String("dump-config", "", "Write the effective config to this path and exit")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *seed == -1 {
		cfg.Seed = time.Now().UnixNano()
	} else if *seed != 0 {
		cfg.Seed = *seed
	}
	if *statsWindow > 0 {
		cfg.Telemetry.WindowSec = *statsWindow
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	if *dumpConfig != "" {
		if err := cfg.WriteYAML(*dumpConfig); err != nil {
			slog.Error("failed to write config", "error", err)
			os.Exit(1)
		}
		return
	}

	w, err := world.New(cfg)
	if err != nil {
		slog.Error("failed to build world", "error", err)
		os.Exit(1)
	}
	defer w.Close()
	if err := w.SetTimeScale(*timeScale); err != nil {
		slog.Error("invalid time scale", "error", err)
		os.Exit(1)
	}

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to set up output", "error", err)
		os.Exit(1)
	}
	defer out.Close()

	jnl, err := journal.Open(*journalPath, cfg.Seed)
	if err != nil {
		slog.Error("failed to open journal", "error", err)
		os.Exit(1)
	}
	defer jnl.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	slog.Info("starting simulation",
		"seed", cfg.Seed,
		"run", jnl.RunID(),
		"population", w.Population(),
		"max_ticks", *maxTicks,
	)
	start := time.Now()

	dt := cfg.Physics.DT
	collector := w.Collector()
running:
	for {
		select {
		case <-stop:
			slog.Info("interrupted", "tick", w.Tick())
			break running
		default:
		}

		w.Step(dt)
		snap := w.Snapshot()

		if collector.ShouldFlush(snap.Env.Time) {
			stats := collector.Flush(w.Tick(), snap.Env.Time, snap)
			if *logStats {
				stats.LogStats()
			}
			if err := out.WriteStats(stats); err != nil {
				slog.Error("failed to write stats", "error", err)
			}
			if err := jnl.WriteWindow(stats); err != nil {
				slog.Error("failed to journal window", "error", err)
			}
			if err := jnl.SaveSnapshot(snap); err != nil {
				slog.Error("failed to checkpoint snapshot", "error", err)
			}
		}

		if w.Population() == 0 {
			slog.Info("population extinct", "tick", w.Tick())
			break
		}
		if *maxTicks > 0 && w.Tick() >= *maxTicks {
			break
		}
	}

	snap := w.Snapshot()
	slog.Info("simulation finished",
		"ticks", humanize.Comma(w.Tick()),
		"sim_time_sec", snap.Env.Time,
		"wall_time", time.Since(start).Round(time.Second).String(),
		"population", w.Population(),
		"max_generation", snap.MaxGeneration,
	)
}
