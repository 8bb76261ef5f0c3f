package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/Ru51kXD/Likvi/internal/achievements"
	"github.com/Ru51kXD/Likvi/internal/config"
	"github.com/Ru51kXD/Likvi/internal/log"
	"github.com/Ru51kXD/Likvi/internal/scenario"
	"github.com/Ru51kXD/Likvi/internal/sim"
	"github.com/Ru51kXD/Likvi/internal/world"
)

type flags struct {
	config    string
	world     string
	scenarios []string
	steps     int
	ups       int
	duration  time.Duration
	throttle  float64
	parallel  int
}

func main() {
	var f flags
	pflag.StringVar(&f.config, "config", "", "Config file (yaml, json or toml)")
	pflag.StringVar(&f.world, "world", "", "World YAML; the built-in world when empty")
	pflag.StringArrayVar(&f.scenarios, "scenario", nil, "Scenario YAML to play (repeatable)")
	pflag.IntVar(&f.steps, "steps", 1000, "Number of fixed updates to run without scenarios")
	pflag.IntVar(&f.ups, "ups", 0, "Fixed updates per second, overrides sim.tickRate")
	pflag.DurationVar(&f.duration, "duration", 0, "Wall-clock duration to run if steps=0 (e.g., 2s)")
	pflag.Float64Var(&f.throttle, "throttle", -1, "Constant throttle without scenarios; hover when negative")
	pflag.IntVar(&f.parallel, "parallel", runtime.NumCPU(), "Scenarios run concurrently")
	pflag.Parse()

	if err := run(f); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(f flags) error {
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	if f.ups > 0 {
		cfg.Sim.TickRate = float64(f.ups)
	}

	logger := log.New(cfg.LogLevel())
	defer logger.Sync()

	w := world.Default()
	if f.world != "" {
		if w, err = world.LoadFile(f.world); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(f.scenarios) > 0 {
		return runScenarios(ctx, f, cfg, w, logger)
	}
	return runFree(ctx, f, cfg, w, logger)
}

func runScenarios(ctx context.Context, f flags, cfg *config.Config, w *world.World, logger *log.Logger) error {
	scs := make([]*scenario.Scenario, 0, len(f.scenarios))
	for _, path := range f.scenarios {
		sc, err := scenario.LoadFile(path)
		if err != nil {
			return err
		}
		scs = append(scs, sc)
	}

	results := make([]scenario.Result, len(scs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, f.parallel))
	for i, sc := range scs {
		g.Go(func() error {
			l := logger.With(log.String("scenario", sc.Name))
			opts := cfg.SessionOptions(w.Registry(l), l)
			res, err := scenario.Run(ctx, sc, opts)
			results[i] = res
			return err
		})
	}
	err := g.Wait()

	for _, res := range results {
		printResult(res)
	}
	return err
}

func printResult(res scenario.Result) {
	s := res.Final
	fmt.Printf("%-24s %-9s t=%6.2fs alt=%7.2fm speed=%6.1fkm/h dist=%7.1fm path=%7.1fm",
		res.Name, res.Outcome, res.SimTime, s.Telemetry.Altitude, s.Telemetry.SpeedKmh,
		s.Stats.Distance, res.PathLength)
	if res.Crash != nil {
		fmt.Printf(" hit=%s", res.Crash.Object.Name)
	}
	for _, a := range achievements.NewTracker().Check(s) {
		fmt.Printf(" [%s]", a.ID)
	}
	fmt.Println()
}

// runFree flies one session at a constant throttle for a number of steps or a wall-clock duration.
func runFree(ctx context.Context, f flags, cfg *config.Config, w *world.World, logger *log.Logger) error {
	s := sim.NewSession(cfg.SessionOptions(w.Registry(logger), logger))
	if err := s.StartFlight(); err != nil {
		return err
	}
	throttle := f.throttle
	if throttle < 0 {
		throttle = s.Dynamics().HoverThrottle()
	}
	s.SetThrottle(throttle)

	var performed int
	if f.steps > 0 {
		dt := s.StepDuration().Seconds()
		for i := 0; i < f.steps && ctx.Err() == nil; i++ {
			s.Step(dt)
			performed++
		}
	} else {
		duration := f.duration
		if duration <= 0 {
			duration = time.Second
		}
		ticker := time.NewTicker(s.StepDuration())
		defer ticker.Stop()
		deadline := time.Now().Add(duration)
		prev := time.Now()
	loop:
		for time.Now().Before(deadline) {
			select {
			case <-ctx.Done():
				break loop
			case now := <-ticker.C:
				performed += s.Advance(now.Sub(prev))
				prev = now
			}
		}
	}

	snap := s.Snapshot()
	p := snap.Position
	fmt.Printf("Completed %d steps. pos=(%.2f, %.2f, %.2f) phase=%s throttle=%.0f%% geo=(%.6f, %.6f)\n",
		performed, p.X(), p.Y(), p.Z(), snap.Phase, snap.Controls.Throttle*100, snap.Telemetry.Geo.Lat, snap.Telemetry.Geo.Lon)
	return nil
}
