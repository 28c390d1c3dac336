package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jakecoffman/cp/v2"
	"github.com/oliverbestmann/prom"
	"github.com/oliverbestmann/prom/config"
	"github.com/oliverbestmann/prom/internal/demo"
	"github.com/oliverbestmann/prom/physics"
	"github.com/oliverbestmann/prom/promebiten"
	"github.com/oliverbestmann/prom/promterm"
	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a toml or yaml config file")
	driver := flag.String("driver", "", "host driver, \"ebiten\" or \"terminal\"")
	profileMode := flag.String("profile", "", "write a \"cpu\" or \"mem\" profile")
	flag.Parse()

	cfg := config.Defaults()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if *driver != "" {
		cfg.Driver = *driver
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}

	err = profiled(*profileMode, func() error { return run(cfg, logger) })
	if err != nil {
		logger.Error("Demo failed", zap.Error(err))
	}

	_ = logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}

// profiled runs fn with the given profile mode enabled.
func profiled(mode string, fn func() error) error {
	switch mode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.MemProfileRate(512), profile.ProfilePath("."), profile.Quiet).Stop()
	default:
		return errors.Errorf("unknown profile mode %q", mode)
	}

	return fn()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	app := prom.NewApp(prom.WithLogger(logger))

	app.AddPlugin(prom.ClockPlugin{Scale: cfg.Time.Scale})
	app.AddPlugin(prom.FPSPlugin{Interval: cfg.Time.FPSInterval})

	app.AddPlugin(physics.Plugin{
		Gravity:  cp.Vector{X: cfg.Physics.GravityX, Y: cfg.Physics.GravityY},
		Substeps: cfg.Physics.Substeps,
	})

	app.AddPlugin(demo.Plugin{
		Title: cfg.Window.Title,
		Arena: demo.Arena{Width: float64(cfg.Window.Width), Height: float64(cfg.Window.Height)},
		Balls: cfg.Demo.Balls,

		SpawnInterval: cfg.Demo.SpawnInterval,
	})

	switch cfg.Driver {
	case "ebiten":
		app.InsertSystem(promebiten.DrawPhase, drawEbitenSystem)

		return promebiten.Run(app, promebiten.WindowConfig{
			Title:  cfg.Window.Title,
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
		})

	case "terminal":
		app.InsertSystem(promterm.DrawPhase, drawTerminalSystem)

		screen, err := tcell.NewScreen()
		if err != nil {
			return errors.Wrap(err, "create screen")
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		return promterm.New(app, screen, tickRate(cfg)).Run(ctx)

	default:
		return errors.Errorf("unknown driver %q", cfg.Driver)
	}
}

func tickRate(cfg *config.Config) time.Duration {
	if cfg.Time.TickRate > 0 {
		return cfg.Time.TickRate
	}

	return time.Second / 30
}
