//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"calcpad/app"
	"calcpad/hal"
	"calcpad/internal/buildinfo"
	"calcpad/internal/config"
)

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg.Version {
		fmt.Println(buildinfo.Long())
		return
	}
	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Host) error {
	appCfg := app.Config{LogEvaluations: cfg.Log}

	if !cfg.Headless {
		return hal.RunWindow(func(h hal.HAL) func() error {
			return app.New(h, appCfg).Step
		}, hal.WindowConfig{Scale: cfg.Scale, Script: cfg.Script})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var sys *app.System
	err := hal.RunHeadless(ctx, func(h hal.HAL) func() error {
		sys = app.New(h, appCfg)
		return sys.Step
	}, hal.HeadlessConfig{
		Enabled:    true,
		Hz:         cfg.Hz,
		Ticks:      cfg.Ticks,
		Script:     cfg.Script,
		ScriptFile: cfg.ScriptFile,
		Watch:      cfg.Watch,
	})
	if sys != nil {
		if line := sys.Display().Line(); line != "" {
			fmt.Println(line)
		}
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
