//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// WindowConfig controls the desktop window runner.
type WindowConfig struct {
	Scale  int
	Script string
}

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Hz      int
	Ticks   uint64

	// Script is typed into the keyboard once at startup.
	Script string
	// ScriptFile is read and typed at startup; with Watch it is replayed,
	// prefixed with a clear key, every time the file changes.
	ScriptFile string
	Watch      bool

	// Out receives log lines and the status line (default os.Stdout). The
	// status line is rendered live only when Out is a terminal.
	Out io.Writer
}

// RunHeadless runs the OS without opening a window.
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	if cfg.Out == nil {
		cfg.Out = defaultOutput()
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	h := newHostHAL(cfg.Out)
	if f, ok := cfg.Out.(*os.File); ok && isTerminal(f) {
		live := newLiveConsole(f)
		defer live.stop()
		h.logger.setOutput(live.bypass())
		h.status.setSink(live.show)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	script := cfg.Script
	if cfg.ScriptFile != "" {
		s, err := readScript(cfg.ScriptFile)
		if err != nil {
			return err
		}
		script += s
	}

	step := newApp(h)

	if script != "" {
		go func() { _ = h.kbd.inject(ctx, script) }()
	}
	if cfg.ScriptFile != "" && cfg.Watch {
		go func() {
			err := watchScript(ctx, cfg.ScriptFile, func(s string) {
				_ = h.kbd.inject(ctx, "c"+s)
			})
			if err != nil && ctx.Err() == nil {
				h.logger.WriteLineString("script watch: " + err.Error())
			}
		}()
	}

	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			h.t.step(1)
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}
