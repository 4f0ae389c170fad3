// Package config loads host runner settings from the environment and flags.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Host holds the settings for the desktop and headless runners.
type Host struct {
	Headless   bool   `env:"CALCPAD_HEADLESS"`
	Hz         int    `env:"CALCPAD_HZ"          envDefault:"60"`
	Ticks      uint64 `env:"CALCPAD_TICKS"`
	Script     string `env:"CALCPAD_SCRIPT"`
	ScriptFile string `env:"CALCPAD_SCRIPT_FILE"`
	Watch      bool   `env:"CALCPAD_WATCH"`
	Scale      int    `env:"CALCPAD_SCALE"       envDefault:"2"`
	Log        bool   `env:"CALCPAD_LOG"         envDefault:"true"`

	Version bool
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Parse reads the environment, then lets flags in args override it.
func Parse(fs *flag.FlagSet, args []string) (Host, error) {
	var cfg Host
	if err := ParseEnv(&cfg); err != nil {
		return Host{}, err
	}

	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "Run without a window.")
	fs.IntVar(&cfg.Hz, "hz", cfg.Hz, "Tick rate in headless mode.")
	fs.Uint64Var(&cfg.Ticks, "ticks", cfg.Ticks, "Stop after N ticks in headless mode (0 = run forever).")
	fs.StringVar(&cfg.Script, "script", cfg.Script, "Keys to type at startup, e.g. \"12+8=\".")
	fs.StringVar(&cfg.ScriptFile, "script-file", cfg.ScriptFile, "File of keys to type at startup.")
	fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "Replay -script-file whenever it changes (headless only).")
	fs.IntVar(&cfg.Scale, "scale", cfg.Scale, "Window scale factor.")
	fs.BoolVar(&cfg.Log, "log", cfg.Log, "Log every evaluation and clear.")
	fs.BoolVar(&cfg.Version, "version", false, "Print the build version and exit.")
	if err := fs.Parse(args); err != nil {
		return Host{}, err
	}
	if cfg.Hz <= 0 {
		return Host{}, fmt.Errorf("hz must be positive, got %d", cfg.Hz)
	}
	if cfg.Scale <= 0 {
		return Host{}, fmt.Errorf("scale must be positive, got %d", cfg.Scale)
	}
	if cfg.Watch && cfg.ScriptFile == "" {
		return Host{}, fmt.Errorf("watch requires a script file")
	}
	return cfg, nil
}
