// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package runconfig loads the engine's optional run-time settings: default
// runner mode, output-capture limits, and reporter color policy (§2.1).
// The binary runs correctly with no configuration file present; a file,
// when given, only overrides Default's fields that it sets.
package runconfig

import (
	"os"

	"github.com/spf13/viper"

	"ctestrun/internal/xerrors"
)

// Config is the engine's run-time settings.
type Config struct {
	// RunnerMode is "forking" (the default, isolated) or "direct" (the -n
	// flag's faster, unisolated mode).
	RunnerMode string `mapstructure:"runner_mode"`
	// MaxOutputBytes bounds how large a single test case's captured
	// output may grow before the output reader degrades to drain-and-drop
	// (§4.4); it mirrors internal/output's maxCapacity constant as a
	// user-tunable default.
	MaxOutputBytes int `mapstructure:"max_output_bytes"`
	// Color is "auto" (detect via terminal), "always", or "never" — the
	// console reporter's colorization policy (§4.11).
	Color string `mapstructure:"color"`
}

// Default returns the engine's built-in settings, used verbatim when no
// configuration file is given.
func Default() Config {
	return Config{
		RunnerMode:     "forking",
		MaxOutputBytes: 64 << 20,
		Color:          "auto",
	}
}

// Load reads an optional YAML configuration file at path (a
// gopkg.in/yaml.v3-compatible schema) via viper, merging its fields over
// Default(). An empty path, or a path that does not exist, is not an
// error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, xerrors.Wrapf(err, "reading config file %q", path)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, xerrors.Wrapf(err, "parsing config file %q", path)
	}
	return cfg, nil
}
