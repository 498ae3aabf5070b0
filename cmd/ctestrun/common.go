// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"flag"
	"os"

	"ctestrun/internal/logging"
	"ctestrun/internal/runconfig"
)

// commonFlags are the flags both subcommands accept (§6): -v for verbose
// logging, -config for an explicit configuration file.
type commonFlags struct {
	verbose bool
	config  string
}

func (c *commonFlags) register(f *flag.FlagSet) {
	f.BoolVar(&c.verbose, "v", false, "enable verbose (debug-level) logging")
	f.StringVar(&c.config, "config", "", "path to an optional YAML configuration file")
}

// setup builds the logger and loads configuration for one subcommand
// invocation.
func (c *commonFlags) setup() (logging.Logger, runconfig.Config, error) {
	level := logging.LevelInfo
	if c.verbose {
		level = logging.LevelDebug
	}
	logger := logging.NewSinkLogger(level, true, logging.NewWriterSink(os.Stderr))

	cfg, err := runconfig.Load(c.config)
	return logger, cfg, err
}
