// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Command ctestrun loads dynamically loadable test modules (Go plugins)
// and runs their test suites, isolating each test case in its own
// re-exec'd child process by default.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"ctestrun/internal/command"
	"ctestrun/internal/logging"
	"ctestrun/internal/runner"
)

func main() {
	// A re-exec'd forking-runner child is identified by this environment
	// variable (§4.9); it never reaches ordinary subcommand dispatch.
	if os.Getenv(runner.ChildEnvVar) != "" {
		runner.RunChild()
		return
	}

	ctx := logging.AttachLogger(context.Background(), logging.NewSinkLogger(logging.LevelInfo, true, logging.NewWriterSink(os.Stderr)))
	command.InstallSignalHandler(ctx, func(os.Signal) {})

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&lsCmd{}, "")

	flag.Parse()
	os.Exit(int(subcommands.Execute(ctx)))
}
