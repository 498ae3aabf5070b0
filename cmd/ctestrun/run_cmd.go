// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"ctestrun/internal/logging"
	"ctestrun/internal/manifest"
	"ctestrun/internal/reporter"
	"ctestrun/internal/runner"
)

// runCmd implements `run [-n] <module>...` (§6): it loads every given
// module, partitions and runs all of their suites, and prints results via
// the console reporter.
type runCmd struct {
	common commonFlags
	direct bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run all suites in the given modules" }
func (*runCmd) Usage() string {
	return "run [-n] [-v] [-config path] <module>...\n\n" +
		"Runs every test suite exported by each module. -n selects the\n" +
		"direct (in-process, unisolated) runner instead of the default\n" +
		"forking runner.\n"
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	c.common.register(f)
	f.BoolVar(&c.direct, "n", false, "use the direct runner (faster, debuggable, unisolated)")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "run: at least one module is required")
		return subcommands.ExitUsageError
	}

	logger, cfg, err := c.common.setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		return subcommands.ExitFailure
	}
	ctx = logging.AttachLogger(ctx, logger)

	var suites []*manifest.Suite
	for _, path := range f.Args() {
		suite, err := manifest.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "run: loading %q: %v\n", path, err)
			return subcommands.ExitFailure
		}
		logging.ContextDebugf(ctx, "loaded suite %q (%d tests) from %q", suite.Name, len(suite.Tests), path)
		suites = append(suites, suite)
	}

	mode := cfg.RunnerMode
	if c.direct {
		mode = "direct"
	}
	var r runner.Runner
	if mode == "direct" {
		r = runner.NewDirect()
	} else {
		r = runner.NewForking(cfg.MaxOutputBytes)
	}

	top := reporter.NewConsoleWithPolicy(os.Stdout, cfg.Color)

	code, err := runner.RunTestSuites(ctx, r, top, suites)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		return subcommands.ExitFailure
	}
	if code != 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
