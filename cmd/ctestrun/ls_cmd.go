// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"ctestrun/internal/manifest"
)

// lsCmd implements `ls <module>...` (§6): list <suite>:<test> pairs after
// stripping common testsuite_/test_ prefixes from display names.
type lsCmd struct {
	common commonFlags
}

func (*lsCmd) Name() string     { return "ls" }
func (*lsCmd) Synopsis() string { return "list <suite>:<test> pairs in the given modules" }
func (*lsCmd) Usage() string {
	return "ls [-v] [-config path] <module>...\n"
}

func (c *lsCmd) SetFlags(f *flag.FlagSet) {
	c.common.register(f)
}

func (c *lsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "ls: at least one module is required")
		return subcommands.ExitUsageError
	}

	if _, _, err := c.common.setup(); err != nil {
		fmt.Fprintf(os.Stderr, "ls: %v\n", err)
		return subcommands.ExitFailure
	}

	for _, path := range f.Args() {
		suite, err := manifest.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ls: loading %q: %v\n", path, err)
			return subcommands.ExitFailure
		}
		suiteName := strings.TrimPrefix(suite.Name, "testsuite_")
		for _, t := range suite.Tests {
			fmt.Printf("%s:%s\n", suiteName, strings.TrimPrefix(t.Name, "test_"))
		}
	}
	return subcommands.ExitSuccess
}
