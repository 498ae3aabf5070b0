// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package command provides process-level conveniences for the ctestrun CLI:
// graceful shutdown on SIGINT/SIGTERM, distinct from the test-case-scoped
// signal capture facility in internal/sig used by the runners themselves.
package command

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"

	"golang.org/x/sys/unix"

	"ctestrun/internal/logging"
	"ctestrun/internal/runner"
)

var selfName = filepath.Base(os.Args[0])

// InstallSignalHandler installs a handler that calls callback then, on
// SIGTERM specifically, dumps goroutines and terminates every in-flight
// forking-runner child (plus their own descendants) before exiting with
// status 1. SIGTERM is the signal a test harness or CI job sends on
// timeout, so this is the one case where leaving a fleet of orphaned,
// re-exec'd case runners behind would otherwise hang the caller.
//
// Progress is logged through the Logger attached to ctx, if any, rather
// than written directly: InstallSignalHandler runs before a subcommand has
// necessarily loaded its own configuration, so the caller decides what (if
// anything) is listening.
func InstallSignalHandler(ctx context.Context, callback func(sig os.Signal)) {
	ch := make(chan os.Signal, 1)
	go func() {
		sig := <-ch
		logging.ContextLogf(ctx, "%s: caught %v signal; shutting down", selfName, sig)
		callback(sig)
		if sig == unix.SIGTERM {
			dumpAndTerminate(ctx)
		}
		os.Exit(1)
	}()
	signal.Notify(ch, unix.SIGINT, unix.SIGTERM)
}

func dumpAndTerminate(ctx context.Context) {
	logging.ContextWarnf(ctx, "%s: dumping goroutines before terminating in-flight case runners", selfName)
	if p := pprof.Lookup("goroutine"); p != nil {
		p.WriteTo(logWriter{ctx}, 2)
	}

	n := runner.TerminateChildren(logWriter{ctx})
	logging.ContextLogf(ctx, "%s: terminated %d in-flight case runner process(es)", selfName, n)
}

// logWriter adapts the context's Logger to io.Writer, for APIs (pprof's
// WriteTo, runner.TerminateChildren) that want a stream rather than a
// format string.
type logWriter struct {
	ctx context.Context
}

func (w logWriter) Write(p []byte) (int, error) {
	logging.ContextWarnf(w.ctx, "%s", string(p))
	return len(p), nil
}
