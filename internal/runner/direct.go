// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runner

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"ctestrun/internal/driver"
	"ctestrun/internal/failure"
	"ctestrun/internal/hooks"
	"ctestrun/internal/manifest"
	"ctestrun/internal/output"
	"ctestrun/internal/result"
	"ctestrun/internal/sig"
	"ctestrun/internal/stage"
)

// Direct runs test cases in-process (§4.8), trading address-space
// isolation for speed and debuggability; it is selected by the run
// subcommand's -n flag.
type Direct struct{}

// NewDirect constructs a Direct runner.
func NewDirect() *Direct { return &Direct{} }

// shortCircuit is the panic value OnSkip/OnFailure raise to realize
// "never returns"; it is recovered in runOnce, which RunTestCase runs on
// its own goroutine.
type shortCircuit struct {
	tag     hooks.AbortTag
	failure *failure.Failure
}

// directHooks tracks the stage a running test case is in, so a caught
// signal can be attributed to the right stage in its synthesized failure.
type directHooks struct {
	mu    sync.Mutex
	stage stage.Stage
}

func (h *directHooks) OnStageChange(s stage.Stage) {
	h.mu.Lock()
	h.stage = s
	h.mu.Unlock()
}

func (h *directHooks) currentStage() stage.Stage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stage
}

func (h *directHooks) OnSkip(f *failure.Failure) {
	panic(shortCircuit{tag: hooks.AbortSkip, failure: f})
}

func (h *directHooks) OnFailure(f *failure.Failure) {
	panic(shortCircuit{tag: hooks.AbortFail, failure: f})
}

// RunTestCase executes tc in-process.
//
// Standard input/output are redirected for the call's duration: stdin from
// /dev/null, stdout and stderr to a freshly created temporary file unlinked
// immediately after creation (os.CreateTemp then os.Remove — the open
// handle stays valid and readable until closed, the original's open-then-
// unlink idiom).
//
// Synchronous memory faults in the test goroutine are made recoverable via
// runtime/debug.SetPanicOnFault, the direct correspondent to the original's
// sigsetjmp/siglongjmp target. Asynchronous signals are captured through
// internal/sig, but Go delivers them to a dedicated goroutine rather than
// to the faulting thread, so a received signal cannot truly long-jump out
// of the test body the way a real signal handler can: RunTestCase instead
// races the signal against body completion on a channel and reports
// whichever resolves first, leaving a signaled body goroutine to finish
// (or hang) in the background. This is a deliberate, narrower-than-the-
// original translation.
func (r *Direct) RunTestCase(ctx context.Context, tc *manifest.TestCase) *result.Result {
	restoreStdio, tmp, err := redirectStdio()
	if err != nil {
		return &result.Result{
			Outcome: result.Error,
			Failure: failure.New(stage.Setup, nil, failure.CaptureStacktrace(0), "redirecting stdio: %v", err),
		}
	}
	defer restoreStdio()

	h := &directHooks{}

	prevFault := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(prevFault)

	done := make(chan *result.Result, 1)
	sigCh := make(chan syscall.Signal, 1)

	cookie := struct{}{}
	if installErr := sig.Install(func(s syscall.Signal, _ interface{}) {
		select {
		case sigCh <- s:
		default:
		}
	}, cookie); installErr == nil {
		defer sig.Restore()
	}

	go func() {
		// SetPanicOnFault applies per goroutine, so it is set on the
		// goroutine that runs the test body.
		debug.SetPanicOnFault(true)
		done <- runOnce(h, tc)
	}()

	var res *result.Result
	select {
	case res = <-done:
	case s := <-sigCh:
		res = &result.Result{
			Outcome: result.Fail,
			Failure: failure.New(h.currentStage(), nil, failure.CaptureStacktrace(0), "caught signal %v", s),
		}
	}

	res.Output = readBackOutput(tmp)
	return res
}

// runOnce invokes the driver and converts its panic-based short-circuit
// (or an unexpected fault/panic) into a Result. It runs in its own
// goroutine so RunTestCase can race it against an asynchronous signal.
func runOnce(h *directHooks, tc *manifest.TestCase) (res *result.Result) {
	defer func() {
		switch v := recover().(type) {
		case nil:
			res = &result.Result{Outcome: result.Pass}
		case shortCircuit:
			if v.tag == hooks.AbortSkip {
				res = &result.Result{Outcome: result.Skipped, Failure: v.failure}
			} else {
				res = &result.Result{Outcome: result.Fail, Failure: v.failure}
			}
		case error:
			res = &result.Result{
				Outcome: result.Error,
				Failure: failure.New(h.currentStage(), nil, failure.CaptureStacktrace(0), "unexpected fault: %v", v),
			}
		default:
			res = &result.Result{
				Outcome: result.Error,
				Failure: failure.New(h.currentStage(), nil, failure.CaptureStacktrace(0), "unexpected panic: %v", v),
			}
		}
	}()
	driver.Run(h, tc)
	return nil
}

// redirectStdio saves the process's current stdin/stdout/stderr, points
// them at /dev/null and a fresh temp file respectively, and returns a
// restore closure plus the temp file (left open, already unlinked) for
// later read-back.
func redirectStdio() (restore func(), tmp *os.File, err error) {
	devnull, err := os.OpenFile(os.DevNull, os.O_RDONLY, 0)
	if err != nil {
		return nil, nil, err
	}
	defer devnull.Close()

	// The temp directory comes from the first of TMPDIR, TEMP, TMP, TEMPDIR
	// that is set; with none set, os.CreateTemp uses os.TempDir.
	dir := ""
	for _, name := range []string{"TMPDIR", "TEMP", "TMP", "TEMPDIR"} {
		if v := os.Getenv(name); v != "" {
			dir = v
			break
		}
	}
	tmp, err = os.CreateTemp(dir, "ctestrun-output-")
	if err != nil {
		return nil, nil, err
	}
	os.Remove(tmp.Name())

	savedStdin, err := unix.Dup(0)
	if err != nil {
		tmp.Close()
		return nil, nil, err
	}
	savedStdout, err := unix.Dup(1)
	if err != nil {
		unix.Close(savedStdin)
		tmp.Close()
		return nil, nil, err
	}
	savedStderr, err := unix.Dup(2)
	if err != nil {
		unix.Close(savedStdin)
		unix.Close(savedStdout)
		tmp.Close()
		return nil, nil, err
	}

	unix.Dup2(int(devnull.Fd()), 0)
	unix.Dup2(int(tmp.Fd()), 1)
	unix.Dup2(int(tmp.Fd()), 2)

	restore = func() {
		unix.Dup2(savedStdin, 0)
		unix.Dup2(savedStdout, 1)
		unix.Dup2(savedStderr, 2)
		unix.Close(savedStdin)
		unix.Close(savedStdout)
		unix.Close(savedStderr)
	}
	return restore, tmp, nil
}

// readBackOutput reads tmp from the start and builds an Output, closing
// tmp afterwards. A file with zero bytes yields a nil Output.
func readBackOutput(tmp *os.File) *output.Output {
	defer tmp.Close()
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil
	}
	buf, err := io.ReadAll(tmp)
	if err != nil || len(buf) == 0 {
		return nil
	}
	return output.New(buf)
}
