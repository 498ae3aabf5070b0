// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"ctestrun/internal/events"
	"ctestrun/internal/failure"
	"ctestrun/internal/iomux"
	"ctestrun/internal/manifest"
	"ctestrun/internal/output"
	"ctestrun/internal/result"
	"ctestrun/internal/stage"
	"ctestrun/internal/xerrors"
)

// ChildEnvVar carries the JSON-encoded address (module path, test index,
// row index) of the single test case a re-exec'd child should run (§4.9).
// An environment variable, rather than a flag, keeps this invisible to the
// real CLI's own flag parsing and -h output.
const ChildEnvVar = "CTESTRUN_CHILD_CASE"

// caseDeadline bounds how long the parent supervises a child's pipes, from
// the start of the child until both pipes have closed, before escalating to
// SIGKILL — the per-case monotonic deadline resolving §9's placeholder Open
// Question. The wait for the child's exit after both pipes close is not
// bounded by it.
const caseDeadline = 30 * time.Second

// Forking runs each test case in a freshly re-exec'd child process
// (§4.9), trading process-per-case overhead for address-space isolation:
// a crashing or hanging case cannot take down the parent or any other
// case's result.
//
// Go offers no fork()-without-exec() that survives a multi-threaded
// runtime, so "fork" is realized as re-executing the current binary
// (os.Executable) with the case address passed via ChildEnvVar and the
// event/output pipe write-ends inherited through exec.Cmd.ExtraFiles.
type Forking struct {
	// Executable overrides the binary path used to re-exec; when it is
	// empty, RunTestCase resolves it via os.Executable.
	Executable string

	// MaxOutputBytes caps how large a single case's captured output may
	// grow before the output reader degrades to drain-and-drop
	// (runconfig.Config.MaxOutputBytes); non-positive falls back to
	// internal/output's own default.
	MaxOutputBytes int
}

// NewForking constructs a Forking runner whose output capture is capped at
// maxOutputBytes (runconfig.Config.MaxOutputBytes; non-positive selects
// internal/output's built-in default).
func NewForking(maxOutputBytes int) *Forking {
	return &Forking{MaxOutputBytes: maxOutputBytes}
}

// caseAddress identifies one test case well enough to re-find it after a
// fresh module load in a child process, where the parent's live *Test
// pointer cannot be shipped across the process boundary.
type caseAddress struct {
	ModulePath string `json:"module"`
	TestIndex  int    `json:"test"`
	RowIndex   int    `json:"row"`
}

func addressOf(tc *manifest.TestCase) (caseAddress, bool) {
	suite := tc.Test.Suite()
	if suite == nil || suite.ModulePath == "" {
		return caseAddress{}, false
	}
	for i, t := range suite.Tests {
		if t == tc.Test {
			return caseAddress{ModulePath: suite.ModulePath, TestIndex: i, RowIndex: tc.RowIndex}, true
		}
	}
	return caseAddress{}, false
}

// resolve looks up the addressed test case from a freshly loaded suite —
// the child side of the address round-trip.
func (a caseAddress) resolve(load func(path string) (*manifest.Suite, error)) (*manifest.TestCase, error) {
	suite, err := load(a.ModulePath)
	if err != nil {
		return nil, err
	}
	if a.TestIndex < 0 || a.TestIndex >= len(suite.Tests) {
		return nil, fmt.Errorf("test index %d out of range for module %q", a.TestIndex, a.ModulePath)
	}
	test := suite.Tests[a.TestIndex]
	for _, c := range manifest.MaterializeTestCases(test) {
		if c.RowIndex == a.RowIndex {
			return c, nil
		}
	}
	return nil, fmt.Errorf("row index %d not found for test %q", a.RowIndex, test.Name)
}

// failureConsumer is the parent-side events.Consumer: it keeps only the
// most recently reported failure, per §4.9 ("a failure-collecting
// consumer which keeps the most recent failure and drops earlier ones").
type failureConsumer struct {
	mu      sync.Mutex
	failure *failure.Failure
}

func (c *failureConsumer) OnStageChange(stage.Stage) {}

func (c *failureConsumer) OnFailure(f *failure.Failure) {
	c.mu.Lock()
	c.failure = f
	c.mu.Unlock()
}

func (c *failureConsumer) take() *failure.Failure {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure
}

// RunTestCase re-executes the current binary to run tc in an isolated
// child process, per §4.9.
func (r *Forking) RunTestCase(ctx context.Context, tc *manifest.TestCase) *result.Result {
	addr, ok := addressOf(tc)
	if !ok {
		return infraError(stage.Setup, nil, "test case %q has no re-exec address (not loaded from a module)", tc.Name)
	}

	exePath := r.Executable
	if exePath == "" {
		var err error
		exePath, err = os.Executable()
		if err != nil {
			return infraError(stage.Setup, err, "resolving executable")
		}
	}

	addrJSON, err := json.Marshal(addr)
	if err != nil {
		return infraError(stage.Setup, err, "encoding case address")
	}

	eventsR, eventsW, err := os.Pipe()
	if err != nil {
		return infraError(stage.Setup, err, "creating event pipe")
	}
	outputR, outputW, err := os.Pipe()
	if err != nil {
		eventsR.Close()
		eventsW.Close()
		return infraError(stage.Setup, err, "creating output pipe")
	}

	cmd := exec.CommandContext(ctx, exePath)
	cmd.Env = append(os.Environ(), ChildEnvVar+"="+string(addrJSON))
	cmd.ExtraFiles = []*os.File{eventsW, outputW}

	if err := cmd.Start(); err != nil {
		eventsR.Close()
		eventsW.Close()
		outputR.Close()
		outputW.Close()
		return infraError(stage.Setup, err, "starting child")
	}
	eventsW.Close()
	outputW.Close()
	untrack := trackChild(cmd.Process)
	defer untrack()

	consumer := &failureConsumer{}
	evReader := events.NewReader(int(eventsR.Fd()), consumer)
	outReader := output.NewReaderWithCap(int(outputR.Fd()), r.MaxOutputBytes)
	sup := iomux.NewSupervisor(evReader, outReader)

	timer := time.AfterFunc(caseDeadline, func() {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
	})

	runErr := sup.Run()
	timer.Stop()
	eventsR.Close()
	outputR.Close()

	if runErr != nil {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		cmd.Wait()
		return infraError(stage.Execution, runErr, "reading child pipes")
	}

	waitErr := cmd.Wait()
	res := interpretExit(waitErr, consumer)
	res.Output = outReader.Build()
	return res
}

// infraError builds an Error-outcome Result for a condition severe enough
// that no normal test outcome applies. err, if non-nil, is wrapped with
// xerrors so its captured stack carries through to the resulting Failure
// via failure.FromError; pass nil when format alone describes the
// condition.
func infraError(s stage.Stage, err error, format string, args ...interface{}) *result.Result {
	return &result.Result{Outcome: result.Error, Failure: failure.FromError(s, xerrors.Wrapf(err, format, args...))}
}

func interpretExit(waitErr error, consumer *failureConsumer) *result.Result {
	if waitErr == nil {
		return outcomeResult(0, consumer)
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if ws.Signaled() {
				return infraError(stage.Execution, nil, "child terminated by signal %v", ws.Signal())
			}
			return outcomeResult(ws.ExitStatus(), consumer)
		}
	}
	return infraError(stage.Teardown, waitErr, "waiting for child")
}

func outcomeResult(code int, consumer *failureConsumer) *result.Result {
	outcome, ok := result.FromExitCode(code)
	if !ok {
		return infraError(stage.Teardown, nil, "child exited with unrecognized code %d", code)
	}
	res := &result.Result{Outcome: outcome}
	if outcome != result.Pass {
		res.Failure = consumer.take()
	}
	return res
}
