// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runner

import (
	"encoding/json"
	"os"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"ctestrun/internal/driver"
	"ctestrun/internal/events"
	"ctestrun/internal/failure"
	"ctestrun/internal/hooks"
	"ctestrun/internal/manifest"
	"ctestrun/internal/sig"
	"ctestrun/internal/stage"
)

// eventsFD and outputFD are the fixed descriptor numbers a re-exec'd child
// finds its pipe write-ends at: exec.Cmd.ExtraFiles appends after the
// inherited stdin/stdout/stderr, so the first ExtraFiles entry always
// lands at 3 and the second at 4.
const (
	eventsFD = 3
	outputFD = 4
)

// childHooks is the forking runner child's hooks.ExecutionHooks: it
// writes every stage change as an event and, on skip/failure, writes the
// failure event and exits the process with the outcome-encoded status —
// the "send event then exit" half of §4.6's contract.
type childHooks struct {
	mu     sync.Mutex
	stage  stage.Stage
	writer *events.Writer
}

func (h *childHooks) OnStageChange(s stage.Stage) {
	h.mu.Lock()
	h.stage = s
	h.mu.Unlock()
	h.writer.WriteStageChange(s)
}

func (h *childHooks) currentStage() stage.Stage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stage
}

func (h *childHooks) OnFailure(f *failure.Failure) {
	h.writer.WriteFailure(f)
	exitChild(resultFail)
}

func (h *childHooks) OnSkip(f *failure.Failure) {
	if f != nil {
		h.writer.WriteFailure(f)
	}
	exitChild(resultSkipped)
}

// Exit codes mirror the outcome discriminator (§6): pass=0, fail=1,
// skipped=2, error=3.
const (
	resultPass    = 0
	resultFail    = 1
	resultSkipped = 2
	resultError   = 3
)

func exitChild(code int) {
	os.Stdout.Sync()
	os.Stderr.Sync()
	os.Stdout.Close()
	os.Stderr.Close()
	os.Stdin.Close()
	os.Exit(code)
}

// RunChild is the forking runner's child entry point: it decodes the
// case address from ChildEnvVar, reloads the module fresh, redirects
// stdio, runs the driver, and exits with the outcome-encoded status. It
// never returns; on any setup failure before the driver can run it exits
// with resultError after writing nothing, which the parent reports as an
// Error result with no failure attached.
//
// Callers (cmd/ctestrun's main) should check for ChildEnvVar before any
// normal CLI dispatch and, if present, call RunChild instead.
func RunChild() {
	addrJSON := os.Getenv(ChildEnvVar)
	var addr caseAddress
	if err := json.Unmarshal([]byte(addrJSON), &addr); err != nil {
		os.Exit(resultError)
	}

	tc, err := addr.resolve(manifest.Load)
	if err != nil {
		os.Exit(resultError)
	}

	eventsFile := os.NewFile(uintptr(eventsFD), "events")
	outputFile := os.NewFile(uintptr(outputFD), "output")
	if eventsFile == nil || outputFile == nil {
		os.Exit(resultError)
	}

	writer := events.NewWriter(eventsFile)

	devnull, err := os.OpenFile(os.DevNull, os.O_RDONLY, 0)
	if err == nil {
		unix.Dup2(int(devnull.Fd()), 0)
		devnull.Close()
	}
	unix.Dup2(int(outputFile.Fd()), 1)
	unix.Dup2(int(outputFile.Fd()), 2)

	h := &childHooks{writer: writer}

	cookie := struct{}{}
	sig.Install(func(s syscall.Signal, _ interface{}) {
		f := failure.New(h.currentStage(), nil, failure.CaptureStacktrace(0), "Caught unexpected signal: %d", int(s))
		writer.WriteFailure(f)
		sig.Restore()
		exitChild(resultFail)
	}, cookie)

	driver.Run(h, tc)

	// driver.Run returned normally: no skip/failure was raised.
	sig.Restore()
	exitChild(resultPass)
}

var _ hooks.ExecutionHooks = (*childHooks)(nil)
