// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package driver implements the test-case execution lifecycle (§4.7):
// fixture allocation, setup, body invocation, teardown, with assertion
// abort and skip modeled as scoped non-local exits that still run teardown.
package driver

import (
	"sync"

	"ctestrun/internal/failure"
	"ctestrun/internal/hooks"
	"ctestrun/internal/manifest"
	"ctestrun/internal/stage"
)

// abortSignal is the panic value used to realize "non-local exit" (§4.7,
// §9): a typed panic recovered inside the per-stage runStage helper in Run,
// so an abort ends only the stage it was raised in and teardown still runs
// afterwards regardless of whether setup or execution panicked.
type abortSignal struct {
	tag     hooks.AbortTag
	failure *failure.Failure
}

// dynamicOps is the per-case implementation of hooks.DynamicOps installed
// into the module's dynamic-ops cell for the duration of Run. It captures
// the first reported failure for the whole case (subsequent reports are
// dropped) and triggers the abort panic.
type dynamicOps struct {
	mu      sync.Mutex
	stageOf func() stage.Stage

	failure *failure.Failure
	tag     hooks.AbortTag
}

func (d *dynamicOps) ReportFailure(file string, line int, format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failure != nil {
		return // first-failure wins
	}
	var loc *failure.Location
	if file != "" {
		loc = &failure.Location{File: file, Line: line}
	}
	d.failure = failure.New(d.stageOf(), loc, failure.CaptureStacktrace(2), format, args...)
}

func (d *dynamicOps) Abort(tag hooks.AbortTag) {
	d.mu.Lock()
	if d.tag == hooks.AbortNone {
		// Re-entering abort preserves the first tag: a teardown failure
		// cannot demote a prior fail to a skip, nor can a teardown skip
		// promote a prior skip to a fail.
		d.tag = tag
	}
	f := d.failure
	d.mu.Unlock()
	panic(abortSignal{tag: d.tag, failure: f})
}

// Run executes tc's full lifecycle against execHooks, which is notified of
// every stage transition and, on abort, receives exactly one OnFailure or
// OnSkip call. Run returns normally on a passing case; it does not return
// at all if execHooks.OnFailure/OnSkip itself never returns (the forking
// runner's child implementation calls os.Exit from inside them).
func Run(execHooks hooks.ExecutionHooks, tc *manifest.TestCase) {
	test := tc.Test
	suite := test.Suite()

	var currentStage stage.Stage
	ops := &dynamicOps{stageOf: func() stage.Stage { return currentStage }}

	var savedCell hooks.DynamicOps
	hadCell := suite != nil && suite.DynamicOpsCell != nil
	if hadCell {
		savedCell = *suite.DynamicOpsCell
		*suite.DynamicOpsCell = ops
	}

	var fixture []byte

	runStage := func(s stage.Stage, fn func()) (tag hooks.AbortTag, f *failure.Failure) {
		currentStage = s
		execHooks.OnStageChange(s)
		defer func() {
			if r := recover(); r != nil {
				if as, ok := r.(abortSignal); ok {
					tag, f = as.tag, as.failure
					return
				}
				panic(r)
			}
		}()
		fn()
		return hooks.AbortNone, nil
	}

	var finalTag hooks.AbortTag
	var finalFailure *failure.Failure

	setupTag, setupFailure := runStage(stage.Setup, func() {
		if test.FixtureProvider != nil && test.FixtureProvider.Size > 0 {
			fixture = make([]byte, test.FixtureProvider.Size)
		}
		if test.FixtureProvider != nil && test.FixtureProvider.Setup != nil {
			test.FixtureProvider.Setup(fixture)
		}
	})
	if setupTag != hooks.AbortNone {
		finalTag, finalFailure = setupTag, setupFailure
	}

	if finalTag == hooks.AbortNone {
		execTag, execFailure := runStage(stage.Execution, func() {
			test.Caller(fixture, tc.Row)
		})
		if execTag != hooks.AbortNone {
			finalTag, finalFailure = execTag, execFailure
		}
	}

	// Teardown always runs, regardless of how setup/execution concluded.
	// The callback is copied to a local before calling: the call site below
	// never looks at test.FixtureProvider.Teardown again, so a teardown that
	// itself aborts cannot re-enter itself through this path.
	var teardown func(fixture []byte)
	if test.FixtureProvider != nil {
		teardown = test.FixtureProvider.Teardown
	}
	teardownTag, teardownFailure := runStage(stage.Teardown, func() {
		if teardown != nil {
			teardown(fixture)
		}
	})
	if finalTag == hooks.AbortNone && teardownTag != hooks.AbortNone {
		finalTag, finalFailure = teardownTag, teardownFailure
	}

	// A failure reported (via ReportFailure) but never escalated to Abort
	// is promoted to a fail-abort once teardown has run, per §4.7 step 4.
	if finalTag == hooks.AbortNone && ops.failure != nil {
		finalTag = hooks.AbortFail
		finalFailure = ops.failure
	}

	if hadCell {
		*suite.DynamicOpsCell = savedCell
	}
	fixture = nil

	switch finalTag {
	case hooks.AbortFail:
		execHooks.OnFailure(finalFailure)
	case hooks.AbortSkip:
		execHooks.OnSkip(finalFailure)
	}
}
