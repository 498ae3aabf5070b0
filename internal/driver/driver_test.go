// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package driver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ctestrun/internal/failure"
	"ctestrun/internal/hooks"
	"ctestrun/internal/manifest"
	"ctestrun/internal/stage"
)

// recordingHooks is a test-only hooks.ExecutionHooks that records calls
// instead of unwinding the process, letting these tests assert on the
// driver's behavior directly.
type recordingHooks struct {
	stages  []stage.Stage
	skip    *failure.Failure
	failed  *failure.Failure
	skipHit bool
	failHit bool
}

func (h *recordingHooks) OnStageChange(s stage.Stage) { h.stages = append(h.stages, s) }
func (h *recordingHooks) OnSkip(f *failure.Failure)   { h.skipHit = true; h.skip = f }
func (h *recordingHooks) OnFailure(f *failure.Failure) { h.failHit = true; h.failed = f }

func assertFail(suite *manifest.Suite, file string, line int, format string, args ...interface{}) {
	ops := *suite.DynamicOpsCell
	ops.ReportFailure(file, line, format, args...)
	ops.Abort(hooks.AbortFail)
}

func assertSkip(suite *manifest.Suite, file string, line int, format string, args ...interface{}) {
	ops := *suite.DynamicOpsCell
	ops.ReportFailure(file, line, format, args...)
	ops.Abort(hooks.AbortSkip)
}

func newSyntheticSuite(caller func(fixture, row []byte), fp *manifest.FixtureProvider) *manifest.Suite {
	var cell hooks.DynamicOps
	suite := &manifest.Suite{
		Magic:          manifest.ExpectedMagic,
		Version:        manifest.ExpectedVersion,
		Name:           "synthetic",
		DynamicOpsCell: &cell,
	}
	suite.Tests = []*manifest.Test{{
		Name:            "test",
		Caller:          caller,
		FixtureProvider: fp,
	}}
	return manifest.Bind(suite)
}

func TestRunPassingCase(t *testing.T) {
	suite := newSyntheticSuite(func(fixture, row []byte) {}, nil)
	tc := manifest.MaterializeTestCases(suite.Tests[0])[0]

	h := &recordingHooks{}
	Run(h, tc)

	require.False(t, h.failHit)
	require.False(t, h.skipHit)
	require.Equal(t, []stage.Stage{stage.Setup, stage.Execution, stage.Teardown}, h.stages)
}

func TestRunAssertionFailure(t *testing.T) {
	var suite *manifest.Suite
	suite = newSyntheticSuite(func(fixture, row []byte) {
		assertFail(suite, "t.c", 10, "x evaluated to %d but should be %d", 5, 7)
	}, nil)
	tc := manifest.MaterializeTestCases(suite.Tests[0])[0]

	h := &recordingHooks{}
	Run(h, tc)

	require.True(t, h.failHit)
	require.Equal(t, "x evaluated to 5 but should be 7", h.failed.Description)
	require.Equal(t, stage.Execution, h.failed.Stage)
	require.Equal(t, "t.c", h.failed.Location.File)
	require.Contains(t, h.stages, stage.Teardown, "teardown must still run after an abort")
}

func TestRunSkip(t *testing.T) {
	var suite *manifest.Suite
	suite = newSyntheticSuite(func(fixture, row []byte) {
		assertSkip(suite, "t.c", 1, "not supported on this platform")
	}, nil)
	tc := manifest.MaterializeTestCases(suite.Tests[0])[0]

	h := &recordingHooks{}
	Run(h, tc)

	require.True(t, h.skipHit)
	require.False(t, h.failHit)
}

func TestRunTeardownFailure(t *testing.T) {
	var suite *manifest.Suite
	fp := &manifest.FixtureProvider{
		Size: 16,
		Teardown: func(fixture []byte) {
			assertFail(suite, "t.c", 20, "cleanup broken")
		},
	}
	suite = newSyntheticSuite(func(fixture, row []byte) {}, fp)
	tc := manifest.MaterializeTestCases(suite.Tests[0])[0]

	h := &recordingHooks{}
	Run(h, tc)

	require.True(t, h.failHit)
	require.Equal(t, stage.Teardown, h.failed.Stage)
	require.Equal(t, "cleanup broken", h.failed.Description)
}

func TestRunFirstFailureWins(t *testing.T) {
	var suite *manifest.Suite
	suite = newSyntheticSuite(func(fixture, row []byte) {
		ops := *suite.DynamicOpsCell
		ops.ReportFailure("t.c", 1, "first")
		ops.ReportFailure("t.c", 2, "second")
		ops.Abort(hooks.AbortFail)
	}, nil)
	tc := manifest.MaterializeTestCases(suite.Tests[0])[0]

	h := &recordingHooks{}
	Run(h, tc)

	require.Equal(t, "first", h.failed.Description)
}

func TestRunDynamicOpsCellRestored(t *testing.T) {
	var suite *manifest.Suite
	suite = newSyntheticSuite(func(fixture, row []byte) {}, nil)
	tc := manifest.MaterializeTestCases(suite.Tests[0])[0]

	before := *suite.DynamicOpsCell
	Run(&recordingHooks{}, tc)
	require.Equal(t, before, *suite.DynamicOpsCell)
}

func TestRunSetupFailureSkipsExecutionButRunsTeardown(t *testing.T) {
	var suite *manifest.Suite
	teardownRan := false
	fp := &manifest.FixtureProvider{
		Setup: func(fixture []byte) {
			assertFail(suite, "t.c", 5, "setup broke")
		},
		Teardown: func(fixture []byte) {
			teardownRan = true
		},
	}
	bodyRan := false
	suite = newSyntheticSuite(func(fixture, row []byte) {
		bodyRan = true
	}, fp)
	tc := manifest.MaterializeTestCases(suite.Tests[0])[0]

	h := &recordingHooks{}
	Run(h, tc)

	require.False(t, bodyRan)
	require.True(t, teardownRan)
	require.True(t, h.failHit)
	require.Equal(t, stage.Setup, h.failed.Stage)
}
