// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ctestrun/internal/manifest"
	"ctestrun/internal/reporter"
	"ctestrun/internal/result"
)

// recordingRunner is a test-only Runner that returns a pre-scripted
// outcome per case name and records the order in which cases were run.
type recordingRunner struct {
	order    []string
	outcomes map[string]result.Outcome
}

func (r *recordingRunner) RunTestCase(ctx context.Context, tc *manifest.TestCase) *result.Result {
	r.order = append(r.order, tc.Name)
	o, ok := r.outcomes[tc.Name]
	if !ok {
		o = result.Pass
	}
	return &result.Result{Outcome: o}
}

func buildTwoSuites() []*manifest.Suite {
	s1 := manifest.Bind(&manifest.Suite{Name: "S1"})
	s2 := manifest.Bind(&manifest.Suite{Name: "S2"})
	a := &manifest.Test{Name: "A"}
	b := &manifest.Test{Name: "B"}
	x := &manifest.Test{Name: "X"}
	s1.Tests = []*manifest.Test{a, b}
	s2.Tests = []*manifest.Test{x}
	manifest.Bind(s1)
	manifest.Bind(s2)
	return []*manifest.Suite{s1, s2}
}

func TestRunTestSuitesDispatchesEveryCase(t *testing.T) {
	suites := buildTwoSuites()
	r := &recordingRunner{outcomes: map[string]result.Outcome{}}
	top := reporter.NewConsole(&discard{})

	code, err := RunTestSuites(context.Background(), r, top, suites)
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.ElementsMatch(t, []string{"A", "B", "X"}, r.order)
}

func TestRunTestCasesSumsFailuresAndErrors(t *testing.T) {
	suites := buildTwoSuites()
	var cases []*manifest.TestCase
	for _, s := range suites {
		cases = append(cases, manifest.AllTestCases(s)...)
	}

	r := &recordingRunner{outcomes: map[string]result.Outcome{
		"A": result.Fail,
		"X": result.Error,
	}}
	top := reporter.NewConsole(&discard{})

	code, err := RunTestCases(context.Background(), r, top, cases)
	require.NoError(t, err)
	require.Equal(t, 2, code)
}

func TestRunTestCasesOpensOneSuiteReporterPerContiguousRun(t *testing.T) {
	suites := buildTwoSuites()
	var cases []*manifest.TestCase
	for _, s := range suites {
		cases = append(cases, manifest.AllTestCases(s)...)
	}

	r := &recordingRunner{outcomes: map[string]result.Outcome{}}
	tracker := &trackingTop{}

	_, err := RunTestCases(context.Background(), r, tracker, cases)
	require.NoError(t, err)
	require.Equal(t, []string{"S1", "S2"}, tracker.suitesOpened)
}

// trackingTop is a minimal reporter.Top that records which suites were
// opened, to verify dispatch opens exactly one suite reporter per
// contiguous run.
type trackingTop struct {
	suitesOpened []string
}

func (t *trackingTop) OpenSuite(suite *manifest.Suite) (reporter.Suite, error) {
	t.suitesOpened = append(t.suitesOpened, suite.Name)
	return &trackingSuite{suite: suite}, nil
}

type trackingSuite struct {
	suite *manifest.Suite
}

func (s *trackingSuite) OpenTest(test *manifest.Test) (reporter.Test, error) {
	if test.Suite() != s.suite {
		return nil, reporter.ErrWrongSuite
	}
	return &trackingTest{test: test}, nil
}
func (s *trackingSuite) Destroy() {}

type trackingTest struct {
	test *manifest.Test
}

func (t *trackingTest) OpenTestCase(tc *manifest.TestCase) (reporter.TestCase, error) {
	if tc.Test != t.test {
		return nil, reporter.ErrWrongTest
	}
	return &trackingTestCase{}, nil
}
func (t *trackingTest) Destroy() {}

type trackingTestCase struct{}

func (trackingTestCase) Start()                      {}
func (trackingTestCase) Complete(res *result.Result) {}
func (trackingTestCase) Destroy()                    {}

// discard is a minimal io.Writer sink for tests that don't inspect
// console output.
type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }
