// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runner

import (
	"context"

	"ctestrun/internal/manifest"
	"ctestrun/internal/partition"
	"ctestrun/internal/reporter"
	"ctestrun/internal/result"
)

// RunTestSuites materializes every test case from every given suite,
// partitions them (§4.10), and dispatches the resulting sequence through
// r and top.
func RunTestSuites(ctx context.Context, r Runner, top reporter.Top, suites []*manifest.Suite) (int, error) {
	var cases []*manifest.TestCase
	for _, s := range suites {
		cases = append(cases, manifest.AllTestCases(s)...)
	}
	return RunTestCases(ctx, r, top, partition.TestCases(cases))
}

// RunTests materializes every test case of every given test and
// dispatches the resulting sequence.
func RunTests(ctx context.Context, r Runner, top reporter.Top, tests []*manifest.Test) (int, error) {
	var cases []*manifest.TestCase
	for _, t := range tests {
		cases = append(cases, manifest.MaterializeTestCases(t)...)
	}
	return RunTestCases(ctx, r, top, partition.TestCases(cases))
}

// RunTestCases dispatches an already-ordered sequence of test cases,
// opening a suite reporter and a test reporter for each contiguous run
// and a test-case reporter for every case (§4.10). It returns the summed
// per-case return code: pass/skipped contribute 0, fail/error contribute
// 1; a reporter-minting error (an infrastructure failure severe enough
// that no further result can be produced) short-circuits with -1.
func RunTestCases(ctx context.Context, r Runner, top reporter.Top, cases []*manifest.TestCase) (int, error) {
	var (
		curSuite    *manifest.Suite
		curSuiteRep reporter.Suite
		curTest     *manifest.Test
		curTestRep  reporter.Test
	)
	closeTest := func() {
		if curTestRep != nil {
			curTestRep.Destroy()
			curTestRep = nil
		}
	}
	closeSuite := func() {
		closeTest()
		if curSuiteRep != nil {
			curSuiteRep.Destroy()
			curSuiteRep = nil
		}
	}
	defer closeSuite()

	code := 0
	for _, tc := range cases {
		suite := tc.Test.Suite()
		if suite != curSuite {
			closeSuite()
			sr, err := top.OpenSuite(suite)
			if err != nil {
				return -1, err
			}
			curSuiteRep = sr
			curSuite = suite
			curTest = nil
		}

		if tc.Test != curTest {
			closeTest()
			tr, err := curSuiteRep.OpenTest(tc.Test)
			if err != nil {
				return -1, err
			}
			curTestRep = tr
			curTest = tc.Test
		}

		caseRep, err := curTestRep.OpenTestCase(tc)
		if err != nil {
			return -1, err
		}

		caseRep.Start()
		res := r.RunTestCase(ctx, tc)
		caseRep.Complete(res)
		caseRep.Destroy()

		if res.Outcome == result.Fail || res.Outcome == result.Error {
			code++
		}
	}

	closeSuite()
	if finisher, ok := top.(interface{ Finish() }); ok {
		finisher.Finish()
	}

	return code, nil
}
