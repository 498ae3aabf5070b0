// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package partition implements the stable reordering (§4.10) that groups
// arbitrary test-case sequences into contiguous per-test runs, and
// per-test runs into contiguous per-suite runs, preserving input order
// wherever the contiguity invariants permit.
package partition

import "ctestrun/internal/manifest"

// TestCases reorders cases in place (and returns the same backing slice)
// so that every case belonging to the same test is contiguous, and every
// test belonging to the same suite is contiguous. Relative order between
// cases of the same test, and between the first-seen case of each test
// within a suite run, is preserved.
//
// The algorithm is a stable two-level insertion partition: position i
// (the first unprocessed slot) fixes the "active" test. The remainder is
// scanned and every later case of the active test is shifted down to
// i+1, i+2, … in original relative order (the Go analog of the original's
// memmove-based in-place compaction). Once the active test is exhausted,
// the next active test is the first remaining case whose test shares the
// active suite, if any; otherwise the scan simply continues to the next
// unprocessed slot and starts a new active test/suite.
func TestCases(cases []*manifest.TestCase) []*manifest.TestCase {
	n := len(cases)
	for i := 0; i < n; i++ {
		activeTest := cases[i].Test
		activeSuite := activeTest.Suite()

		i = collectTest(cases, i, activeTest)

		for {
			next := firstIndexOfSuite(cases, i+1, activeSuite)
			if next < 0 {
				break
			}
			activeTest = cases[next].Test
			swapInto(cases, i+1, next)
			i = collectTest(cases, i+1, activeTest)
		}
	}
	return cases
}

// Tests reorders tests (not test cases) so every test of the same suite is
// contiguous, preserving relative order otherwise. This is the one-level
// variant for a sequence of tests that has not been materialized into test
// cases.
func Tests(tests []*manifest.Test) []*manifest.Test {
	n := len(tests)
	for i := 0; i < n; i++ {
		activeSuite := tests[i].Suite()
		j := i + 1
		for j < n {
			if tests[j].Suite() == activeSuite {
				swapInto(tests, i+1, j)
				i++
			}
			j++
		}
	}
	return tests
}

// collectTest shifts every later case belonging to test into the
// contiguous run starting at i, returning the index of the last case in
// that run.
func collectTest(cases []*manifest.TestCase, i int, test *manifest.Test) int {
	j := i + 1
	for j < len(cases) {
		if cases[j].Test == test {
			swapInto(cases, i+1, j)
			i++
		}
		j++
	}
	return i
}

// firstIndexOfSuite returns the first index at or after from whose test
// belongs to suite, or -1 if none remain.
func firstIndexOfSuite(cases []*manifest.TestCase, from int, suite *manifest.Suite) int {
	for k := from; k < len(cases); k++ {
		if cases[k].Test.Suite() == suite {
			return k
		}
	}
	return -1
}

// swapInto moves the element at src to dst, shifting the intervening
// elements up by one — a stable insertion, not a plain swap, so elements
// between dst and src retain their relative order.
func swapInto[T any](s []T, dst, src int) {
	if dst == src {
		return
	}
	v := s[src]
	copy(s[dst+1:src+1], s[dst:src])
	s[dst] = v
}
