// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package manifest mirrors the module ABI's manifest shape (§6): the fixed
// struct layout a loaded module exports, and the in-process construction of
// the same shape used by synthetic/testing suites that never go through a
// real loader.
package manifest

import "ctestrun/internal/hooks"

// ExpectedMagic and ExpectedVersion are the values a Suite's Magic/Version
// fields must carry for a module to be considered loadable. A mismatch
// aborts the load.
const (
	ExpectedMagic   uint32 = 0x72db2d
	ExpectedVersion uint32 = 0
)

// FixtureProvider specifies the byte size of a test's private fixture
// state plus optional setup/teardown callbacks.
type FixtureProvider struct {
	Size     int
	Setup    func(fixture []byte)
	Teardown func(fixture []byte)
}

// DataProvider supplies the input rows for a parameterized test and a
// renderer that formats one row for display-name templating.
type DataProvider struct {
	Rows     [][]byte
	ToString func(row []byte) string
}

// Count reports the number of rows supplied.
func (d *DataProvider) Count() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Test is a named, parameterized test body belonging to exactly one Suite.
type Test struct {
	Name            string
	Caller          func(fixture, row []byte)
	FixtureProvider *FixtureProvider
	DataProvider    *DataProvider

	suite *Suite
}

// Suite returns the test's owning suite.
func (t *Test) Suite() *Suite { return t.suite }

// Suite is a named collection of tests; the unit of module loading. Magic
// and Version must equal ExpectedMagic/ExpectedVersion for the suite to be
// considered valid.
//
// DynamicOpsCell is the optional pointer cell the framework overwrites on
// every test-case entry so the module's assertions route back into the
// driver; a nil cell means the module declares it cannot report failures.
type Suite struct {
	Magic          uint32
	Version        uint32
	Name           string
	Tests          []*Test
	DynamicOpsCell *hooks.DynamicOps

	// ModulePath is the filesystem path Load opened this suite from. It is
	// empty for suites constructed in-process (synthetic/testing suites),
	// and is what lets the forking runner (§4.9) re-exec and reload the
	// same module in a freshly spawned child rather than trying to ship a
	// live Go value across a process boundary.
	ModulePath string
}

// Valid reports whether the suite's magic and version match the expected
// values.
func (s *Suite) Valid() bool {
	return s.Magic == ExpectedMagic && s.Version == ExpectedVersion
}

// Bind sets each test's owning suite and returns s, so construction reads
// naturally as manifest.Bind(&manifest.Suite{...}).
func Bind(s *Suite) *Suite {
	for _, t := range s.Tests {
		t.suite = s
	}
	return s
}

// TestCase is the smallest executable unit: a test body paired with at
// most one input row.
type TestCase struct {
	Name string
	Test *Test
	Row  []byte // nil if the test has no data provider

	// RowIndex is the position of Row within Test.DataProvider.Rows, or -1
	// if the test has no data provider. It lets a case be re-addressed by
	// (module path, test index, row index) after a fresh module reload,
	// which the forking runner's re-exec needs since it cannot hand the
	// child a live *Test pointer across the process boundary.
	RowIndex int
}

// MaterializeTestCases expands a Test into one TestCase per data row (or a
// single, row-less TestCase if it has no data provider), per §3: "exactly
// one test case per data row is materialized; the test case's display name
// is <test-name>[<row-rendering>]".
func MaterializeTestCases(t *Test) []*TestCase {
	if t.DataProvider == nil || len(t.DataProvider.Rows) == 0 {
		return []*TestCase{{Name: t.Name, Test: t, RowIndex: -1}}
	}
	cases := make([]*TestCase, len(t.DataProvider.Rows))
	for i, row := range t.DataProvider.Rows {
		rendering := t.DataProvider.ToString(row)
		cases[i] = &TestCase{
			Name:     t.Name + "[" + rendering + "]",
			Test:     t,
			Row:      row,
			RowIndex: i,
		}
	}
	return cases
}

// AllTestCases materializes every test case across every test in s, in
// suite-then-test order (the order the partitioner, §4.10, treats as
// canonical input when no reordering has yet occurred).
func AllTestCases(s *Suite) []*TestCase {
	var cases []*TestCase
	for _, t := range s.Tests {
		cases = append(cases, MaterializeTestCases(t)...)
	}
	return cases
}
