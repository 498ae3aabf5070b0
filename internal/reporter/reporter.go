// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package reporter defines the result-reporting port (§4.11): a hierarchy
// of three minting interfaces — top, suite, test — each refusing to mint
// a child reporter for an object outside its own scope, bottoming out at
// a per-test-case reporter with Start/Complete/Destroy lifecycle methods.
package reporter

import (
	"ctestrun/internal/manifest"
	"ctestrun/internal/result"
	"ctestrun/internal/xerrors"
)

// Top mints a reporter for one suite.
type Top interface {
	OpenSuite(suite *manifest.Suite) (Suite, error)
}

// Suite mints a reporter for one test belonging to this suite; it
// refuses a test that belongs to a different suite.
type Suite interface {
	OpenTest(test *manifest.Test) (Test, error)
	// Destroy releases any resources this suite reporter holds. It is
	// safe to call exactly once, after every test reporter it minted has
	// itself been destroyed.
	Destroy()
}

// Test mints a reporter for one test case belonging to this test; it
// refuses a test case that belongs to a different test.
type Test interface {
	OpenTestCase(tc *manifest.TestCase) (TestCase, error)
	Destroy()
}

// TestCase reports the lifecycle of one test case's execution.
//
// Destroy called before Complete cancels the case: the result, if one
// arrives later, is dropped silently (§5, "destroying a reporter before
// its Complete call cancels that case"). Any call to Start or Complete
// after Destroy is a silent no-op, not an error, matching the original's
// ownership-transfer semantics around a reporter that may already have
// been torn down by the time a stray result shows up.
type TestCase interface {
	Start()
	// Complete takes ownership of res: callers must not retain or mutate
	// it afterwards.
	Complete(res *result.Result)
	Destroy()
}

// ErrWrongSuite and ErrWrongTest are returned by OpenTest/OpenTestCase
// when asked to mint a reporter for an object outside the minting
// reporter's own scope.
var (
	ErrWrongSuite = xerrors.New("test does not belong to this suite")
	ErrWrongTest  = xerrors.New("test case does not belong to this test")
)
