// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package runner provides the two test-case execution strategies (§4.8,
// §4.9): an in-process Direct runner trading isolation for speed, and a
// Forking runner that re-executes the current binary per test case for
// address-space isolation.
package runner

import (
	"context"

	"ctestrun/internal/manifest"
	"ctestrun/internal/result"
)

// Runner executes a single test case and returns its result. RunTestCase
// has no error return: a test-level failure is result.Fail, and an
// infrastructure problem confined to one case is result.Error. Only the
// dispatch layer (§4.10) returns an error, when a reporter cannot be
// minted.
type Runner interface {
	RunTestCase(ctx context.Context, tc *manifest.TestCase) *result.Result
}
