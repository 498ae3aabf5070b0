// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package result defines the outcome triple produced by every test case.
package result

import (
	"ctestrun/internal/failure"
	"ctestrun/internal/output"
)

// Outcome is the discriminator tag of a Result. Its numeric values match
// the wire/child-exit-status encoding used throughout the engine (§6):
// pass=0, fail=1, skipped=2, error=3.
type Outcome uint8

const (
	Pass Outcome = iota
	Fail
	Skipped
	Error
)

// String renders the outcome name.
func (o Outcome) String() string {
	switch o {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	case Skipped:
		return "skipped"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the outcome of one test case: an outcome tag, an optional
// failure, and independently, optional captured output.
//
// Invariant: a Pass result carries no failure. Fail, Skipped, and Error may
// carry one. Output may be present for any outcome.
type Result struct {
	Outcome Outcome
	Failure *failure.Failure
	Output  *output.Output
}

// Valid reports whether r satisfies the pass-has-no-failure invariant.
func (r *Result) Valid() bool {
	if r.Outcome == Pass && r.Failure != nil {
		return false
	}
	return true
}

// FromExitCode maps a child exit code (§6's outcome discriminator) to an
// Outcome, returning ok=false for any code outside {0,1,2,3}.
func FromExitCode(code int) (Outcome, bool) {
	switch code {
	case 0:
		return Pass, true
	case 1:
		return Fail, true
	case 2:
		return Skipped, true
	case 3:
		return Error, true
	default:
		return Error, false
	}
}
