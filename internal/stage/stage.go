// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package stage defines the three phases of a test-case execution.
package stage

// Stage identifies which phase of a test case's lifecycle is executing or
// was executing when a failure occurred. The numeric values match the wire
// encoding used by the event codec (internal/events) and the stage byte of
// a serialized failure (internal/failure).
type Stage uint8

const (
	// Setup is announced before fixture allocation and the setup callback.
	Setup Stage = 0
	// Execution is announced before the test body is invoked.
	Execution Stage = 1
	// Teardown is announced before the teardown callback.
	Teardown Stage = 2
)

// String renders the stage name, matching the discriminator names used in
// synthesized failure descriptions.
func (s Stage) String() string {
	switch s {
	case Setup:
		return "setup"
	case Execution:
		return "execution"
	case Teardown:
		return "teardown"
	default:
		return "unknown"
	}
}
