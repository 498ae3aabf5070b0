// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package hooks defines the two callback surfaces that separate the
// test-case driver from its runner (execution hooks) and from the loaded
// module's assertion runtime (dynamic-ops).
package hooks

import (
	"ctestrun/internal/failure"
	"ctestrun/internal/stage"
)

// ExecutionHooks is the sink the test-case driver uses to announce stage
// transitions and to raise skip/failure unwinds. OnSkip and OnFailure never
// return to their caller: the direct runner implements them via panic, the
// forking runner's child implements them by writing an event and exiting
// the process.
type ExecutionHooks interface {
	OnStageChange(s stage.Stage)
	OnSkip(f *failure.Failure)
	OnFailure(f *failure.Failure)
}
