// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package failure defines the flat, self-contained description of one test
// fault and the in-place wire relocation scheme (see serialize.go) that lets
// a Failure cross a pipe as a single contiguous block.
package failure

import (
	"fmt"

	"ctestrun/internal/stage"
)

// Failure carries everything needed to report one fault: the stage in which
// it occurred, a human-readable description, and optionally a source
// location and a captured call stack.
//
// A Failure is owned by exactly one holder at a time; ownership transfers
// with every API that accepts one (matching Result.Failure and the event
// reader's delivery callback).
type Failure struct {
	Stage       stage.Stage
	Description string
	Location    *Location
	Stacktrace  *Stacktrace
}

// New constructs a Failure from a format string and arguments, optionally
// attaching a location and a stack trace. loc and st may be nil.
func New(st stage.Stage, loc *Location, stacktrace *Stacktrace, format string, args ...interface{}) *Failure {
	return &Failure{
		Stage:       st,
		Description: fmt.Sprintf(format, args...),
		Location:    loc,
		Stacktrace:  stacktrace,
	}
}

// Clone returns an independent copy of f. The original left this operation
// declared but unimplemented; this rewrite implements it as a field-by-field
// deep copy, so the clone shares no Location or Frames storage with f.
func (f *Failure) Clone() *Failure {
	if f == nil {
		return nil
	}
	clone := &Failure{
		Stage:       f.Stage,
		Description: f.Description,
	}
	if f.Location != nil {
		loc := *f.Location
		clone.Location = &loc
	}
	if f.Stacktrace != nil {
		frames := make([]Frame, len(f.Stacktrace.Frames))
		copy(frames, f.Stacktrace.Frames)
		clone.Stacktrace = &Stacktrace{Frames: frames}
	}
	return clone
}
