// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package failure

import "ctestrun/internal/xerrors/stack"

// Frame is one entry of a Stacktrace: an instruction address plus an
// optional source location, innermost frame first.
type Frame struct {
	Addr uint64
	File string
	Line int
}

// Stacktrace is an ordered sequence of frames, innermost first.
type Stacktrace struct {
	Frames []Frame
}

// CaptureStacktrace captures the stack of the calling goroutine (skipping
// skip additional frames beyond this function) as a Stacktrace, the
// in-process source for any failure synthesized directly in Go code (as
// opposed to one decoded off the event channel).
func CaptureStacktrace(skip int) *Stacktrace {
	frames := stack.New(skip + 1).Frames()
	if len(frames) == 0 {
		return nil
	}
	st := &Stacktrace{Frames: make([]Frame, len(frames))}
	for i, f := range frames {
		st.Frames[i] = Frame{Addr: uint64(f.PC), File: f.File, Line: f.Line}
	}
	return st
}
