// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package failure

import (
	"ctestrun/internal/stage"
	"ctestrun/internal/xerrors"
)

// FromError builds a Failure describing an infrastructure error (a failed
// pipe, a re-exec that could not start, a child that exited oddly) the same
// way a reporter-bound test fault is described, instead of flattening it to
// a bare string. If err is (or wraps) an *xerrors.E, its captured call
// stack is carried over as the Failure's Stacktrace; xerrors.E and Failure
// both exist to hold "a message plus a stack", just for an in-process error
// chain versus a value that must cross the event pipe, so this is the
// single place that bridges the two instead of every runner call site
// re-deriving a stack trace of its own.
func FromError(st stage.Stage, err error) *Failure {
	if err == nil {
		return nil
	}
	f := &Failure{Stage: st, Description: err.Error()}

	var xe *xerrors.E
	if xerrors.As(err, &xe) {
		if frames := xe.Stack().Frames(); len(frames) > 0 {
			stk := &Stacktrace{Frames: make([]Frame, len(frames))}
			for i, fr := range frames {
				stk.Frames[i] = Frame{Addr: uint64(fr.PC), File: fr.File, Line: fr.Line}
			}
			f.Stacktrace = stk
		}
	}
	return f
}
