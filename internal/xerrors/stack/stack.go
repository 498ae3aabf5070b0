// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package stack captures and renders call stacks for use by xerrors and by
// failure records synthesized in-process by the direct runner.
package stack

import (
	"fmt"
	"runtime"
	"strings"
)

// maxDepth bounds how many frames New will record.
const maxDepth = 8

// ellipsis marks a truncated stack in String's output.
const ellipsis = "\t..."

// Stack is an ordered sequence of program counters, innermost frame first.
type Stack []uintptr

// New captures the stack of the calling goroutine, skipping skip additional
// frames beyond New itself.
func New(skip int) Stack {
	pc := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, pc)
	return Stack(pc[:n])
}

// String renders the stack as one "at function (file:line)" line per frame.
func (s Stack) String() string {
	if len(s) == 0 {
		return ""
	}
	frames := runtime.CallersFrames(s)
	var lines []string
	for {
		frame, more := frames.Next()
		lines = append(lines, fmt.Sprintf("\tat %s (%s:%d)", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	if len(lines) == maxDepth {
		lines = append(lines, ellipsis)
	}
	return strings.Join(lines, "\n")
}

// Frames decodes the stack into exported (function, file, line) triples
// suitable for attaching to a wire-format stack trace.
func (s Stack) Frames() []Frame {
	if len(s) == 0 {
		return nil
	}
	frames := runtime.CallersFrames(s)
	var out []Frame
	for {
		frame, more := frames.Next()
		out = append(out, Frame{
			PC:       frame.PC,
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})
		if !more {
			break
		}
	}
	return out
}

// Frame is one decoded stack frame.
type Frame struct {
	PC       uintptr
	Function string
	File     string
	Line     int
}
