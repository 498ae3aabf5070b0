// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package events implements the framed binary event protocol the forking
// runner's child uses to ship stage-change and failure events back to the
// parent, and the poll-driven state machine that decodes them.
package events

// Type discriminates an event on the wire.
type Type uint16

const (
	// StageChange carries a single stage byte.
	StageChange Type = 0
	// FailureEvent carries a serialized failure.Failure (internal/failure).
	FailureEvent Type = 1
)

// headerSize is the fixed [type(2) length(2)] frame header.
const headerSize = 4

// stagePayloadSize is the fixed payload size of a StageChange event: one
// byte is enough since both ends of the pipe are always this same binary.
const stagePayloadSize = 1
