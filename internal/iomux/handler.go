// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package iomux implements the poll-based I/O multiplexer the forking
// runner's parent uses to service the event and output pipes concurrently
// without additional goroutines.
package iomux

// Handler is the poll handler port: an abstract data-available/close
// callback pair a Supervisor uses to service one readable descriptor.
type Handler interface {
	// FD returns the file descriptor this handler services.
	FD() int
	// OnDataAvailable is invoked when the descriptor is readable. It
	// returns the number of bytes consumed; zero means end-of-stream,
	// negative signals an error.
	OnDataAvailable() int
	// OnClose is invoked exactly once, when the handler's descriptor is
	// dropped from the pollset (end-of-stream, error, or hang-up).
	OnClose()
}
