// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package events

import (
	"encoding/binary"
	"io"

	"ctestrun/internal/failure"
	"ctestrun/internal/stage"
	"ctestrun/internal/xerrors"
)

// Writer marshals stage-change and failure events onto an io.Writer (the
// child's event pipe write end).
//
// A short write truncates the event silently, matching §4.2: the writer
// does not retry a partial write. The parent treats a missing terminal
// event as an error but never deadlocks waiting for one.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) writeFrame(t Type, payload []byte) error {
	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint16(header[0:2], uint16(t))
	binary.LittleEndian.PutUint16(header[2:4], uint16(len(payload)))
	if _, err := w.w.Write(header); err != nil {
		return nil // short/failed header write: silently truncated, per §4.2
	}
	if _, err := w.w.Write(payload); err != nil {
		return nil
	}
	return nil
}

// WriteStageChange emits a stage-change event.
func (w *Writer) WriteStageChange(st stage.Stage) error {
	return w.writeFrame(StageChange, []byte{byte(st)})
}

// WriteFailure serializes f in place (internal/failure) and emits a
// failure event carrying the flattened block.
func (w *Writer) WriteFailure(f *failure.Failure) error {
	buf, err := failure.Serialize(f)
	if err != nil {
		return xerrors.Wrap(err, "serializing failure for event channel")
	}
	return w.writeFrame(FailureEvent, buf)
}
