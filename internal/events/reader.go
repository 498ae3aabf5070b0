// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package events

import (
	"encoding/binary"

	"golang.org/x/sys/unix"

	"ctestrun/internal/failure"
	"ctestrun/internal/stage"
)

// Consumer receives decoded events from a Reader.
type Consumer interface {
	OnStageChange(stage.Stage)
	OnFailure(*failure.Failure)
}

// scratchSize bounds the discard buffer used for a body belonging to an
// event type this decoder does not recognize.
const scratchSize = 1024

// Reader is a poll handler (see internal/iomux/handler.go) that decodes a framed event
// stream into a Consumer. It is a two-state machine — awaiting-header then
// awaiting-body — driven exclusively by OnDataAvailable; it never blocks.
type Reader struct {
	fd       int
	consumer Consumer

	buf     []byte // nil while discarding an unknown body
	ofs     int
	cap     int
	discard bool

	awaitingHeader bool
	pendingType    Type
	pendingStage   stage.Stage // set once header decoded for a StageChange
}

// NewReader constructs a Reader bound to fd, delivering decoded events to
// consumer.
func NewReader(fd int, consumer Consumer) *Reader {
	r := &Reader{fd: fd, consumer: consumer}
	r.prepNextHeader()
	return r
}

// FD implements Handler.
func (r *Reader) FD() int { return r.fd }

func (r *Reader) prepNextHeader() {
	r.awaitingHeader = true
	r.buf = make([]byte, headerSize)
	r.ofs = 0
	r.cap = headerSize
	r.discard = false
}

// OnDataAvailable implements Handler: reads whatever is available (up to
// the remainder of the current state's capacity), advances, and on filling
// the current state invokes its completion hook before resetting.
func (r *Reader) OnDataAvailable() int {
	remaining := r.cap - r.ofs
	if remaining <= 0 {
		r.onComplete()
		return 0
	}

	if r.discard {
		window := remaining
		if window > scratchSize {
			window = scratchSize
		}
		scratch := make([]byte, window)
		n, err := unix.Read(r.fd, scratch)
		if err != nil {
			return -1
		}
		if n == 0 {
			return 0
		}
		r.ofs += n
		if r.ofs >= r.cap {
			r.onComplete()
		}
		return n
	}

	n, err := unix.Read(r.fd, r.buf[r.ofs:r.cap])
	if err != nil {
		return -1
	}
	if n == 0 {
		return 0
	}
	r.ofs += n
	if r.ofs >= r.cap {
		r.onComplete()
	}
	return n
}

// OnClose implements Handler; the event channel needs no teardown action.
func (r *Reader) OnClose() {}

func (r *Reader) onComplete() {
	if r.awaitingHeader {
		r.onHeaderComplete()
		return
	}
	r.onBodyComplete()
}

func (r *Reader) onHeaderComplete() {
	t := Type(binary.LittleEndian.Uint16(r.buf[0:2]))
	length := binary.LittleEndian.Uint16(r.buf[2:4])
	r.pendingType = t
	r.awaitingHeader = false
	r.ofs = 0
	r.cap = int(length)

	switch t {
	case StageChange:
		r.buf = make([]byte, r.cap)
		r.discard = false
	case FailureEvent:
		r.buf = make([]byte, r.cap)
		r.discard = false
	default:
		r.buf = nil
		r.discard = true
	}

	if r.cap == 0 {
		r.onBodyComplete()
	}
}

func (r *Reader) onBodyComplete() {
	switch r.pendingType {
	case StageChange:
		if len(r.buf) >= stagePayloadSize {
			r.pendingStage = stage.Stage(r.buf[0])
			r.consumer.OnStageChange(r.pendingStage)
		}
	case FailureEvent:
		f, err := failure.Deserialize(r.buf)
		if err == nil {
			r.consumer.OnFailure(f)
		}
		// malformed body: drop the event per §4.2, no consumer callback.
	default:
		// unknown type, already discarded.
	}
	r.prepNextHeader()
}
