// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package output

import "golang.org/x/sys/unix"

// initialCapacity is the output buffer's starting size (§4.4).
const initialCapacity = 128

// scratchSize is the drain-and-drop window used once growth fails.
const scratchSize = 4096

// maxCapacity bounds how large the output buffer is allowed to grow before
// the reader degrades to drain-and-drop; Go's allocator has no recoverable
// failure mode the way calloc does, so this cap is what stands in for the
// original's "allocation failure" branch.
const maxCapacity = 64 << 20 // 64 MiB

// Reader is a poll handler (see internal/iomux) that grows an Output from
// pipe reads, doubling capacity whenever the buffer would fill, and
// degrading to drain-and-drop once growth would exceed its cap so the
// supervisor never stalls on a misbehaving child.
type Reader struct {
	fd       int
	capBytes int
	out      *Output
	len      int
	degraded bool
}

// NewReader constructs a Reader bound to fd, capped at the package default
// (64 MiB).
func NewReader(fd int) *Reader {
	return NewReaderWithCap(fd, maxCapacity)
}

// NewReaderWithCap constructs a Reader bound to fd, degrading to
// drain-and-drop once the buffer would grow past capBytes — the runtime
// knob behind runconfig.Config.MaxOutputBytes. A non-positive capBytes
// falls back to the package default.
func NewReaderWithCap(fd int, capBytes int) *Reader {
	if capBytes <= 0 {
		capBytes = maxCapacity
	}
	return &Reader{fd: fd, capBytes: capBytes}
}

// FD implements iomux.Handler.
func (r *Reader) FD() int { return r.fd }

// OnDataAvailable implements iomux.Handler.
func (r *Reader) OnDataAvailable() int {
	if r.degraded {
		scratch := make([]byte, scratchSize)
		n, err := unix.Read(r.fd, scratch)
		if err != nil {
			return -1
		}
		return n
	}

	if r.out == nil {
		r.out = New(make([]byte, initialCapacity))
		r.len = 0
	}
	if r.len >= r.out.Len() {
		next := r.out.Len() * 2
		if next > r.capBytes {
			r.degraded = true
			scratch := make([]byte, scratchSize)
			n, err := unix.Read(r.fd, scratch)
			if err != nil {
				return -1
			}
			return n
		}
		r.out.Resize(next)
	}

	n, err := unix.Read(r.fd, r.out.Bytes()[r.len:])
	if err != nil {
		return -1
	}
	if n > 0 {
		r.len += n
	}
	return n
}

// OnClose implements iomux.Handler; no action needed beyond Build.
func (r *Reader) OnClose() {}

// Build hands off the collected output, resetting the reader's internal
// state. A reader that saw zero bytes yields a nil *Output.
func (r *Reader) Build() *Output {
	if r.out == nil || r.len == 0 {
		r.out = nil
		r.len = 0
		return nil
	}
	r.out.Resize(r.len)
	out := r.out
	r.out = nil
	r.len = 0
	return out
}
