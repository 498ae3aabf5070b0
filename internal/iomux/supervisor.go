// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package iomux

import (
	"golang.org/x/sys/unix"

	"ctestrun/internal/xerrors"
)

// Supervisor multiplexes a fixed set of handlers by polling their
// descriptors for readability, mirroring a poll(2)-based event loop.
type Supervisor struct {
	handlers []Handler
	closed   []bool
}

// NewSupervisor constructs a Supervisor over handlers. Order is preserved
// for diagnostics; it carries no semantic weight.
func NewSupervisor(handlers ...Handler) *Supervisor {
	return &Supervisor{
		handlers: handlers,
		closed:   make([]bool, len(handlers)),
	}
}

// Run polls until every handler has closed, invoking OnDataAvailable for
// each ready descriptor and OnClose exactly once per handler when it drops
// out of the pollset (EOF, error, or hang-up).
func (s *Supervisor) Run() error {
	for {
		fds := s.openFDs()
		if len(fds) == 0 {
			return nil
		}

		pollfds := make([]unix.PollFd, len(fds))
		for i, fd := range fds {
			pollfds[i].Fd = int32(fd)
			pollfds[i].Events = unix.POLLIN
		}

		n, err := unix.Poll(pollfds, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return xerrors.Wrap(err, "polling supervised descriptors")
		}
		if n == 0 {
			continue
		}

		for _, pfd := range pollfds {
			if pfd.Revents == 0 {
				continue
			}
			idx := s.indexForFD(int(pfd.Fd))
			if idx < 0 {
				continue
			}
			handler := s.handlers[idx]

			hangup := pfd.Revents&(unix.POLLHUP|unix.POLLERR) != 0
			consumed := handler.OnDataAvailable()
			if consumed <= 0 || hangup {
				s.closed[idx] = true
				handler.OnClose()
			}
		}
	}
}

func (s *Supervisor) openFDs() []int {
	var fds []int
	for i, h := range s.handlers {
		if !s.closed[i] {
			fds = append(fds, h.FD())
		}
	}
	return fds
}

func (s *Supervisor) indexForFD(fd int) int {
	for i, h := range s.handlers {
		if !s.closed[i] && h.FD() == fd {
			return i
		}
	}
	return -1
}
