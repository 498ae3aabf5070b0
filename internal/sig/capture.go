// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package sig implements the process-wide signal capture facility used by
// both runners: install a single handler+cookie pair across the fixed set
// of catchable terminal/job-control signals, and restore prior dispositions
// symmetrically.
//
// Go's runtime does not expose sigaction/sigprocmask directly. Capture
// realizes "install" as signal.Notify against the fixed signal set on an
// internal channel serviced by one goroutine, and "restore" as signal.Stop
// on that channel alone, which leaves every other signal.Notify
// registration in the process in place and returns unclaimed signals to
// the handling they had before Install.
// The single-active-installation contract and the cookie-indirected
// callback dispatch are Go-level invariants enforced with a package mutex,
// independent of the underlying OS mechanism.
package sig

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"ctestrun/internal/xerrors"
)

// Signals lists every signal Capture installs a handler for: every
// catchable terminal or job-control signal the platform exposes. SIGKILL
// and SIGSTOP are excluded by contract (they cannot be caught).
var Signals = []syscall.Signal{
	syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGILL,
	syscall.SIGTRAP, syscall.SIGABRT, syscall.SIGFPE, syscall.SIGSEGV,
	syscall.SIGPIPE, syscall.SIGALRM, syscall.SIGTERM, syscall.SIGUSR1,
	syscall.SIGUSR2, syscall.SIGCHLD, syscall.SIGCONT, syscall.SIGTSTP,
	syscall.SIGTTIN, syscall.SIGTTOU,
}

// Callback is invoked with the received signal and the cookie supplied to
// Install. It is responsible for whatever non-local control transfer or
// child-side serialization the caller needs.
type Callback func(sig syscall.Signal, cookie interface{})

var (
	mu       sync.Mutex
	active   bool
	ch       chan os.Signal
	done     chan struct{}
	cookieV  interface{}
	callback Callback
)

// Install registers callback+cookie as the single active handler for every
// signal in Signals. A second concurrent Install fails fast with an error
// instead of silently replacing the first (mirroring the original's EBUSY
// behavior).
func Install(cb Callback, cookie interface{}) error {
	mu.Lock()
	defer mu.Unlock()
	if active {
		return xerrors.New("signal capture already installed")
	}

	callback = cb
	cookieV = cookie
	ch = make(chan os.Signal, len(Signals))
	done = make(chan struct{})

	osSignals := make([]os.Signal, len(Signals))
	for i, s := range Signals {
		osSignals[i] = s
	}
	signal.Notify(ch, osSignals...)
	active = true

	go func() {
		for {
			select {
			case s, ok := <-ch:
				if !ok {
					return
				}
				if sysSig, ok := s.(syscall.Signal); ok {
					callback(sysSig, cookieV)
				}
			case <-done:
				return
			}
		}
	}()
	return nil
}

// Restore tears down the active installation, returning signal handling to
// what it was before Install; other signal.Notify registrations in the
// process are left in place. Restoring with no active installation is an
// error.
func Restore() error {
	mu.Lock()
	defer mu.Unlock()
	if !active {
		return xerrors.New("signal capture not installed")
	}

	signal.Stop(ch)
	close(done)
	close(ch)

	active = false
	callback = nil
	cookieV = nil
	return nil
}

// Installed reports whether a handler is currently active.
func Installed() bool {
	mu.Lock()
	defer mu.Unlock()
	return active
}
