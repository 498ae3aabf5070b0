// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runner

import (
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
)

// liveChildren tracks every re-exec'd child the Forking runner currently
// has in flight, keyed by pid. Unlike a process-table scan, this set is
// exact: it is the only place in the program that starts a ctestrun child,
// so there is no ambiguity about which live processes are ours to manage.
var (
	liveChildrenMu sync.Mutex
	liveChildren   = map[int]*os.Process{}
)

// trackChild registers proc as an in-flight forking-runner child and
// returns a func that deregisters it; RunTestCase defers the returned func
// so the registry never outlives the process it describes.
func trackChild(proc *os.Process) func() {
	liveChildrenMu.Lock()
	liveChildren[proc.Pid] = proc
	liveChildrenMu.Unlock()

	return func() {
		liveChildrenMu.Lock()
		delete(liveChildren, proc.Pid)
		liveChildrenMu.Unlock()
	}
}

// TerminateChildren sends SIGTERM to every forking-runner child currently
// in flight, then walks gopsutil's process table one level further to also
// reach each child's own descendants — a test module under the direct
// control of a forking-runner child can itself spawn subprocesses, and
// those would otherwise survive as orphans once the child is gone. It
// reports progress and failures to out and returns the number of processes
// signaled.
func TerminateChildren(out io.Writer) int {
	liveChildrenMu.Lock()
	pids := make([]int32, 0, len(liveChildren))
	for pid := range liveChildren {
		pids = append(pids, int32(pid))
	}
	liveChildrenMu.Unlock()

	if len(pids) == 0 {
		return 0
	}

	procs, err := process.Processes()
	if err != nil {
		fmt.Fprintf(out, "ctestrun: failed to enumerate descendants of %d in-flight case runner(s): %v\n", len(pids), err)
		procs = nil
	}

	signaled := 0
	for _, pid := range pids {
		liveChildrenMu.Lock()
		proc, ok := liveChildren[int(pid)]
		liveChildrenMu.Unlock()
		if !ok {
			continue
		}
		if err := proc.Signal(syscall.SIGTERM); err != nil {
			fmt.Fprintf(out, "ctestrun: signaling case runner %d: %v\n", pid, err)
			continue
		}
		signaled++
	}

	for _, p := range procs {
		ppid, err := p.Ppid()
		if err != nil {
			continue
		}
		for _, pid := range pids {
			if ppid == pid {
				if err := p.Terminate(); err != nil {
					fmt.Fprintf(out, "ctestrun: terminating descendant %d of case runner %d: %v\n", p.Pid, pid, err)
					continue
				}
				signaled++
			}
		}
	}
	return signaled
}
