// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package logging

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Sink is the minimal destination for a rendered log line.
type Sink interface {
	Write(msg string)
}

// FuncSink adapts a plain function into a Sink.
type FuncSink struct {
	mu sync.Mutex
	f  func(msg string)
}

// NewFuncSink wraps f as a Sink.
func NewFuncSink(f func(msg string)) *FuncSink {
	return &FuncSink{f: f}
}

// Write implements Sink.
func (s *FuncSink) Write(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f(msg)
}

// WriterSink adapts an io.Writer into a Sink, one line per message.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink wraps w as a Sink.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Write implements Sink.
func (s *WriterSink) Write(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, msg)
}

// timeFormat is the timestamp prefix format used when SinkLogger is
// configured to stamp messages.
const timeFormat = "2006-01-02T15:04:05.000000Z "

// SinkLogger is a Logger that filters by level, optionally prefixes a UTC
// timestamp, and forwards the rendered line to a Sink.
type SinkLogger struct {
	level     Level
	timestamp bool
	sink      Sink
}

// NewSinkLogger constructs a SinkLogger.
func NewSinkLogger(level Level, timestamp bool, sink Sink) *SinkLogger {
	return &SinkLogger{level: level, timestamp: timestamp, sink: sink}
}

// Log implements Logger.
func (l *SinkLogger) Log(level Level, ts time.Time, msg string) {
	if level < l.level {
		return
	}
	if l.timestamp {
		msg = ts.UTC().Format(timeFormat) + msg
	}
	l.sink.Write(msg)
}
