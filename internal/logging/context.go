// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package logging

import (
	"context"
	"fmt"
	"time"
)

// contextKey is the key type used to attach a Logger to a context.Context.
type contextKey struct{}

// AttachLogger returns a context carrying logger, consumed by ContextLogf,
// ContextDebugf and ContextWarnf.
func AttachLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts the Logger attached to ctx, if any.
func FromContext(ctx context.Context) (Logger, bool) {
	logger, ok := ctx.Value(contextKey{}).(Logger)
	return logger, ok
}

// ContextLogf formats and logs at LevelInfo via the logger attached to ctx.
// It is a silent no-op if ctx carries no logger.
func ContextLogf(ctx context.Context, format string, args ...interface{}) {
	logger, ok := FromContext(ctx)
	if !ok {
		return
	}
	logger.Log(LevelInfo, time.Now(), fmt.Sprintf(format, args...))
}

// ContextDebugf is ContextLogf at LevelDebug.
func ContextDebugf(ctx context.Context, format string, args ...interface{}) {
	logger, ok := FromContext(ctx)
	if !ok {
		return
	}
	logger.Log(LevelDebug, time.Now(), fmt.Sprintf(format, args...))
}

// ContextWarnf is ContextLogf at LevelWarn, for degraded-but-recoverable
// conditions: a signal install/restore mismatch, a dropped malformed
// event, a subprocess that could not be reached to terminate.
func ContextWarnf(ctx context.Context, format string, args ...interface{}) {
	logger, ok := FromContext(ctx)
	if !ok {
		return
	}
	logger.Log(LevelWarn, time.Now(), fmt.Sprintf(format, args...))
}
