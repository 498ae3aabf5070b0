// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package xerrors provides the chained, stack-capturing error type used
// throughout this module.
//
// Construct or wrap every error that crosses a package boundary with this
// package rather than the standard errors/fmt constructors: doing so records
// a stack trace and preserves the causal chain, both of which show up when a
// failing test case's infrastructure error is logged.
//
//	xerrors.New("pipe creation failed")
//	xerrors.Errorf("module %q: bad magic", path)
//	xerrors.Wrap(err, "waiting for child")
//	xerrors.Wrapf(err, "loading module %q", path)
//
// Format an error chain with "%+v" to print every message and stack frame.
package xerrors

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"ctestrun/internal/xerrors/stack"
)

// E is the error implementation used by this package.
type E struct {
	msg   string
	stk   stack.Stack
	cause error
}

// Error implements the error interface.
func (e *E) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %s", e.msg, e.cause.Error())
}

// Unwrap implements the error Unwrap interface.
func (e *E) Unwrap() error {
	return e.cause
}

// Stack returns the call stack captured when e was constructed. It is the
// hook internal/failure uses to fold an infrastructure error into a
// wire-serializable Failure without re-deriving a stack trace from
// scratch: a Failure's Stacktrace and an E's stk record the same
// underlying data (a captured stack.Stack), just for two different
// destinations (an in-process error chain versus a pipe-crossing record).
func (e *E) Stack() stack.Stack {
	return e.stk
}

type unwrapper interface {
	unwrap() (msg string, stk stack.Stack, cause error)
}

func (e *E) unwrap() (msg string, stk stack.Stack, cause error) {
	return e.msg, e.stk, e.cause
}

func formatChain(err error) string {
	var chain []string
	for err != nil {
		if e, ok := err.(unwrapper); ok {
			msg, stk, cause := e.unwrap()
			chain = append(chain, fmt.Sprintf("%s\n%v", msg, stk))
			err = cause
		} else {
			chain = append(chain, fmt.Sprintf("%s\n\tat ???", err.Error()))
			err = nil
		}
	}
	return strings.Join(chain, "\n")
}

// Format implements fmt.Formatter; "%+v" prints the full chain with stacks.
func (e *E) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		io.WriteString(s, formatChain(e))
	} else {
		io.WriteString(s, e.Error())
	}
}

// New creates a new error with the given message, recording the call site.
func New(msg string) *E {
	return &E{msg, stack.New(1), nil}
}

// Errorf creates a new formatted error, recording the call site.
func Errorf(format string, args ...interface{}) *E {
	return &E{fmt.Sprintf(format, args...), stack.New(1), nil}
}

// Wrap creates a new error with msg, wrapping cause. If cause is nil this is
// the same as New.
func Wrap(cause error, msg string) *E {
	return &E{msg, stack.New(1), cause}
}

// Wrapf is like Wrap but with a formatted message.
func Wrapf(cause error, format string, args ...interface{}) *E {
	return &E{fmt.Sprintf(format, args...), stack.New(1), cause}
}

// Unwrap wraps the standard errors.Unwrap.
func Unwrap(err error) error { return errors.Unwrap(err) }

// As wraps the standard errors.As.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is wraps the standard errors.Is.
func Is(err, target error) bool { return errors.Is(err, target) }
