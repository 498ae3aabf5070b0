// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package xerrors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCapturesStack(t *testing.T) {
	err := New("boom")
	require.Equal(t, "boom", err.Error())
	require.NotEmpty(t, err.Stack())
}

func TestErrorfFormatsMessage(t *testing.T) {
	err := Errorf("module %q: bad magic", "foo.so")
	require.Equal(t, `module "foo.so": bad magic`, err.Error())
}

func TestWrapChainsCauseMessage(t *testing.T) {
	cause := errors.New("epipe")
	err := Wrap(cause, "writing event")
	require.Equal(t, "writing event: epipe", err.Error())
	require.Equal(t, cause, Unwrap(err))
}

func TestWrapNilCauseBehavesLikeNew(t *testing.T) {
	err := Wrap(nil, "no cause here")
	require.Equal(t, "no cause here", err.Error())
	require.Nil(t, Unwrap(err))
}

func TestWrapfFormatsAroundCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrapf(cause, "loading module %q", "bar.so")
	require.Equal(t, `loading module "bar.so": disk full`, err.Error())
}

func TestIsMatchesThroughChain(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := Wrap(sentinel, "outer")
	require.True(t, Is(err, sentinel))
}

func TestAsExtractsConcreteType(t *testing.T) {
	err := Wrap(New("inner"), "outer")
	var target *E
	require.True(t, As(err, &target))
	require.Equal(t, "outer: inner", target.Error())
}

func TestFormatPlusVPrintsChainWithStacks(t *testing.T) {
	err := Wrap(New("root cause"), "outer failure")
	rendered := fmt.Sprintf("%+v", err)
	require.True(t, strings.Contains(rendered, "outer failure"))
	require.True(t, strings.Contains(rendered, "root cause"))
	require.True(t, strings.Contains(rendered, "at "))
}

func TestFormatPlainVMatchesError(t *testing.T) {
	err := New("plain")
	require.Equal(t, err.Error(), fmt.Sprintf("%v", err))
}
