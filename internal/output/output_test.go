// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package output

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResizeGrowZeroFills(t *testing.T) {
	o := New([]byte("ab"))
	o.Resize(5)
	require.Equal(t, []byte("ab\x00\x00\x00"), o.Bytes())
}

func TestResizeShrinkTruncates(t *testing.T) {
	o := New([]byte("abcdef"))
	o.Resize(3)
	require.Equal(t, []byte("abc"), o.Bytes())
}

func TestResizeSameLengthIsNoop(t *testing.T) {
	o := New([]byte("abc"))
	before := o.Bytes()
	o.Resize(3)
	require.Equal(t, before, o.Bytes())
}

func TestResizeIdempotentTwice(t *testing.T) {
	o := New([]byte("ab"))
	o.Resize(4)
	o.Resize(4)
	require.Equal(t, 4, o.Len())
	require.Equal(t, []byte("ab\x00\x00"), o.Bytes())
}

func TestAppendGrows(t *testing.T) {
	o := New(nil)
	o.Append([]byte("hello "))
	o.Append([]byte("world"))
	require.Equal(t, "hello world", string(o.Bytes()))
}

func TestNilOutputIsEmpty(t *testing.T) {
	var o *Output
	require.Equal(t, 0, o.Len())
	require.Nil(t, o.Bytes())
}
