// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package failure

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"ctestrun/internal/stage"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	f := New(stage.Execution, &Location{File: "assert_test.c", Line: 42},
		&Stacktrace{Frames: []Frame{
			{Addr: 0x1000, File: "assert.c", Line: 10},
			{Addr: 0x2000, File: "", Line: 0},
		}}, "x evaluated to %d but should be %d", 5, 7)

	buf, err := Serialize(f)
	require.NoError(t, err)

	got, err := Deserialize(buf)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(f, got))
}

func TestSerializeDeserializeNoLocationOrStack(t *testing.T) {
	f := New(stage.Setup, nil, nil, "plain failure")
	buf, err := Serialize(f)
	require.NoError(t, err)

	got, err := Deserialize(buf)
	require.NoError(t, err)
	require.Nil(t, got.Location)
	require.Nil(t, got.Stacktrace)
	require.Equal(t, "plain failure", got.Description)
}

func TestDeserializeMalformedBuffer(t *testing.T) {
	_, err := Deserialize([]byte{0, 1, 2})
	require.Error(t, err)

	buf := make([]byte, headerSize)
	buf[1] = 0xFF // descOff points far out of range
	_, err = Deserialize(buf)
	require.Error(t, err)
}

func TestClonePreservesFields(t *testing.T) {
	f := New(stage.Teardown, &Location{File: "a.c", Line: 1}, nil, "cleanup broken")
	clone := f.Clone()
	require.Empty(t, cmp.Diff(f, clone))

	clone.Location.Line = 99
	require.Equal(t, 1, f.Location.Line, "clone must not alias the original location")
}

func TestCloneNil(t *testing.T) {
	var f *Failure
	require.Nil(t, f.Clone())
}
