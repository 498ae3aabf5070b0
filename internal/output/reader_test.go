// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package output

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewReaderDefaultsToPackageCap(t *testing.T) {
	r := NewReader(0)
	require.Equal(t, maxCapacity, r.capBytes)
}

func TestNewReaderWithCapNonPositiveFallsBackToDefault(t *testing.T) {
	require.Equal(t, maxCapacity, NewReaderWithCap(0, 0).capBytes)
	require.Equal(t, maxCapacity, NewReaderWithCap(0, -1).capBytes)
}

func TestNewReaderWithCapHonorsExplicitValue(t *testing.T) {
	r := NewReaderWithCap(0, 256)
	require.Equal(t, 256, r.capBytes)
}

func TestOnDataAvailableDegradesPastCap(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	reader := NewReaderWithCap(int(r.Fd()), initialCapacity)
	// First read seeds the buffer at initialCapacity; growth past the tiny
	// cap flips the reader into drain-and-drop on the very next read.
	_, err = w.Write(make([]byte, initialCapacity))
	require.NoError(t, err)
	n := reader.OnDataAvailable()
	require.Equal(t, initialCapacity, n)
	require.False(t, reader.degraded)

	_, err = w.Write([]byte("x"))
	require.NoError(t, err)
	n = reader.OnDataAvailable()
	require.Equal(t, 1, n)
	require.True(t, reader.degraded)
}
