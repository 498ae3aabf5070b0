// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package events

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"ctestrun/internal/failure"
	"ctestrun/internal/stage"
)

type recordingConsumer struct {
	stages   []stage.Stage
	failures []*failure.Failure
}

func (c *recordingConsumer) OnStageChange(s stage.Stage)   { c.stages = append(c.stages, s) }
func (c *recordingConsumer) OnFailure(f *failure.Failure) { c.failures = append(c.failures, f) }

func pumpUntilIdle(t *testing.T, r *Reader) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		n := r.OnDataAvailable()
		if n <= 0 {
			return
		}
	}
	t.Fatal("reader did not drain within bound")
}

func TestWriterReaderStageChange(t *testing.T) {
	rf, wf, err := os.Pipe()
	require.NoError(t, err)
	defer rf.Close()
	defer wf.Close()

	w := NewWriter(wf)
	require.NoError(t, w.WriteStageChange(stage.Execution))
	wf.Close()

	consumer := &recordingConsumer{}
	r := NewReader(int(rf.Fd()), consumer)
	pumpUntilIdle(t, r)

	require.Equal(t, []stage.Stage{stage.Execution}, consumer.stages)
}

func TestWriterReaderFailure(t *testing.T) {
	rf, wf, err := os.Pipe()
	require.NoError(t, err)
	defer rf.Close()
	defer wf.Close()

	f := failure.New(stage.Execution, &failure.Location{File: "a.c", Line: 3}, nil, "boom %d", 7)
	w := NewWriter(wf)
	require.NoError(t, w.WriteFailure(f))
	wf.Close()

	consumer := &recordingConsumer{}
	r := NewReader(int(rf.Fd()), consumer)
	pumpUntilIdle(t, r)

	require.Len(t, consumer.failures, 1)
	require.Equal(t, "boom 7", consumer.failures[0].Description)
	require.Equal(t, "a.c", consumer.failures[0].Location.File)
}

func TestReaderHandlesMultipleEventsSequentially(t *testing.T) {
	rf, wf, err := os.Pipe()
	require.NoError(t, err)
	defer rf.Close()
	defer wf.Close()

	w := NewWriter(wf)
	require.NoError(t, w.WriteStageChange(stage.Setup))
	require.NoError(t, w.WriteStageChange(stage.Execution))
	require.NoError(t, w.WriteStageChange(stage.Teardown))
	wf.Close()

	consumer := &recordingConsumer{}
	r := NewReader(int(rf.Fd()), consumer)
	pumpUntilIdle(t, r)

	require.Equal(t, []stage.Stage{stage.Setup, stage.Execution, stage.Teardown}, consumer.stages)
}
