// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package failure

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"ctestrun/internal/stage"
	"ctestrun/internal/xerrors"
)

func TestFromErrorNil(t *testing.T) {
	require.Nil(t, FromError(stage.Setup, nil))
}

func TestFromErrorPlainErrorHasNoStacktrace(t *testing.T) {
	f := FromError(stage.Execution, errors.New("boom"))
	require.Equal(t, "boom", f.Description)
	require.Nil(t, f.Stacktrace)
}

func TestFromErrorXerrorsCarriesStack(t *testing.T) {
	f := FromError(stage.Teardown, xerrors.New("pipe closed"))
	require.Equal(t, "pipe closed", f.Description)
	require.NotNil(t, f.Stacktrace)
	require.NotEmpty(t, f.Stacktrace.Frames)
}

func TestFromErrorWrappedXerrorsCarriesOuterStack(t *testing.T) {
	inner := errors.New("epipe")
	f := FromError(stage.Execution, xerrors.Wrap(inner, "writing event"))
	require.Equal(t, "writing event: epipe", f.Description)
	require.NotNil(t, f.Stacktrace)
}
