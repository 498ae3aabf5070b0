// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package partition

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ctestrun/internal/manifest"
)

func tc(name string, test *manifest.Test) *manifest.TestCase {
	return &manifest.TestCase{Name: name, Test: test}
}

func names(cases []*manifest.TestCase) []string {
	out := make([]string, len(cases))
	for i, c := range cases {
		out[i] = c.Name
	}
	return out
}

// TestPartitioningStabilityScenario reproduces the documented scenario:
// [a1,b1,a2,c1,b2,a3] where a*/b* belong to suite S (tests A, B) and c1
// belongs to suite T (test C). Expected result: [a1,a2,a3,b1,b2,c1].
func TestPartitioningStabilityScenario(t *testing.T) {
	s := manifest.Bind(&manifest.Suite{Name: "S"})
	tT := manifest.Bind(&manifest.Suite{Name: "T"})
	A := &manifest.Test{Name: "A"}
	B := &manifest.Test{Name: "B"}
	C := &manifest.Test{Name: "C"}
	s.Tests = []*manifest.Test{A, B}
	tT.Tests = []*manifest.Test{C}
	manifest.Bind(s)
	manifest.Bind(tT)

	cases := []*manifest.TestCase{
		tc("a1", A), tc("b1", B), tc("a2", A), tc("c1", C), tc("b2", B), tc("a3", A),
	}

	got := TestCases(cases)
	require.Equal(t, []string{"a1", "a2", "a3", "b1", "b2", "c1"}, names(got))
}

func TestPartitioningAlreadyContiguous(t *testing.T) {
	s := manifest.Bind(&manifest.Suite{Name: "S"})
	A := &manifest.Test{Name: "A"}
	s.Tests = []*manifest.Test{A}
	manifest.Bind(s)

	cases := []*manifest.TestCase{tc("a1", A), tc("a2", A), tc("a3", A)}
	got := TestCases(cases)
	require.Equal(t, []string{"a1", "a2", "a3"}, names(got))
}

func TestPartitioningSingleCase(t *testing.T) {
	s := manifest.Bind(&manifest.Suite{Name: "S"})
	A := &manifest.Test{Name: "A"}
	s.Tests = []*manifest.Test{A}
	manifest.Bind(s)

	cases := []*manifest.TestCase{tc("a1", A)}
	got := TestCases(cases)
	require.Equal(t, []string{"a1"}, names(got))
}

// TestPartitioningMultipleSuitesInterleaved checks that a later suite's
// test, once its first case is reached, doesn't get pulled in front of an
// earlier suite still in progress.
func TestPartitioningMultipleSuitesInterleaved(t *testing.T) {
	s1 := manifest.Bind(&manifest.Suite{Name: "S1"})
	s2 := manifest.Bind(&manifest.Suite{Name: "S2"})
	A := &manifest.Test{Name: "A"}
	B := &manifest.Test{Name: "B"}
	X := &manifest.Test{Name: "X"}
	s1.Tests = []*manifest.Test{A, B}
	s2.Tests = []*manifest.Test{X}
	manifest.Bind(s1)
	manifest.Bind(s2)

	cases := []*manifest.TestCase{
		tc("x1", X), tc("a1", A), tc("b1", B), tc("x2", X), tc("a2", A),
	}
	got := TestCases(cases)
	require.Equal(t, []string{"x1", "x2", "a1", "a2", "b1"}, names(got))
}

func TestTestsGroupedBySuite(t *testing.T) {
	s1 := manifest.Bind(&manifest.Suite{Name: "S1"})
	s2 := manifest.Bind(&manifest.Suite{Name: "S2"})
	A := &manifest.Test{Name: "A"}
	X := &manifest.Test{Name: "X"}
	B := &manifest.Test{Name: "B"}
	s1.Tests = []*manifest.Test{A, B}
	s2.Tests = []*manifest.Test{X}
	manifest.Bind(s1)
	manifest.Bind(s2)

	got := Tests([]*manifest.Test{X, A, B})
	require.Equal(t, []*manifest.Test{X, A, B}, got)

	got2 := Tests([]*manifest.Test{A, X, B})
	require.Equal(t, []*manifest.Test{A, B, X}, got2)
}
