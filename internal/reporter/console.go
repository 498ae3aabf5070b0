// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"ctestrun/internal/manifest"
	"ctestrun/internal/result"
)

// ConsoleTop is a reference Top implementation (§4.11): it prints one
// colorized PASS/FAIL/SKIPPED/ERROR line per completed test case and, via
// Finish, an end-of-run summary table grouped by suite. It satisfies the
// reporter port and nothing more — richer console UX is a genuine
// external concern.
type ConsoleTop struct {
	w     io.Writer
	color bool

	mu   sync.Mutex
	rows []consoleRow
}

type consoleRow struct {
	suite   string
	name    string
	outcome result.Outcome
}

var (
	styleGreen   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	styleRed     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	styleYellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	styleMagenta = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
)

// NewConsole constructs a ConsoleTop writing to w under the "auto" color
// policy: colorize only when w is a terminal. It is NewConsoleWithPolicy's
// default.
func NewConsole(w io.Writer) *ConsoleTop {
	return NewConsoleWithPolicy(w, "auto")
}

// NewConsoleWithPolicy constructs a ConsoleTop writing to w under the given
// color policy (the engine's runconfig.Config.Color): "always" and "never"
// force colorization on or off; anything else (including "auto" and the
// empty string) falls back to detecting whether w is a terminal.
func NewConsoleWithPolicy(w io.Writer, policy string) *ConsoleTop {
	var color bool
	switch policy {
	case "always":
		color = true
	case "never":
		color = false
	default:
		if f, ok := w.(*os.File); ok {
			color = term.IsTerminal(int(f.Fd()))
		}
	}
	return &ConsoleTop{w: w, color: color}
}

// OpenSuite implements Top.
func (c *ConsoleTop) OpenSuite(suite *manifest.Suite) (Suite, error) {
	return &consoleSuite{top: c, suite: suite}, nil
}

// Finish prints the end-of-run summary table. It is not part of the
// reporter port; dispatch calls it (via a type assertion) once every
// suite reporter has been destroyed.
func (c *ConsoleTop) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	type counts struct {
		pass, fail, skipped, errored int
	}
	order := make([]string, 0)
	bySuite := make(map[string]*counts)
	for _, r := range c.rows {
		cs, ok := bySuite[r.suite]
		if !ok {
			cs = &counts{}
			bySuite[r.suite] = cs
			order = append(order, r.suite)
		}
		switch r.outcome {
		case result.Pass:
			cs.pass++
		case result.Fail:
			cs.fail++
		case result.Skipped:
			cs.skipped++
		case result.Error:
			cs.errored++
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(c.w)
	t.AppendHeader(table.Row{"Suite", "Pass", "Fail", "Skipped", "Error"})
	for _, name := range order {
		cs := bySuite[name]
		t.AppendRow(table.Row{name, cs.pass, cs.fail, cs.skipped, cs.errored})
	}
	t.Render()
}

func (c *ConsoleTop) record(row consoleRow) {
	c.mu.Lock()
	c.rows = append(c.rows, row)
	c.mu.Unlock()
}

func (c *ConsoleTop) printLine(row consoleRow) {
	label := strings.ToUpper(row.outcome.String())
	if c.color {
		switch row.outcome {
		case result.Pass:
			label = styleGreen.Render(label)
		case result.Fail:
			label = styleRed.Render(label)
		case result.Skipped:
			label = styleYellow.Render(label)
		case result.Error:
			label = styleMagenta.Render(label)
		}
	}
	fmt.Fprintf(c.w, "%-8s %s:%s\n", label, row.suite, row.name)
}

type consoleSuite struct {
	top   *ConsoleTop
	suite *manifest.Suite
}

func (s *consoleSuite) OpenTest(test *manifest.Test) (Test, error) {
	if test.Suite() != s.suite {
		return nil, ErrWrongSuite
	}
	return &consoleTest{top: s.top, suite: s.suite, test: test}, nil
}

func (s *consoleSuite) Destroy() {}

type consoleTest struct {
	top   *ConsoleTop
	suite *manifest.Suite
	test  *manifest.Test
}

func (t *consoleTest) OpenTestCase(tc *manifest.TestCase) (TestCase, error) {
	if tc.Test != t.test {
		return nil, ErrWrongTest
	}
	return &consoleTestCase{top: t.top, suite: t.suite, tc: tc}, nil
}

func (t *consoleTest) Destroy() {}

type consoleTestCase struct {
	top   *ConsoleTop
	suite *manifest.Suite
	tc    *manifest.TestCase

	destroyed bool
	completed bool
}

func (c *consoleTestCase) Start() {}

func (c *consoleTestCase) Complete(res *result.Result) {
	if c.destroyed || c.completed {
		return
	}
	c.completed = true
	row := consoleRow{suite: c.suite.Name, name: c.tc.Name, outcome: res.Outcome}
	c.top.record(row)
	c.top.printLine(row)
}

func (c *consoleTestCase) Destroy() {
	c.destroyed = true
}
