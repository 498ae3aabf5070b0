// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package manifest

import (
	"plugin"

	"ctestrun/internal/hooks"
	"ctestrun/internal/xerrors"
)

// SuiteSymbol and DynamicOpsCellSymbol are the well-known exported symbol
// names a dynamically loadable module must use for its manifest (§6).
const (
	SuiteSymbol          = "CtestSuite"
	DynamicOpsCellSymbol = "CtestDynamicOpsCell"
)

// Load opens the plugin at path and looks up its suite manifest, validating
// magic and version. A dynamic-ops cell is optional; its absence means the
// module cannot report failures back through the driver.
//
// This is deliberately the thinnest possible bridge between the Go
// plugin package (the closest stdlib analog to the original's dlopen-based
// module loading) and the manifest shape defined in manifest.go — loader
// mechanics are named only as an external collaborator by the contract this
// package specifies (§1).
func Load(path string) (*Suite, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, xerrors.Wrapf(err, "opening module %q", path)
	}

	sym, err := p.Lookup(SuiteSymbol)
	if err != nil {
		return nil, xerrors.Wrapf(err, "module %q missing suite symbol %q", path, SuiteSymbol)
	}
	suite, ok := sym.(*Suite)
	if !ok {
		return nil, xerrors.Errorf("module %q: suite symbol has unexpected type", path)
	}
	if !suite.Valid() {
		return nil, xerrors.Errorf("module %q: bad magic/version (got %#x/%d)", path, suite.Magic, suite.Version)
	}
	suite.ModulePath = path

	if cellSym, err := p.Lookup(DynamicOpsCellSymbol); err == nil {
		if cell, ok := cellSym.(*hooks.DynamicOps); ok {
			suite.DynamicOpsCell = cell
		}
	}

	return Bind(suite), nil
}
