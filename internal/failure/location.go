// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package failure

// Location names a source position: an optional filename plus a 1-based
// line number. A zero-value Location (empty File) represents "absent" at
// the failure level; callers should use a nil *Location where the data
// model allows a location to be entirely omitted.
type Location struct {
	File string
	Line int
}
