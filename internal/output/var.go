// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package output

import "ctestrun/internal/iomux"

var _ iomux.Handler = (*Reader)(nil)
