// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package dataaccess

import (
	"time"

	"github.com/terrama2/terrama2/internal/geom"
)

// Filter narrows the rows an accessor returns. Zero-value fields do not
// constrain: a zero DiscardBefore keeps all history, LastValues == 0
// keeps every matched row, a nil Region skips the spatial test.
//
// DiscardBefore and DiscardAfter are always derived from the run's fixed
// start time, so every operator in one run observes the same window.
type Filter struct {
	DiscardBefore time.Time
	DiscardAfter  time.Time
	LastValues    int
	Region        geom.Geometry
}

// IsEmpty reports whether the filter constrains anything.
func (f Filter) IsEmpty() bool {
	return f.DiscardBefore.IsZero() && f.DiscardAfter.IsZero() && f.LastValues == 0 && f.Region == nil
}

// KeepsTime reports whether a timestamp falls inside the temporal window.
func (f Filter) KeepsTime(ts time.Time) bool {
	if !f.DiscardBefore.IsZero() && ts.Before(f.DiscardBefore) {
		return false
	}
	if !f.DiscardAfter.IsZero() && ts.After(f.DiscardAfter) {
		return false
	}
	return true
}

// KeepsGeometry reports whether a geometry intersects the filter region.
// A nil region keeps everything.
func (f Filter) KeepsGeometry(g geom.Geometry) bool {
	if f.Region == nil {
		return true
	}
	if g == nil {
		return false
	}
	return geom.Intersects(f.Region, g)
}
