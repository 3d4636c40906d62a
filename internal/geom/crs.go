// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package geom

import (
	"fmt"
	"math"
	"strings"
)

// Approximate meter lengths of one degree at the equator. Good enough for
// influence-radius buffering; the core never promises survey-grade
// reprojection, only that metric buffers are built in a metric frame.
const (
	metersPerDegreeLat = 110540.0
	metersPerDegreeLon = 111320.0
)

// IsGeographic reports whether the SRID identifies a geographic (degree
// unit) CRS. EPSG reserves 4000-4999 for geographic systems; everything
// else the core touches (UTM, polyconic, web mercator) is metric.
func IsGeographic(srid int) bool {
	return srid >= 4000 && srid <= 4999
}

// UTMSRID derives the EPSG identifier of the UTM zone covering the given
// geographic coordinate. Used to pick a transient metric CRS when a buffer
// must be built around a station located in a degree-unit CRS.
func UTMSRID(c Coord) int {
	zone := int(math.Floor((c.X+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	if c.Y < 0 {
		return 32700 + zone
	}
	return 32600 + zone
}

// RadiusToMeters converts an influence radius expressed in the given unit
// to meters. The empty unit defaults to kilometers, matching the original
// configuration convention.
func RadiusToMeters(radius float64, unit string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "km", "kilometer", "kilometre":
		return radius * 1000, nil
	case "m", "meter", "metre":
		return radius, nil
	case "mi", "mile":
		return radius * 1609.344, nil
	default:
		return 0, fmt.Errorf("unknown radius unit %q", unit)
	}
}

// LocalProjection maps geographic coordinates to a local metric frame
// anchored at an origin, using an equirectangular approximation. It is a
// transient "UTM-like" frame used only for metric buffering: valid near
// the origin, never persisted, never used for analysis output.
type LocalProjection struct {
	origin   Coord
	lonScale float64
}

// NewLocalProjection anchors a local metric frame at the given geographic
// coordinate.
func NewLocalProjection(origin Coord) LocalProjection {
	return LocalProjection{
		origin:   origin,
		lonScale: metersPerDegreeLon * math.Cos(origin.Y*math.Pi/180),
	}
}

// ToMeters converts a geographic coordinate to local meters.
func (lp LocalProjection) ToMeters(c Coord) Coord {
	return Coord{
		X: (c.X - lp.origin.X) * lp.lonScale,
		Y: (c.Y - lp.origin.Y) * metersPerDegreeLat,
	}
}

// ToDegrees converts a local metric coordinate back to geographic degrees.
func (lp LocalProjection) ToDegrees(c Coord) Coord {
	return Coord{
		X: lp.origin.X + c.X/lp.lonScale,
		Y: lp.origin.Y + c.Y/metersPerDegreeLat,
	}
}
