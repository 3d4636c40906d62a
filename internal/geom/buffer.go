// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package geom

import "math"

// bufferSegments is the number of segments used to approximate a disk,
// matching the original buffer tessellation.
const bufferSegments = 16

// BufferPoint builds a disk of the given radius (meters) around a point.
// For geographic CRSs the disk is built in a transient local metric frame
// anchored at the point and converted back to degrees; for metric CRSs it
// is built directly. A radius <= 0 degrades to the bare point: callers that
// need a geometry fall back to the point itself, so this returns an empty
// polygon only for nonsense input.
func BufferPoint(p Point, radiusMeters float64) Polygon {
	if radiusMeters <= 0 {
		return Polygon{}
	}

	shell := make([]Coord, 0, bufferSegments)
	if IsGeographic(p.SRID()) {
		lp := NewLocalProjection(p.Coord)
		for i := 0; i < bufferSegments; i++ {
			angle := 2 * math.Pi * float64(i) / bufferSegments
			local := Coord{X: radiusMeters * math.Cos(angle), Y: radiusMeters * math.Sin(angle)}
			shell = append(shell, lp.ToDegrees(local))
		}
	} else {
		for i := 0; i < bufferSegments; i++ {
			angle := 2 * math.Pi * float64(i) / bufferSegments
			shell = append(shell, Coord{
				X: p.X + radiusMeters*math.Cos(angle),
				Y: p.Y + radiusMeters*math.Sin(angle),
			})
		}
	}
	return NewPolygon(shell, nil, p.SRID())
}

// ExpandGeometry returns a geometry grown by the given distance (meters),
// used when a monitored-object buffer is requested before an intersection
// test. Points gain a disk; polygons are approximated by their expanded
// envelope, which is conservative for the spatial prefilter the operators
// apply before the exact per-row test.
func ExpandGeometry(g Geometry, meters float64) Geometry {
	if meters <= 0 {
		return g
	}
	if p, ok := g.(Point); ok {
		return BufferPoint(p, meters)
	}

	env := g.Bounds()
	d := meters
	if IsGeographic(g.SRID()) {
		center := env.Center()
		lonScale := metersPerDegreeLon * math.Cos(center.Y*math.Pi/180)
		if lonScale <= 0 {
			lonScale = metersPerDegreeLon
		}
		// Expand by the larger degree equivalent on both axes.
		d = math.Max(meters/metersPerDegreeLat, meters/lonScale)
	}
	expanded := env.Expand(d)
	shell := []Coord{
		{X: expanded.MinX, Y: expanded.MinY},
		{X: expanded.MaxX, Y: expanded.MinY},
		{X: expanded.MaxX, Y: expanded.MaxY},
		{X: expanded.MinX, Y: expanded.MaxY},
	}
	return NewPolygon(shell, nil, g.SRID())
}
