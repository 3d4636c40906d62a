// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

// Package geom provides the geometry contracts required by the analysis core:
// envelopes, points, polygons, spatial predicates, metric buffering and the
// minimal CRS bookkeeping needed for influence computation.
//
// This is not a general-purpose geometry library. It implements exactly the
// operations the operators and the interpolator consume: MBR queries,
// intersects/within tests, centroids, disk buffers around station positions
// and envelope expansion for monitored-object buffers.
package geom

import "math"

// Coord is a bare 2D coordinate with no CRS attached.
type Coord struct {
	X, Y float64
}

// Envelope is an axis-aligned bounding rectangle (MBR).
type Envelope struct {
	MinX, MinY, MaxX, MaxY float64
}

// NewEnvelope returns the envelope of the given corner coordinates,
// normalizing min/max ordering.
func NewEnvelope(x1, y1, x2, y2 float64) Envelope {
	return Envelope{
		MinX: math.Min(x1, x2),
		MinY: math.Min(y1, y2),
		MaxX: math.Max(x1, x2),
		MaxY: math.Max(y1, y2),
	}
}

// Width returns the horizontal extent.
func (e Envelope) Width() float64 { return e.MaxX - e.MinX }

// Height returns the vertical extent.
func (e Envelope) Height() float64 { return e.MaxY - e.MinY }

// IsValid reports whether the envelope is non-degenerate: positive
// area and finite bounds.
func (e Envelope) IsValid() bool {
	if math.IsNaN(e.MinX) || math.IsNaN(e.MinY) || math.IsNaN(e.MaxX) || math.IsNaN(e.MaxY) {
		return false
	}
	return e.MaxX > e.MinX && e.MaxY > e.MinY
}

// Intersects reports whether two envelopes overlap (inclusive of touching).
func (e Envelope) Intersects(o Envelope) bool {
	return e.MinX <= o.MaxX && e.MaxX >= o.MinX && e.MinY <= o.MaxY && e.MaxY >= o.MinY
}

// ContainsCoord reports whether the coordinate lies inside or on the envelope.
func (e Envelope) ContainsCoord(c Coord) bool {
	return c.X >= e.MinX && c.X <= e.MaxX && c.Y >= e.MinY && c.Y <= e.MaxY
}

// Expand returns the envelope grown by d on every side.
func (e Envelope) Expand(d float64) Envelope {
	return Envelope{MinX: e.MinX - d, MinY: e.MinY - d, MaxX: e.MaxX + d, MaxY: e.MaxY + d}
}

// Union returns the smallest envelope covering both.
func (e Envelope) Union(o Envelope) Envelope {
	return Envelope{
		MinX: math.Min(e.MinX, o.MinX),
		MinY: math.Min(e.MinY, o.MinY),
		MaxX: math.Max(e.MaxX, o.MaxX),
		MaxY: math.Max(e.MaxY, o.MaxY),
	}
}

// Center returns the envelope's central coordinate.
func (e Envelope) Center() Coord {
	return Coord{X: (e.MinX + e.MaxX) / 2, Y: (e.MinY + e.MaxY) / 2}
}

// Geometry is the contract every geometry type satisfies. Geometries are
// value types; SRID is carried with the geometry the same way the data
// access layer delivers it.
type Geometry interface {
	Bounds() Envelope
	SRID() int
	Centroid() Coord
}

// Point is a position with a CRS.
type Point struct {
	Coord
	srid int
}

// NewPoint creates a point in the given CRS.
func NewPoint(x, y float64, srid int) Point {
	return Point{Coord: Coord{X: x, Y: y}, srid: srid}
}

// Bounds returns a degenerate envelope at the point.
func (p Point) Bounds() Envelope {
	return Envelope{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
}

// SRID returns the point's CRS identifier.
func (p Point) SRID() int { return p.srid }

// Centroid returns the point itself.
func (p Point) Centroid() Coord { return p.Coord }

// WithSRID returns a copy of the point relabeled to another CRS.
// Coordinates are not reprojected; see Transform.
func (p Point) WithSRID(srid int) Point {
	p.srid = srid
	return p
}

// Polygon is a single polygon with an exterior shell and optional holes.
// Rings are stored unclosed (first vertex is not repeated at the end).
type Polygon struct {
	shell []Coord
	holes [][]Coord
	srid  int
}

// NewPolygon creates a polygon from an exterior ring and optional holes.
// The rings are used as given; callers must not mutate them afterwards.
func NewPolygon(shell []Coord, holes [][]Coord, srid int) Polygon {
	return Polygon{shell: shell, holes: holes, srid: srid}
}

// Shell returns the exterior ring.
func (p Polygon) Shell() []Coord { return p.shell }

// Holes returns the interior rings.
func (p Polygon) Holes() [][]Coord { return p.holes }

// SRID returns the polygon's CRS identifier.
func (p Polygon) SRID() int { return p.srid }

// Bounds returns the polygon's MBR.
func (p Polygon) Bounds() Envelope {
	if len(p.shell) == 0 {
		return Envelope{}
	}
	env := Envelope{MinX: p.shell[0].X, MinY: p.shell[0].Y, MaxX: p.shell[0].X, MaxY: p.shell[0].Y}
	for _, c := range p.shell[1:] {
		env.MinX = math.Min(env.MinX, c.X)
		env.MinY = math.Min(env.MinY, c.Y)
		env.MaxX = math.Max(env.MaxX, c.X)
		env.MaxY = math.Max(env.MaxY, c.Y)
	}
	return env
}

// Area returns the polygon's area (shell minus holes) in CRS units squared.
func (p Polygon) Area() float64 {
	area := math.Abs(ringArea(p.shell))
	for _, h := range p.holes {
		area -= math.Abs(ringArea(h))
	}
	return area
}

// Centroid returns the area-weighted centroid of the shell. Holes are
// ignored; monitored-object centroid tests in the original behave the same.
func (p Polygon) Centroid() Coord {
	return ringCentroid(p.shell)
}

// MultiPolygon is a collection of polygons sharing one CRS.
type MultiPolygon struct {
	polys []Polygon
	srid  int
}

// NewMultiPolygon creates a multi-polygon. All members are expected to be
// in the given CRS.
func NewMultiPolygon(polys []Polygon, srid int) MultiPolygon {
	return MultiPolygon{polys: polys, srid: srid}
}

// Polygons returns the member polygons.
func (m MultiPolygon) Polygons() []Polygon { return m.polys }

// SRID returns the multi-polygon's CRS identifier.
func (m MultiPolygon) SRID() int { return m.srid }

// Bounds returns the union MBR of all members.
func (m MultiPolygon) Bounds() Envelope {
	if len(m.polys) == 0 {
		return Envelope{}
	}
	env := m.polys[0].Bounds()
	for _, p := range m.polys[1:] {
		env = env.Union(p.Bounds())
	}
	return env
}

// Centroid returns the area-weighted centroid across all member polygons.
func (m MultiPolygon) Centroid() Coord {
	var cx, cy, total float64
	for _, p := range m.polys {
		a := p.Area()
		c := p.Centroid()
		cx += c.X * a
		cy += c.Y * a
		total += a
	}
	if total == 0 {
		return m.Bounds().Center()
	}
	return Coord{X: cx / total, Y: cy / total}
}

// ringArea returns the signed area of a ring (shoelace formula).
func ringArea(ring []Coord) float64 {
	if len(ring) < 3 {
		return 0
	}
	var sum float64
	for i, c := range ring {
		next := ring[(i+1)%len(ring)]
		sum += c.X*next.Y - next.X*c.Y
	}
	return sum / 2
}

// ringCentroid returns the area-weighted centroid of a ring.
func ringCentroid(ring []Coord) Coord {
	if len(ring) == 0 {
		return Coord{}
	}
	area := ringArea(ring)
	if area == 0 {
		// Degenerate ring, fall back to the vertex mean.
		var cx, cy float64
		for _, c := range ring {
			cx += c.X
			cy += c.Y
		}
		n := float64(len(ring))
		return Coord{X: cx / n, Y: cy / n}
	}
	var cx, cy float64
	for i, c := range ring {
		next := ring[(i+1)%len(ring)]
		f := c.X*next.Y - next.X*c.Y
		cx += (c.X + next.X) * f
		cy += (c.Y + next.Y) * f
	}
	return Coord{X: cx / (6 * area), Y: cy / (6 * area)}
}
