// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package geom

import "math"

// coordEpsilon is the tolerance for point equality tests.
const coordEpsilon = 1e-12

// Intersects reports whether two geometries share any point.
// An MBR rejection test runs first; exact tests follow per type pair.
func Intersects(a, b Geometry) bool {
	if a == nil || b == nil {
		return false
	}
	if !a.Bounds().Intersects(b.Bounds()) {
		return false
	}

	switch ga := a.(type) {
	case Point:
		return pointIntersects(ga, b)
	case Polygon:
		return polygonIntersects(ga, b)
	case MultiPolygon:
		for _, p := range ga.Polygons() {
			if polygonIntersects(p.withSRID(ga.SRID()), b) {
				return true
			}
		}
		return false
	}
	return false
}

// Within reports whether the coordinate lies inside the geometry
// (boundary inclusive for polygon edges crossed by the ray cast).
func Within(c Coord, g Geometry) bool {
	switch gg := g.(type) {
	case Point:
		return math.Abs(c.X-gg.X) < coordEpsilon && math.Abs(c.Y-gg.Y) < coordEpsilon
	case Polygon:
		return polygonContains(gg, c)
	case MultiPolygon:
		for _, p := range gg.Polygons() {
			if polygonContains(p, c) {
				return true
			}
		}
		return false
	}
	return false
}

func (p Polygon) withSRID(srid int) Polygon {
	p.srid = srid
	return p
}

func pointIntersects(p Point, g Geometry) bool {
	switch gg := g.(type) {
	case Point:
		return math.Abs(p.X-gg.X) < coordEpsilon && math.Abs(p.Y-gg.Y) < coordEpsilon
	case Polygon:
		return polygonContains(gg, p.Coord)
	case MultiPolygon:
		return Within(p.Coord, gg)
	}
	return false
}

func polygonIntersects(poly Polygon, g Geometry) bool {
	switch gg := g.(type) {
	case Point:
		return polygonContains(poly, gg.Coord)
	case Polygon:
		return polygonsOverlap(poly, gg)
	case MultiPolygon:
		for _, p := range gg.Polygons() {
			if polygonsOverlap(poly, p) {
				return true
			}
		}
		return false
	}
	return false
}

// polygonsOverlap tests polygon/polygon intersection: either polygon
// containing a vertex of the other, or any pair of edges crossing.
func polygonsOverlap(a, b Polygon) bool {
	if !a.Bounds().Intersects(b.Bounds()) {
		return false
	}
	for _, c := range b.shell {
		if polygonContains(a, c) {
			return true
		}
	}
	for _, c := range a.shell {
		if polygonContains(b, c) {
			return true
		}
	}
	return ringsCross(a.shell, b.shell)
}

// polygonContains tests shell containment minus hole containment.
func polygonContains(p Polygon, c Coord) bool {
	if !pointInRing(c, p.shell) {
		return false
	}
	for _, h := range p.holes {
		if pointInRing(c, h) {
			return false
		}
	}
	return true
}

// pointInRing implements the even-odd ray casting rule.
func pointInRing(c Coord, ring []Coord) bool {
	if len(ring) < 3 {
		return false
	}
	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		vi, vj := ring[i], ring[j]
		if (vi.Y > c.Y) != (vj.Y > c.Y) {
			x := (vj.X-vi.X)*(c.Y-vi.Y)/(vj.Y-vi.Y) + vi.X
			if c.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// ringsCross reports whether any edge of ring a crosses any edge of ring b.
func ringsCross(a, b []Coord) bool {
	for i := range a {
		a1 := a[i]
		a2 := a[(i+1)%len(a)]
		for j := range b {
			b1 := b[j]
			b2 := b[(j+1)%len(b)]
			if segmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

// segmentsIntersect tests proper and collinear-overlapping segment
// intersection using orientation signs.
func segmentsIntersect(p1, p2, q1, q2 Coord) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(q1, q2, p1) {
		return true
	}
	if d2 == 0 && onSegment(q1, q2, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, q2) {
		return true
	}
	return false
}

func cross(a, b, c Coord) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func onSegment(a, b, c Coord) bool {
	return math.Min(a.X, b.X) <= c.X && c.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= c.Y && c.Y <= math.Max(a.Y, b.Y)
}
