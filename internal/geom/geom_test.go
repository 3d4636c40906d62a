// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package geom

import (
	"math"
	"testing"
)

func square(minX, minY, size float64, srid int) Polygon {
	return NewPolygon([]Coord{
		{X: minX, Y: minY},
		{X: minX + size, Y: minY},
		{X: minX + size, Y: minY + size},
		{X: minX, Y: minY + size},
	}, nil, srid)
}

func TestEnvelope_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  Envelope
		want bool
	}{
		{"normal", NewEnvelope(0, 0, 10, 10), true},
		{"degenerate point", NewEnvelope(5, 5, 5, 5), false},
		{"zero width", NewEnvelope(0, 0, 0, 10), false},
		{"nan", Envelope{MinX: math.NaN(), MaxX: 1, MaxY: 1}, false},
	}

	for _, tt := range tests {
		if got := tt.env.IsValid(); got != tt.want {
			t.Errorf("%s: IsValid() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestEnvelope_Intersects(t *testing.T) {
	t.Parallel()

	a := NewEnvelope(0, 0, 10, 10)
	if !a.Intersects(NewEnvelope(5, 5, 15, 15)) {
		t.Error("overlapping envelopes should intersect")
	}
	if !a.Intersects(NewEnvelope(10, 10, 20, 20)) {
		t.Error("touching envelopes should intersect")
	}
	if a.Intersects(NewEnvelope(11, 11, 20, 20)) {
		t.Error("disjoint envelopes should not intersect")
	}
}

func TestPolygon_Centroid(t *testing.T) {
	t.Parallel()

	p := square(0, 0, 10, 4326)
	c := p.Centroid()
	if math.Abs(c.X-5) > 1e-9 || math.Abs(c.Y-5) > 1e-9 {
		t.Errorf("Centroid() = (%f, %f), want (5, 5)", c.X, c.Y)
	}
}

func TestMultiPolygon_Centroid(t *testing.T) {
	t.Parallel()

	// Two unit squares at x=[0,1] and x=[2,3]: centroid at x=1.5.
	m := NewMultiPolygon([]Polygon{square(0, 0, 1, 4326), square(2, 0, 1, 4326)}, 4326)
	c := m.Centroid()
	if math.Abs(c.X-1.5) > 1e-9 || math.Abs(c.Y-0.5) > 1e-9 {
		t.Errorf("Centroid() = (%f, %f), want (1.5, 0.5)", c.X, c.Y)
	}
}

func TestWithin_PointInPolygon(t *testing.T) {
	t.Parallel()

	p := square(0, 0, 10, 4326)

	if !Within(Coord{X: 5, Y: 5}, p) {
		t.Error("interior point should be within")
	}
	if Within(Coord{X: 15, Y: 5}, p) {
		t.Error("exterior point should not be within")
	}
}

func TestWithin_PolygonWithHole(t *testing.T) {
	t.Parallel()

	hole := []Coord{{X: 4, Y: 4}, {X: 6, Y: 4}, {X: 6, Y: 6}, {X: 4, Y: 6}}
	p := NewPolygon(square(0, 0, 10, 4326).Shell(), [][]Coord{hole}, 4326)

	if Within(Coord{X: 5, Y: 5}, p) {
		t.Error("point in hole should not be within")
	}
	if !Within(Coord{X: 2, Y: 2}, p) {
		t.Error("point in shell outside hole should be within")
	}
}

func TestIntersects_Polygons(t *testing.T) {
	t.Parallel()

	a := square(0, 0, 10, 4326)

	tests := []struct {
		name string
		b    Geometry
		want bool
	}{
		{"overlapping square", square(5, 5, 10, 4326), true},
		{"contained square", square(2, 2, 2, 4326), true},
		{"containing square", square(-5, -5, 30, 4326), true},
		{"disjoint square", square(20, 20, 5, 4326), false},
		{"interior point", NewPoint(3, 3, 4326), true},
		{"exterior point", NewPoint(30, 30, 4326), false},
	}

	for _, tt := range tests {
		if got := Intersects(a, tt.b); got != tt.want {
			t.Errorf("%s: Intersects() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIntersects_EdgeCrossOnly(t *testing.T) {
	t.Parallel()

	// A thin cross shape: neither polygon contains a vertex of the other,
	// only edges cross.
	horiz := NewPolygon([]Coord{{X: -10, Y: 4}, {X: 10, Y: 4}, {X: 10, Y: 6}, {X: -10, Y: 6}}, nil, 4326)
	vert := NewPolygon([]Coord{{X: 4, Y: -10}, {X: 6, Y: -10}, {X: 6, Y: 10}, {X: 4, Y: 10}}, nil, 4326)

	if !Intersects(horiz, vert) {
		t.Error("crossing polygons should intersect")
	}
}

func TestBufferPoint_Metric(t *testing.T) {
	t.Parallel()

	// Projected CRS: disk built directly in meters.
	p := NewPoint(1000, 2000, 32722)
	disk := BufferPoint(p, 500)

	if len(disk.Shell()) != bufferSegments {
		t.Fatalf("shell has %d vertices, want %d", len(disk.Shell()), bufferSegments)
	}
	for _, c := range disk.Shell() {
		d := math.Hypot(c.X-1000, c.Y-2000)
		if math.Abs(d-500) > 1e-6 {
			t.Errorf("vertex distance %f, want 500", d)
		}
	}
	if !Within(Coord{X: 1000, Y: 2000}, disk) {
		t.Error("center should be within buffer")
	}
}

func TestBufferPoint_Geographic(t *testing.T) {
	t.Parallel()

	// 50 km disk around a station near Sao Jose dos Campos.
	p := NewPoint(-45.887, -23.179, 4674)
	disk := BufferPoint(p, 50000)

	if !Within(p.Coord, disk) {
		t.Error("station should be inside its own influence buffer")
	}
	// A point ~100km away must be outside.
	far := Coord{X: -45.887 + 1.0, Y: -23.179}
	if Within(far, disk) {
		t.Error("point 100km away should be outside a 50km buffer")
	}
}

func TestBufferPoint_ZeroRadius(t *testing.T) {
	t.Parallel()

	disk := BufferPoint(NewPoint(0, 0, 4326), 0)
	if len(disk.Shell()) != 0 {
		t.Error("zero radius should degrade to an empty polygon")
	}
}

func TestUTMSRID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		coord Coord
		want  int
	}{
		{Coord{X: -45.887, Y: -23.179}, 32723}, // zone 23 south
		{Coord{X: -74.0, Y: 40.7}, 32618},      // zone 18 north
		{Coord{X: 0.1, Y: 51.5}, 32631},        // zone 31 north
	}

	for _, tt := range tests {
		if got := UTMSRID(tt.coord); got != tt.want {
			t.Errorf("UTMSRID(%v) = %d, want %d", tt.coord, got, tt.want)
		}
	}
}

func TestRadiusToMeters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		radius  float64
		unit    string
		want    float64
		wantErr bool
	}{
		{2, "km", 2000, false},
		{2, "", 2000, false},
		{150, "m", 150, false},
		{1, "mi", 1609.344, false},
		{1, "furlong", 0, true},
	}

	for _, tt := range tests {
		got, err := RadiusToMeters(tt.radius, tt.unit)
		if (err != nil) != tt.wantErr {
			t.Errorf("RadiusToMeters(%f, %q) error = %v, wantErr %v", tt.radius, tt.unit, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("RadiusToMeters(%f, %q) = %f, want %f", tt.radius, tt.unit, got, tt.want)
		}
	}
}

func TestLocalProjection_RoundTrip(t *testing.T) {
	t.Parallel()

	origin := Coord{X: -45.887, Y: -23.179}
	lp := NewLocalProjection(origin)

	c := Coord{X: -45.5, Y: -23.0}
	back := lp.ToDegrees(lp.ToMeters(c))
	if math.Abs(back.X-c.X) > 1e-9 || math.Abs(back.Y-c.Y) > 1e-9 {
		t.Errorf("round trip = %v, want %v", back, c)
	}

	// One degree of latitude should be ~110km in the local frame.
	m := lp.ToMeters(Coord{X: origin.X, Y: origin.Y + 1})
	if math.Abs(m.Y-metersPerDegreeLat) > 1e-6 {
		t.Errorf("1 degree lat = %f m, want %f", m.Y, metersPerDegreeLat)
	}
}
