// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

// Package raster provides the single-band float64 grid the grid operators
// and the interpolator produce and consume.
package raster

import (
	"fmt"
	"math"

	"github.com/terrama2/terrama2/internal/geom"
)

// Raster is a single-band float64 grid. Cell (0,0) is the top-left
// corner; row indexes grow southward, column indexes eastward. Values
// equal to the no-data marker are absent observations.
type Raster struct {
	cols   int
	rows   int
	env    geom.Envelope
	resX   float64
	resY   float64
	srid   int
	noData float64
	cells  []float64
}

// New creates a raster covering env with the given dimensions, filled
// with the no-data marker.
func New(cols, rows int, env geom.Envelope, srid int, noData float64) (*Raster, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("invalid raster dimensions %dx%d", cols, rows)
	}
	if !env.IsValid() {
		return nil, fmt.Errorf("invalid raster envelope")
	}
	r := &Raster{
		cols:   cols,
		rows:   rows,
		env:    env,
		resX:   env.Width() / float64(cols),
		resY:   env.Height() / float64(rows),
		srid:   srid,
		noData: noData,
		cells:  make([]float64, cols*rows),
	}
	for i := range r.cells {
		r.cells[i] = noData
	}
	return r, nil
}

// Cols returns the column count.
func (r *Raster) Cols() int { return r.cols }

// Rows returns the row count.
func (r *Raster) Rows() int { return r.rows }

// SRID returns the spatial reference of the grid.
func (r *Raster) SRID() int { return r.srid }

// NoData returns the no-data marker.
func (r *Raster) NoData() float64 { return r.noData }

// Envelope returns the grid's spatial extent.
func (r *Raster) Envelope() geom.Envelope { return r.env }

// ResolutionX returns the cell width in CRS units.
func (r *Raster) ResolutionX() float64 { return r.resX }

// ResolutionY returns the cell height in CRS units.
func (r *Raster) ResolutionY() float64 { return r.resY }

// Value returns the cell value. Out-of-range cells read as no-data.
func (r *Raster) Value(col, row int) float64 {
	if col < 0 || col >= r.cols || row < 0 || row >= r.rows {
		return r.noData
	}
	return r.cells[row*r.cols+col]
}

// SetValue writes a cell. Out-of-range writes are ignored.
func (r *Raster) SetValue(col, row int, v float64) {
	if col < 0 || col >= r.cols || row < 0 || row >= r.rows {
		return
	}
	r.cells[row*r.cols+col] = v
}

// IsNoData reports whether the cell holds the no-data marker or NaN.
func (r *Raster) IsNoData(col, row int) bool {
	v := r.Value(col, row)
	return math.IsNaN(v) || v == r.noData
}

// CellCenter returns the CRS coordinate of the cell's center.
func (r *Raster) CellCenter(col, row int) geom.Coord {
	return geom.Coord{
		X: r.env.MinX + (float64(col)+0.5)*r.resX,
		Y: r.env.MaxY - (float64(row)+0.5)*r.resY,
	}
}

// CellAt returns the cell containing the coordinate, false when the
// coordinate is outside the grid.
func (r *Raster) CellAt(c geom.Coord) (col, row int, ok bool) {
	if !r.env.ContainsCoord(c) {
		return 0, 0, false
	}
	col = int((c.X - r.env.MinX) / r.resX)
	row = int((r.env.MaxY - c.Y) / r.resY)
	if col == r.cols {
		col--
	}
	if row == r.rows {
		row--
	}
	return col, row, true
}

// ValuesIn collects the valid cell values whose centers fall inside the
// geometry. Cells holding no-data are skipped.
func (r *Raster) ValuesIn(g geom.Geometry) []float64 {
	bounds := g.Bounds()
	if !bounds.Intersects(r.env) {
		return nil
	}

	minCol, minRow, okMin := r.CellAt(geom.Coord{X: bounds.MinX, Y: bounds.MaxY})
	maxCol, maxRow, okMax := r.CellAt(geom.Coord{X: bounds.MaxX, Y: bounds.MinY})
	if !okMin {
		minCol, minRow = 0, 0
	}
	if !okMax {
		maxCol, maxRow = r.cols-1, r.rows-1
	}

	var values []float64
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if r.IsNoData(col, row) {
				continue
			}
			if geom.Within(r.CellCenter(col, row), g) {
				values = append(values, r.Value(col, row))
			}
		}
	}
	return values
}
