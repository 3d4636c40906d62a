// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

// Package interpolator grids scattered DCP observations: nearest
// neighbor, neighborhood average, or inverse-distance weighting over the
// k nearest stations.
package interpolator

import (
	"errors"
	"fmt"
	"math"

	"github.com/terrama2/terrama2/internal/dataaccess"
	"github.com/terrama2/terrama2/internal/geom"
	"github.com/terrama2/terrama2/internal/raster"
	"github.com/terrama2/terrama2/internal/spatial"
)

// ErrNoData is returned when no valid sample exists or the samples span
// a degenerate rectangle no grid can cover.
var ErrNoData = errors.New("interpolator: no data to interpolate")

// Strategy selects the interpolation method.
type Strategy int

const (
	NearestNeighbor Strategy = iota + 1
	Average
	InverseDistanceWeighted
)

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case NearestNeighbor:
		return "nearest-neighbor"
	case Average:
		return "average"
	case InverseDistanceWeighted:
		return "inverse-distance-weighted"
	default:
		return "unknown"
	}
}

// Params configures one interpolation.
type Params struct {
	Strategy    Strategy
	Neighbors   int     // stations considered per cell, default 4
	Power       float64 // IDW exponent, default 2
	ResolutionX float64
	ResolutionY float64
	SRID        int
	NoData      float64
	// Envelope overrides the grid extent; zero value derives it from
	// the samples.
	Envelope geom.Envelope
}

func (p *Params) defaults() {
	if p.Neighbors <= 0 {
		p.Neighbors = 4
	}
	if p.Power == 0 {
		p.Power = 2
	}
}

// Sample is one station observation to grid.
type Sample struct {
	Pos   geom.Coord
	Value float64
}

// SamplesFromSeries extracts one sample per dataset: the station's
// position and its most recent valid value of the attribute. Inactive
// stations, stations without a position and stations whose window holds
// no valid value are skipped.
func SamplesFromSeries(datasets []dataaccess.DataSetSeries, attribute string) []Sample {
	var samples []Sample
	for _, dss := range datasets {
		ds := dss.DataSet
		if ds == nil || !ds.Active || ds.Position == nil || dss.Table == nil {
			continue
		}
		found := false
		var value float64
		for row := dss.Table.NumRows() - 1; row >= 0; row-- {
			if v, ok := dss.Table.Float64(row, attribute); ok && !math.IsNaN(v) {
				value = v
				found = true
				break
			}
		}
		if !found {
			continue
		}
		samples = append(samples, Sample{Pos: ds.Position.Centroid(), Value: value})
	}
	return samples
}

// Interpolate grids the samples. Cells with no reachable neighbor keep
// the no-data marker rather than failing the whole grid.
func Interpolate(samples []Sample, params Params) (*raster.Raster, error) {
	params.defaults()
	if params.Strategy < NearestNeighbor || params.Strategy > InverseDistanceWeighted {
		return nil, fmt.Errorf("interpolator: unknown strategy %d", int(params.Strategy))
	}
	if params.ResolutionX <= 0 || params.ResolutionY <= 0 {
		return nil, fmt.Errorf("interpolator: invalid resolution %gx%g", params.ResolutionX, params.ResolutionY)
	}

	valid := samples[:0:0]
	for _, s := range samples {
		if !math.IsNaN(s.Value) {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return nil, ErrNoData
	}

	env := params.Envelope
	if !env.IsValid() {
		env = sampleEnvelope(valid, params.ResolutionX, params.ResolutionY)
	}
	if !env.IsValid() {
		return nil, fmt.Errorf("%w: degenerate sample extent", ErrNoData)
	}

	cols := int(math.Ceil(env.Width() / params.ResolutionX))
	rows := int(math.Ceil(env.Height() / params.ResolutionY))
	out, err := raster.New(cols, rows, env, params.SRID, params.NoData)
	if err != nil {
		return nil, fmt.Errorf("interpolator: %w", err)
	}

	index := spatial.New(math.Max(params.ResolutionX, params.ResolutionY) * 4)
	for i, s := range valid {
		index.InsertPoint(s.Pos, i)
	}

	k := params.Neighbors
	if params.Strategy == NearestNeighbor {
		k = 1
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			center := out.CellCenter(col, row)
			neighbors := index.Nearest(center, k)
			if len(neighbors) == 0 {
				continue // cell stays no-data
			}
			out.SetValue(col, row, cellValue(valid, neighbors, params))
		}
	}
	return out, nil
}

func cellValue(samples []Sample, neighbors []spatial.Neighbor, params Params) float64 {
	switch params.Strategy {
	case NearestNeighbor:
		return samples[neighbors[0].Ref].Value
	case Average:
		var sum float64
		for _, n := range neighbors {
			sum += samples[n.Ref].Value
		}
		return sum / float64(len(neighbors))
	default:
		// A neighbor at the cell center would weight infinitely; take
		// its value directly.
		var weighted, weights float64
		for _, n := range neighbors {
			if n.Distance == 0 {
				return samples[n.Ref].Value
			}
			w := 1 / math.Pow(n.Distance, params.Power)
			weighted += w * samples[n.Ref].Value
			weights += w
		}
		return weighted / weights
	}
}

// sampleEnvelope bounds the samples, padded half a cell so border
// stations fall inside the grid. A single station still yields a
// one-cell grid.
func sampleEnvelope(samples []Sample, resX, resY float64) geom.Envelope {
	env := geom.Envelope{MinX: samples[0].Pos.X, MinY: samples[0].Pos.Y, MaxX: samples[0].Pos.X, MaxY: samples[0].Pos.Y}
	for _, s := range samples[1:] {
		env.MinX = math.Min(env.MinX, s.Pos.X)
		env.MinY = math.Min(env.MinY, s.Pos.Y)
		env.MaxX = math.Max(env.MaxX, s.Pos.X)
		env.MaxY = math.Max(env.MaxY, s.Pos.Y)
	}
	env.MinX -= resX / 2
	env.MaxX += resX / 2
	env.MinY -= resY / 2
	env.MaxY += resY / 2
	return env
}
