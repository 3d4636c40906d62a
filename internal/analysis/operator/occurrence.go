// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package operator

import (
	"fmt"
	"math"

	"github.com/terrama2/terrama2/internal/analysis"
	"github.com/terrama2/terrama2/internal/geom"
	"github.com/terrama2/terrama2/internal/metrics"
	"github.com/terrama2/terrama2/internal/stats"
)

// occurrenceZonal aggregates the occurrences falling inside the current
// monitored object during the window. A positive bufferMeters expands
// the object geometry before the intersection tests. COUNT is the
// number of matching occurrences and stays 0 when the series is empty
// or the window matched nothing; the other operations need at least one
// valid attribute value.
func (s *Suite) occurrenceZonal(op stats.Operation, seriesName, attribute, filterBegin, filterEnd string, bufferMeters float64) float64 {
	metrics.OperatorCalls.WithLabelValues("occurrence.zonal." + op.String()).Inc()
	if t := s.run.Analysis().Type; t != analysis.TypeMonitoredObject {
		return s.fail(fmt.Errorf("%w: occurrence.zonal needs a monitored-object analysis, got %s", analysis.ErrWrongAnalysisType, t))
	}
	objGeom, ok := s.objectGeometry()
	if !ok {
		return s.fail(fmt.Errorf("monitored object %d has no geometry", s.objectIndex))
	}
	if bufferMeters > 0 {
		objGeom = geom.ExpandGeometry(objGeom, bufferMeters)
	}

	datasets, err := s.run.Load(s.ctx, seriesName, filterBegin, filterEnd, 0)
	if err != nil {
		if isDataCondition(err) {
			if op == stats.OperationCount {
				return 0
			}
			return math.NaN()
		}
		return s.fail(err)
	}

	matched := 0
	var values []float64
	objBounds := objGeom.Bounds()
	for _, dss := range datasets {
		table := dss.Series.Table
		if table == nil || dss.GeometryPos < 0 {
			continue
		}

		// The spatial index prunes to candidate rows; the exact
		// predicate runs per row.
		rows := tableRows(table.NumRows())
		if dss.Index != nil {
			rows = dss.Index.Search(objBounds)
		}
		for _, row := range rows {
			g, ok := table.GeometryAt(row, dss.GeometryPos)
			if !ok || !geom.Intersects(objGeom, g) {
				continue
			}
			matched++
			if attribute == "" {
				continue
			}
			if v, ok := table.Float64(row, attribute); ok && !math.IsNaN(v) {
				values = append(values, v)
			}
		}
	}

	if op == stats.OperationCount {
		return float64(matched)
	}
	if len(values) == 0 {
		return math.NaN()
	}
	return stats.Calculate(values).Result(op)
}

func tableRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func (s *Suite) OccurrenceZonalCount(seriesName, dateFilter string) float64 {
	return s.occurrenceZonal(stats.OperationCount, seriesName, "", dateFilter, "", 0)
}

func (s *Suite) OccurrenceZonalMin(seriesName, attribute, dateFilter string) float64 {
	return s.occurrenceZonal(stats.OperationMin, seriesName, attribute, dateFilter, "", 0)
}

func (s *Suite) OccurrenceZonalMax(seriesName, attribute, dateFilter string) float64 {
	return s.occurrenceZonal(stats.OperationMax, seriesName, attribute, dateFilter, "", 0)
}

func (s *Suite) OccurrenceZonalMean(seriesName, attribute, dateFilter string) float64 {
	return s.occurrenceZonal(stats.OperationMean, seriesName, attribute, dateFilter, "", 0)
}

func (s *Suite) OccurrenceZonalMedian(seriesName, attribute, dateFilter string) float64 {
	return s.occurrenceZonal(stats.OperationMedian, seriesName, attribute, dateFilter, "", 0)
}

func (s *Suite) OccurrenceZonalSum(seriesName, attribute, dateFilter string) float64 {
	return s.occurrenceZonal(stats.OperationSum, seriesName, attribute, dateFilter, "", 0)
}

func (s *Suite) OccurrenceZonalStandardDeviation(seriesName, attribute, dateFilter string) float64 {
	return s.occurrenceZonal(stats.OperationStandardDeviation, seriesName, attribute, dateFilter, "", 0)
}

func (s *Suite) OccurrenceZonalVariance(seriesName, attribute, dateFilter string) float64 {
	return s.occurrenceZonal(stats.OperationVariance, seriesName, attribute, dateFilter, "", 0)
}

// Buffered variants expand the monitored object by a metric radius
// before the intersection tests.

func (s *Suite) OccurrenceZonalCountBuffered(seriesName, dateFilter string, radius float64, unit string) float64 {
	meters, err := geom.RadiusToMeters(radius, unit)
	if err != nil {
		return s.fail(fmt.Errorf("%w: %v", analysis.ErrInvalidArgument, err))
	}
	return s.occurrenceZonal(stats.OperationCount, seriesName, "", dateFilter, "", meters)
}

func (s *Suite) OccurrenceZonalSumBuffered(seriesName, attribute, dateFilter string, radius float64, unit string) float64 {
	meters, err := geom.RadiusToMeters(radius, unit)
	if err != nil {
		return s.fail(fmt.Errorf("%w: %v", analysis.ErrInvalidArgument, err))
	}
	return s.occurrenceZonal(stats.OperationSum, seriesName, attribute, dateFilter, "", meters)
}

func (s *Suite) OccurrenceZonalMeanBuffered(seriesName, attribute, dateFilter string, radius float64, unit string) float64 {
	meters, err := geom.RadiusToMeters(radius, unit)
	if err != nil {
		return s.fail(fmt.Errorf("%w: %v", analysis.ErrInvalidArgument, err))
	}
	return s.occurrenceZonal(stats.OperationMean, seriesName, attribute, dateFilter, "", meters)
}

// Interval variants bound both ends of the window.

func (s *Suite) OccurrenceZonalIntervalCount(seriesName, dateFilterBegin, dateFilterEnd string) float64 {
	return s.occurrenceZonal(stats.OperationCount, seriesName, "", dateFilterBegin, dateFilterEnd, 0)
}

func (s *Suite) OccurrenceZonalIntervalSum(seriesName, attribute, dateFilterBegin, dateFilterEnd string) float64 {
	return s.occurrenceZonal(stats.OperationSum, seriesName, attribute, dateFilterBegin, dateFilterEnd, 0)
}

func (s *Suite) OccurrenceZonalIntervalMean(seriesName, attribute, dateFilterBegin, dateFilterEnd string) float64 {
	return s.occurrenceZonal(stats.OperationMean, seriesName, attribute, dateFilterBegin, dateFilterEnd, 0)
}
