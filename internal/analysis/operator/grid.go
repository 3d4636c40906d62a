// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package operator

import (
	"fmt"
	"math"

	"github.com/terrama2/terrama2/internal/analysis"
	"github.com/terrama2/terrama2/internal/metrics"
	"github.com/terrama2/terrama2/internal/stats"
)

// gridZonal aggregates the grid cells whose centers fall inside the
// current monitored object. COUNT is the number of valid cells.
func (s *Suite) gridZonal(op stats.Operation, seriesName, filterBegin string) float64 {
	metrics.OperatorCalls.WithLabelValues("grid.zonal." + op.String()).Inc()
	if t := s.run.Analysis().Type; t != analysis.TypeMonitoredObject {
		return s.fail(fmt.Errorf("%w: grid.zonal needs a monitored-object analysis, got %s", analysis.ErrWrongAnalysisType, t))
	}
	objGeom, ok := s.objectGeometry()
	if !ok {
		return s.fail(fmt.Errorf("monitored object %d has no geometry", s.objectIndex))
	}

	datasets, err := s.run.Load(s.ctx, seriesName, filterBegin, "", 0)
	if err != nil {
		if isDataCondition(err) {
			if op == stats.OperationCount {
				return 0
			}
			return math.NaN()
		}
		return s.fail(err)
	}

	var values []float64
	for _, dss := range datasets {
		if dss.Series.Raster == nil {
			continue
		}
		values = append(values, dss.Series.Raster.ValuesIn(objGeom)...)
	}

	if op == stats.OperationCount {
		return float64(len(values))
	}
	if len(values) == 0 {
		return math.NaN()
	}
	return stats.Calculate(values).Result(op)
}

func (s *Suite) GridZonalCount(seriesName string) float64 {
	return s.gridZonal(stats.OperationCount, seriesName, "")
}

func (s *Suite) GridZonalMin(seriesName string) float64 {
	return s.gridZonal(stats.OperationMin, seriesName, "")
}

func (s *Suite) GridZonalMax(seriesName string) float64 {
	return s.gridZonal(stats.OperationMax, seriesName, "")
}

func (s *Suite) GridZonalMean(seriesName string) float64 {
	return s.gridZonal(stats.OperationMean, seriesName, "")
}

func (s *Suite) GridZonalMedian(seriesName string) float64 {
	return s.gridZonal(stats.OperationMedian, seriesName, "")
}

func (s *Suite) GridZonalSum(seriesName string) float64 {
	return s.gridZonal(stats.OperationSum, seriesName, "")
}

func (s *Suite) GridZonalStandardDeviation(seriesName string) float64 {
	return s.gridZonal(stats.OperationStandardDeviation, seriesName, "")
}

func (s *Suite) GridZonalVariance(seriesName string) float64 {
	return s.gridZonal(stats.OperationVariance, seriesName, "")
}

// History variants aggregate over a relative window of grids.

func (s *Suite) GridZonalHistoryMean(seriesName, dateFilter string) float64 {
	return s.gridZonal(stats.OperationMean, seriesName, dateFilter)
}

func (s *Suite) GridZonalHistorySum(seriesName, dateFilter string) float64 {
	return s.gridZonal(stats.OperationSum, seriesName, dateFilter)
}

func (s *Suite) GridZonalHistoryMax(seriesName, dateFilter string) float64 {
	return s.gridZonal(stats.OperationMax, seriesName, dateFilter)
}

func (s *Suite) GridZonalHistoryMin(seriesName, dateFilter string) float64 {
	return s.gridZonal(stats.OperationMin, seriesName, dateFilter)
}
