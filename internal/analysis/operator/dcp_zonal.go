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

// dcpZonal aggregates one attribute over the stations influencing the
// current monitored object. COUNT returns the number of influencing
// stations, not the number of samples; the two differ whenever a station
// influences the object but contributed no valid value in the window.
// With influencing stations but no valid samples every non-COUNT
// operation yields NaN.
func (s *Suite) dcpZonal(op stats.Operation, seriesName, attribute, filterBegin, filterEnd string, ids []uint64) float64 {
	metrics.OperatorCalls.WithLabelValues("dcp.zonal." + op.String()).Inc()
	if t := s.run.Analysis().Type; t != analysis.TypeMonitoredObject {
		return s.fail(fmt.Errorf("%w: dcp.zonal needs a monitored-object analysis, got %s", analysis.ErrWrongAnalysisType, t))
	}
	objGeom, ok := s.objectGeometry()
	if !ok {
		return s.fail(fmt.Errorf("monitored object %d has no geometry", s.objectIndex))
	}
	cfg, err := s.resolveInfluence(seriesName, false)
	if err != nil {
		return s.fail(err)
	}

	// With no date window this is a current-state operator: each station
	// contributes only its most recent record before the run started.
	lastValues := 0
	if filterBegin == "" && filterEnd == "" {
		lastValues = 1
	}
	datasets, err := s.run.Load(s.ctx, seriesName, filterBegin, filterEnd, lastValues)
	if err != nil {
		if isDataCondition(err) {
			if op == stats.OperationCount {
				return 0
			}
			return math.NaN()
		}
		return s.fail(err)
	}

	wanted := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	influenceCount := 0
	var values []float64
	for _, dss := range datasets {
		if len(wanted) > 0 {
			if _, ok := wanted[dss.DataSet.ID]; !ok {
				continue
			}
		}
		buffer, err := s.influenceBuffer(dss.DataSet, cfg)
		if err != nil {
			return s.fail(err)
		}
		influences, err := verifyInfluence(cfg, objGeom, buffer)
		if err != nil {
			return s.fail(err)
		}
		if !influences {
			continue
		}
		influenceCount++

		table := dss.Series.Table
		if table == nil {
			continue
		}
		for row := 0; row < table.NumRows(); row++ {
			if v, ok := table.Float64(row, attribute); ok && !math.IsNaN(v) {
				values = append(values, v)
			}
		}
	}

	if op == stats.OperationCount {
		return float64(influenceCount)
	}
	if len(values) == 0 {
		return math.NaN()
	}
	return stats.Calculate(values).Result(op)
}

// Current-window zonal operators: each station's latest record only.

func (s *Suite) DCPZonalCount(seriesName string) float64 {
	return s.dcpZonal(stats.OperationCount, seriesName, "", "", "", nil)
}

func (s *Suite) DCPZonalMin(seriesName, attribute string) float64 {
	return s.dcpZonal(stats.OperationMin, seriesName, attribute, "", "", nil)
}

func (s *Suite) DCPZonalMax(seriesName, attribute string) float64 {
	return s.dcpZonal(stats.OperationMax, seriesName, attribute, "", "", nil)
}

func (s *Suite) DCPZonalMean(seriesName, attribute string) float64 {
	return s.dcpZonal(stats.OperationMean, seriesName, attribute, "", "", nil)
}

func (s *Suite) DCPZonalMedian(seriesName, attribute string) float64 {
	return s.dcpZonal(stats.OperationMedian, seriesName, attribute, "", "", nil)
}

func (s *Suite) DCPZonalSum(seriesName, attribute string) float64 {
	return s.dcpZonal(stats.OperationSum, seriesName, attribute, "", "", nil)
}

func (s *Suite) DCPZonalStandardDeviation(seriesName, attribute string) float64 {
	return s.dcpZonal(stats.OperationStandardDeviation, seriesName, attribute, "", "", nil)
}

func (s *Suite) DCPZonalVariance(seriesName, attribute string) float64 {
	return s.dcpZonal(stats.OperationVariance, seriesName, attribute, "", "", nil)
}

// History operators: same aggregation over a relative window ending at
// the run's start time.

func (s *Suite) DCPZonalHistoryMin(seriesName, attribute, dateFilter string) float64 {
	return s.dcpZonal(stats.OperationMin, seriesName, attribute, dateFilter, "", nil)
}

func (s *Suite) DCPZonalHistoryMax(seriesName, attribute, dateFilter string) float64 {
	return s.dcpZonal(stats.OperationMax, seriesName, attribute, dateFilter, "", nil)
}

func (s *Suite) DCPZonalHistoryMean(seriesName, attribute, dateFilter string) float64 {
	return s.dcpZonal(stats.OperationMean, seriesName, attribute, dateFilter, "", nil)
}

func (s *Suite) DCPZonalHistoryMedian(seriesName, attribute, dateFilter string) float64 {
	return s.dcpZonal(stats.OperationMedian, seriesName, attribute, dateFilter, "", nil)
}

func (s *Suite) DCPZonalHistorySum(seriesName, attribute, dateFilter string) float64 {
	return s.dcpZonal(stats.OperationSum, seriesName, attribute, dateFilter, "", nil)
}

func (s *Suite) DCPZonalHistoryStandardDeviation(seriesName, attribute, dateFilter string) float64 {
	return s.dcpZonal(stats.OperationStandardDeviation, seriesName, attribute, dateFilter, "", nil)
}

func (s *Suite) DCPZonalHistoryVariance(seriesName, attribute, dateFilter string) float64 {
	return s.dcpZonal(stats.OperationVariance, seriesName, attribute, dateFilter, "", nil)
}

// Interval operators bound both ends of the window.

func (s *Suite) DCPZonalHistoryIntervalSum(seriesName, attribute, dateFilterBegin, dateFilterEnd string) float64 {
	return s.dcpZonal(stats.OperationSum, seriesName, attribute, dateFilterBegin, dateFilterEnd, nil)
}

func (s *Suite) DCPZonalHistoryIntervalMean(seriesName, attribute, dateFilterBegin, dateFilterEnd string) float64 {
	return s.dcpZonal(stats.OperationMean, seriesName, attribute, dateFilterBegin, dateFilterEnd, nil)
}

// ByID operators restrict the station set before the influence test.

func (s *Suite) DCPZonalSumByID(seriesName, attribute string, ids []uint64) float64 {
	return s.dcpZonal(stats.OperationSum, seriesName, attribute, "", "", ids)
}

func (s *Suite) DCPZonalMeanByID(seriesName, attribute string, ids []uint64) float64 {
	return s.dcpZonal(stats.OperationMean, seriesName, attribute, "", "", ids)
}

func (s *Suite) DCPZonalCountByID(seriesName string, ids []uint64) float64 {
	return s.dcpZonal(stats.OperationCount, seriesName, "", "", "", ids)
}
