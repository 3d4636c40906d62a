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

// dcp aggregates one attribute over an explicit station list of a DCP
// analysis. Unlike the zonal family this path requires the influence
// type to be configured; a missing INFLUENCE_TYPE is a configuration
// error, not a default.
func (s *Suite) dcp(op stats.Operation, seriesName, attribute, filterBegin string, ids []uint64) float64 {
	metrics.OperatorCalls.WithLabelValues("dcp." + op.String()).Inc()
	if t := s.run.Analysis().Type; t != analysis.TypeDCP {
		return s.fail(fmt.Errorf("%w: dcp operators need a dcp analysis, got %s", analysis.ErrWrongAnalysisType, t))
	}
	if _, err := s.resolveInfluence(seriesName, true); err != nil {
		return s.fail(err)
	}

	// No date window means current state: one record per station, the
	// latest before the run started.
	lastValues := 0
	if filterBegin == "" {
		lastValues = 1
	}
	datasets, err := s.run.Load(s.ctx, seriesName, filterBegin, "", lastValues)
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

	stationCount := 0
	var values []float64
	for _, dss := range datasets {
		if len(wanted) > 0 {
			if _, ok := wanted[dss.DataSet.ID]; !ok {
				continue
			}
		}
		stationCount++

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
		return float64(stationCount)
	}
	if len(values) == 0 {
		return math.NaN()
	}
	return stats.Calculate(values).Result(op)
}

func (s *Suite) DCPCount(seriesName string, ids []uint64) float64 {
	return s.dcp(stats.OperationCount, seriesName, "", "", ids)
}

func (s *Suite) DCPMin(seriesName, attribute string, ids []uint64) float64 {
	return s.dcp(stats.OperationMin, seriesName, attribute, "", ids)
}

func (s *Suite) DCPMax(seriesName, attribute string, ids []uint64) float64 {
	return s.dcp(stats.OperationMax, seriesName, attribute, "", ids)
}

func (s *Suite) DCPMean(seriesName, attribute string, ids []uint64) float64 {
	return s.dcp(stats.OperationMean, seriesName, attribute, "", ids)
}

func (s *Suite) DCPMedian(seriesName, attribute string, ids []uint64) float64 {
	return s.dcp(stats.OperationMedian, seriesName, attribute, "", ids)
}

func (s *Suite) DCPSum(seriesName, attribute string, ids []uint64) float64 {
	return s.dcp(stats.OperationSum, seriesName, attribute, "", ids)
}

func (s *Suite) DCPStandardDeviation(seriesName, attribute string, ids []uint64) float64 {
	return s.dcp(stats.OperationStandardDeviation, seriesName, attribute, "", ids)
}

func (s *Suite) DCPVariance(seriesName, attribute string, ids []uint64) float64 {
	return s.dcp(stats.OperationVariance, seriesName, attribute, "", ids)
}

// History variants over a relative window.

func (s *Suite) DCPHistoryMin(seriesName, attribute, dateFilter string, ids []uint64) float64 {
	return s.dcp(stats.OperationMin, seriesName, attribute, dateFilter, ids)
}

func (s *Suite) DCPHistoryMax(seriesName, attribute, dateFilter string, ids []uint64) float64 {
	return s.dcp(stats.OperationMax, seriesName, attribute, dateFilter, ids)
}

func (s *Suite) DCPHistoryMean(seriesName, attribute, dateFilter string, ids []uint64) float64 {
	return s.dcp(stats.OperationMean, seriesName, attribute, dateFilter, ids)
}

func (s *Suite) DCPHistorySum(seriesName, attribute, dateFilter string, ids []uint64) float64 {
	return s.dcp(stats.OperationSum, seriesName, attribute, dateFilter, ids)
}
