// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

// Package stats computes the statistical aggregates the zonal operators
// return: count, min, max, sum, mean, median, population variance and
// standard deviation over a sample of float64 values.
//
// Callers filter NaN and null samples before calling Calculate. An empty
// sample yields Count == 0 with every other field NaN; consumers must check
// Count before trusting any other field.
package stats

import (
	"math"
	"sort"
)

// Operation identifies one statistical aggregate.
type Operation int

const (
	OperationInvalid Operation = iota
	OperationCount
	OperationMin
	OperationMax
	OperationSum
	OperationMean
	OperationMedian
	OperationStandardDeviation
	OperationVariance
)

// String returns the operator-surface name of the operation.
func (op Operation) String() string {
	switch op {
	case OperationCount:
		return "count"
	case OperationMin:
		return "min"
	case OperationMax:
		return "max"
	case OperationSum:
		return "sum"
	case OperationMean:
		return "mean"
	case OperationMedian:
		return "median"
	case OperationStandardDeviation:
		return "standard_deviation"
	case OperationVariance:
		return "variance"
	default:
		return "invalid"
	}
}

// Summary holds every aggregate for one sample set.
type Summary struct {
	Count    int
	Min      float64
	Max      float64
	Sum      float64
	Mean     float64
	Median   float64
	Variance float64
	StdDev   float64
}

// emptySummary is returned for a zero-length sample: Count 0, all other
// fields NaN so that accidental use is detectable.
func emptySummary() Summary {
	nan := math.NaN()
	return Summary{Min: nan, Max: nan, Sum: nan, Mean: nan, Median: nan, Variance: nan, StdDev: nan}
}

// Calculate computes all aggregates over the sample. The input slice is
// not modified; the median sort operates on a copy.
//
// Variance is the population variance (divide by N, not N-1). The median
// of an even-sized sample is the mean of the two central elements; of an
// odd-sized sample, the central element.
func Calculate(values []float64) Summary {
	if len(values) == 0 {
		return emptySummary()
	}

	s := Summary{Count: len(values), Min: values[0], Max: values[0]}
	for _, v := range values {
		s.Sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = s.Sum / float64(s.Count)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	half := len(sorted) / 2
	if len(sorted)%2 == 0 {
		s.Median = (sorted[half-1] + sorted[half]) / 2
	} else {
		s.Median = sorted[half]
	}

	var sumSq float64
	for _, v := range values {
		diff := v - s.Mean
		sumSq += diff * diff
	}
	s.Variance = sumSq / float64(s.Count)
	s.StdDev = math.Sqrt(s.Variance)

	return s
}

// Result dispatches to the requested aggregate. OperationCount returns the
// sample count; the operator layer substitutes the influence count where
// the contract requires it (DCP count is stations, not samples).
func (s Summary) Result(op Operation) float64 {
	switch op {
	case OperationCount:
		return float64(s.Count)
	case OperationMin:
		return s.Min
	case OperationMax:
		return s.Max
	case OperationSum:
		return s.Sum
	case OperationMean:
		return s.Mean
	case OperationMedian:
		return s.Median
	case OperationStandardDeviation:
		return s.StdDev
	case OperationVariance:
		return s.Variance
	default:
		return math.NaN()
	}
}
