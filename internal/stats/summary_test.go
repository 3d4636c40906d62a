// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package stats

import (
	"math"
	"testing"
)

func TestCalculate_KnownValues(t *testing.T) {
	t.Parallel()

	s := Calculate([]float64{1, 2, 3, 4})

	if s.Count != 4 {
		t.Errorf("Count = %d, want 4", s.Count)
	}
	if s.Min != 1 {
		t.Errorf("Min = %f, want 1", s.Min)
	}
	if s.Max != 4 {
		t.Errorf("Max = %f, want 4", s.Max)
	}
	if s.Sum != 10 {
		t.Errorf("Sum = %f, want 10", s.Sum)
	}
	if s.Mean != 2.5 {
		t.Errorf("Mean = %f, want 2.5", s.Mean)
	}
	if s.Median != 2.5 {
		t.Errorf("Median = %f, want 2.5", s.Median)
	}
	// Population variance: divide by N, not N-1.
	if s.Variance != 1.25 {
		t.Errorf("Variance = %f, want 1.25 (population variance)", s.Variance)
	}
	if math.Abs(s.StdDev-1.118033988749895) > 1e-12 {
		t.Errorf("StdDev = %f, want ~1.118", s.StdDev)
	}
}

func TestCalculate_MedianParity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"odd", []float64{1, 3, 5}, 3},
		{"even", []float64{1, 2, 3, 4}, 2.5},
		{"single", []float64{7}, 7},
		{"two", []float64{2, 8}, 5},
		{"unsorted odd", []float64{5, 1, 3}, 3},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Calculate(tt.values).Median; got != tt.want {
				t.Errorf("Median(%v) = %f, want %f", tt.values, got, tt.want)
			}
		})
	}
}

func TestCalculate_Empty(t *testing.T) {
	t.Parallel()

	s := Calculate(nil)
	if s.Count != 0 {
		t.Fatalf("Count = %d, want 0", s.Count)
	}
	// count==0 implies every other field is the NaN sentinel; callers must
	// not use them.
	for name, v := range map[string]float64{
		"Min": s.Min, "Max": s.Max, "Sum": s.Sum, "Mean": s.Mean,
		"Median": s.Median, "Variance": s.Variance, "StdDev": s.StdDev,
	} {
		if !math.IsNaN(v) {
			t.Errorf("%s = %f, want NaN for empty sample", name, v)
		}
	}
}

func TestCalculate_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	values := []float64{9, 1, 5}
	Calculate(values)
	if values[0] != 9 || values[1] != 1 || values[2] != 5 {
		t.Errorf("input mutated: %v", values)
	}
}

func TestSummary_Result(t *testing.T) {
	t.Parallel()

	s := Calculate([]float64{1, 2, 3, 4})

	tests := []struct {
		op   Operation
		want float64
	}{
		{OperationCount, 4},
		{OperationMin, 1},
		{OperationMax, 4},
		{OperationSum, 10},
		{OperationMean, 2.5},
		{OperationMedian, 2.5},
		{OperationVariance, 1.25},
	}
	for _, tt := range tests {
		if got := s.Result(tt.op); got != tt.want {
			t.Errorf("Result(%v) = %f, want %f", tt.op, got, tt.want)
		}
	}

	if got := s.Result(OperationInvalid); !math.IsNaN(got) {
		t.Errorf("Result(invalid) = %f, want NaN", got)
	}
}

func TestOperation_String(t *testing.T) {
	t.Parallel()

	if OperationStandardDeviation.String() != "standard_deviation" {
		t.Errorf("unexpected name %q", OperationStandardDeviation.String())
	}
	if Operation(99).String() != "invalid" {
		t.Errorf("out of range operation should stringify as invalid")
	}
}
