// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package dataaccess

import "errors"

var (
	// ErrEmptyDataSeries is returned when an accessor resolves a data
	// series that contains zero datasets. Operators translate this into
	// a benign result (NaN, or 0 for occurrence counts) rather than a
	// run failure.
	ErrEmptyDataSeries = errors.New("data series contains no datasets")

	// ErrNoData is returned when the filter window matched no rows.
	ErrNoData = errors.New("no data matched the filter")

	// ErrInvalidDataSet flags a dataset whose format metadata is missing
	// or inconsistent with its provider.
	ErrInvalidDataSet = errors.New("invalid dataset")

	// ErrInvalidDataSeries flags a series referenced by name or id that
	// the data manager does not know.
	ErrInvalidDataSeries = errors.New("invalid data series")
)
