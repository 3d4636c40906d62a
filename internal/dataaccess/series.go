// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package dataaccess

import (
	"github.com/terrama2/terrama2/internal/geom"
	"github.com/terrama2/terrama2/internal/raster"
)

// DataProvider identifies where a data series lives and how to reach it.
type DataProvider struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Kind   string `json:"kind"` // accessor registry key, e.g. "MEMORY", "DUCKDB"
	URI    string `json:"uri"`
	Active bool   `json:"active"`
}

// DataSeries groups datasets of one semantics under one provider. A DCP
// series has one dataset per station; a monitored-object series has a
// single dataset holding the object table.
type DataSeries struct {
	ID         uint64     `json:"id"`
	Name       string     `json:"name"`
	ProviderID uint64     `json:"data_provider_id"`
	Semantics  string     `json:"semantics"`
	DataSets   []*DataSet `json:"datasets"`
}

// DataSet is one addressable unit of a series. Format carries
// provider-specific access metadata (table name, timestamp property,
// coordinate columns). Position is set for DCP datasets only.
type DataSet struct {
	ID       uint64            `json:"id"`
	SeriesID uint64            `json:"data_series_id"`
	Alias    string            `json:"alias,omitempty"`
	Active   bool              `json:"active"`
	Position *geom.Point       `json:"-"`
	Format   map[string]string `json:"format"`
}

// TimestampProperty returns the name of the dataset's timestamp column.
func (ds *DataSet) TimestampProperty() string {
	if p, ok := ds.Format["timestamp_property"]; ok && p != "" {
		return p
	}
	return "datetime"
}

// DataSetSeries is the materialized view of one dataset after access:
// the dataset descriptor plus its attribute table, or its raster for
// grid semantics.
type DataSetSeries struct {
	DataSet *DataSet
	Table   *Table
	Raster  *raster.Raster
}
