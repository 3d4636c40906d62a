// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package dataaccess

import (
	"context"
	"sync/atomic"

	"github.com/terrama2/terrama2/internal/geom"
)

// MemoryAccessor serves pre-built tables from memory. It backs tests and
// the MEMORY provider kind, and counts GetSeries calls so callers can
// assert the context cache loads each series at most once per run.
type MemoryAccessor struct {
	series *DataSeries
	tables map[uint64]*Table
	calls  atomic.Int64
}

// NewMemoryAccessor wraps a series and its per-dataset tables.
func NewMemoryAccessor(series *DataSeries, tables map[uint64]*Table) *MemoryAccessor {
	return &MemoryAccessor{series: series, tables: tables}
}

// Calls returns how many times GetSeries ran.
func (a *MemoryAccessor) Calls() int64 { return a.calls.Load() }

// GetSeries filters each dataset's table and returns the surviving rows.
func (a *MemoryAccessor) GetSeries(ctx context.Context, filter Filter) (map[uint64]DataSetSeries, error) {
	a.calls.Add(1)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(a.series.DataSets) == 0 {
		return nil, ErrEmptyDataSeries
	}

	out := make(map[uint64]DataSetSeries, len(a.series.DataSets))
	matched := false
	for _, ds := range a.series.DataSets {
		table, ok := a.tables[ds.ID]
		if !ok {
			continue
		}
		filtered := filterTable(table, ds, filter)
		if filtered.NumRows() > 0 {
			matched = true
		}
		out[ds.ID] = DataSetSeries{DataSet: ds, Table: filtered}
	}
	if !matched {
		return nil, ErrNoData
	}
	return out, nil
}

// filterTable applies the temporal window, the spatial region and the
// last-values cap to one dataset's table. Rows are assumed oldest-first;
// LastValues keeps the trailing rows after the other predicates ran.
func filterTable(t *Table, ds *DataSet, filter Filter) *Table {
	out := NewTable(t.Attributes())
	tsProp := ds.TimestampProperty()
	geomPos := t.GeometryPos()

	for row := 0; row < t.NumRows(); row++ {
		if ts, ok := t.Time(row, tsProp); ok && !filter.KeepsTime(ts) {
			continue
		}
		if filter.Region != nil && geomPos >= 0 {
			g, ok := t.GeometryAt(row, geomPos)
			if !ok || !geom.Intersects(filter.Region, g) {
				continue
			}
		}
		values := make([]any, len(t.Attributes()))
		for i, a := range t.Attributes() {
			values[i] = t.Value(row, a.Name)
		}
		out.rows = append(out.rows, values)
	}

	if filter.LastValues > 0 && out.NumRows() > filter.LastValues {
		out.rows = out.rows[out.NumRows()-filter.LastValues:]
	}
	return out
}

// RegisterMemoryAccessor binds the MEMORY provider kind to a factory
// resolving tables from the given per-series store.
func RegisterMemoryAccessor(reg *AccessorRegistry, store map[uint64]map[uint64]*Table) {
	reg.Register("MEMORY", func(_ *DataProvider, series *DataSeries) (Accessor, error) {
		return NewMemoryAccessor(series, store[series.ID]), nil
	})
}
