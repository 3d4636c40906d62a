// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

// Package runcontext holds the per-run state shared by every operator
// call of one analysis execution: the dataset cache, the monitored-object
// table and its spatial index, accumulated results, the run's error set
// and the DCP influence-buffer cache.
package runcontext

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/terrama2/terrama2/internal/analysis"
	"github.com/terrama2/terrama2/internal/dataaccess"
	"github.com/terrama2/terrama2/internal/geom"
	"github.com/terrama2/terrama2/internal/logging"
	"github.com/terrama2/terrama2/internal/metrics"
	"github.com/terrama2/terrama2/internal/spatial"
	"github.com/terrama2/terrama2/internal/timeutil"
)

// Key identifies one cached series load: which series, under which
// relative date window and row cap. Different windows of the same
// series cache independently, and a latest-record load never aliases a
// windowed one.
type Key struct {
	SeriesID    uint64
	FilterBegin string
	FilterEnd   string
	LastValues  int
}

// DataSetSeries is one dataset as the operators see it: the materialized
// table (or raster), the dataset descriptor, and a spatial index over
// the table's geometry column when one exists.
type DataSetSeries struct {
	DataSet     *dataaccess.DataSet
	Series      dataaccess.DataSetSeries
	GeometryPos int
	Index       *spatial.Index
}

// MonitoredObject is the anchoring object table of a monitored-object
// analysis: identifiers, geometries and a spatial index over them.
type MonitoredObject struct {
	Table       *dataaccess.Table
	Identifier  string
	GeometryPos int
	Index       *spatial.Index
}

// Context is the state of one run. Loads are at-most-once per Key in the
// absence of races: the lock is never held across accessor I/O, so two
// goroutines may load the same key concurrently and the last write wins.
// That trade keeps slow providers from serializing the whole run.
type Context struct {
	analysis  *analysis.Analysis
	manager   dataaccess.DataManager
	accessors *dataaccess.AccessorRegistry
	startTime time.Time
	log       zerolog.Logger

	mu      sync.RWMutex
	cache   map[Key][]*DataSetSeries
	object  *MonitoredObject
	results map[int]map[string]float64
	errs    []string
	errSeen map[string]struct{}
	buffers map[uint64]geom.Geometry
}

// New creates the context for one run. startTime is fixed for the whole
// run so every relative-time filter resolves against the same instant.
func New(a *analysis.Analysis, manager dataaccess.DataManager, accessors *dataaccess.AccessorRegistry, startTime time.Time) *Context {
	return &Context{
		analysis:  a,
		manager:   manager,
		accessors: accessors,
		startTime: startTime,
		log:       logging.With().Str("component", "runcontext").Uint64("analysis", a.ID).Logger(),
		cache:     make(map[Key][]*DataSetSeries),
		results:   make(map[int]map[string]float64),
		errSeen:   make(map[string]struct{}),
		buffers:   make(map[uint64]geom.Geometry),
	}
}

// Analysis returns the analysis this run executes.
func (c *Context) Analysis() *analysis.Analysis { return c.analysis }

// StartTime returns the run's fixed start time.
func (c *Context) StartTime() time.Time { return c.startTime }

// Exists reports whether the key is already cached.
func (c *Context) Exists(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.cache[key]
	return ok
}

// Load returns the datasets of the named series under the relative date
// window, loading through the registered accessor on first use. The
// series must be bound to the analysis by alias or data-series name.
// lastValues > 0 caps each dataset to its trailing rows; the
// current-window DCP operators load with lastValues 1 so each station
// contributes only its most recent record.
func (c *Context) Load(ctx context.Context, seriesName, filterBegin, filterEnd string, lastValues int) ([]*DataSetSeries, error) {
	series, err := c.resolveSeries(seriesName)
	if err != nil {
		return nil, err
	}

	key := Key{SeriesID: series.ID, FilterBegin: filterBegin, FilterEnd: filterEnd, LastValues: lastValues}
	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		metrics.ContextCacheHits.Inc()
		return cached, nil
	}
	metrics.ContextCacheMisses.Inc()

	filter, err := c.buildFilter(filterBegin, filterEnd, lastValues)
	if err != nil {
		return nil, fmt.Errorf("series %q: %w", seriesName, err)
	}

	provider, err := c.manager.DataProvider(series.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("series %q: %w", seriesName, err)
	}
	accessor, err := c.accessors.Make(provider, series)
	if err != nil {
		return nil, fmt.Errorf("series %q: %w", seriesName, err)
	}

	// I/O happens without the lock; a concurrent duplicate load is
	// accepted and the later store wins.
	loaded, err := accessor.GetSeries(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("series %q: %w", seriesName, err)
	}

	result := make([]*DataSetSeries, 0, len(loaded))
	for _, ds := range series.DataSets {
		dss, ok := loaded[ds.ID]
		if !ok {
			continue
		}
		result = append(result, buildDataSetSeries(ds, dss))
	}

	c.mu.Lock()
	c.cache[key] = result
	c.mu.Unlock()

	c.log.Debug().Str("series", seriesName).Int("datasets", len(result)).Msg("series loaded")
	return result, nil
}

// resolveSeries maps an operator's series name to the data series: the
// name must match a bound alias or the series' own name, keeping scripts
// from reaching outside the analysis configuration.
func (c *Context) resolveSeries(name string) (*dataaccess.DataSeries, error) {
	if bound, ok := c.analysis.FindByAlias(name); ok {
		return c.manager.DataSeries(bound.DataSeriesID)
	}
	series, err := c.manager.DataSeriesByName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: series %q is not bound to analysis %q", analysis.ErrInvalidArgument, name, c.analysis.Name)
	}
	for _, bound := range c.analysis.DataSeries {
		if bound.DataSeriesID == series.ID {
			return series, nil
		}
	}
	return nil, fmt.Errorf("%w: series %q is not bound to analysis %q", analysis.ErrInvalidArgument, name, c.analysis.Name)
}

func (c *Context) buildFilter(filterBegin, filterEnd string, lastValues int) (dataaccess.Filter, error) {
	var f dataaccess.Filter
	begin, err := timeutil.DiscardBefore(c.startTime, filterBegin)
	if err != nil {
		return f, err
	}
	end, err := timeutil.DiscardBefore(c.startTime, filterEnd)
	if err != nil {
		return f, err
	}
	f.DiscardBefore = begin
	f.DiscardAfter = end
	if filterEnd == "" {
		f.DiscardAfter = c.startTime
	}
	f.LastValues = lastValues
	return f, nil
}

func buildDataSetSeries(ds *dataaccess.DataSet, dss dataaccess.DataSetSeries) *DataSetSeries {
	out := &DataSetSeries{DataSet: ds, Series: dss, GeometryPos: -1}
	if dss.Table == nil {
		return out
	}
	out.GeometryPos = dss.Table.GeometryPos()
	if out.GeometryPos < 0 {
		return out
	}
	out.Index = spatial.New(0.5)
	for row := 0; row < dss.Table.NumRows(); row++ {
		if g, ok := dss.Table.GeometryAt(row, out.GeometryPos); ok {
			out.Index.Insert(g.Bounds(), row)
		}
	}
	return out
}

// LoadMonitoredObject materializes the analysis's monitored-object
// series and installs it: the object table, the named identifier
// attribute, the discovered geometry column and a spatial index over
// the object geometries. Monitored-object analyses call this once
// before the first operator runs.
func (c *Context) LoadMonitoredObject(ctx context.Context, identifier string) error {
	bound, ok := c.analysis.FindByType(analysis.DataSeriesMonitoredObject)
	if !ok {
		return fmt.Errorf("analysis %q has no monitored-object series", c.analysis.Name)
	}
	series, err := c.manager.DataSeries(bound.DataSeriesID)
	if err != nil {
		return fmt.Errorf("monitored object: %w", err)
	}
	provider, err := c.manager.DataProvider(series.ProviderID)
	if err != nil {
		return fmt.Errorf("monitored object: %w", err)
	}
	accessor, err := c.accessors.Make(provider, series)
	if err != nil {
		return fmt.Errorf("monitored object: %w", err)
	}

	loaded, err := accessor.GetSeries(ctx, dataaccess.Filter{})
	if err != nil {
		return fmt.Errorf("monitored object series %q: %w", series.Name, err)
	}
	for _, ds := range series.DataSets {
		dss, ok := loaded[ds.ID]
		if !ok || dss.Table == nil {
			continue
		}
		obj := &MonitoredObject{
			Table:       dss.Table,
			Identifier:  identifier,
			GeometryPos: dss.Table.GeometryPos(),
		}
		if obj.GeometryPos >= 0 {
			obj.Index = spatial.New(0.5)
			for row := 0; row < dss.Table.NumRows(); row++ {
				if g, ok := dss.Table.GeometryAt(row, obj.GeometryPos); ok {
					obj.Index.Insert(g.Bounds(), row)
				}
			}
		}
		c.SetMonitoredObject(obj)
		c.log.Debug().Str("series", series.Name).Int("objects", dss.Table.NumRows()).Msg("monitored object loaded")
		return nil
	}
	return fmt.Errorf("monitored object series %q has no usable dataset", series.Name)
}

// SetMonitoredObject installs the run's object table. Called once by the
// evaluator before any operator runs.
func (c *Context) SetMonitoredObject(obj *MonitoredObject) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.object = obj
}

// MonitoredObject returns the run's object table, nil for grid and DCP
// analyses that have none.
func (c *Context) MonitoredObject() *MonitoredObject {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.object
}

// SetResult records one attribute value for one monitored object.
func (c *Context) SetResult(objectIndex int, attribute string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.results[objectIndex]
	if !ok {
		row = make(map[string]float64)
		c.results[objectIndex] = row
	}
	row[attribute] = value
}

// Results returns a copy of the accumulated per-object results.
func (c *Context) Results() map[int]map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[int]map[string]float64, len(c.results))
	for idx, attrs := range c.results {
		row := make(map[string]float64, len(attrs))
		for k, v := range attrs {
			row[k] = v
		}
		out[idx] = row
	}
	return out
}

// AddError records a run-level error message. Duplicates collapse so a
// failing operator inside a per-object loop reports once, not once per
// object.
func (c *Context) AddError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, seen := c.errSeen[msg]; seen {
		return
	}
	c.errSeen[msg] = struct{}{}
	c.errs = append(c.errs, msg)
}

// Errors returns the recorded error messages in first-seen order.
func (c *Context) Errors() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.errs))
	copy(out, c.errs)
	return out
}

// DCPBuffer returns the cached influence buffer for a station dataset.
func (c *Context) DCPBuffer(datasetID uint64) (geom.Geometry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.buffers[datasetID]
	return g, ok
}

// SetDCPBuffer caches a station's influence buffer for the rest of the
// run. Buffers depend only on station position and analysis metadata, so
// one computation serves every monitored object.
func (c *Context) SetDCPBuffer(datasetID uint64, g geom.Geometry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffers[datasetID] = g
}
