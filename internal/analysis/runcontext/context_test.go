// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package runcontext

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/terrama2/terrama2/internal/analysis"
	"github.com/terrama2/terrama2/internal/dataaccess"
	"github.com/terrama2/terrama2/internal/geom"
)

func fixture(t *testing.T) (*analysis.Analysis, *dataaccess.MemoryDataManager, *dataaccess.AccessorRegistry, *dataaccess.MemoryAccessor) {
	t.Helper()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	table := dataaccess.NewTable([]dataaccess.Attribute{
		{Name: "datetime", Type: dataaccess.AttrTimestamp},
		{Name: "pluvio", Type: dataaccess.AttrFloat64},
	})
	for i := 0; i < 4; i++ {
		if err := table.AppendRow(base.Add(time.Duration(i)*time.Hour), float64(i)); err != nil {
			t.Fatalf("AppendRow: %v", err)
		}
	}

	ds := &dataaccess.DataSet{ID: 100, SeriesID: 7, Active: true,
		Position: ptr(geom.NewPoint(-45.0, -23.0, 4326)),
		Format:   map[string]string{"timestamp_property": "datetime"}}
	series := &dataaccess.DataSeries{ID: 7, Name: "pcd-angra", ProviderID: 1, Semantics: "DCP-inpe", DataSets: []*dataaccess.DataSet{ds}}

	manager := dataaccess.NewMemoryDataManager()
	manager.AddDataSeries(series)
	manager.AddDataProvider(&dataaccess.DataProvider{ID: 1, Kind: "MEMORY", Active: true})

	acc := dataaccess.NewMemoryAccessor(series, map[uint64]*dataaccess.Table{ds.ID: table})
	reg := dataaccess.NewAccessorRegistry()
	reg.Register("MEMORY", func(_ *dataaccess.DataProvider, _ *dataaccess.DataSeries) (dataaccess.Accessor, error) {
		return acc, nil
	})

	a := &analysis.Analysis{
		ID: 1, Name: "flood-watch", Type: analysis.TypeDCP,
		Script: "x", ScriptLanguage: analysis.LanguagePython,
		DataSeries: []analysis.AnalysisDataSeries{
			{DataSeriesID: 7, Type: analysis.DataSeriesDCP, Alias: "pcd-angra"},
		},
	}
	return a, manager, reg, acc
}

func ptr[T any](v T) *T { return &v }

func TestContextLoad_CachesPerKey(t *testing.T) {
	t.Parallel()

	a, manager, reg, acc := fixture(t)
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c := New(a, manager, reg, start)

	first, err := c.Load(context.Background(), "pcd-angra", "7d", "", 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(first) != 1 || first[0].Series.Table.NumRows() != 4 {
		t.Fatalf("unexpected load result: %+v", first)
	}

	if _, err := c.Load(context.Background(), "pcd-angra", "7d", "", 0); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if acc.Calls() != 1 {
		t.Errorf("same key loaded %d times, want 1", acc.Calls())
	}

	// A different window is a different key and loads again.
	if _, err := c.Load(context.Background(), "pcd-angra", "30d", "", 0); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if acc.Calls() != 2 {
		t.Errorf("distinct keys loaded %d times, want 2", acc.Calls())
	}
}

func TestContextLoad_LastValues(t *testing.T) {
	t.Parallel()

	a, manager, reg, acc := fixture(t)
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c := New(a, manager, reg, start)

	// A latest-record load keeps only the trailing row per dataset.
	latest, err := c.Load(context.Background(), "pcd-angra", "", "", 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n := latest[0].Series.Table.NumRows(); n != 1 {
		t.Fatalf("latest load kept %d rows, want 1", n)
	}
	if v, ok := latest[0].Series.Table.Float64(0, "pluvio"); !ok || v != 3.0 {
		t.Errorf("latest row value = %v, want 3.0", v)
	}

	// It never aliases a windowed load of the same series.
	windowed, err := c.Load(context.Background(), "pcd-angra", "", "", 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n := windowed[0].Series.Table.NumRows(); n != 4 {
		t.Errorf("windowed load kept %d rows, want 4", n)
	}
	if acc.Calls() != 2 {
		t.Errorf("loads = %d, want 2 distinct cache keys", acc.Calls())
	}
}

func TestContextLoad_ConcurrentSameKey(t *testing.T) {
	t.Parallel()

	a, manager, reg, _ := fixture(t)
	c := New(a, manager, reg, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Load(context.Background(), "pcd-angra", "7d", "", 0); err != nil {
				t.Errorf("Load: %v", err)
			}
		}()
	}
	wg.Wait()

	if !c.Exists(Key{SeriesID: 7, FilterBegin: "7d"}) {
		t.Error("key not cached after concurrent loads")
	}
}

func TestContextLoad_UnboundSeries(t *testing.T) {
	t.Parallel()

	a, manager, reg, _ := fixture(t)
	c := New(a, manager, reg, time.Now())

	if _, err := c.Load(context.Background(), "other-series", "7d", "", 0); !errors.Is(err, analysis.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestContextResults(t *testing.T) {
	t.Parallel()

	a, manager, reg, _ := fixture(t)
	c := New(a, manager, reg, time.Now())

	c.SetResult(0, "rain_sum", 10)
	c.SetResult(0, "rain_count", 2)
	c.SetResult(3, "rain_sum", 0)

	results := c.Results()
	if results[0]["rain_sum"] != 10 || results[0]["rain_count"] != 2 {
		t.Errorf("object 0 results wrong: %v", results[0])
	}
	if len(results) != 2 {
		t.Errorf("got %d result rows, want 2", len(results))
	}

	// Returned map is a copy.
	results[0]["rain_sum"] = 99
	if c.Results()[0]["rain_sum"] != 10 {
		t.Error("Results returned a live reference")
	}
}

func TestContextErrors_Deduplicate(t *testing.T) {
	t.Parallel()

	a, manager, reg, _ := fixture(t)
	c := New(a, manager, reg, time.Now())

	for i := 0; i < 5; i++ {
		c.AddError("influence type not configured")
	}
	c.AddError("second error")

	errs := c.Errors()
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
	if errs[0] != "influence type not configured" {
		t.Errorf("error order not preserved: %v", errs)
	}
}

func TestContextDCPBufferCache(t *testing.T) {
	t.Parallel()

	a, manager, reg, _ := fixture(t)
	c := New(a, manager, reg, time.Now())

	if _, ok := c.DCPBuffer(100); ok {
		t.Error("buffer present before set")
	}
	buf := geom.BufferPoint(geom.NewPoint(-45, -23, 4326), 50000)
	c.SetDCPBuffer(100, buf)
	if got, ok := c.DCPBuffer(100); !ok || got == nil {
		t.Error("buffer lost after set")
	}
}

func TestLoadMonitoredObject(t *testing.T) {
	t.Parallel()

	a, manager, reg, _ := fixture(t)

	moTable := dataaccess.NewTable([]dataaccess.Attribute{
		{Name: "id", Type: dataaccess.AttrString},
		{Name: "geom", Type: dataaccess.AttrGeometry},
	})
	shell := []geom.Coord{
		{X: -45.1, Y: -23.1}, {X: -44.9, Y: -23.1},
		{X: -44.9, Y: -22.9}, {X: -45.1, Y: -22.9}, {X: -45.1, Y: -23.1},
	}
	if err := moTable.AppendRow("angra", geom.NewPolygon(shell, nil, 4326)); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}

	moDS := &dataaccess.DataSet{ID: 200, SeriesID: 9, Active: true, Format: map[string]string{}}
	moSeries := &dataaccess.DataSeries{ID: 9, Name: "municipalities", ProviderID: 1,
		Semantics: "STATIC_DATA-ogr", DataSets: []*dataaccess.DataSet{moDS}}
	manager.AddDataSeries(moSeries)

	moAcc := dataaccess.NewMemoryAccessor(moSeries, map[uint64]*dataaccess.Table{moDS.ID: moTable})
	reg.Register("MEMORY", func(_ *dataaccess.DataProvider, s *dataaccess.DataSeries) (dataaccess.Accessor, error) {
		if s.ID == moSeries.ID {
			return moAcc, nil
		}
		return dataaccess.NewMemoryAccessor(s, nil), nil
	})
	a.DataSeries = append(a.DataSeries, analysis.AnalysisDataSeries{
		DataSeriesID: 9, Type: analysis.DataSeriesMonitoredObject, Alias: "objects",
	})

	c := New(a, manager, reg, time.Now())
	if err := c.LoadMonitoredObject(context.Background(), "id"); err != nil {
		t.Fatalf("LoadMonitoredObject: %v", err)
	}

	obj := c.MonitoredObject()
	if obj == nil {
		t.Fatal("monitored object not installed")
	}
	if obj.Identifier != "id" || obj.GeometryPos != 1 {
		t.Errorf("object = %+v", obj)
	}
	if obj.Index == nil || obj.Index.Size() != 1 {
		t.Error("object spatial index not built")
	}
	if obj.Table.String(0, "id") != "angra" {
		t.Errorf("identifier lookup failed")
	}
}

func TestLoadMonitoredObject_Missing(t *testing.T) {
	t.Parallel()

	a, manager, reg, _ := fixture(t)
	c := New(a, manager, reg, time.Now())

	if err := c.LoadMonitoredObject(context.Background(), "id"); err == nil {
		t.Error("analysis without monitored-object series should fail")
	}
}

func TestRegistryLifecycle(t *testing.T) {
	t.Parallel()

	a, manager, accReg, _ := fixture(t)
	reg := NewRegistry()

	id, c := reg.Create(a, manager, accReg, time.Now())
	if c == nil || id == "" {
		t.Fatal("Create returned empty run")
	}
	got, err := reg.Get(id)
	if err != nil || got != c {
		t.Fatalf("Get: %v", err)
	}

	// Runs are isolated: a second run has its own context and cache.
	id2, c2 := reg.Create(a, manager, accReg, time.Now())
	if id2 == id || c2 == c {
		t.Error("runs share state")
	}
	c.SetResult(0, "x", 1)
	if len(c2.Results()) != 0 {
		t.Error("result leaked across runs")
	}

	reg.ClearRunState(id)
	if _, err := reg.Get(id); err == nil {
		t.Error("cleared run still reachable")
	}
	if reg.Size() != 1 {
		t.Errorf("Size = %d, want 1", reg.Size())
	}
}
