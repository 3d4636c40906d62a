// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/terrama2/terrama2/internal/analysis"
	"github.com/terrama2/terrama2/internal/analysis/operator"
	"github.com/terrama2/terrama2/internal/analysis/runcontext"
	"github.com/terrama2/terrama2/internal/bus"
	"github.com/terrama2/terrama2/internal/dataaccess"
	"github.com/terrama2/terrama2/internal/geom"
	"github.com/terrama2/terrama2/internal/logging"
	"github.com/terrama2/terrama2/internal/processlog"
	"github.com/terrama2/terrama2/internal/service"
)

func ptr[T any](v T) *T { return &v }

func newTestRouter(t *testing.T) (http.Handler, *service.Service) {
	t.Helper()

	manager := dataaccess.NewMemoryDataManager()
	manager.AddDataProvider(&dataaccess.DataProvider{ID: 1, Kind: "MEMORY", Active: true})

	table := dataaccess.NewTable([]dataaccess.Attribute{
		{Name: "datetime", Type: dataaccess.AttrTimestamp},
		{Name: "pluvio", Type: dataaccess.AttrFloat64},
	})
	if err := table.AppendRow(time.Now().UTC().Add(-time.Hour), 4.2); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	ds := &dataaccess.DataSet{ID: 100, SeriesID: 7, Active: true,
		Position: ptr(geom.NewPoint(-45.0, -23.0, 4326)),
		Format:   map[string]string{"timestamp_property": "datetime"}}
	manager.AddDataSeries(&dataaccess.DataSeries{ID: 7, Name: "pcd-angra", ProviderID: 1,
		Semantics: "DCP-inpe", DataSets: []*dataaccess.DataSet{ds}})

	store := map[uint64]map[uint64]*dataaccess.Table{7: {ds.ID: table}}
	reg := dataaccess.NewAccessorRegistry()
	dataaccess.RegisterMemoryAccessor(reg, store)

	b := bus.New(16, logging.NewTestLogger(io.Discard))
	t.Cleanup(func() { _ = b.Close() })

	svc := service.New(service.Config{Workers: 1}, runcontext.NewRegistry(), manager, reg, b)
	err := svc.Register(service.Registration{
		Analysis: &analysis.Analysis{
			ID: 1, Name: "flood-watch", Type: analysis.TypeDCP, Active: true,
			Script: "x", ScriptLanguage: analysis.LanguagePython,
			DataSeries: []analysis.AnalysisDataSeries{
				{DataSeriesID: 7, Type: analysis.DataSeriesDCP, Alias: "pcd-angra",
					Metadata: map[string]string{
						analysis.KeyInfluenceType:   "RADIUS_TOUCHES",
						analysis.KeyInfluenceRadius: "10",
					}},
			},
		},
		Evaluator: service.EvaluatorFunc(func(_ context.Context, run *runcontext.Context, suite *operator.Suite) error {
			run.SetResult(suite.ObjectIndex(), "pluvio_sum", suite.DCPSum("pcd-angra", "pluvio", nil))
			return nil
		}),
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	history, err := processlog.Open("", 0)
	if err != nil {
		t.Fatalf("processlog.Open: %v", err)
	}
	t.Cleanup(func() { _ = history.Close() })

	h := NewHandler(svc, history, "test")
	return NewRouter(h, RouterConfig{RateLimitDisabled: true}), svc
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return resp
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode(t, rec)
	if !resp.Success {
		t.Error("health reported failure")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListAnalyses(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode(t, rec)
	list, ok := resp.Data.([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("data = %v", resp.Data)
	}
}

func TestEnqueueAndTrackRun(t *testing.T) {
	t.Parallel()

	router, svc := newTestRouter(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Serve(ctx) }()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analyses/1/run", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	data := resp.Data.(map[string]any)
	runID, _ := data["run_id"].(string)
	if runID == "" {
		t.Fatalf("no run id in %v", data)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+runID, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		st := decode(t, rec).Data.(map[string]any)
		if st["state"] == string(service.RunFinished) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("run never finished: %v", st)
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestEnqueueUnknownAnalysis(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analyses/99/run", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analyses/abc/run", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCancelQueuedRun(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	// No worker running: the run stays queued and can be canceled.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analyses/1/run", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	runID := decode(t, rec).Data.(map[string]any)["run_id"].(string)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/runs/"+runID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d: %s", rec.Code, rec.Body.String())
	}

	// Second cancel conflicts.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/runs/"+runID, nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("second cancel status = %d, want 409", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/runs/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown run cancel status = %d, want 404", rec.Code)
	}
}

func TestRunHistory(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/1/history", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/1/history?limit=0", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}
}
