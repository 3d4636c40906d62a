// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package api

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terrama2/terrama2/internal/analysis"
	"github.com/terrama2/terrama2/internal/analysis/runcontext"
	"github.com/terrama2/terrama2/internal/processlog"
	"github.com/terrama2/terrama2/internal/service"
)

// Handler serves the admin endpoints.
type Handler struct {
	service *service.Service
	history *processlog.Store
	started time.Time
	version string
}

// NewHandler creates the handler. history may be nil when run history
// persistence is disabled.
func NewHandler(svc *service.Service, history *processlog.Store, version string) *Handler {
	return &Handler{
		service: svc,
		history: history,
		started: time.Now(),
		version: version,
	}
}

type healthBody struct {
	Status  string  `json:"status"`
	Version string  `json:"version"`
	Uptime  float64 `json:"uptime_seconds"`
}

// Health answers liveness probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respond(w, r).success(healthBody{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.started).Seconds(),
	})
}

type analysisSummary struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
	Series int    `json:"series"`
}

// ListAnalyses returns the registered analyses.
func (h *Handler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	registered := h.service.Registered()
	sort.Slice(registered, func(i, j int) bool { return registered[i].ID < registered[j].ID })

	out := make([]analysisSummary, 0, len(registered))
	for _, a := range registered {
		out = append(out, analysisSummary{
			ID:     a.ID,
			Name:   a.Name,
			Type:   a.Type.String(),
			Active: a.Active,
			Series: len(a.DataSeries),
		})
	}
	respond(w, r).success(out)
}

func (h *Handler) findAnalysis(id uint64) (*analysis.Analysis, bool) {
	for _, a := range h.service.Registered() {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// EnqueueRun queues one run of an analysis.
func (h *Handler) EnqueueRun(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	id, err := strconv.ParseUint(chi.URLParam(r, "analysisID"), 10, 64)
	if err != nil {
		rw.badRequest("analysis id must be a positive integer")
		return
	}
	if _, ok := h.findAnalysis(id); !ok {
		rw.notFound("analysis is not registered")
		return
	}

	runID, err := h.service.Enqueue(id)
	if err != nil {
		rw.conflict(err.Error())
		return
	}
	rw.created(map[string]any{"run_id": runID, "analysis_id": id})
}

// ListRuns returns every run the service knows about, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	statuses := h.service.Statuses()
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].StartTime.After(statuses[j].StartTime)
	})
	respond(w, r).success(statuses)
}

// GetRun returns the state of one run.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	id := runcontext.RunID(chi.URLParam(r, "runID"))
	st, ok := h.service.Status(id)
	if !ok {
		rw.notFound("run not found")
		return
	}
	rw.success(st)
}

// CancelRun cancels a queued run. Runs already executing are not
// interrupted and answer 409.
func (h *Handler) CancelRun(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	id := runcontext.RunID(chi.URLParam(r, "runID"))
	if _, ok := h.service.Status(id); !ok {
		rw.notFound("run not found")
		return
	}
	if !h.service.CancelQueued(id) {
		rw.conflict("run is not queued")
		return
	}
	rw.success(map[string]any{"run_id": id, "state": service.RunCanceled})
}

// RunHistory returns the persisted run log of one analysis.
func (h *Handler) RunHistory(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	if h.history == nil {
		rw.notFound("run history is disabled")
		return
	}
	id, err := strconv.ParseUint(chi.URLParam(r, "analysisID"), 10, 64)
	if err != nil {
		rw.badRequest("analysis id must be a positive integer")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 1000 {
			rw.badRequest("limit must be between 1 and 1000")
			return
		}
	}

	entries, err := h.history.List(id, limit)
	if err != nil {
		rw.internalError("failed to read run history")
		return
	}
	rw.success(entries)
}
